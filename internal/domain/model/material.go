package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"promo-bot/internal/domain"
)

// PreviewLimit is the number of characters of a material shown in listings.
const PreviewLimit = 600

// Material is a block of text a user saved for later promotion.
type Material struct {
	ID        int64
	UserID    int64
	Text      string
	CreatedAt time.Time
}

func NewMaterial(userID int64, text string) (*Material, error) {
	if userID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyMaterial
	}
	return &Material{
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Preview truncates the text to PreviewLimit runes and marks the cut with "...".
func (m *Material) Preview() string {
	if utf8.RuneCountInString(m.Text) <= PreviewLimit {
		return m.Text
	}
	r := []rune(m.Text)
	return string(r[:PreviewLimit]) + "..."
}
