package model

import (
	"strconv"
	"time"

	"promo-bot/internal/domain"
)

// Group is a chat registered as a promotion target. Whether the bot is still an
// administrator there is checked at promotion time, never cached here.
type Group struct {
	ChatID       int64
	Title        string
	RegisteredBy int64
	RegisteredAt time.Time
}

func NewGroup(chatID int64, title string, registeredBy int64) (*Group, error) {
	if chatID == 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Group{
		ChatID:       chatID,
		Title:        title,
		RegisteredBy: registeredBy,
		RegisteredAt: time.Now().UTC(),
	}, nil
}

// DisplayName falls back to the chat ID when the title is empty.
func (g *Group) DisplayName() string {
	if g.Title != "" {
		return g.Title
	}
	return strconv.FormatInt(g.ChatID, 10)
}
