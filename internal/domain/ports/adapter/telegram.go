// File: internal/domain/ports/adapter/telegram.go
package adapter

import "context"

const (
	ParseModeHTML = "HTML"

	// Membership statuses returned by GetBotMemberStatus.
	MemberStatusCreator       = "creator"
	MemberStatusAdministrator = "administrator"
	MemberStatusMember        = "member"
	MemberStatusLeft          = "left"
	MemberStatusKicked        = "kicked"
)

// Button is a keyboard button. For inline keyboards either Data or URL is set;
// reply keyboards only use Text.
type Button struct {
	Text string
	Data string
	URL  string
}

// ReplyMarkup is either an inline keyboard attached to the message or a
// persistent reply keyboard shown under the input field.
type ReplyMarkup struct {
	Buttons  [][]Button
	IsInline bool
}

type SendMessageParams struct {
	ChatID           int64
	Text             string
	ParseMode        string
	ReplyMarkup      *ReplyMarkup
	ReplyToMessageID int
}

// ChatInfo is the subset of chat metadata the bot needs.
type ChatInfo struct {
	ID    int64
	Title string
	Type  string
}

type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, params SendMessageParams) error
	// GetBotMemberStatus returns the bot's own membership status in chatID.
	GetBotMemberStatus(ctx context.Context, chatID int64) (string, error)
	GetChat(ctx context.Context, chatID int64) (*ChatInfo, error)
}
