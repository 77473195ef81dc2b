package model

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"promo-bot/internal/domain"
)

// ReferralBonus is the number of wallet points a referrer earns per referred user.
const ReferralBonus = 10

// Only a leading REF<digits> counts; trailing text is ignored.
var referralCodeRe = regexp.MustCompile(`^REF(\d+)`)

// User is a Telegram user known to the bot. The Telegram ID is the key.
type User struct {
	ID         int64
	Username   string
	FirstName  string
	JoinedAt   time.Time
	Active     bool
	Plan       string
	PlanExpiry *time.Time
	Wallet     int64
	ReferredBy *int64
}

func NewUser(id int64, username, firstName string) (*User, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		ID:        id,
		Username:  username,
		FirstName: firstName,
		JoinedAt:  time.Now().UTC(),
		Plan:      PlanNone,
	}, nil
}

// ReferralCode is derived from the user ID and never stored separately.
func (u *User) ReferralCode() string { return ReferralCode(u.ID) }

// Expired reports whether the plan expiry is set and lies before now.
func (u *User) Expired(now time.Time) bool {
	return u.PlanExpiry != nil && u.PlanExpiry.Before(now)
}

func ReferralCode(userID int64) string { return fmt.Sprintf("REF%d", userID) }

// ParseReferralCode extracts the referrer ID from a start parameter such as "REF12345".
func ParseReferralCode(code string) (int64, error) {
	m := referralCodeRe.FindStringSubmatch(code)
	if m == nil {
		return 0, domain.ErrInvalidReferralCode
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidReferralCode
	}
	return id, nil
}
