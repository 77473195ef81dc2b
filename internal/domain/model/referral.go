package model

import "time"

// Referral links a new user to the user whose code they joined with.
// Credited flips to true exactly once.
type Referral struct {
	NewUserID  int64
	ReferrerID int64
	Credited   bool
	CreatedAt  time.Time
}

// ReferralStats summarises the referrals of one referrer.
type ReferralStats struct {
	Total    int
	Credited int
}
