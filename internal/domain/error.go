package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound            = errors.New("entity not found")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInvalidExecContext  = errors.New("invalid execution context")
	ErrInvalidPlanCode     = errors.New("invalid plan code")
	ErrInvalidReferralCode = errors.New("invalid referral code")

	// Promotion
	ErrEmptyMaterial    = errors.New("material text is empty")
	ErrNoGroupsSelected = errors.New("no groups selected")
	ErrNoMaterials      = errors.New("no materials to promote")
	ErrNotGroupChat     = errors.New("chat is not a group")
	ErrBotNotAdmin      = errors.New("bot is not an administrator in chat")

	// Infrastructure
	ErrQueueFull = errors.New("worker queue full")
	ErrLockHeld  = errors.New("lock is held by another owner")
)
