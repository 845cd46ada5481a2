package services

import "errors"

// Validation errors, rejected before any transaction is opened.
var (
	ErrUnknownTeam          = errors.New("team is not part of this match")
	ErrInvalidCredentials   = errors.New("invalid name or password")
	ErrConfirmationRequired = errors.New("fixture deletion must be confirmed")
	ErrSelfRemoval          = errors.New("you cannot remove your own admin account")
	ErrAdminRemoval         = errors.New("you cannot remove another admin account")
	ErrAvatarTooLarge       = errors.New("avatar is too large, use a smaller image")
)
