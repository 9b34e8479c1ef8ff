package domain

import "errors"

var (
	ErrNotFound       = errors.New("record not found")
	ErrSlotTaken      = errors.New("navigation menu area already occupied")
	ErrMalformedInput = errors.New("malformed input document")

	ErrInvitationNotFound    = errors.New("invitation not found")
	ErrInvitationNotPending  = errors.New("invitation is not pending")
	ErrInvitationExpired     = errors.New("invitation has expired")
	ErrInvalidInvitationKey  = errors.New("invalid invitation key")
	ErrUnknownInvitationKind = errors.New("unknown invitation kind")
	ErrInvitationIncomplete  = errors.New("invitation is missing its invited user")
)
