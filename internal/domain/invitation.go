package domain

import "time"

type InvitationStatus string

const (
	InvitationStatusPending   InvitationStatus = "PENDING"
	InvitationStatusAccepted  InvitationStatus = "ACCEPTED"
	InvitationStatusCancelled InvitationStatus = "CANCELLED"
	InvitationStatusExpired   InvitationStatus = "EXPIRED"
)

func (s InvitationStatus) IsTerminal() bool {
	return s != InvitationStatusPending
}

type Invitation struct {
	ID         int32            `json:"id"`
	KeyHash    string           `json:"-"`
	ClassName  string           `json:"class_name"`
	UserID     int32            `json:"user_id"`
	Email      string           `json:"email,omitempty"`
	ContextID  *int32           `json:"context_id,omitempty"`
	Status     InvitationStatus `json:"status"`
	ExpiryDate time.Time        `json:"expiry_date"`
	Payload    map[string]any   `json:"payload,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (i *Invitation) IsExpired(now time.Time) bool {
	return !i.ExpiryDate.IsZero() && now.After(i.ExpiryDate)
}
