package domain

import "time"

// AccountEventType names a lifecycle transition of an account.
type AccountEventType string

const (
	EventAccountCreated         AccountEventType = "account.created"
	EventAccountUpdated         AccountEventType = "account.updated"
	EventAccountActivated       AccountEventType = "account.activated"
	EventAccountDeactivated     AccountEventType = "account.deactivated"
	EventAccountDeleted         AccountEventType = "account.deleted"
	EventAccountPasswordChanged AccountEventType = "account.password_changed"
)

// AccountEvent records a committed change to an account.
type AccountEvent struct {
	Type       AccountEventType `json:"type" bson:"type"`
	AccountID  string           `json:"accountId" bson:"account_id"`
	Email      string           `json:"email" bson:"email"`
	ActorEmail string           `json:"actorEmail,omitempty" bson:"actor_email,omitempty"`
	OccurredAt time.Time        `json:"occurredAt" bson:"occurred_at"`
}
