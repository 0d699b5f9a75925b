package models

import "time"

// Account represents a guardian's user account. ID is the opaque identity
// key (OIDC subject or a locally generated id); Kids is the sorted roster of
// the guardian's own kids; Schedules lists the schedule ids the account can
// see (owned or shared). The bson/json field names are the persisted
// contract.
type Account struct {
	ID        string    `bson:"id" json:"id"`
	Email     string    `bson:"email" json:"email"`
	Kids      []string  `bson:"kids" json:"kids"`
	Schedules []string  `bson:"schedules" json:"schedules"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`

	// PasswordHash is set only for accounts created through the password
	// provider; OIDC accounts leave it empty. Never serialized to clients.
	PasswordHash string `bson:"passwordHash,omitempty" json:"-"`
}
