package entities

import "github.com/Jacobbrewer1/ticketdesk/pkg/custom"

// AdminGrant is a role or member that is given access to every new ticket channel.
type AdminGrant struct {
	// ID is the role or member snowflake.
	ID string `json:"id" bson:"id" db:"id"`

	// RegisteredAt is when the grant was last registered.
	RegisteredAt custom.Datetime `json:"registered_at" bson:"registered_at" db:"registered_at"`
}
