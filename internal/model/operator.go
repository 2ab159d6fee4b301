package model

import (
	"time"

	"github.com/google/uuid"
)

// Operator is one name on the roster of people allowed to record orders.
// Which operator is currently "active" is a client-side selection; the
// chosen name travels with each order save as added_by.
type Operator struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
