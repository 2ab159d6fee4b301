package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionSaveOrder      = "SAVE_ORDER"
	ActionArchiveOrder   = "ARCHIVE_ORDER"
	ActionRestoreOrder   = "RESTORE_ORDER"
	ActionDeleteOrder    = "DELETE_ORDER"
	ActionSaveRate       = "SAVE_EXCHANGE_RATE"
	ActionDeleteRate     = "DELETE_EXCHANGE_RATE"
	ActionSaveProduct    = "SAVE_PRODUCT"
	ActionDeleteProduct  = "DELETE_PRODUCT"
	ActionAddOperator    = "ADD_OPERATOR"
	ActionRemoveOperator = "REMOVE_OPERATOR"
)

// AuditLog tracks who changed what and when. Operator is the free-text
// roster name, not a user account; there is no authentication layer.
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Operator   string    `gorm:"type:varchar(100);index" json:"operator"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string    `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
