package models

import "time"

// SessionLog records editor sessions after they end, for auditing and
// cleanup reporting.
type SessionLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID string    `gorm:"type:varchar(36);not null;index" json:"session_id"`
	ListingID string    `gorm:"type:varchar(36);not null;index" json:"listing_id"`
	OpenedAt  time.Time `gorm:"type:datetime;not null" json:"opened_at"`
	ClosedAt  time.Time `gorm:"type:datetime;not null;autoCreateTime;index" json:"closed_at"`
	SaveCount int       `gorm:"type:int;default:0" json:"save_count"`
	Reason    string    `gorm:"type:varchar(50);not null" json:"reason"`
}

// TableName specifies the table name
func (SessionLog) TableName() string {
	return "session_logs"
}

// Session close reason constants
const (
	CloseReasonUser     = "closed_by_user"
	CloseReasonExpired  = "expired_idle"
	CloseReasonShutdown = "server_shutdown"
)
