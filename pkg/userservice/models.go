package userservice

import "time"

// PeerAssignment is the persisted record of a peer's current group
// assignment. It is the only table this package owns.
type PeerAssignment struct {
	ID        string `gorm:"primaryKey"`
	Username  string `gorm:"uniqueIndex;not null"`
	Group     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (PeerAssignment) TableName() string { return "peer_assignments" }
