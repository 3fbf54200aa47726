package model

import "time"

// Room is a hostel room. Occupied counts the students currently assigned.
type Room struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Number    string    `json:"number" gorm:"uniqueIndex;size:32;not null"`
	Block     string    `json:"block" gorm:"size:32;not null"`
	Capacity  int       `json:"capacity" gorm:"not null"`
	Occupied  int       `json:"occupied" gorm:"not null;default:0"`
	WardenID  *uint     `json:"warden_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Available returns the number of free beds, never negative.
func (r Room) Available() int {
	if r.Occupied >= r.Capacity {
		return 0
	}
	return r.Capacity - r.Occupied
}
