package model

import (
	"fmt"
	"time"
)

// Booking status values.
const (
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Booking ties a player to a venue at a point in time.
type Booking struct {
	ID       int64
	VenueID  int64
	Player   string
	StartsAt time.Time
	Status   string
}

// BookingRecord is the flat transfer form of a booking. ID semantics match
// VenueRecord: zero means allocate, non-zero is preserved.
type BookingRecord struct {
	ID       int64     `json:"id"`
	VenueID  int64     `json:"venue_id"`
	Player   string    `json:"player"`
	StartsAt time.Time `json:"starts_at"`
	Status   string    `json:"status"`
}

// Validate checks the record fields common to every backend.
func (r *BookingRecord) Validate() error {
	if r.VenueID == 0 {
		return fmt.Errorf("venue_id is required")
	}
	if r.Player == "" {
		return fmt.Errorf("player is required")
	}
	if r.StartsAt.IsZero() {
		return fmt.Errorf("starts_at is required")
	}
	if r.Status == "" {
		return fmt.Errorf("status is required")
	}
	return nil
}

// ToBooking builds the domain object for this record.
func (r *BookingRecord) ToBooking() *Booking {
	return &Booking{
		ID:       r.ID,
		VenueID:  r.VenueID,
		Player:   r.Player,
		StartsAt: r.StartsAt,
		Status:   r.Status,
	}
}

// RecordFromBooking converts a domain booking back to its flat record form.
func RecordFromBooking(b *Booking) *BookingRecord {
	return &BookingRecord{
		ID:       b.ID,
		VenueID:  b.VenueID,
		Player:   b.Player,
		StartsAt: b.StartsAt,
		Status:   b.Status,
	}
}
