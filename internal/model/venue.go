package model

import "fmt"

// Venue is a bookable basketball venue. Organizer is the username of the
// organizer who manages it.
type Venue struct {
	ID        int64
	Name      string
	Address   string
	Capacity  int
	Organizer string
}

// VenueRecord is the flat transfer form of a venue. An ID of zero asks the
// backend to allocate one; a non-zero ID is preserved as given, which is how
// bootstrap rebuilds keep master identifiers.
type VenueRecord struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address,omitempty"`
	Capacity  int    `json:"capacity"`
	Organizer string `json:"organizer"`
}

// Validate checks the record fields common to every backend.
func (r *VenueRecord) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive (got %d)", r.Capacity)
	}
	if r.Organizer == "" {
		return fmt.Errorf("organizer is required")
	}
	return nil
}

// ToVenue builds the domain object for this record.
func (r *VenueRecord) ToVenue() *Venue {
	return &Venue{
		ID:        r.ID,
		Name:      r.Name,
		Address:   r.Address,
		Capacity:  r.Capacity,
		Organizer: r.Organizer,
	}
}

// RecordFromVenue converts a domain venue back to its flat record form.
func RecordFromVenue(v *Venue) *VenueRecord {
	return &VenueRecord{
		ID:        v.ID,
		Name:      v.Name,
		Address:   v.Address,
		Capacity:  v.Capacity,
		Organizer: v.Organizer,
	}
}
