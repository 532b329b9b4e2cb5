package models

import "time"

// Booking is a reservation in the external room-booking system, used only as
// comparison data for the outlook detector.
type Booking struct {
	RoomID    string    `json:"room_id"`
	EventID   string    `json:"event_id,omitempty"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start"`
	EndTime   time.Time `json:"end"`
}

// Room is reference data fetched from the external booking service.
type Room struct {
	ID        string `json:"id"`
	Title     string `json:"title,omitempty"`
	ShortName string `json:"short_name,omitempty"`
	// Capacity is nil when the booking service does not know the room size.
	Capacity *int `json:"capacity"`
	// AccessLevel is "yellow" (students), "red" (employees) or "special".
	AccessLevel     string `json:"access_level,omitempty"`
	RestrictDaytime bool   `json:"restrict_daytime,omitempty"`
}
