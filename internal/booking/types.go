package booking

// Wire types for the scheduling API. The API owns all of these; the
// client keeps read-only copies of the month on screen and replaces
// them wholesale on every fetch.

type User struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

type TimeSlot struct {
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	IsAvailable bool   `json:"isAvailable"`
}

// AvailableDate is a published bookable day. A date with no record is
// simply not bookable; the API returns at most one record per date
// string within a month.
type AvailableDate struct {
	ID        string     `json:"_id"`
	Date      string     `json:"date"` // YYYY-MM-DD
	TimeSlots []TimeSlot `json:"timeSlots"`
}

type Booking struct {
	ID             string   `json:"_id"`
	UserID         string   `json:"userId"`
	AvailabilityID string   `json:"availabilityId"`
	TimeSlot       SlotSpan `json:"timeSlot"`
	Date           string   `json:"date"`
}

// SlotSpan is the start/end pair sent when creating a booking or
// publishing availability. The availability flag is server-owned and
// never round-trips.
type SlotSpan struct {
	StartTime string `json:"startTime" validate:"required,clocktime"`
	EndTime   string `json:"endTime" validate:"required,clocktime"`
}
