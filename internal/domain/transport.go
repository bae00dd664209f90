package domain

import "time"

// VehicleStatus tracks whether a vehicle can be scheduled.
type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "AVAILABLE"
	VehicleMaintenance VehicleStatus = "MAINTENANCE"
	VehicleRetired     VehicleStatus = "RETIRED"
)

// Vehicle is a bus, van or car in the hostel fleet.
type Vehicle struct {
	ID        string
	Type      string
	Number    string
	Capacity  int
	Status    VehicleStatus
	DriverID  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Route is a named path between two points.
type Route struct {
	ID          string
	Name        string
	Description string
	StartPoint  string
	EndPoint    string
	Stops       []string
	Schedules   []Schedule
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Schedule is a recurring weekly timeslot on a route with a seat capacity.
type Schedule struct {
	ID          string
	RouteID     string
	VehicleID   string
	Day         time.Weekday
	StartTime   string
	EndTime     string
	StartDate   time.Time
	EndDate     time.Time
	MaxCapacity int
	Price       float64
	Active      bool
	// ConfirmedCount is filled by listing queries only.
	ConfirmedCount int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Runs reports whether the schedule operates on the given date.
func (s Schedule) Runs(date time.Time) bool {
	if !s.Active {
		return false
	}
	if date.Before(s.StartDate) || date.After(s.EndDate) {
		return false
	}
	return date.Weekday() == s.Day
}

// BookingStatus enumerates booking states.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// Booking reserves one seat on a schedule for a date.
type Booking struct {
	ID          string
	UserID      string
	ScheduleID  string
	VehicleID   string
	BookingDate time.Time
	Status      BookingStatus
	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
