package dto

import (
	"time"

	"github.com/hostelsync/hostelsync-api/internal/domain"
)

// CreateVehicleRequest payload for POST /transport/admin/vehicles.
type CreateVehicleRequest struct {
	Type     string  `json:"type" validate:"required,oneof=Bus Van Car Minibus"`
	Number   string  `json:"number" validate:"required,max=20"`
	Capacity int     `json:"capacity" validate:"required,min=1,max=100"`
	DriverID *string `json:"driverId" validate:"omitempty,uuid"`
}

// CreateRouteRequest payload for POST /transport/admin/routes.
type CreateRouteRequest struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description" validate:"omitempty,max=500"`
	StartPoint  string   `json:"startPoint" validate:"required,max=100"`
	EndPoint    string   `json:"endPoint" validate:"required,max=100"`
	Stops       []string `json:"stops" validate:"omitempty,dive,required,max=100"`
}

// CreateScheduleRequest payload for POST /transport/admin/schedules.
type CreateScheduleRequest struct {
	RouteID     string  `json:"routeId" validate:"required,uuid"`
	VehicleID   string  `json:"vehicleId" validate:"required,uuid"`
	DayOfWeek   string  `json:"dayOfWeek" validate:"required,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY SUNDAY"`
	StartTime   string  `json:"startTime" validate:"required,hhmm"`
	EndTime     string  `json:"endTime" validate:"required,hhmm"`
	StartDate   string  `json:"startDate" validate:"required,isodate"`
	EndDate     string  `json:"endDate" validate:"required,isodate"`
	MaxCapacity int     `json:"maxCapacity" validate:"required,min=1"`
	Price       float64 `json:"price" validate:"min=0"`
}

// ScheduleActiveRequest toggles a schedule.
type ScheduleActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// CreateBookingRequest payload for POST /transport/bookings.
type CreateBookingRequest struct {
	ScheduleID  string `json:"scheduleId" validate:"required,uuid"`
	BookingDate string `json:"bookingDate" validate:"required,isodate"`
}

// VehicleResponse is a fleet vehicle.
type VehicleResponse struct {
	ID        string               `json:"id"`
	Type      string               `json:"type"`
	Number    string               `json:"number"`
	Capacity  int                  `json:"capacity"`
	Status    domain.VehicleStatus `json:"status"`
	DriverID  *string              `json:"driverId"`
	CreatedAt time.Time            `json:"createdAt"`
}

// NewVehicleResponse maps a vehicle.
func NewVehicleResponse(v *domain.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:        v.ID,
		Type:      v.Type,
		Number:    v.Number,
		Capacity:  v.Capacity,
		Status:    v.Status,
		DriverID:  v.DriverID,
		CreatedAt: v.CreatedAt,
	}
}

// NewVehicleList maps a slice of vehicles.
func NewVehicleList(vehicles []domain.Vehicle) []VehicleResponse {
	out := make([]VehicleResponse, 0, len(vehicles))
	for i := range vehicles {
		out = append(out, NewVehicleResponse(&vehicles[i]))
	}
	return out
}

// ScheduleResponse is a weekly timeslot. AvailableSeats is only set in route listings.
type ScheduleResponse struct {
	ID             string  `json:"id"`
	RouteID        string  `json:"routeId"`
	VehicleID      string  `json:"vehicleId"`
	DayOfWeek      string  `json:"dayOfWeek"`
	StartTime      string  `json:"startTime"`
	EndTime        string  `json:"endTime"`
	StartDate      string  `json:"startDate"`
	EndDate        string  `json:"endDate"`
	MaxCapacity    int     `json:"maxCapacity"`
	Price          float64 `json:"price"`
	Active         bool    `json:"active"`
	ConfirmedCount int     `json:"confirmedCount"`
	AvailableSeats int     `json:"availableSeats"`
}

// NewScheduleResponse maps a schedule.
func NewScheduleResponse(s *domain.Schedule) ScheduleResponse {
	available := s.MaxCapacity - s.ConfirmedCount
	if available < 0 {
		available = 0
	}
	return ScheduleResponse{
		ID:             s.ID,
		RouteID:        s.RouteID,
		VehicleID:      s.VehicleID,
		DayOfWeek:      domain.WeekdayName(s.Day),
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
		StartDate:      s.StartDate.Format(domain.DateLayout),
		EndDate:        s.EndDate.Format(domain.DateLayout),
		MaxCapacity:    s.MaxCapacity,
		Price:          s.Price,
		Active:         s.Active,
		ConfirmedCount: s.ConfirmedCount,
		AvailableSeats: available,
	}
}

// RouteResponse is a route with its active schedules.
type RouteResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	StartPoint  string             `json:"startPoint"`
	EndPoint    string             `json:"endPoint"`
	Stops       []string           `json:"stops"`
	Schedules   []ScheduleResponse `json:"schedules"`
}

// NewRouteResponse maps a route.
func NewRouteResponse(r *domain.Route) RouteResponse {
	resp := RouteResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		StartPoint:  r.StartPoint,
		EndPoint:    r.EndPoint,
		Stops:       r.Stops,
		Schedules:   make([]ScheduleResponse, 0, len(r.Schedules)),
	}
	if resp.Stops == nil {
		resp.Stops = []string{}
	}
	for i := range r.Schedules {
		resp.Schedules = append(resp.Schedules, NewScheduleResponse(&r.Schedules[i]))
	}
	return resp
}

// BookingResponse is a seat reservation.
type BookingResponse struct {
	ID          string               `json:"id"`
	UserID      string               `json:"userId"`
	ScheduleID  string               `json:"scheduleId"`
	VehicleID   string               `json:"vehicleId"`
	BookingDate string               `json:"bookingDate"`
	Status      domain.BookingStatus `json:"status"`
	CancelledAt *time.Time           `json:"cancelledAt"`
	CreatedAt   time.Time            `json:"createdAt"`
}

// NewBookingResponse maps a booking.
func NewBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:          b.ID,
		UserID:      b.UserID,
		ScheduleID:  b.ScheduleID,
		VehicleID:   b.VehicleID,
		BookingDate: b.BookingDate.Format(domain.DateLayout),
		Status:      b.Status,
		CancelledAt: b.CancelledAt,
		CreatedAt:   b.CreatedAt,
	}
}

// NewBookingList maps a slice of bookings.
func NewBookingList(bookings []domain.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, NewBookingResponse(&bookings[i]))
	}
	return out
}
