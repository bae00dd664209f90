package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hostelsync/hostelsync-api/internal/domain"
	"github.com/hostelsync/hostelsync-api/internal/events"
	"github.com/hostelsync/hostelsync-api/internal/repository"
	apperrors "github.com/hostelsync/hostelsync-api/pkg/util"
)

// VehicleTypes lists the accepted vehicle kinds.
var VehicleTypes = []string{"Bus", "Van", "Car", "Minibus"}

// TransportService manages the fleet, routes, schedules and seat bookings.
type TransportService struct {
	transport  repository.TransportRepository
	bookings   repository.BookingRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// TransportDependencies bundles repositories for the transport service.
type TransportDependencies struct {
	TransportRepo repository.TransportRepository
	BookingRepo   repository.BookingRepository
	UserRepo      repository.UserRepository
	Dispatcher    events.Dispatcher
	Clock         func() time.Time
}

// VehicleInput creates a vehicle.
type VehicleInput struct {
	Type     string
	Number   string
	Capacity int
	DriverID *string
}

// RouteInput creates a route.
type RouteInput struct {
	Name        string
	Description string
	StartPoint  string
	EndPoint    string
	Stops       []string
}

// ScheduleInput creates a schedule.
type ScheduleInput struct {
	RouteID     string
	VehicleID   string
	Day         time.Weekday
	StartTime   string
	EndTime     string
	StartDate   time.Time
	EndDate     time.Time
	MaxCapacity int
	Price       float64
}

// BookingListFilter narrows booking listings.
type BookingListFilter struct {
	ScheduleID *string
	Date       *time.Time
	Status     *domain.BookingStatus
	Limit      int
	Offset     int
}

// NewTransportService builds the service.
func NewTransportService(deps TransportDependencies) *TransportService {
	return &TransportService{
		transport:  deps.TransportRepo,
		bookings:   deps.BookingRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		now:        clockOrDefault(deps.Clock),
	}
}

// AvailableVehicles lists vehicles in service.
func (s *TransportService) AvailableVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	status := domain.VehicleAvailable
	return s.transport.ListVehicles(ctx, &status)
}

// Vehicles lists the whole fleet, optionally by status.
func (s *TransportService) Vehicles(ctx context.Context, status *domain.VehicleStatus) ([]domain.Vehicle, error) {
	return s.transport.ListVehicles(ctx, status)
}

// CreateVehicle adds a vehicle to the fleet.
func (s *TransportService) CreateVehicle(ctx context.Context, in VehicleInput) (*domain.Vehicle, error) {
	if !validVehicleType(in.Type) {
		return nil, fieldError("type", "type must be one of "+strings.Join(VehicleTypes, ", "))
	}
	if in.DriverID != nil {
		driver, err := s.users.GetByID(ctx, *in.DriverID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fieldError("driverId", "driver not found")
			}
			return nil, err
		}
		if driver.Role != domain.RoleDriver {
			return nil, fieldError("driverId", "driver must have the DRIVER role")
		}
	}
	vehicle := &domain.Vehicle{
		Type:     in.Type,
		Number:   strings.ToUpper(strings.TrimSpace(in.Number)),
		Capacity: in.Capacity,
		Status:   domain.VehicleAvailable,
		DriverID: in.DriverID,
	}
	if err := s.transport.CreateVehicle(ctx, vehicle); err != nil {
		return nil, conflictOr(err, "vehicle number already exists")
	}
	return vehicle, nil
}

// DeleteVehicle removes a vehicle that no active schedule uses.
func (s *TransportService) DeleteVehicle(ctx context.Context, id string) error {
	if _, err := s.transport.GetVehicle(ctx, id); err != nil {
		return notFoundOr(err, "vehicle")
	}
	count, err := s.transport.CountActiveSchedulesForVehicle(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.NewConflict("vehicle has active schedules", map[string]any{"activeSchedules": count})
	}
	return notFoundOr(s.transport.DeleteVehicle(ctx, id), "vehicle")
}

// Routes lists routes with their active schedules.
func (s *TransportService) Routes(ctx context.Context) ([]domain.Route, error) {
	return s.transport.ListRoutes(ctx)
}

// CreateRoute adds a route.
func (s *TransportService) CreateRoute(ctx context.Context, in RouteInput) (*domain.Route, error) {
	route := &domain.Route{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		StartPoint:  strings.TrimSpace(in.StartPoint),
		EndPoint:    strings.TrimSpace(in.EndPoint),
		Stops:       in.Stops,
	}
	if err := s.transport.CreateRoute(ctx, route); err != nil {
		return nil, err
	}
	return route, nil
}

// DeleteRoute removes a route without schedules.
func (s *TransportService) DeleteRoute(ctx context.Context, id string) error {
	if _, err := s.transport.GetRoute(ctx, id); err != nil {
		return notFoundOr(err, "route")
	}
	count, err := s.transport.CountSchedulesForRoute(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.NewConflict("route has schedules", map[string]any{"schedules": count})
	}
	return notFoundOr(s.transport.DeleteRoute(ctx, id), "route")
}

// CreateSchedule adds a weekly timeslot on a route.
func (s *TransportService) CreateSchedule(ctx context.Context, in ScheduleInput) (*domain.Schedule, error) {
	if in.EndTime <= in.StartTime {
		return nil, fieldError("endTime", "endTime must be after startTime")
	}
	start, end := domain.DateOf(in.StartDate), domain.DateOf(in.EndDate)
	if end.Before(start) {
		return nil, fieldError("endDate", "endDate cannot be before startDate")
	}
	if _, err := s.transport.GetRoute(ctx, in.RouteID); err != nil {
		return nil, notFoundOr(err, "route")
	}
	vehicle, err := s.transport.GetVehicle(ctx, in.VehicleID)
	if err != nil {
		return nil, notFoundOr(err, "vehicle")
	}
	if in.MaxCapacity > vehicle.Capacity {
		return nil, fieldError("maxCapacity", fmt.Sprintf("maxCapacity cannot exceed vehicle capacity %d", vehicle.Capacity))
	}

	schedule := &domain.Schedule{
		RouteID:     in.RouteID,
		VehicleID:   in.VehicleID,
		Day:         in.Day,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		StartDate:   start,
		EndDate:     end,
		MaxCapacity: in.MaxCapacity,
		Price:       in.Price,
		Active:      true,
	}
	if err := s.transport.CreateSchedule(ctx, schedule); err != nil {
		return nil, conflictOr(err, "a schedule already exists for this route, vehicle, day and start time")
	}
	return schedule, nil
}

// SetScheduleActive toggles whether a schedule takes bookings.
func (s *TransportService) SetScheduleActive(ctx context.Context, id string, active bool) (*domain.Schedule, error) {
	schedule, err := s.transport.SetScheduleActive(ctx, id, active)
	if err != nil {
		return nil, notFoundOr(err, "schedule")
	}
	return schedule, nil
}

// Book reserves a seat. The schedule row is locked for the duration of the check so
// concurrent bookings for the same schedule serialize and capacity is never exceeded.
func (s *TransportService) Book(ctx context.Context, actor Actor, scheduleID string, date time.Time) (*domain.Booking, error) {
	date = domain.DateOf(date)
	if date.Before(domain.DateOf(s.now())) {
		return nil, fieldError("bookingDate", "bookingDate cannot be in the past")
	}

	var booking *domain.Booking
	err := s.bookings.WithTx(ctx, func(store repository.BookingStore) error {
		schedule, err := store.LockSchedule(ctx, scheduleID)
		if err != nil {
			return notFoundOr(err, "schedule")
		}
		if !schedule.Active {
			return fieldError("scheduleId", "schedule is not active")
		}
		if date.Before(schedule.StartDate) || date.After(schedule.EndDate) {
			return fieldError("bookingDate", "bookingDate is outside the schedule's date range")
		}
		if date.Weekday() != schedule.Day {
			return fieldError("bookingDate", fmt.Sprintf("schedule only runs on %s", domain.WeekdayName(schedule.Day)))
		}

		exists, err := store.HasConfirmed(ctx, actor.ID, scheduleID, date)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.NewConflict("you have already booked this slot", nil)
		}

		count, err := store.CountConfirmed(ctx, scheduleID, date)
		if err != nil {
			return err
		}
		if count >= schedule.MaxCapacity {
			return apperrors.NewConflict("no available seats", map[string]any{"maxCapacity": schedule.MaxCapacity})
		}

		booking = &domain.Booking{
			UserID:      actor.ID,
			ScheduleID:  scheduleID,
			VehicleID:   schedule.VehicleID,
			BookingDate: date,
			Status:      domain.BookingConfirmed,
		}
		return conflictOr(store.Create(ctx, booking), "you have already booked this slot")
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.dispatcher, events.NewEvent(events.EventBookingCreated, booking.ID, actor.eventActor(), events.BookingPayload{
		ScheduleID:  booking.ScheduleID,
		BookingDate: booking.BookingDate.Format(domain.DateLayout),
	}))
	return booking, nil
}

// Cancel cancels the actor's own future booking.
func (s *TransportService) Cancel(ctx context.Context, actor Actor, id string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "booking")
	}
	if booking.UserID != actor.ID {
		return nil, apperrors.NewForbidden("you can only cancel your own bookings")
	}
	if booking.Status == domain.BookingCancelled {
		return nil, apperrors.NewConflict("booking already cancelled", nil)
	}
	today := domain.DateOf(s.now())
	if !domain.DateOf(booking.BookingDate).After(today) {
		return nil, apperrors.NewValidationError("cannot cancel past bookings", nil)
	}

	now := s.now().UTC()
	cancelled, err := s.bookings.Cancel(ctx, id, now)
	if err != nil {
		return nil, err
	}
	if !cancelled {
		return nil, apperrors.NewConflict("booking already cancelled", nil)
	}
	booking.Status = domain.BookingCancelled
	booking.CancelledAt = &now

	publish(ctx, s.dispatcher, events.NewEvent(events.EventBookingCancelled, booking.ID, actor.eventActor(), events.BookingPayload{
		ScheduleID:  booking.ScheduleID,
		BookingDate: booking.BookingDate.Format(domain.DateLayout),
	}))
	return booking, nil
}

// Bookings lists the bookings the actor may see.
func (s *TransportService) Bookings(ctx context.Context, actor Actor, filter BookingListFilter) ([]domain.Booking, error) {
	repoFilter := filter.repositoryFilter()
	if scope := ScopeFor(actor, ""); scope.Kind != domain.ScopeAll {
		repoFilter.UserID = &scope.UserID
	}
	return s.bookings.List(ctx, repoFilter)
}

// AllBookings lists every booking. Callers gate it to fleet managers.
func (s *TransportService) AllBookings(ctx context.Context, filter BookingListFilter) ([]domain.Booking, error) {
	return s.bookings.List(ctx, filter.repositoryFilter())
}

func (f BookingListFilter) repositoryFilter() repository.BookingFilter {
	return repository.BookingFilter{
		ScheduleID: f.ScheduleID,
		Date:       f.Date,
		Status:     f.Status,
		Limit:      f.Limit,
		Offset:     f.Offset,
	}
}

func validVehicleType(t string) bool {
	for _, known := range VehicleTypes {
		if t == known {
			return true
		}
	}
	return false
}
