package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hostelsync/hostelsync-api/internal/api/dto"
	"github.com/hostelsync/hostelsync-api/internal/domain"
	"github.com/hostelsync/hostelsync-api/internal/service"
)

// TransportHandler serves the public timetable, student bookings and fleet management.
type TransportHandler struct {
	transport *service.TransportService
}

// NewTransportHandler constructs handler.
func NewTransportHandler(transport *service.TransportService) *TransportHandler {
	return &TransportHandler{transport: transport}
}

// AvailableVehicles GET /transport/vehicles.
func (h *TransportHandler) AvailableVehicles(c *fiber.Ctx) error {
	vehicles, err := h.transport.AvailableVehicles(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, dto.NewVehicleList(vehicles))
}

// Routes GET /transport/routes.
func (h *TransportHandler) Routes(c *fiber.Ctx) error {
	routes, err := h.transport.Routes(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.RouteResponse, 0, len(routes))
	for i := range routes {
		out = append(out, dto.NewRouteResponse(&routes[i]))
	}
	return respond(c, out)
}

// Book POST /transport/bookings.
func (h *TransportHandler) Book(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateBookingRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	booking, err := h.transport.Book(c.UserContext(), actor, req.ScheduleID, mustDate(req.BookingDate))
	if err != nil {
		return err
	}
	return created(c, dto.NewBookingResponse(booking))
}

// Cancel DELETE /transport/bookings/:id.
func (h *TransportHandler) Cancel(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	booking, err := h.transport.Cancel(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return respond(c, dto.NewBookingResponse(booking))
}

// Bookings GET /transport/bookings, scoped to the caller.
func (h *TransportHandler) Bookings(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	filter, err := bookingFilter(c)
	if err != nil {
		return err
	}
	bookings, err := h.transport.Bookings(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	return respond(c, dto.NewBookingList(bookings))
}

// AllBookings GET /transport/admin/bookings.
func (h *TransportHandler) AllBookings(c *fiber.Ctx) error {
	filter, err := bookingFilter(c)
	if err != nil {
		return err
	}
	bookings, err := h.transport.AllBookings(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return respond(c, dto.NewBookingList(bookings))
}

// Vehicles GET /transport/admin/vehicles.
func (h *TransportHandler) Vehicles(c *fiber.Ctx) error {
	raw, err := queryEnum(c, "status", "AVAILABLE", "MAINTENANCE", "RETIRED")
	if err != nil {
		return err
	}
	var status *domain.VehicleStatus
	if raw != nil {
		s := domain.VehicleStatus(*raw)
		status = &s
	}
	vehicles, err := h.transport.Vehicles(c.UserContext(), status)
	if err != nil {
		return err
	}
	return respond(c, dto.NewVehicleList(vehicles))
}

// CreateVehicle POST /transport/admin/vehicles.
func (h *TransportHandler) CreateVehicle(c *fiber.Ctx) error {
	var req dto.CreateVehicleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	vehicle, err := h.transport.CreateVehicle(c.UserContext(), service.VehicleInput{
		Type:     req.Type,
		Number:   req.Number,
		Capacity: req.Capacity,
		DriverID: req.DriverID,
	})
	if err != nil {
		return err
	}
	return created(c, dto.NewVehicleResponse(vehicle))
}

// DeleteVehicle DELETE /transport/admin/vehicles/:id.
func (h *TransportHandler) DeleteVehicle(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.transport.DeleteVehicle(c.UserContext(), id); err != nil {
		return err
	}
	return respond(c, fiber.Map{"message": "vehicle deleted"})
}

// CreateRoute POST /transport/admin/routes.
func (h *TransportHandler) CreateRoute(c *fiber.Ctx) error {
	var req dto.CreateRouteRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	route, err := h.transport.CreateRoute(c.UserContext(), service.RouteInput{
		Name:        req.Name,
		Description: req.Description,
		StartPoint:  req.StartPoint,
		EndPoint:    req.EndPoint,
		Stops:       req.Stops,
	})
	if err != nil {
		return err
	}
	return created(c, dto.NewRouteResponse(route))
}

// DeleteRoute DELETE /transport/admin/routes/:id.
func (h *TransportHandler) DeleteRoute(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.transport.DeleteRoute(c.UserContext(), id); err != nil {
		return err
	}
	return respond(c, fiber.Map{"message": "route deleted"})
}

// CreateSchedule POST /transport/admin/schedules.
func (h *TransportHandler) CreateSchedule(c *fiber.Ctx) error {
	var req dto.CreateScheduleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	day, _ := domain.ParseWeekday(req.DayOfWeek)
	schedule, err := h.transport.CreateSchedule(c.UserContext(), service.ScheduleInput{
		RouteID:     req.RouteID,
		VehicleID:   req.VehicleID,
		Day:         day,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		StartDate:   mustDate(req.StartDate),
		EndDate:     mustDate(req.EndDate),
		MaxCapacity: req.MaxCapacity,
		Price:       req.Price,
	})
	if err != nil {
		return err
	}
	return created(c, dto.NewScheduleResponse(schedule))
}

// SetScheduleActive PATCH /transport/admin/schedules/:id/active.
func (h *TransportHandler) SetScheduleActive(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ScheduleActiveRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	schedule, err := h.transport.SetScheduleActive(c.UserContext(), id, *req.Active)
	if err != nil {
		return err
	}
	return respond(c, dto.NewScheduleResponse(schedule))
}

func bookingFilter(c *fiber.Ctx) (service.BookingListFilter, error) {
	filter := service.BookingListFilter{
		Limit:  queryInt(c, "limit", 0),
		Offset: queryInt(c, "offset", 0),
	}
	date, err := queryDate(c, "date")
	if err != nil {
		return filter, err
	}
	filter.Date = date
	scheduleID, err := queryUUID(c, "scheduleId")
	if err != nil {
		return filter, err
	}
	filter.ScheduleID = scheduleID
	status, err := queryEnum(c, "status", "CONFIRMED", "CANCELLED")
	if err != nil {
		return filter, err
	}
	if status != nil {
		s := domain.BookingStatus(*status)
		filter.Status = &s
	}
	return filter, nil
}
