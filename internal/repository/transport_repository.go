package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hostelsync/hostelsync-api/internal/domain"
)

// TransportRepository persists vehicles, routes and schedules.
type TransportRepository interface {
	CreateVehicle(ctx context.Context, v *domain.Vehicle) error
	GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error)
	ListVehicles(ctx context.Context, status *domain.VehicleStatus) ([]domain.Vehicle, error)
	DeleteVehicle(ctx context.Context, id string) error
	CountActiveSchedulesForVehicle(ctx context.Context, vehicleID string) (int64, error)

	CreateRoute(ctx context.Context, route *domain.Route) error
	GetRoute(ctx context.Context, id string) (*domain.Route, error)
	// ListRoutes returns every route with its active schedules and their upcoming confirmed counts.
	ListRoutes(ctx context.Context) ([]domain.Route, error)
	DeleteRoute(ctx context.Context, id string) error
	CountSchedulesForRoute(ctx context.Context, routeID string) (int64, error)

	CreateSchedule(ctx context.Context, s *domain.Schedule) error
	GetSchedule(ctx context.Context, id string) (*domain.Schedule, error)
	SetScheduleActive(ctx context.Context, id string, active bool) (*domain.Schedule, error)
}

type transportRepository struct {
	db querier
}

// NewTransportRepository instantiates repository.
func NewTransportRepository(pool *pgxpool.Pool) TransportRepository {
	return &transportRepository{db: pool}
}

const (
	vehicleColumns  = `id, type, number, capacity, status, driver_id, created_at, updated_at`
	routeColumns    = `id, name, description, start_point, end_point, stops, created_at, updated_at`
	scheduleColumns = `id, route_id, vehicle_id, day_of_week, start_time, end_time, start_date, end_date,
       max_capacity, price::float8, active, created_at, updated_at`
)

func (r *transportRepository) CreateVehicle(ctx context.Context, v *domain.Vehicle) error {
	const query = `
        INSERT INTO vehicles (type, number, capacity, status, driver_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, v.Type, v.Number, v.Capacity, v.Status, v.DriverID).
		Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	return mapWriteError(err)
}

func (r *transportRepository) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	return scanVehicle(r.db.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id=$1`, id))
}

func (r *transportRepository) ListVehicles(ctx context.Context, status *domain.VehicleStatus) ([]domain.Vehicle, error) {
	var where whereBuilder
	if status != nil {
		where.add("status = %s", *status)
	}
	rows, err := r.db.Query(ctx, `SELECT `+vehicleColumns+` FROM vehicles`+where.clause()+` ORDER BY number`, where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *v)
	}
	return result, rows.Err()
}

func (r *transportRepository) DeleteVehicle(ctx context.Context, id string) error {
	return r.deleteByID(ctx, `DELETE FROM vehicles WHERE id=$1`, id)
}

func (r *transportRepository) CountActiveSchedulesForVehicle(ctx context.Context, vehicleID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM schedules WHERE vehicle_id=$1 AND active`, vehicleID).Scan(&count)
	return count, err
}

func (r *transportRepository) CreateRoute(ctx context.Context, route *domain.Route) error {
	const query = `
        INSERT INTO routes (name, description, start_point, end_point, stops)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	stops := route.Stops
	if stops == nil {
		stops = []string{}
	}
	return r.db.QueryRow(ctx, query, route.Name, route.Description, route.StartPoint, route.EndPoint, stops).
		Scan(&route.ID, &route.CreatedAt, &route.UpdatedAt)
}

func (r *transportRepository) GetRoute(ctx context.Context, id string) (*domain.Route, error) {
	return scanRoute(r.db.QueryRow(ctx, `SELECT `+routeColumns+` FROM routes WHERE id=$1`, id))
}

func (r *transportRepository) ListRoutes(ctx context.Context) ([]domain.Route, error) {
	rows, err := r.db.Query(ctx, `SELECT `+routeColumns+` FROM routes ORDER BY name`)
	if err != nil {
		return nil, err
	}
	var routes []domain.Route
	index := map[string]int{}
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[route.ID] = len(routes)
		routes = append(routes, *route)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const scheduleQuery = `
        SELECT s.id, s.route_id, s.vehicle_id, s.day_of_week, s.start_time, s.end_time, s.start_date, s.end_date,
               s.max_capacity, s.price::float8, s.active, s.created_at, s.updated_at,
               (SELECT COUNT(*) FROM transport_bookings b
                 WHERE b.schedule_id = s.id AND b.status = 'CONFIRMED' AND b.booking_date >= CURRENT_DATE)
        FROM schedules s
        WHERE s.active
        ORDER BY s.day_of_week, s.start_time`
	srows, err := r.db.Query(ctx, scheduleQuery)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var s domain.Schedule
		if err := srows.Scan(
			&s.ID, &s.RouteID, &s.VehicleID, &s.Day, &s.StartTime, &s.EndTime, &s.StartDate, &s.EndDate,
			&s.MaxCapacity, &s.Price, &s.Active, &s.CreatedAt, &s.UpdatedAt, &s.ConfirmedCount,
		); err != nil {
			return nil, err
		}
		if i, ok := index[s.RouteID]; ok {
			routes[i].Schedules = append(routes[i].Schedules, s)
		}
	}
	return routes, srows.Err()
}

func (r *transportRepository) DeleteRoute(ctx context.Context, id string) error {
	return r.deleteByID(ctx, `DELETE FROM routes WHERE id=$1`, id)
}

func (r *transportRepository) CountSchedulesForRoute(ctx context.Context, routeID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM schedules WHERE route_id=$1`, routeID).Scan(&count)
	return count, err
}

func (r *transportRepository) CreateSchedule(ctx context.Context, s *domain.Schedule) error {
	const query = `
        INSERT INTO schedules (route_id, vehicle_id, day_of_week, start_time, end_time, start_date, end_date,
                               max_capacity, price, active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		s.RouteID,
		s.VehicleID,
		int(s.Day),
		s.StartTime,
		s.EndTime,
		s.StartDate,
		s.EndDate,
		s.MaxCapacity,
		s.Price,
		s.Active,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return mapWriteError(err)
}

func (r *transportRepository) GetSchedule(ctx context.Context, id string) (*domain.Schedule, error) {
	return scanSchedule(r.db.QueryRow(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE id=$1`, id))
}

func (r *transportRepository) SetScheduleActive(ctx context.Context, id string, active bool) (*domain.Schedule, error) {
	const query = `UPDATE schedules SET active=$1, updated_at=NOW() WHERE id=$2 RETURNING ` + scheduleColumns
	return scanSchedule(r.db.QueryRow(ctx, query, active, id))
}

func (r *transportRepository) deleteByID(ctx context.Context, query, id string) error {
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanVehicle(row pgx.Row) (*domain.Vehicle, error) {
	var v domain.Vehicle
	if err := row.Scan(&v.ID, &v.Type, &v.Number, &v.Capacity, &v.Status, &v.DriverID, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

func scanRoute(row pgx.Row) (*domain.Route, error) {
	var route domain.Route
	if err := row.Scan(
		&route.ID, &route.Name, &route.Description, &route.StartPoint, &route.EndPoint, &route.Stops,
		&route.CreatedAt, &route.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &route, nil
}

func scanSchedule(row pgx.Row) (*domain.Schedule, error) {
	var s domain.Schedule
	if err := row.Scan(
		&s.ID, &s.RouteID, &s.VehicleID, &s.Day, &s.StartTime, &s.EndTime, &s.StartDate, &s.EndDate,
		&s.MaxCapacity, &s.Price, &s.Active, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}
