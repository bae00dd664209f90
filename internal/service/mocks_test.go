package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hostelsync/hostelsync-api/internal/domain"
	"github.com/hostelsync/hostelsync-api/internal/repository"
)

var fixedNow = time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC) // Wednesday

func fixedClock() time.Time { return fixedNow }

// users

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	deps  map[string]domain.UserDependencies
}

func newMemUserRepo(users ...*domain.User) *memUserRepo {
	r := &memUserRepo{users: map[string]*domain.User{}, deps: map[string]domain.UserDependencies{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt, user.UpdatedAt = fixedNow, fixedNow
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []domain.User
	term := strings.ToLower(filter.Search)
	for _, u := range r.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(u.Name+" "+u.Email), term) {
			continue
		}
		matched = append(matched, *u)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Email < matched[j].Email })
	total := len(matched)
	start := filter.Offset
	if start > total {
		start = total
	}
	end := total
	if filter.Limit > 0 && start+filter.Limit < total {
		end = start + filter.Limit
	}
	return matched[start:end], total, nil
}

func (r *memUserRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *memUserRepo) Dependencies(_ context.Context, id string) (domain.UserDependencies, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deps[id], nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func testUser(id string, role domain.Role) *domain.User {
	return &domain.User{ID: id, Name: id, Email: id + "@hostel.test", Role: role, Active: true}
}

// issues

type memIssueRepo struct {
	mu       sync.Mutex
	issues   map[string]*domain.Issue
	comments []domain.IssueComment
	seq      int
}

func newMemIssueRepo() *memIssueRepo {
	return &memIssueRepo{issues: map[string]*domain.Issue{}}
}

func (r *memIssueRepo) Create(_ context.Context, issue *domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	issue.ID = uuid.NewString()
	issue.CreatedAt = fixedNow.Add(time.Duration(r.seq) * time.Second)
	cp := *issue
	r.issues[issue.ID] = &cp
	return nil
}

func (r *memIssueRepo) Update(_ context.Context, issue *domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.issues[issue.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *issue
	r.issues[issue.ID] = &cp
	return nil
}

func (r *memIssueRepo) GetByID(_ context.Context, category domain.IssueCategory, id string) (*domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue, ok := r.issues[id]
	if !ok || issue.Category != category {
		return nil, pgx.ErrNoRows
	}
	cp := *issue
	return &cp, nil
}

func (r *memIssueRepo) List(_ context.Context, filter repository.IssueFilter) ([]domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Issue
	for _, issue := range r.issues {
		if issue.Category != filter.Category {
			continue
		}
		if !filter.Scope.Allows(issue.ReporterID, issue.AssigneeID, issue.Status == domain.IssueStatusPending) {
			continue
		}
		if filter.Status != nil && issue.Status != *filter.Status {
			continue
		}
		out = append(out, *issue)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memIssueRepo) AddComment(_ context.Context, c *domain.IssueComment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = uuid.NewString()
	c.CreatedAt = fixedNow
	r.comments = append(r.comments, *c)
	return nil
}

func (r *memIssueRepo) ListComments(_ context.Context, issueID string) ([]domain.IssueComment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.IssueComment
	for _, c := range r.comments {
		if c.IssueID == issueID {
			out = append(out, c)
		}
	}
	return out, nil
}

// cleaning

type memCleaningRepo struct {
	mu       sync.Mutex
	requests map[string]*domain.CleaningRequest
}

func newMemCleaningRepo() *memCleaningRepo {
	return &memCleaningRepo{requests: map[string]*domain.CleaningRequest{}}
}

func (r *memCleaningRepo) Create(_ context.Context, req *domain.CleaningRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req.ID = uuid.NewString()
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *memCleaningRepo) Update(_ context.Context, req *domain.CleaningRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[req.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *memCleaningRepo) GetByID(_ context.Context, id string) (*domain.CleaningRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *req
	return &cp, nil
}

func (r *memCleaningRepo) List(_ context.Context, filter repository.CleaningFilter) ([]domain.CleaningRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.CleaningRequest
	for _, req := range r.requests {
		if !filter.Scope.Allows(req.StudentID, req.CleanerID, req.Status == domain.CleaningStatusPending) {
			continue
		}
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		out = append(out, *req)
	}
	return out, nil
}

func (r *memCleaningRepo) SubmitFeedback(_ context.Context, id, studentID string, rating int, feedback *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.StudentID != studentID || req.Status != domain.CleaningStatusCompleted || req.Rating != nil {
		return false, nil
	}
	req.Rating = &rating
	req.Feedback = feedback
	return true, nil
}

// menus

type memMenuRepo struct {
	txMu     sync.Mutex
	mu       sync.Mutex
	menus    map[string]*domain.MessMenu
	feedback map[string]int64
	failOn   func(*domain.MessMenu) error
}

func newMemMenuRepo() *memMenuRepo {
	return &memMenuRepo{menus: map[string]*domain.MessMenu{}, feedback: map[string]int64{}}
}

func (r *memMenuRepo) WithTx(ctx context.Context, fn func(repository.MenuStore) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.Lock()
	snapshot := make(map[string]*domain.MessMenu, len(r.menus))
	for k, v := range r.menus {
		cp := *v
		snapshot[k] = &cp
	}
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.menus = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *memMenuRepo) Upsert(_ context.Context, menu *domain.MessMenu) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn != nil {
		if err := r.failOn(menu); err != nil {
			return err
		}
	}
	for _, m := range r.menus {
		if m.Date.Equal(menu.Date) && m.MealType == menu.MealType {
			menu.ID = m.ID
			cp := *menu
			r.menus[m.ID] = &cp
			return nil
		}
	}
	menu.ID = uuid.NewString()
	cp := *menu
	r.menus[menu.ID] = &cp
	return nil
}

func (r *memMenuRepo) Update(_ context.Context, menu *domain.MessMenu) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.menus[menu.ID]; !ok {
		return pgx.ErrNoRows
	}
	for _, m := range r.menus {
		if m.ID != menu.ID && m.Date.Equal(menu.Date) && m.MealType == menu.MealType {
			return repository.ErrDuplicate
		}
	}
	cp := *menu
	r.menus[menu.ID] = &cp
	return nil
}

func (r *memMenuRepo) GetByID(_ context.Context, id string) (*domain.MessMenu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.menus[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *m
	return &cp, nil
}

func (r *memMenuRepo) GetByDate(_ context.Context, date time.Time, mealType domain.MealType) (*domain.MessMenu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.menus {
		if m.Date.Equal(date) && m.MealType == mealType {
			cp := *m
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memMenuRepo) PromoteSeriesMember(_ context.Context, baseID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var members []domain.MessMenu
	for _, m := range r.menus {
		if m.BaseMenuID != nil && *m.BaseMenuID == baseID {
			members = append(members, *m)
		}
	}
	if len(members) == 0 {
		return "", nil
	}
	sortMenus(members)
	next := members[0].ID
	for _, m := range members {
		if m.ID == next {
			r.menus[m.ID].BaseMenuID = nil
			continue
		}
		id := next
		r.menus[m.ID].BaseMenuID = &id
	}
	return next, nil
}

func (r *memMenuRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.menus[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.menus, id)
	return nil
}

func (r *memMenuRepo) ListRange(_ context.Context, from, to time.Time) ([]domain.MessMenu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.MessMenu
	for _, m := range r.menus {
		if !m.Date.Before(from) && m.Date.Before(to) {
			out = append(out, *m)
		}
	}
	sortMenus(out)
	return out, nil
}

func (r *memMenuRepo) DateBounds(_ context.Context) (*time.Time, *time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first, last *time.Time
	for _, m := range r.menus {
		d := m.Date
		if first == nil || d.Before(*first) {
			first = &d
		}
		if last == nil || d.After(*last) {
			last = &d
		}
	}
	return first, last, nil
}

func (r *memMenuRepo) ListSeries(_ context.Context, baseID string) ([]domain.MessMenu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.MessMenu
	for _, m := range r.menus {
		if m.ID == baseID || (m.BaseMenuID != nil && *m.BaseMenuID == baseID) {
			out = append(out, *m)
		}
	}
	sortMenus(out)
	return out, nil
}

func (r *memMenuRepo) DeleteSeries(_ context.Context, baseID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, m := range r.menus {
		if id == baseID || (m.BaseMenuID != nil && *m.BaseMenuID == baseID) {
			delete(r.menus, id)
			n++
		}
	}
	return n, nil
}

func (r *memMenuRepo) CountFeedback(_ context.Context, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		n += r.feedback[id]
	}
	return n, nil
}

func (r *memMenuRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.menus)
}

func sortMenus(menus []domain.MessMenu) {
	sort.Slice(menus, func(i, j int) bool {
		if !menus[i].Date.Equal(menus[j].Date) {
			return menus[i].Date.Before(menus[j].Date)
		}
		return menus[i].MealType < menus[j].MealType
	})
}

type memFeedbackRepo struct {
	mu    sync.Mutex
	items []domain.MealFeedback
}

func (r *memFeedbackRepo) Create(_ context.Context, fb *domain.MealFeedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.UserID == fb.UserID && existing.MenuID == fb.MenuID {
			return repository.ErrDuplicate
		}
	}
	fb.ID = uuid.NewString()
	r.items = append(r.items, *fb)
	return nil
}

func (r *memFeedbackRepo) List(_ context.Context, filter repository.MealFeedbackFilter) ([]domain.MealFeedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.MealFeedback
	for _, fb := range r.items {
		if filter.UserID != nil && fb.UserID != *filter.UserID {
			continue
		}
		if filter.MenuID != nil && fb.MenuID != *filter.MenuID {
			continue
		}
		out = append(out, fb)
	}
	return out, nil
}

// transport

type memTransportRepo struct {
	mu        sync.Mutex
	vehicles  map[string]*domain.Vehicle
	routes    map[string]*domain.Route
	schedules map[string]*domain.Schedule
}

func newMemTransportRepo() *memTransportRepo {
	return &memTransportRepo{
		vehicles:  map[string]*domain.Vehicle{},
		routes:    map[string]*domain.Route{},
		schedules: map[string]*domain.Schedule{},
	}
}

func (r *memTransportRepo) CreateVehicle(_ context.Context, v *domain.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.vehicles {
		if existing.Number == v.Number {
			return repository.ErrDuplicate
		}
	}
	v.ID = uuid.NewString()
	cp := *v
	r.vehicles[v.ID] = &cp
	return nil
}

func (r *memTransportRepo) GetVehicle(_ context.Context, id string) (*domain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *v
	return &cp, nil
}

func (r *memTransportRepo) ListVehicles(_ context.Context, status *domain.VehicleStatus) ([]domain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Vehicle
	for _, v := range r.vehicles {
		if status == nil || v.Status == *status {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *memTransportRepo) DeleteVehicle(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vehicles[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.vehicles, id)
	return nil
}

func (r *memTransportRepo) CountActiveSchedulesForVehicle(_ context.Context, vehicleID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.schedules {
		if s.VehicleID == vehicleID && s.Active {
			n++
		}
	}
	return n, nil
}

func (r *memTransportRepo) CreateRoute(_ context.Context, route *domain.Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	route.ID = uuid.NewString()
	cp := *route
	r.routes[route.ID] = &cp
	return nil
}

func (r *memTransportRepo) GetRoute(_ context.Context, id string) (*domain.Route, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	route, ok := r.routes[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *route
	return &cp, nil
}

func (r *memTransportRepo) ListRoutes(_ context.Context) ([]domain.Route, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Route
	for _, route := range r.routes {
		out = append(out, *route)
	}
	return out, nil
}

func (r *memTransportRepo) DeleteRoute(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.routes[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.routes, id)
	return nil
}

func (r *memTransportRepo) CountSchedulesForRoute(_ context.Context, routeID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.schedules {
		if s.RouteID == routeID {
			n++
		}
	}
	return n, nil
}

func (r *memTransportRepo) CreateSchedule(_ context.Context, s *domain.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.schedules {
		if existing.RouteID == s.RouteID && existing.VehicleID == s.VehicleID &&
			existing.Day == s.Day && existing.StartTime == s.StartTime {
			return repository.ErrDuplicate
		}
	}
	s.ID = uuid.NewString()
	cp := *s
	r.schedules[s.ID] = &cp
	return nil
}

func (r *memTransportRepo) GetSchedule(_ context.Context, id string) (*domain.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (r *memTransportRepo) SetScheduleActive(_ context.Context, id string, active bool) (*domain.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	s.Active = active
	cp := *s
	return &cp, nil
}

// memBookingRepo serializes WithTx callers the way the schedule row lock does in Postgres.
type memBookingRepo struct {
	txMu      sync.Mutex
	mu        sync.Mutex
	transport *memTransportRepo
	bookings  map[string]*domain.Booking
}

func newMemBookingRepo(transport *memTransportRepo) *memBookingRepo {
	return &memBookingRepo{transport: transport, bookings: map[string]*domain.Booking{}}
}

func (r *memBookingRepo) WithTx(_ context.Context, fn func(repository.BookingStore) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return fn(r)
}

func (r *memBookingRepo) LockSchedule(ctx context.Context, id string) (*domain.Schedule, error) {
	return r.transport.GetSchedule(ctx, id)
}

func (r *memBookingRepo) HasConfirmed(_ context.Context, userID, scheduleID string, date time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.UserID == userID && b.ScheduleID == scheduleID && b.BookingDate.Equal(date) && b.Status == domain.BookingConfirmed {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBookingRepo) CountConfirmed(_ context.Context, scheduleID string, date time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, b := range r.bookings {
		if b.ScheduleID == scheduleID && b.BookingDate.Equal(date) && b.Status == domain.BookingConfirmed {
			n++
		}
	}
	return n, nil
}

func (r *memBookingRepo) Create(_ context.Context, b *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = uuid.NewString()
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *memBookingRepo) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *b
	return &cp, nil
}

func (r *memBookingRepo) Cancel(_ context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != domain.BookingConfirmed {
		return false, nil
	}
	b.Status = domain.BookingCancelled
	b.CancelledAt = &at
	return true, nil
}

func (r *memBookingRepo) List(_ context.Context, filter repository.BookingFilter) ([]domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Booking
	for _, b := range r.bookings {
		if filter.UserID != nil && b.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (r *memBookingRepo) confirmed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, b := range r.bookings {
		if b.Status == domain.BookingConfirmed {
			n++
		}
	}
	return n
}
