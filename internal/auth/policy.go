package auth

import (
	"sort"

	"github.com/hostelsync/hostelsync-api/internal/domain"
)

// Permission names a (resource, action) pair.
type Permission string

const (
	PermWaterReport      Permission = "water:report"
	PermWaterList        Permission = "water:list"
	PermWaterUpdate      Permission = "water:update"
	PermWaterDirectory   Permission = "water:plumbers"
	PermNetworkReport    Permission = "network:report"
	PermNetworkList      Permission = "network:list"
	PermNetworkUpdate    Permission = "network:update"
	PermNetworkComment   Permission = "network:comment"
	PermNetworkDirectory Permission = "network:it-staff"

	PermCleaningCreate    Permission = "cleaning:create"
	PermCleaningListOwn   Permission = "cleaning:list-own"
	PermCleaningListAll   Permission = "cleaning:list-all"
	PermCleaningUpdate    Permission = "cleaning:update"
	PermCleaningFeedback  Permission = "cleaning:feedback"
	PermCleaningDirectory Permission = "cleaning:cleaners"

	PermMenuWrite        Permission = "mess:menu-write"
	PermMenuSeries       Permission = "mess:series"
	PermMenuTransfer     Permission = "mess:import-export"
	PermMealFeedback     Permission = "mess:feedback"
	PermMealFeedbackList Permission = "mess:feedback-list"

	PermBookingCreate   Permission = "transport:book"
	PermBookingList     Permission = "transport:bookings"
	PermBookingCancel   Permission = "transport:cancel"
	PermTransportManage Permission = "transport:manage"

	PermUsersManage Permission = "admin:users"
)

var everyone = domain.AllRoles

// policy is the single source of truth for role gating. The API gate consults it and
// GET /auth/permissions exposes it so clients can render from the same table.
var policy = map[Permission][]domain.Role{
	PermWaterReport:      everyone,
	PermWaterList:        everyone,
	PermWaterUpdate:      {domain.RolePlumber, domain.RoleAdmin},
	PermWaterDirectory:   {domain.RoleAdmin},
	PermNetworkReport:    everyone,
	PermNetworkList:      everyone,
	PermNetworkUpdate:    {domain.RoleITStaff, domain.RoleAdmin},
	PermNetworkComment:   everyone,
	PermNetworkDirectory: {domain.RoleAdmin},

	PermCleaningCreate:    {domain.RoleStudent},
	PermCleaningListOwn:   {domain.RoleStudent},
	PermCleaningListAll:   {domain.RoleAdmin, domain.RoleCleaner},
	PermCleaningUpdate:    {domain.RoleCleaner, domain.RoleAdmin},
	PermCleaningFeedback:  {domain.RoleStudent},
	PermCleaningDirectory: {domain.RoleAdmin},

	PermMenuWrite:        {domain.RoleStaff, domain.RoleAdmin},
	PermMenuSeries:       {domain.RoleStaff, domain.RoleAdmin},
	PermMenuTransfer:     {domain.RoleStaff, domain.RoleAdmin},
	PermMealFeedback:     {domain.RoleStudent},
	PermMealFeedbackList: {domain.RoleStudent, domain.RoleStaff, domain.RoleAdmin},

	PermBookingCreate:   {domain.RoleStudent},
	PermBookingList:     everyone,
	PermBookingCancel:   {domain.RoleStudent},
	PermTransportManage: {domain.RoleAdmin, domain.RoleWarden},

	PermUsersManage: {domain.RoleAdmin},
}

// Allowed reports whether role holds permission p. Unknown permissions deny.
func Allowed(p Permission, role domain.Role) bool {
	for _, r := range policy[p] {
		if r == role {
			return true
		}
	}
	return false
}

// PermissionsFor lists the permissions granted to role, sorted.
func PermissionsFor(role domain.Role) []Permission {
	var granted []Permission
	for p := range policy {
		if Allowed(p, role) {
			granted = append(granted, p)
		}
	}
	sort.Slice(granted, func(i, j int) bool { return granted[i] < granted[j] })
	return granted
}
