package domain

import "time"

// Role is the fixed identity tag that decides what a user may see and do.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleStaff   Role = "STAFF"
	RoleAdmin   Role = "ADMIN"
	RolePlumber Role = "PLUMBER"
	RoleITStaff Role = "IT_STAFF"
	RoleCleaner Role = "CLEANER"
	RoleWarden  Role = "WARDEN"
	RoleDriver  Role = "DRIVER"
)

// AllRoles lists every known role in a stable order.
var AllRoles = []Role{
	RoleStudent, RoleStaff, RoleAdmin, RolePlumber,
	RoleITStaff, RoleCleaner, RoleWarden, RoleDriver,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// User is a hostel resident or staff account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	RoomNo       *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserPatch lists the fields an admin may change on a user. Nil means unchanged.
type UserPatch struct {
	Name   *string
	Email  *string
	Role   *Role
	RoomNo *string
	Active *bool
}

// Apply merges the patch into u and reports whether anything changed.
func (p UserPatch) Apply(u *User) bool {
	changed := false
	if p.Name != nil && *p.Name != u.Name {
		u.Name = *p.Name
		changed = true
	}
	if p.Email != nil && *p.Email != u.Email {
		u.Email = *p.Email
		changed = true
	}
	if p.Role != nil && *p.Role != u.Role {
		u.Role = *p.Role
		changed = true
	}
	if p.RoomNo != nil {
		if *p.RoomNo == "" {
			if u.RoomNo != nil {
				u.RoomNo = nil
				changed = true
			}
		} else if u.RoomNo == nil || *u.RoomNo != *p.RoomNo {
			room := *p.RoomNo
			u.RoomNo = &room
			changed = true
		}
	}
	if p.Active != nil && *p.Active != u.Active {
		u.Active = *p.Active
		changed = true
	}
	return changed
}

// UserDependencies counts rows that reference a user and block its deletion.
type UserDependencies struct {
	ReportedIssues      int64 `json:"reportedIssues"`
	AssignedIssues      int64 `json:"assignedIssues"`
	IssueComments       int64 `json:"issueComments"`
	Bookings            int64 `json:"bookings"`
	MealFeedback        int64 `json:"mealFeedback"`
	CleaningRequests    int64 `json:"cleaningRequests"`
	CleaningAssignments int64 `json:"cleaningAssignments"`
	DrivenVehicles      int64 `json:"drivenVehicles"`
}

// Total sums all dependent rows.
func (d UserDependencies) Total() int64 {
	return d.ReportedIssues + d.AssignedIssues + d.IssueComments + d.Bookings +
		d.MealFeedback + d.CleaningRequests + d.CleaningAssignments + d.DrivenVehicles
}
