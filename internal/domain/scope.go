package domain

// ScopeKind selects which rows a listing may return.
type ScopeKind int

const (
	// ScopeAll is unrestricted.
	ScopeAll ScopeKind = iota
	// ScopeOwn restricts to rows the user authored or owns.
	ScopeOwn
	// ScopeWorker restricts to rows assigned to the user plus unassigned PENDING rows.
	ScopeWorker
)

// Scope is the visibility predicate for one requester.
type Scope struct {
	Kind   ScopeKind
	UserID string
}

// Allows evaluates the predicate against a single row.
func (s Scope) Allows(ownerID string, assigneeID *string, pending bool) bool {
	switch s.Kind {
	case ScopeAll:
		return true
	case ScopeWorker:
		if assigneeID == nil {
			return pending
		}
		return *assigneeID == s.UserID
	default:
		return ownerID == s.UserID
	}
}
