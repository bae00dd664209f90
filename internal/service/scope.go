package service

import "github.com/hostelsync/hostelsync-api/internal/domain"

// ScopeFor selects the visibility predicate for a listing. worker is the specialist role
// that works the listing's domain, or empty when the domain has none.
func ScopeFor(actor Actor, worker domain.Role) domain.Scope {
	switch {
	case actor.Role == domain.RoleAdmin:
		return domain.Scope{Kind: domain.ScopeAll}
	case worker != "" && actor.Role == worker:
		return domain.Scope{Kind: domain.ScopeWorker, UserID: actor.ID}
	default:
		return domain.Scope{Kind: domain.ScopeOwn, UserID: actor.ID}
	}
}
