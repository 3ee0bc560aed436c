package service

import (
	"github.com/listenupapp/recipebox-server/internal/domain"
	domainerrors "github.com/listenupapp/recipebox-server/internal/errors"
	"github.com/listenupapp/recipebox-server/internal/store"
)

// Surface is the view a request arrives through. Each surface applies its own
// visibility rule on top of the ownership check.
type Surface int

const (
	// SurfaceAll is the public catalogue: anyone reads, owners mutate.
	SurfaceAll Surface = iota
	// SurfaceMine is the caller's own recipes. Other owners' rows are invisible.
	SurfaceMine
	// SurfaceLabels is the tag and ingredient surface. Same visibility as SurfaceMine.
	SurfaceLabels
)

func (s Surface) String() string {
	switch s {
	case SurfaceAll:
		return "all"
	case SurfaceMine:
		return "mine"
	case SurfaceLabels:
		return "labels"
	}
	return "unknown"
}

// Op is the action being authorized.
type Op string

// Operations checked by Authorize.
const (
	OpRead   Op = "read"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Owned is a record with a single owning user.
type Owned interface {
	OwnedBy(userID int64) bool
}

var (
	errUnauthenticated = domainerrors.Unauthorized("authentication required")
	errNotOwner        = domainerrors.Forbidden("you do not have permission to perform this action")
)

// Authorize decides whether principal may perform op on record through surface.
// A nil record means the lookup found nothing. Create never carries a record.
//
// Results are 401 for anonymous callers wherever authentication is needed,
// 404 for absent rows and for rows hidden by a scoped surface, and 403 for
// a non-owner mutating a row it can see.
func Authorize(principal domain.Principal, surface Surface, record Owned, op Op) error {
	if surface == SurfaceAll && op == OpRead {
		if isNil(record) {
			return domainerrors.NotFound("recipe not found")
		}
		return nil
	}

	if !principal.Authenticated {
		return errUnauthenticated
	}
	if op == OpCreate {
		return nil
	}

	if isNil(record) {
		return notFoundFor(surface)
	}
	if record.OwnedBy(principal.UserID) {
		return nil
	}
	if surface == SurfaceAll {
		return errNotOwner
	}
	return notFoundFor(surface)
}

// isNil catches typed nil pointers stored in the interface.
func isNil(record Owned) bool {
	switch r := record.(type) {
	case nil:
		return true
	case *domain.Recipe:
		return r == nil
	case *domain.Label:
		return r == nil
	}
	return false
}

func notFoundFor(surface Surface) error {
	if surface == SurfaceLabels {
		return domainerrors.NotFound("not found")
	}
	return domainerrors.NotFound("recipe not found")
}

// scopeFilter turns a surface and principal into the store predicate that
// every listing and detail lookup on that surface uses.
func scopeFilter(principal domain.Principal, surface Surface, search string) (store.RecipeFilter, error) {
	filter := store.RecipeFilter{Search: search}
	if surface == SurfaceAll {
		return filter, nil
	}
	if !principal.Authenticated {
		return store.RecipeFilter{}, errUnauthenticated
	}
	owner := principal.UserID
	filter.OwnerID = &owner
	return filter, nil
}
