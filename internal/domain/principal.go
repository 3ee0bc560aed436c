package domain

// Principal is the actor behind a request. The zero value is anonymous.
type Principal struct {
	UserID        int64
	Authenticated bool
}

// Anonymous returns the unauthenticated principal.
func Anonymous() Principal {
	return Principal{}
}

// AuthenticatedAs returns a principal for a verified user.
func AuthenticatedAs(userID int64) Principal {
	return Principal{UserID: userID, Authenticated: true}
}

// Is reports whether the principal is the authenticated user userID.
func (p Principal) Is(userID int64) bool {
	return p.Authenticated && p.UserID == userID
}
