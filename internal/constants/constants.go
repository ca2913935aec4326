package constants

// controller registry keys
const (
	Ebook = iota
	Auth
	Page
)

const (
	SessionCookie = "ebook_session"
	// SessionIDKey is the gin context key holding the authenticated session ID.
	SessionIDKey = "sessionId"
)
