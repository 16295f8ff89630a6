package common

// Header names carrying the bearer credential. The planning handlers read
// AltAuthorizationHeaderName first.
const (
	AuthorizationHeaderName    = "Authorization"
	AltAuthorizationHeaderName = "X-Authorization"
	BearerPrefix               = "Bearer "
)
