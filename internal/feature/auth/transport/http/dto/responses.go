package dto

// TokenRes is the response body for a successful login or refresh.
// RefreshToken is the opaque session token; it is also set as an
// HttpOnly cookie for browser clients.
type TokenRes struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// ErrorRes is the uniform error response body.
type ErrorRes struct {
	Error string `json:"error"`
}

// MessageRes is a simple acknowledgement response body.
type MessageRes struct {
	Message string `json:"message"`
}
