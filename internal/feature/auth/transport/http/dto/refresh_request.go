package dto

// RefreshReq represents the request for session rotation.
// The token may alternatively come from the session cookie.
type RefreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
