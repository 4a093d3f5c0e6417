package auth

// LoginRequest carries explicit credentials for the login endpoint. The
// password arrives plain here; only the comparison against the stored
// bcrypt hash ever sees it.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
