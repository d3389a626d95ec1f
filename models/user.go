package models

type UserRole string

const (
	RoleAuthor   UserRole = "author"
	RoleReviewer UserRole = "reviewer"
	RoleEditor   UserRole = "editor"
	RoleAdmin    UserRole = "admin"
)

// User is the directory entry the backend embeds in populated references.
type User struct {
	ID          string   `json:"_id"`
	FullName    string   `json:"fullName"`
	Email       string   `json:"email"`
	Role        UserRole `json:"role"`
	Institution string   `json:"institution,omitempty"`
	Country     string   `json:"country,omitempty"`
}

type CheckEmailRequest struct {
	Email string `json:"email"`
}

type CheckEmailResponse struct {
	Exists bool `json:"exists"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is the backend's login reply. Token is empty when the backend
// only sets a cookie.
type AuthResponse struct {
	Token string `json:"token,omitempty"`
	User  User   `json:"user"`
}

type ProfileResponse struct {
	User User `json:"user"`
}
