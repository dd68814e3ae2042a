package users

import "time"

const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

// User is an account that owns résumé records.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PictureURL   string    `json:"pictureUrl,omitempty"`
	Provider     string    `json:"provider"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
