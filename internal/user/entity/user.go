package entity

import "time"

// User represents an account row in the `users` table. Usernames are
// stored lowercase; the password hash never leaves this package unsanitized.
type User struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// PublicUser is the full projection, returned to the profile owner and on
// registration/login.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PublicUserMinimal is the reduced projection returned to any other viewer.
type PublicUserMinimal struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

func NewPublicUser(u *User) PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func NewPublicUserMinimal(u *User) PublicUserMinimal {
	return PublicUserMinimal{ID: u.ID, Name: u.Name, Username: u.Username}
}
