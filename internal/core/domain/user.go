package domain

import "time"

// User is a local operator allowed to call the HTTP API.
type User struct {
	Username  string    `db:"username"`
	Password  string    `db:"password"` // bcrypt hashed
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func NewUser(username, hashedPassword string) *User {
	now := time.Now().UTC()
	return &User{
		Username:  username,
		Password:  hashedPassword,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ChangePassword swaps the stored hash and bumps UpdatedAt.
func (u *User) ChangePassword(hashedPassword string) {
	u.Password = hashedPassword
	u.UpdatedAt = NextUpdatedAt(u.UpdatedAt, time.Now())
}
