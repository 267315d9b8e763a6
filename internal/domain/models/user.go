package models

import "time"

// User is an account in the principal directory. Role membership lives in
// user_roles and is resolved separately.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
}
