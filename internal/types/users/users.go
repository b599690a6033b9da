package users

// User is a registered account. Counter rows reference users by id but the
// reference is weak: counts may exist for ids that were never registered.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// AddUserRequest registers a new user by email.
type AddUserRequest struct {
	Email string `json:"email" validate:"required,email"`
}
