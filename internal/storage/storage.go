package storage

import (
	"context"
	"errors"

	"github.com/harutok/counts-service/internal/types"
	"github.com/harutok/counts-service/internal/types/users"
)

// Sentinel errors reported by Storage implementations. Handlers map these to
// HTTP statuses; anything else is treated as an internal fault.
var (
	// ErrNotFound means no row matched a point read.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail means a registration hit the unique email constraint.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidField means a counter field is not a member of its category.
	ErrInvalidField = errors.New("invalid counter field")

	// ErrWriteFailed means the store acknowledged a write without applying it.
	ErrWriteFailed = errors.New("storage write failed")
)

type Storage interface {
	// CreateUser inserts a new user and returns the stored row.
	CreateUser(ctx context.Context, email string) (users.User, error)

	// GetUser looks a user up by id, email, or both (combined with AND).
	// At least one filter must be set (id > 0 or email non-empty).
	GetUser(ctx context.Context, id int64, email string) (users.User, error)

	// GetDayCounts returns every counter of the category's row for
	// (userID, day), keyed by field name. ErrNotFound if no row exists.
	GetDayCounts(ctx context.Context, category types.Category, userID int64, day string) (map[string]int64, error)

	// IncrementDayCount adds 1 to one counter field of the (userID, day) row,
	// creating the row with all other counters at zero if it does not exist.
	// The create-or-increment is a single atomic operation.
	IncrementDayCount(ctx context.Context, category types.Category, userID int64, day, field string) error
}
