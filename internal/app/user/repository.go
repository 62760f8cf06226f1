package user

import "context"

// Repository is the persistence boundary for user records.
type Repository interface {
	// Create inserts a new user record. The uniqueness check and the insert
	// are atomic: two concurrent Creates for the same name cannot both
	// succeed. Returns ErrNameTaken on a duplicate name.
	Create(ctx context.Context, u *User) error

	// GetByName fetches a user record by its unique name.
	// Returns ErrNotFound when no record exists.
	GetByName(ctx context.Context, name string) (*User, error)

	// List returns summaries of all users, in stable name order.
	List(ctx context.Context) ([]Summary, error)
}
