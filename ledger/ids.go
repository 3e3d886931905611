package ledger

import "github.com/google/uuid"

// NewID returns a new time ordered entity id.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
