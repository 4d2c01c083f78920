package port

import (
	"context"
	"io"

	"pettracker/app/domain"
)

// PetRepository is the managed database behind the pets CRUD API.
type PetRepository interface {
	// ListByUser returns all pets created by the given identity.
	ListByUser(ctx context.Context, userID string) ([]domain.Pet, error)

	// Create persists a new pet record.
	Create(ctx context.Context, pet *domain.Pet) error
}

// ObjectStore is the managed object storage used for pet photos.
type ObjectStore interface {
	// PutObject uploads an object under the given key.
	PutObject(ctx context.Context, key string, body io.Reader, contentType string) error

	// ObjectURL returns a time-limited signed URL for the key.
	ObjectURL(ctx context.Context, key string) (string, error)
}
