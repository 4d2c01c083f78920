package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	"pettracker/app/domain"
	"pettracker/app/port"
)

// PetUsecase implements the pets CRUD and photo upload surface over the
// managed database and object store. Records are scoped to the caller's
// identity; unauthenticated callers share the UNAUTH scope.
type PetUsecase struct {
	repo    port.PetRepository
	objects port.ObjectStore
	logger  *slog.Logger
}

// NewPetUsecase creates a pet usecase.
func NewPetUsecase(repo port.PetRepository, objects port.ObjectStore, logger *slog.Logger) *PetUsecase {
	return &PetUsecase{
		repo:    repo,
		objects: objects,
		logger:  logger.With("component", "pet_usecase"),
	}
}

// List returns the caller's pets, with signed photo URLs resolved for
// records that carry a photo key. A URL that cannot be signed degrades
// to a record without one rather than failing the listing.
func (u *PetUsecase) List(ctx context.Context, userID string) ([]domain.Pet, error) {
	if userID == "" {
		userID = domain.UnauthenticatedIdentity
	}

	pets, err := u.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pets: %w", err)
	}

	for i := range pets {
		if pets[i].PhotoKey == "" {
			continue
		}
		url, err := u.objects.ObjectURL(ctx, pets[i].PhotoKey)
		if err != nil {
			u.logger.Warn("failed to sign photo url",
				"pet_id", pets[i].PetID, "error", err)
			continue
		}
		pets[i].PhotoURL = url
	}
	return pets, nil
}

// Create persists a new pet for the caller. The name is required; empty
// optional attributes are dropped rather than stored as blanks.
func (u *PetUsecase) Create(ctx context.Context, userID string, req domain.CreatePetRequest) (*domain.Pet, error) {
	if req.Name == "" {
		return nil, domain.ErrPetNameRequired
	}
	if userID == "" {
		userID = domain.UnauthenticatedIdentity
	}

	id, err := uuid.NewUUID()
	if err != nil {
		return nil, fmt.Errorf("failed to assign pet id: %w", err)
	}

	pet := &domain.Pet{
		PetID:     id.String(),
		UserID:    userID,
		Name:      req.Name,
		DOB:       req.DOB,
		Breed:     req.Breed,
		Gender:    req.Gender,
		PhotoKey:  req.PhotoKey,
		CreatedAt: time.Now().UTC(),
	}

	if err := u.repo.Create(ctx, pet); err != nil {
		return nil, fmt.Errorf("failed to insert pet: %w", err)
	}

	u.logger.Info("pet created", "pet_id", pet.PetID, "user_id", pet.UserID)
	return pet, nil
}

// UploadPhoto stores a pet photo and returns its key and a signed URL.
func (u *PetUsecase) UploadPhoto(ctx context.Context, userID, filename, contentType string, body io.Reader) (string, string, error) {
	if userID == "" {
		userID = domain.UnauthenticatedIdentity
	}
	if filename == "" {
		return "", "", fmt.Errorf("filename is required")
	}

	key := path.Join("uploads", userID, uuid.NewString(), path.Base(filename))
	if err := u.objects.PutObject(ctx, key, body, contentType); err != nil {
		return "", "", fmt.Errorf("failed to upload photo: %w", err)
	}

	url, err := u.objects.ObjectURL(ctx, key)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign photo url: %w", err)
	}

	u.logger.Info("photo uploaded", "key", key, "user_id", userID)
	return key, url, nil
}
