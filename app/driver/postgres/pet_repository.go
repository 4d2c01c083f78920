package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"pettracker/app/domain"
	"pettracker/app/port"
)

// PetRepository implements port.PetRepository for PostgreSQL. Records
// are keyed by the owning identity; optional attributes are stored as
// NULL, never as empty strings.
type PetRepository struct {
	db     DatabaseIface
	logger *slog.Logger
}

// NewPetRepository creates a new PostgreSQL pet repository.
func NewPetRepository(db DatabaseIface, logger *slog.Logger) port.PetRepository {
	return &PetRepository{
		db:     db,
		logger: logger.With("component", "pet_repository"),
	}
}

// ListByUser returns all pets owned by the given identity.
func (r *PetRepository) ListByUser(ctx context.Context, userID string) ([]domain.Pet, error) {
	query := `
		SELECT pet_id, user_id, name,
		       COALESCE(dob, ''), COALESCE(breed, ''),
		       COALESCE(gender, ''), COALESCE(photo_key, ''),
		       created_at
		FROM pets
		WHERE user_id = $1
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to query pets", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to query pets: %w", err)
	}
	defer rows.Close()

	pets := []domain.Pet{}
	for rows.Next() {
		var pet domain.Pet
		if err := rows.Scan(
			&pet.PetID, &pet.UserID, &pet.Name,
			&pet.DOB, &pet.Breed, &pet.Gender, &pet.PhotoKey,
			&pet.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pet: %w", err)
		}
		pets = append(pets, pet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pets: %w", err)
	}

	return pets, nil
}

// Create inserts a new pet record.
func (r *PetRepository) Create(ctx context.Context, pet *domain.Pet) error {
	query := `
		INSERT INTO pets (pet_id, user_id, name, dob, breed, gender, photo_key, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8)`

	_, err := r.db.Exec(ctx, query,
		pet.PetID,
		pet.UserID,
		pet.Name,
		pet.DOB,
		pet.Breed,
		pet.Gender,
		pet.PhotoKey,
		pet.CreatedAt,
	)
	if err != nil {
		r.logger.Error("failed to insert pet", "pet_id", pet.PetID, "error", err)
		return fmt.Errorf("failed to insert pet: %w", err)
	}

	return nil
}
