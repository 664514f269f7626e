package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"perplexacare/internal/domain"
)

// ProfileRepository define el contrato de persistencia para perfiles de salud.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (domain.HealthProfile, error)
	Upsert(ctx context.Context, profile domain.HealthProfile) error
}

// PgProfileRepository implementa ProfileRepository usando pgxpool.
type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

func (r *PgProfileRepository) GetByUserID(ctx context.Context, userID string) (domain.HealthProfile, error) {
	const query = `
		SELECT user_id, full_name, age, gender, height, weight, occupation,
		       medical_history, current_medications, allergies,
		       emergency_contact_name, emergency_contact_phone,
		       created_at, updated_at
		FROM health_profiles
		WHERE user_id = $1
	`
	var p domain.HealthProfile
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.FullName,
		&p.Age,
		&p.Gender,
		&p.Height,
		&p.Weight,
		&p.Occupation,
		&p.MedicalHistory,
		&p.CurrentMedications,
		&p.Allergies,
		&p.EmergencyContactName,
		&p.EmergencyContactPhone,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.HealthProfile{}, err
	}
	return p, err
}

// Upsert inserta el perfil o lo sobreescribe completo si ya existe.
// Garantiza a lo sumo una fila por user_id.
func (r *PgProfileRepository) Upsert(ctx context.Context, profile domain.HealthProfile) error {
	const query = `
		INSERT INTO health_profiles (
			user_id, full_name, age, gender, height, weight, occupation,
			medical_history, current_medications, allergies,
			emergency_contact_name, emergency_contact_phone,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			age = EXCLUDED.age,
			gender = EXCLUDED.gender,
			height = EXCLUDED.height,
			weight = EXCLUDED.weight,
			occupation = EXCLUDED.occupation,
			medical_history = EXCLUDED.medical_history,
			current_medications = EXCLUDED.current_medications,
			allergies = EXCLUDED.allergies,
			emergency_contact_name = EXCLUDED.emergency_contact_name,
			emergency_contact_phone = EXCLUDED.emergency_contact_phone,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query,
		profile.UserID,
		profile.FullName,
		profile.Age,
		profile.Gender,
		profile.Height,
		profile.Weight,
		profile.Occupation,
		profile.MedicalHistory,
		profile.CurrentMedications,
		profile.Allergies,
		profile.EmergencyContactName,
		profile.EmergencyContactPhone,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	return err
}
