package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"perplexacare/internal/domain"
	"perplexacare/internal/repository"
)

// ProfileService normaliza y persiste perfiles de salud. Cada escritura
// es un upsert del registro completo, nunca un patch parcial.
type ProfileService struct {
	profiles repository.ProfileRepository
}

var ErrProfileServiceNotConfigured = errors.New("profile service not configured")

func NewProfileService(profiles repository.ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// ProfileInput es el payload laxo del formulario: los campos numéricos
// pueden llegar como número o string, los de lista como array o string
// separado por comas.
type ProfileInput struct {
	FullName              string `json:"fullName"`
	Age                   any    `json:"age"`
	Gender                string `json:"gender"`
	Height                any    `json:"height"`
	Weight                any    `json:"weight"`
	Occupation            string `json:"occupation"`
	MedicalHistory        any    `json:"medicalHistory"`
	CurrentMedications    any    `json:"currentMedications"`
	Allergies             any    `json:"allergies"`
	EmergencyContactName  string `json:"emergencyContactName"`
	EmergencyContactPhone string `json:"emergencyContactPhone"`
}

// Get devuelve el perfil del usuario, o (zero, false) si no existe.
func (s *ProfileService) Get(ctx context.Context, userID string) (domain.HealthProfile, bool, error) {
	if s == nil || s.profiles == nil {
		return domain.HealthProfile{}, false, ErrProfileServiceNotConfigured
	}
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.HealthProfile{}, false, nil
		}
		return domain.HealthProfile{}, false, err
	}
	return profile, true, nil
}

// Save normaliza el payload y hace upsert del perfil completo.
func (s *ProfileService) Save(ctx context.Context, userID string, input ProfileInput) (domain.HealthProfile, error) {
	if s == nil || s.profiles == nil {
		return domain.HealthProfile{}, ErrProfileServiceNotConfigured
	}
	profile := Normalize(userID, input)
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return domain.HealthProfile{}, err
	}
	return profile, nil
}

// Normalize aplica las reglas de saneo del formulario: textos vacíos a
// null, números parse-or-null, listas siempre como array de strings
// recortados y no vacíos.
func Normalize(userID string, input ProfileInput) domain.HealthProfile {
	now := time.Now().UTC()
	return domain.HealthProfile{
		UserID:                userID,
		FullName:              optionalString(input.FullName),
		Age:                   parseIntField(input.Age),
		Gender:                optionalString(input.Gender),
		Height:                parseFloatField(input.Height),
		Weight:                parseFloatField(input.Weight),
		Occupation:            optionalString(input.Occupation),
		MedicalHistory:        NormalizeList(input.MedicalHistory),
		CurrentMedications:    NormalizeList(input.CurrentMedications),
		Allergies:             NormalizeList(input.Allergies),
		EmergencyContactName:  optionalString(input.EmergencyContactName),
		EmergencyContactPhone: optionalString(input.EmergencyContactPhone),
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

// NormalizeList acepta []string, []any o un string separado por comas y
// devuelve siempre un array de entradas recortadas y no vacías.
func NormalizeList(value any) []string {
	switch v := value.(type) {
	case nil:
		return []string{}
	case []string:
		return filterTrimmed(v)
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
		return filterTrimmed(items)
	case string:
		return filterTrimmed(strings.Split(v, ","))
	default:
		return []string{}
	}
}

func filterTrimmed(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseIntField(value any) *int {
	switch v := value.(type) {
	case float64:
		n := int(v)
		return &n
	case int:
		n := v
		return &n
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil
		}
		if n, err := strconv.Atoi(trimmed); err == nil {
			return &n
		}
		return nil
	default:
		return nil
	}
}

func parseFloatField(value any) *float64 {
	switch v := value.(type) {
	case float64:
		f := v
		return &f
	case int:
		f := float64(v)
		return &f
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return &f
		}
		return nil
	default:
		return nil
	}
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
