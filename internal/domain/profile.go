package domain

import "time"

// HealthProfile es el registro de salud de un usuario. Existe a lo sumo
// una fila por user_id; cada escritura reemplaza el registro completo.
type HealthProfile struct {
	UserID                string    `json:"userId"`
	FullName              *string   `json:"fullName"`
	Age                   *int      `json:"age"`
	Gender                *string   `json:"gender"`
	Height                *float64  `json:"height"`
	Weight                *float64  `json:"weight"`
	Occupation            *string   `json:"occupation"`
	MedicalHistory        []string  `json:"medicalHistory"`
	CurrentMedications    []string  `json:"currentMedications"`
	Allergies             []string  `json:"allergies"`
	EmergencyContactName  *string   `json:"emergencyContactName"`
	EmergencyContactPhone *string   `json:"emergencyContactPhone"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// DefaultProfile devuelve el perfil inicial escrito en el primer registro
// o primer sign-in OAuth de un usuario.
func DefaultProfile(userID, fullName string) HealthProfile {
	now := time.Now().UTC()
	p := HealthProfile{
		UserID:             userID,
		MedicalHistory:     []string{},
		CurrentMedications: []string{},
		Allergies:          []string{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if fullName != "" {
		p.FullName = &fullName
	}
	return p
}
