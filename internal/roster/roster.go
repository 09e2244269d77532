// Package roster is the scheduler's read-only view of reference data owned by
// other systems: the doctor roster and the specialty/service catalog.
package roster

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hackgods/clinic-shift-scheduling/internal/apperr"
)

var (
	ErrDoctorNotFound    = apperr.NotFound("doctor_not_found", "doctor not found")
	ErrSpecialtyNotFound = apperr.NotFound("specialty_not_found", "specialty not found")
	ErrServiceNotFound   = apperr.NotFound("service_not_found", "service not found")
)

type Doctor struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	SpecialtyID *uuid.UUID `json:"specialtyId,omitempty"`
	Active      bool       `json:"active"`
}

// InSpecialty reports whether d practises specialtyID. A nil filter matches everyone.
func (d Doctor) InSpecialty(specialtyID *uuid.UUID) bool {
	if specialtyID == nil {
		return true
	}
	return d.SpecialtyID != nil && *d.SpecialtyID == *specialtyID
}

type Specialty struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type Service struct {
	ID          uuid.UUID       `json:"id"`
	SpecialtyID uuid.UUID       `json:"specialtyId"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
}

// Repository resolves roster and catalog ids. Lookups of unknown ids return
// the package's NotFound sentinels.
type Repository interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error)
	ListActiveDoctors(ctx context.Context, specialtyID *uuid.UUID) ([]Doctor, error)
	GetSpecialty(ctx context.Context, id uuid.UUID) (*Specialty, error)
	GetService(ctx context.Context, id uuid.UUID) (*Service, error)
}
