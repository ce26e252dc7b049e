package models

import (
	"time"

	"github.com/google/uuid"
)

// Assessment is a named vendor assessment owned by a single user. Reports
// produced for an assessment are only visible to its owner's tenant.
type Assessment struct {
	ID             uuid.UUID `db:"id"              json:"id"`
	TenantID       uuid.UUID `db:"tenant_id"       json:"tenant_id"`
	OwnerID        string    `db:"owner_id"        json:"owner_id"`
	Name           string    `db:"name"            json:"name"`
	AssessmentType string    `db:"assessment_type" json:"assessment_type"`
	CreatedAt      time.Time `db:"created_at"      json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"      json:"updated_at"`
}
