package models

import "github.com/google/uuid"

// CallerContext identifies who is running an analysis. It is passed
// explicitly into every core operation.
type CallerContext struct {
	TenantID uuid.UUID
	UserID   string
	IsDemo   bool
}
