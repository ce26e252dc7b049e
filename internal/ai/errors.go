package ai

import "github.com/kiranshivaraju/riskdesk/pkg/models"

var (
	ErrProviderUnavailable       = models.ErrProviderUnavailable
	ErrInferenceTimeout          = models.ErrInferenceTimeout
	ErrProviderContractViolation = models.ErrProviderContractViolation
)
