package cache

import (
	"fmt"

	"github.com/google/uuid"
)

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}

func ReportKey(tenantID, reportID uuid.UUID) string {
	return fmt.Sprintf("report:%s:%s", tenantID, reportID)
}

// ProviderStatusKey identifies a cached smoke-test result. keyHash is a
// digest of the credential that was tested, never the credential itself.
func ProviderStatusKey(provider, keyHash string) string {
	return fmt.Sprintf("provider:status:%s:%s", provider, keyHash)
}
