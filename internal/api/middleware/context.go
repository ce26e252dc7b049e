package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/riskdesk/pkg/models"
)

type contextKey string

const (
	tenantIDKey     contextKey = "tenant_id"
	userIDKey       contextKey = "user_id"
	keyPrefixKey    contextKey = "key_prefix"
	apiKeyScopesKey contextKey = "api_key_scopes"
)

func SetTenantID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, tenantIDKey, id)
}

func GetTenantID(r *http.Request) (uuid.UUID, bool) {
	id, ok := r.Context().Value(tenantIDKey).(uuid.UUID)
	return id, ok
}

func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func GetUserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

func setKeyPrefix(ctx context.Context, prefix string) context.Context {
	return context.WithValue(ctx, keyPrefixKey, prefix)
}

func getKeyPrefix(r *http.Request) (string, bool) {
	prefix, ok := r.Context().Value(keyPrefixKey).(string)
	return prefix, ok
}

// SetScopes stores the authenticated key's scopes.
func SetScopes(ctx context.Context, scopes []string) context.Context {
	return context.WithValue(ctx, apiKeyScopesKey, scopes)
}

func getScopes(r *http.Request) []string {
	scopes, _ := r.Context().Value(apiKeyScopesKey).([]string)
	return scopes
}

// HasScope reports whether the authenticated key carries scope.
func HasScope(r *http.Request, scope string) bool {
	for _, s := range getScopes(r) {
		if s == scope {
			return true
		}
	}
	return false
}

// Caller builds the identity the pipeline runs under. Keys holding only the
// demo scope produce demo callers.
func Caller(r *http.Request) (models.CallerContext, bool) {
	tenantID, ok := GetTenantID(r)
	if !ok {
		return models.CallerContext{}, false
	}
	return models.CallerContext{
		TenantID: tenantID,
		UserID:   GetUserID(r),
		IsDemo:   HasScope(r, models.ScopeDemo),
	}, true
}

// ExportedKeyPrefixKey returns the context key for key_prefix (for testing).
func ExportedKeyPrefixKey() contextKey {
	return keyPrefixKey
}
