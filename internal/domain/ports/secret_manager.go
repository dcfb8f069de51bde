package ports

import (
	"context"
)

// Secret is a retrieved secret with version metadata
type Secret struct {
	Value     string
	Version   string
	Metadata  map[string]string
	CreatedAt string
}

// SecretManager retrieves gateway credentials from a secret backend.
// Implementations handle authentication with the backend and cache values
// with a TTL.
type SecretManager interface {
	// GetSecret retrieves a secret by its path/name. Path format depends on
	// the backend (AWS Secrets Manager name/ARN, Vault KV path, env var name).
	GetSecret(ctx context.Context, path string) (*Secret, error)
}
