package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/fundhive/donation-service/internal/domain/ports"
)

// envSecretManager resolves secrets from environment variables.
// WARNING: development and testing only; production deployments use the AWS
// Secrets Manager or Vault backend.
type envSecretManager struct {
	prefix string
	logger *zap.Logger
}

// NewEnvSecretManager creates a secret manager backed by environment
// variables. A path like "gateways/paypal/secret" resolves to the variable
// {prefix}GATEWAYS_PAYPAL_SECRET.
func NewEnvSecretManager(prefix string, logger *zap.Logger) ports.SecretManager {
	return &envSecretManager{
		prefix: prefix,
		logger: logger,
	}
}

// GetSecret retrieves a secret from the environment
func (m *envSecretManager) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	name := m.prefix + pathToEnvName(path)

	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return nil, fmt.Errorf("secret not found: %s (env %s)", path, name)
	}

	m.logger.Debug("secret resolved from environment",
		zap.String("path", path),
		zap.String("env", name),
	)

	return &ports.Secret{
		Value:   value,
		Version: "v1",
	}, nil
}

func pathToEnvName(path string) string {
	name := strings.ToUpper(path)
	name = strings.NewReplacer("/", "_", "-", "_", ".", "_").Replace(name)
	return name
}
