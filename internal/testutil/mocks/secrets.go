package mocks

import (
	"context"
	"fmt"

	"github.com/fundhive/donation-service/internal/domain/ports"
)

// SecretManager serves secrets from a fixed map
type SecretManager struct {
	Secrets map[string]string
	GetErr  error
}

func (m *SecretManager) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	value, ok := m.Secrets[path]
	if !ok {
		return nil, fmt.Errorf("secret not found: %s", path)
	}
	return &ports.Secret{Value: value}, nil
}
