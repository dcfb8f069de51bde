package secrets

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"go.uber.org/zap"

	"github.com/fundhive/donation-service/internal/domain/ports"
)

// AWSSecretsManagerConfig contains configuration for the AWS Secrets Manager
// backend
type AWSSecretsManagerConfig struct {
	// AWS Region (e.g., "us-east-1")
	Region string

	// Optional: AWS profile name (for local development)
	Profile string

	// Optional: Custom endpoint (for LocalStack testing)
	Endpoint string

	// Cache TTL for secrets (default: 5 minutes)
	CacheTTL time.Duration

	// Enable caching
	EnableCache bool
}

// DefaultAWSSecretsManagerConfig returns default configuration
func DefaultAWSSecretsManagerConfig(region string) *AWSSecretsManagerConfig {
	return &AWSSecretsManagerConfig{
		Region:      region,
		CacheTTL:    5 * time.Minute,
		EnableCache: true,
	}
}

// awsSecretsManager implements the SecretManager port for AWS Secrets Manager
type awsSecretsManager struct {
	client *secretsmanager.Client
	config *AWSSecretsManagerConfig
	logger *zap.Logger
	cache  *secretCache
}

// NewAWSSecretsManager creates a new AWS Secrets Manager backend
func NewAWSSecretsManager(ctx context.Context, cfg *AWSSecretsManagerConfig, logger *zap.Logger) (ports.SecretManager, error) {
	var awsConfig aws.Config
	var err error

	if cfg.Profile != "" {
		// Use specific profile (local development)
		awsConfig, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(cfg.Region),
			config.WithSharedConfigProfile(cfg.Profile),
		)
	} else {
		// Use default credentials chain (IAM role in production)
		awsConfig, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(cfg.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	clientOptions := []func(*secretsmanager.Options){}
	if cfg.Endpoint != "" {
		// Custom endpoint (for LocalStack)
		clientOptions = append(clientOptions, func(o *secretsmanager.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	client := secretsmanager.NewFromConfig(awsConfig, clientOptions...)

	logger.Info("AWS Secrets Manager backend initialized",
		zap.String("region", cfg.Region),
		zap.Bool("cache_enabled", cfg.EnableCache),
		zap.Duration("cache_ttl", cfg.CacheTTL),
	)

	return &awsSecretsManager{
		client: client,
		config: cfg,
		logger: logger,
		cache:  newSecretCache(cfg.EnableCache, cfg.CacheTTL),
	}, nil
}

// GetSecret retrieves a secret by its name or full ARN
func (a *awsSecretsManager) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	if cached := a.cache.get(path); cached != nil {
		a.logger.Debug("secret retrieved from cache", zap.String("path", path))
		return cached, nil
	}

	startTime := time.Now()
	result, err := a.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(path),
	})
	if err != nil {
		a.logger.Error("failed to retrieve secret",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to get secret %s: %w", path, err)
	}

	a.logger.Info("secret retrieved",
		zap.String("path", path),
		zap.Duration("elapsed", time.Since(startTime)),
	)

	secret := &ports.Secret{
		Value:    aws.ToString(result.SecretString),
		Version:  aws.ToString(result.VersionId),
		Metadata: make(map[string]string),
	}
	if result.CreatedDate != nil {
		secret.CreatedAt = result.CreatedDate.Format(time.RFC3339)
	}
	if result.ARN != nil {
		secret.Metadata["arn"] = *result.ARN
	}
	if result.Name != nil {
		secret.Metadata["name"] = *result.Name
	}

	a.cache.set(path, secret)

	return secret, nil
}
