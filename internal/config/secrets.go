package config

import (
	"context"
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
)

// secretEnvVars lists the environment variables LoadSecrets will try to
// fill from AWS Secrets Manager when they aren't already set, grounded
// directly on the teacher's own mcpserver/server.go loadSecretsIfNeeded
// (same "skip if already set, look up <prefix><name>, os.Setenv on hit"
// shape, generalized from the teacher's four LLM/TTS provider keys to
// this system's one external TTS endpoint credential).
var secretEnvVars = []string{"TTS_API_KEY"}

// LoadSecrets populates any of secretEnvVars that aren't already present
// in the environment from AWS Secrets Manager, using cfg.SecretPrefix as
// the key prefix. It is a no-op (and returns nil) when SecretPrefix is
// empty, so local development never needs an AWS session configured.
func LoadSecrets(ctx context.Context, cfg Config) error {
	if cfg.SecretPrefix == "" {
		return nil
	}

	missing := false
	for _, v := range secretEnvVars {
		if os.Getenv(v) == "" {
			missing = true
			break
		}
	}
	if !missing {
		return nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return fmt.Errorf("loading aws config for secrets: %w", err)
	}
	otelaws.AppendMiddlewares(&awsCfg.APIOptions)
	client := secretsmanager.NewFromConfig(awsCfg)

	for _, envVar := range secretEnvVars {
		if os.Getenv(envVar) != "" {
			continue
		}
		secretID := cfg.SecretPrefix + envVar
		result, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
			SecretId: &secretID,
		})
		if err != nil {
			// Not every deployment has every secret populated; a missing
			// entry just means the feature it gates (e.g. an
			// authenticated TTS endpoint) stays unconfigured.
			continue
		}
		if result.SecretString != nil {
			os.Setenv(envVar, *result.SecretString)
		}
	}
	return nil
}
