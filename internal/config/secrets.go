package config

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

type ParameterClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// NeedsSecrets reports whether any secret must be fetched from Parameter Store.
func (c *Config) NeedsSecrets() bool {
	return (c.Chat.APIKey == "" && c.Chat.APIKeyParam != "") ||
		(c.Email.ServerToken == "" && c.Email.ServerTokenParam != "")
}

// ResolveSecrets fills empty secrets from their SSM parameters. A failed lookup
// leaves the secret empty so the handler falls back to its unconfigured reply.
func (c *Config) ResolveSecrets(ctx context.Context, client ParameterClient, logger *slog.Logger) {
	if c.Chat.APIKey == "" && c.Chat.APIKeyParam != "" {
		v, err := getParameter(ctx, client, c.Chat.APIKeyParam)
		if err != nil {
			logger.Warn("llm api key lookup failed", "param", c.Chat.APIKeyParam, "error", err)
		}
		c.Chat.APIKey = v
	}
	if c.Email.ServerToken == "" && c.Email.ServerTokenParam != "" {
		v, err := getParameter(ctx, client, c.Email.ServerTokenParam)
		if err != nil {
			logger.Warn("email server token lookup failed", "param", c.Email.ServerTokenParam, "error", err)
		}
		c.Email.ServerToken = v
	}
}

func getParameter(ctx context.Context, client ParameterClient, name string) (string, error) {
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("ssm GetParameter %s: %w", name, err)
	}
	if out.Parameter == nil {
		return "", fmt.Errorf("ssm parameter %s has no value", name)
	}
	return strings.TrimSpace(aws.ToString(out.Parameter.Value)), nil
}
