package handlers

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"ruralcyberguard/internal/config"
)

const (
	serviceName   = "ruralcyberguard-api"
	healthMethods = "GET, OPTIONS"
)

type HealthResponse struct {
	OK              bool   `json:"ok"`
	Service         string `json:"service"`
	ChatConfigured  bool   `json:"chatConfigured"`
	EmailConfigured bool   `json:"emailConfigured"`
}

// Health reports which upstreams are configured without exposing any secret.
func Health(cfg *config.Config) func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		if requestMethod(req) == http.MethodOptions {
			return preflight(healthMethods), nil
		}
		return jsonResp(http.StatusOK, HealthResponse{
			OK:              true,
			Service:         serviceName,
			ChatConfigured:  cfg.Chat.Configured(),
			EmailConfigured: cfg.Email.Configured(),
		}), nil
	}
}
