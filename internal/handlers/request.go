package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

func requestMethod(req events.APIGatewayV2HTTPRequest) string {
	m := strings.ToUpper(strings.TrimSpace(req.RequestContext.HTTP.Method))
	if m == "" {
		return http.MethodGet
	}
	return m
}

// decodeBody parses the JSON object body. Anything unusable yields an empty
// map alongside the error so callers can log it and carry on.
func decodeBody(req events.APIGatewayV2HTTPRequest) (map[string]any, error) {
	raw := req.Body
	if req.IsBase64Encoded {
		b, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return map[string]any{}, fmt.Errorf("decode base64 body: %w", err)
		}
		raw = string(b)
	}
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return map[string]any{}, fmt.Errorf("parse json body: %w", err)
	}
	if body == nil {
		return map[string]any{}, nil
	}
	return body, nil
}

// pickString returns the trimmed string under key; non-strings count as absent.
func pickString(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
