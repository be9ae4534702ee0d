package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

const (
	headerContentType  = "Content-Type"
	headerAllowOrigin  = "Access-Control-Allow-Origin"
	headerAllowMethods = "Access-Control-Allow-Methods"
	headerAllowHeaders = "Access-Control-Allow-Headers"
)

// preflight answers an OPTIONS request before any other processing.
func preflight(methods string) events.APIGatewayV2HTTPResponse {
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusNoContent,
		Headers: map[string]string{
			headerAllowOrigin:  "*",
			headerAllowMethods: methods,
			headerAllowHeaders: "Content-Type",
		},
	}
}

func jsonResp(status int, v any) events.APIGatewayV2HTTPResponse {
	b, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		b = []byte(`{"error":"response encoding failed"}`)
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers: map[string]string{
			headerContentType: "application/json",
			headerAllowOrigin: "*",
		},
		Body: string(b),
	}
}

type chatReply struct {
	Reply string `json:"reply"`
}

type contactReply struct {
	OK   bool  `json:"ok"`
	Sent *bool `json:"sent,omitempty"`
}

type errorReply struct {
	Error string `json:"error"`
}
