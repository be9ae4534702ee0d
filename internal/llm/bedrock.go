package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	bedrockruntime "github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

type BedrockRuntime interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockClient sends the persona and message to a Claude model on Bedrock
// using the Anthropic messages payload.
type BedrockClient struct {
	rt        BedrockRuntime
	modelID   string
	maxTokens int
}

func NewBedrockClient(rt BedrockRuntime, modelID string, maxTokens int) *BedrockClient {
	return &BedrockClient{rt: rt, modelID: modelID, maxTokens: maxTokens}
}

func (c *BedrockClient) Complete(ctx context.Context, system, message string) (string, error) {
	payload := map[string]any{
		"anthropic_version": "bedrock-2023-05-31",
		"max_tokens":        c.maxTokens,
		"system":            system,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": message},
				},
			},
		},
	}
	body, _ := json.Marshal(payload)

	out, err := c.rt.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		var re *awshttp.ResponseError
		if errors.As(err, &re) {
			return "", &StatusError{StatusCode: re.HTTPStatusCode(), Body: re.Error()}
		}
		return "", fmt.Errorf("bedrock InvokeModel: %w", err)
	}

	// { "content":[{"type":"text","text":"..."}], ... }
	var raw struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(out.Body, &raw); err != nil {
		return "", fmt.Errorf("bedrock response unmarshal: %w", err)
	}

	var text strings.Builder
	found := false
	for _, part := range raw.Content {
		if part.Type == "text" {
			text.WriteString(part.Text)
			found = true
		}
	}
	if !found {
		return "", ErrNoContent
	}
	return text.String(), nil
}
