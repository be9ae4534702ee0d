package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"ruralcyberguard/internal/config"
	"ruralcyberguard/internal/llm"
)

const (
	chatMethods = "GET, POST, OPTIONS"

	replyNoContent = "Sorry, I couldn't generate a response to that. Could you try asking in a different way?"
)

// ChatHandler answers website chat questions. Every ladder rung returns 200
// with a reply; failures are only visible in the logs.
type ChatHandler struct {
	cfg       config.ChatConfig
	completer llm.Completer
	log       *slog.Logger

	greeting         string
	replyUnconfig    string
	replyUpstreamErr string
	replyUnexpected  string
}

func NewChatHandler(cfg *config.Config, completer llm.Completer, logger *slog.Logger) *ChatHandler {
	human := fmt.Sprintf(" You can reach a member of the team on %s or at %s.", cfg.Chat.HumanPhone, cfg.Chat.HumanEmail)
	return &ChatHandler{
		cfg:       cfg.Chat,
		completer: completer,
		log:       logger,

		greeting: fmt.Sprintf("Hi, I'm the %s assistant. Ask me anything about keeping your farm or rural business safe online.", cfg.BrandName),
		replyUnconfig: "Our AI assistant isn't fully configured yet, so I can't answer right now. " +
			"Please contact a human for help." + human,
		replyUpstreamErr: "Sorry, I'm having trouble talking to the AI service at the moment." + human,
		replyUnexpected:  "Sorry, something went wrong while answering your question." + human,
	}
}

func (h *ChatHandler) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := requestMethod(req)
	if method == http.MethodOptions {
		return preflight(chatMethods), nil
	}
	h.log.Info("chat request", "method", method, "path", req.RawPath)

	return h.respond(h.evaluate(ctx, method, req)), nil
}

func (h *ChatHandler) evaluate(ctx context.Context, method string, req events.APIGatewayV2HTTPRequest) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = unexpected(fmt.Errorf("panic: %v", r))
		}
	}()

	message := ""
	if method == http.MethodPost {
		body, err := decodeBody(req)
		if err != nil {
			h.log.Warn("chat body ignored", "error", err)
		}
		message = pickString(body, "message")
	}

	if message == "" {
		return emptyInput()
	}
	if !h.cfg.Configured() || h.completer == nil {
		h.log.Warn("llm not configured, returning fallback reply", "provider", h.cfg.Provider)
		return unconfigured()
	}

	reply, err := h.completer.Complete(ctx, h.cfg.Persona(), message)
	var se *llm.StatusError
	switch {
	case err == nil:
		return success(reply)
	case errors.Is(err, llm.ErrNoContent):
		return success(replyNoContent)
	case errors.As(err, &se):
		return upstreamError(se.StatusCode, se.Body)
	default:
		return unexpected(err)
	}
}

func (h *ChatHandler) respond(o Outcome) events.APIGatewayV2HTTPResponse {
	var reply string
	switch o.Kind {
	case OutcomeSuccess:
		reply = o.Payload
	case OutcomeEmptyInput:
		reply = h.greeting
	case OutcomeUnconfigured:
		reply = h.replyUnconfig
	case OutcomeUpstreamError:
		h.log.Error("llm upstream error", "status", o.Status, "body", o.Body)
		reply = h.replyUpstreamErr
	default:
		h.log.Error("chat handler error", "outcome", o.Kind.String(), "error", o.Err)
		reply = h.replyUnexpected
	}
	return jsonResp(http.StatusOK, chatReply{Reply: reply})
}
