package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-playground/validator/v10"

	"ruralcyberguard/internal/config"
	"ruralcyberguard/internal/enquiry"
	"ruralcyberguard/internal/mail"
)

const (
	contactMethods = "POST, OPTIONS"

	errMissingFields = "Missing required fields (name, email, message)."
	errServer        = "Server error processing contact request."
)

type EnquiryRecorder interface {
	Save(ctx context.Context, e enquiry.Enquiry, sent bool) (string, error)
}

type EnquiryAlerter interface {
	EnquiryNotSent(ctx context.Context, e enquiry.Enquiry, reason string) error
}

// ContactInput is the trimmed form submission. Company is the honeypot.
type ContactInput struct {
	Name    string `validate:"required"`
	Email   string `validate:"required"`
	Phone   string
	Message string `validate:"required"`
	Company string
	Source  string
}

func normalizeContact(body map[string]any) ContactInput {
	in := ContactInput{
		Name:    pickString(body, "name"),
		Email:   pickString(body, "email"),
		Phone:   pickString(body, "phone"),
		Message: pickString(body, "message"),
		Company: pickString(body, "company"),
		Source:  pickString(body, "source"),
	}
	if in.Source == "" {
		in.Source = enquiry.DefaultSource
	}
	return in
}

// ContactHandler validates lead-capture submissions and forwards them by email.
type ContactHandler struct {
	cfg      config.EmailConfig
	brand    string
	mailer   mail.Sender
	store    EnquiryRecorder
	alerts   EnquiryAlerter
	log      *slog.Logger
	validate *validator.Validate
	now      func() time.Time
}

func NewContactHandler(cfg *config.Config, mailer mail.Sender, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		cfg:      cfg.Email,
		brand:    cfg.BrandName,
		mailer:   mailer,
		log:      logger,
		validate: validator.New(),
		now:      time.Now,
	}
}

// WithStore keeps a durable record of every validated enquiry.
func (h *ContactHandler) WithStore(s EnquiryRecorder) *ContactHandler {
	h.store = s
	return h
}

// WithAlerts notifies operators when an enquiry was not emailed.
func (h *ContactHandler) WithAlerts(a EnquiryAlerter) *ContactHandler {
	h.alerts = a
	return h
}

func (h *ContactHandler) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := requestMethod(req)
	if method == http.MethodOptions {
		return preflight(contactMethods), nil
	}
	h.log.Info("contact request", "method", method, "path", req.RawPath)

	return h.respond(h.evaluate(ctx, req)), nil
}

func (h *ContactHandler) evaluate(ctx context.Context, req events.APIGatewayV2HTTPRequest) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = unexpected(fmt.Errorf("panic: %v", r))
		}
	}()

	body, err := decodeBody(req)
	if err != nil {
		h.log.Warn("contact body ignored", "error", err)
	}
	in := normalizeContact(body)

	if in.Company != "" {
		return spamSuppressed()
	}
	if err := h.validate.Struct(in); err != nil {
		return validationFailed(errMissingFields)
	}

	enq := enquiry.Enquiry{
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Message:    in.Message,
		Source:     in.Source,
		ReceivedAt: h.now().UTC(),
	}
	h.log.Info("new contact enquiry",
		"name", enq.Name,
		"email", enq.Email,
		"phone", enq.Phone,
		"message", enquiry.Truncate(enq.Message, enquiry.LogMessageLimit),
		"source", enq.Source,
		"receivedAt", enq.ReceivedAt.Format(time.RFC3339),
	)

	if !h.cfg.Configured() || h.mailer == nil {
		h.log.Warn("email provider not configured, enquiry not sent")
		h.record(ctx, enq, false, "email provider not configured")
		return unconfigured()
	}

	err = h.mailer.Send(ctx, enq.EmailMessage(h.cfg.FromEmail, h.cfg.ToEmail, h.brand, h.cfg.MessageStream))
	var se *mail.StatusError
	switch {
	case err == nil:
		h.record(ctx, enq, true, "")
		return success("")
	case errors.As(err, &se):
		h.record(ctx, enq, false, fmt.Sprintf("email provider returned status %d", se.StatusCode))
		return upstreamError(se.StatusCode, se.Body)
	default:
		h.record(ctx, enq, false, err.Error())
		return unexpected(err)
	}
}

// record is best-effort: failures are logged and never change the outcome.
func (h *ContactHandler) record(ctx context.Context, enq enquiry.Enquiry, sent bool, reason string) {
	if h.store != nil {
		if id, err := h.store.Save(ctx, enq, sent); err != nil {
			h.log.Error("enquiry record failed", "error", err)
		} else {
			h.log.Debug("enquiry recorded", "id", id)
		}
	}
	if !sent && h.alerts != nil {
		if err := h.alerts.EnquiryNotSent(ctx, enq, reason); err != nil {
			h.log.Error("enquiry alert failed", "error", err)
		}
	}
}

func (h *ContactHandler) respond(o Outcome) events.APIGatewayV2HTTPResponse {
	sent := func(v bool) *bool { return &v }

	switch o.Kind {
	case OutcomeSpamSuppressed:
		return jsonResp(http.StatusOK, contactReply{OK: true})
	case OutcomeValidationFailed:
		return jsonResp(http.StatusBadRequest, errorReply{Error: o.Reason})
	case OutcomeUnconfigured:
		return jsonResp(http.StatusOK, contactReply{OK: true, Sent: sent(false)})
	case OutcomeUpstreamError:
		h.log.Error("email provider error", "status", o.Status, "body", o.Body)
		return jsonResp(http.StatusOK, contactReply{OK: true, Sent: sent(false)})
	case OutcomeSuccess:
		return jsonResp(http.StatusOK, contactReply{OK: true, Sent: sent(true)})
	default:
		h.log.Error("contact handler error", "outcome", o.Kind.String(), "error", o.Err)
		return jsonResp(http.StatusInternalServerError, errorReply{Error: errServer})
	}
}
