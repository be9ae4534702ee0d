// Package app performs the cold-start wiring shared by the Lambda mains and
// the dev server.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	bedrockruntime "github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"ruralcyberguard/internal/alerts"
	"ruralcyberguard/internal/config"
	"ruralcyberguard/internal/db"
	"ruralcyberguard/internal/handlers"
	"ruralcyberguard/internal/llm"
	"ruralcyberguard/internal/logging"
	"ruralcyberguard/internal/mail"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger

	aws    *aws.Config
	closer io.Closer
}

// New loads configuration and the logger. AWS config is loaded only when some
// option needs it; if that fails the AWS-backed features are skipped.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	for _, w := range cfg.Warnings() {
		logger.Warn("config option ignored", "detail", w)
	}

	a := &App{Config: cfg, Logger: logger, closer: closer}

	if needsAWS(cfg) {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			logger.Warn("aws config unavailable, aws-backed features disabled", "error", err)
		} else {
			a.aws = &awsCfg
		}
	}

	if cfg.NeedsSecrets() && a.aws != nil {
		a.resolveSecrets(ctx, ssm.NewFromConfig(*a.aws))
	}
	return a, nil
}

func (a *App) resolveSecrets(ctx context.Context, client config.ParameterClient) {
	a.Config.ResolveSecrets(ctx, client, a.Logger)
}

func (a *App) Close() error {
	return a.closer.Close()
}

func needsAWS(cfg *config.Config) bool {
	return cfg.NeedsSecrets() ||
		cfg.Chat.Provider == config.ProviderBedrock ||
		cfg.Contact.EnquiriesTable != "" ||
		cfg.Contact.AlertTopicArn != ""
}

// Completer returns nil when chat is not configured so the handler degrades.
func (a *App) Completer() llm.Completer {
	c := a.Config.Chat
	if !c.Configured() {
		return nil
	}
	if c.Provider == config.ProviderBedrock {
		if a.aws == nil {
			return nil
		}
		return llm.NewBedrockClient(bedrockruntime.NewFromConfig(*a.aws), c.BedrockModelID, c.MaxTokens)
	}
	return llm.NewOpenAIClient(c.BaseURL, c.APIKey, c.Model, c.MaxTokens, c.Timeout)
}

func (a *App) Mailer() mail.Sender {
	e := a.Config.Email
	if !e.Configured() {
		return nil
	}
	return mail.NewPostmarkClient(e.BaseURL, e.ServerToken, e.Timeout)
}

func (a *App) ChatHandler() *handlers.ChatHandler {
	return handlers.NewChatHandler(a.Config, a.Completer(), a.Logger)
}

func (a *App) ContactHandler() *handlers.ContactHandler {
	h := handlers.NewContactHandler(a.Config, a.Mailer(), a.Logger)
	if s := a.Store(); s != nil {
		h.WithStore(s)
	}
	if n := a.Alerter(); n != nil {
		h.WithAlerts(n)
	}
	return h
}

// Store returns the DynamoDB enquiry store, or nil without AWS or a table.
func (a *App) Store() handlers.EnquiryRecorder {
	t := a.Config.Contact.EnquiriesTable
	if a.aws == nil || t == "" {
		return nil
	}
	return db.NewEnquiryStore(db.NewDynamoClient(*a.aws), t)
}

// Alerter returns the SNS notifier, or nil without AWS or a topic.
func (a *App) Alerter() handlers.EnquiryAlerter {
	arn := a.Config.Contact.AlertTopicArn
	if a.aws == nil || arn == "" {
		return nil
	}
	return alerts.NewNotifier(sns.NewFromConfig(*a.aws), arn, a.Config.BrandName)
}

func (a *App) HealthHandler() func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return handlers.Health(a.Config)
}

func (a *App) String() string {
	return fmt.Sprintf("chat=%t email=%t aws=%t", a.Config.Chat.Configured(), a.Config.Email.Configured(), a.aws != nil)
}
