package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"ruralcyberguard/internal/app"
)

func main() {
	ctx := context.Background()

	a, err := app.New(ctx)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	defer a.Close()

	a.Logger.Info("health function starting", "wiring", a.String())
	lambda.Start(a.HealthHandler())
}
