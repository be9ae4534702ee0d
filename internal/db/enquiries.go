package db

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"

	"ruralcyberguard/internal/enquiry"
)

// EnquiryRecord is one row per submission. Replays produce new rows; nothing
// is deduplicated.
type EnquiryRecord struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	ID         string `dynamodbav:"ID"`
	Name       string `dynamodbav:"Name"`
	Email      string `dynamodbav:"Email"`
	Phone      string `dynamodbav:"Phone,omitempty"`
	Message    string `dynamodbav:"Message"`
	Source     string `dynamodbav:"Source"`
	ReceivedAt string `dynamodbav:"ReceivedAt"`
	Sent       bool   `dynamodbav:"Sent"`
}

type EnquiryStore struct {
	ddb   PutItemAPI
	table string
	newID func() string
}

func NewEnquiryStore(ddb PutItemAPI, table string) *EnquiryStore {
	return &EnquiryStore{ddb: ddb, table: table, newID: uuid.NewString}
}

// Save writes the enquiry and returns the generated ID.
func (s *EnquiryStore) Save(ctx context.Context, e enquiry.Enquiry, sent bool) (string, error) {
	id := s.newID()
	rec := EnquiryRecord{
		PK:         "ENQUIRY#" + id,
		SK:         "RECEIVED#" + e.ReceivedAt.UTC().Format(time.RFC3339Nano),
		ID:         id,
		Name:       e.Name,
		Email:      e.Email,
		Phone:      e.Phone,
		Message:    e.Message,
		Source:     e.Source,
		ReceivedAt: e.ReceivedAt.UTC().Format(time.RFC3339),
		Sent:       sent,
	}

	av, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return "", fmt.Errorf("marshal enquiry: %w", err)
	}
	_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	if err != nil {
		return "", fmt.Errorf("enquiry PutItem: %w", err)
	}
	return id, nil
}
