// Package alerts notifies operators about enquiries that still need manual
// follow-up.
package alerts

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"ruralcyberguard/internal/enquiry"
)

// SNS subjects are limited to 100 characters.
const maxSubject = 100

type PublishAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Notifier struct {
	sns      PublishAPI
	topicArn string
	brand    string
}

func NewNotifier(client PublishAPI, topicArn, brand string) *Notifier {
	return &Notifier{sns: client, topicArn: topicArn, brand: brand}
}

// EnquiryNotSent publishes the enquiry with the reason it was not emailed.
func (n *Notifier) EnquiryNotSent(ctx context.Context, e enquiry.Enquiry, reason string) error {
	subject := enquiry.Truncate("[not emailed] "+e.Subject(n.brand), maxSubject)
	message := fmt.Sprintf("Reason: %s\n\n%s", reason, e.Text(n.brand))

	_, err := n.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("sns Publish: %w", err)
	}
	return nil
}
