package sns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/go-account-api/internal/config"
)

// EmailMessage is the JSON document published to the email topic. The
// subscriber owning SMTP delivery consumes it.
type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// TopicMailer hands emails to an SNS topic instead of talking SMTP directly.
type TopicMailer struct {
	client   publisher
	topicARN string
}

func NewTopicMailer(cfg *config.Config) (*TopicMailer, error) {
	if cfg.SNSTopicARN == "" {
		return nil, errors.New("SNS_TOPIC_ARN is not set")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	var opts []func(*sns.Options)
	if cfg.AWSEndpointURL != "" {
		opts = append(opts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	return &TopicMailer{client: sns.NewFromConfig(awsCfg, opts...), topicARN: cfg.SNSTopicARN}, nil
}

func (m *TopicMailer) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	payload, err := json.Marshal(EmailMessage{To: to, Subject: subject, HTML: htmlBody})
	if err != nil {
		return fmt.Errorf("marshal email message: %w", err)
	}
	_, err = m.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(m.topicARN),
		Subject:  aws.String(truncate(subject, 100)),
		Message:  aws.String(string(payload)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"kind": {DataType: aws.String("String"), StringValue: aws.String("email")},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}

// truncate keeps SNS's 100-character subject limit.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
