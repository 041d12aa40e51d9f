package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"shortstory/internal/logger"
	"shortstory/internal/survey"
	"shortstory/internal/validation"
)

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// NotificationService e-mails the researcher a short summary when a
// participant completes. Answers are never included.
type NotificationService struct {
	client    sesAPI
	fromEmail string
	fromName  string
	toEmail   string
	enabled   bool
	log       *logger.Logger
}

// NewNotificationService creates the service. It is disabled unless both the
// sender and the recipient are configured.
func NewNotificationService(ctx context.Context, awsRegion, fromEmail, fromName, toEmail string, log *logger.Logger) (*NotificationService, error) {
	if fromEmail == "" || toEmail == "" {
		log.Info("Completion notifications disabled: SES_FROM_EMAIL or NOTIFY_EMAIL not configured")
		return &NotificationService{enabled: false, log: log}, nil
	}
	if err := validation.ValidateEmail("SES_FROM_EMAIL", fromEmail); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail("NOTIFY_EMAIL", toEmail); err != nil {
		return nil, err
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Info("Completion notifications enabled", "from", fromEmail, "to", toEmail, "region", awsRegion)
	return &NotificationService{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		toEmail:   toEmail,
		enabled:   true,
		log:       log,
	}, nil
}

// IsEnabled returns whether notifications are sent
func (n *NotificationService) IsEnabled() bool {
	return n.enabled
}

// NotifyCompletion sends the summary for a completed session
func (n *NotificationService) NotifyCompletion(ctx context.Context, s *survey.Session) error {
	if !n.enabled {
		return nil
	}

	subject, body := completionMessage(s)
	from := n.fromEmail
	if n.fromName != "" {
		from = fmt.Sprintf("%s <%s>", n.fromName, n.fromEmail)
	}

	_, err := n.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination:      &types.Destination{ToAddresses: []string{n.toEmail}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	n.log.Debug("Completion notification sent", "session_id", s.ID)
	return nil
}

func completionMessage(s *survey.Session) (string, string) {
	participant := "(unknown)"
	if s.Participant != nil {
		participant = s.Participant.ID
	}

	var status string
	switch s.Outcome {
	case survey.OutcomeSaved:
		status = "saved to the response store"
	case survey.OutcomeLocalOnly:
		status = "NOT saved: no response store is configured"
	default:
		status = "NOT saved: " + s.OutcomeMessage
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Participant %s completed the Short Story Task.\n\n", participant)
	fmt.Fprintf(&b, "Story reading time: %.1f s\n", s.Timing.StoryReadSeconds)
	fmt.Fprintf(&b, "Total time: %.1f s\n", s.Timing.TotalSeconds)
	fmt.Fprintf(&b, "Status: %s\n", status)
	return "SST completion: " + participant, b.String()
}
