// Package notify sends order confirmations over SES email and SNS SMS.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	commonerrors "dialogue-orchestrator/internal/common/errors"
	"dialogue-orchestrator/internal/common/logger"
	"dialogue-orchestrator/internal/models"
	"dialogue-orchestrator/internal/store"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/google/uuid"
)

var (
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
)

// Notifier is what the order agent calls once an order is placed.
type Notifier interface {
	OrderPlaced(ctx context.Context, order models.Order) (*Receipt, error)
}

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Service struct {
	config    *Config
	contacts  store.Users
	sesClient SESService
	snsClient SNSService
	now       func() time.Time
	logger    logger.Logger
}

// NewService wires the channels. A nil client disables its channel
// regardless of config.
func NewService(config *Config, contacts store.Users, sesClient SESService, snsClient SNSService, log logger.Logger) *Service {
	return &Service{
		config:    config,
		contacts:  contacts,
		sesClient: sesClient,
		snsClient: snsClient,
		now:       time.Now,
		logger:    log.WithFields(map[string]interface{}{"component": "notify"}),
	}
}

func (s *Service) OrderPlaced(ctx context.Context, order models.Order) (*Receipt, error) {
	receipt := &Receipt{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
		SentAt:         s.now().UTC().Format(time.RFC3339),
	}

	emailOn := s.config.EmailEnabled && s.sesClient != nil
	smsOn := s.config.SMSEnabled && s.snsClient != nil
	if !emailOn && !smsOn {
		return receipt, nil
	}

	contact, err := s.contacts.GetContact(ctx, order.UserID)
	if err != nil {
		s.logger.Warn("recipient not found", map[string]interface{}{
			"userId": order.UserID,
			"error":  err,
		})
		return receipt, nil
	}

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	data := map[string]interface{}{
		"orderId":        order.ID,
		"restaurantName": order.RestaurantName,
		"total":          fmt.Sprintf("%.0f", order.Total),
		"address":        order.Address,
	}
	subject := renderTemplate(orderPlacedSubject, data)
	body := renderTemplate(orderPlacedBody, data)

	if emailOn && contact.Email != "" {
		if err := s.sendEmail(ctx, contact.Email, subject, body); err != nil {
			receipt.Status = StatusFailed
			return receipt, fmt.Errorf("%w: %v", ErrNotificationSendFailed,
				commonerrors.NewNotificationSendFailedError(ChannelEmail, err))
		}
		receipt.Channels = append(receipt.Channels, ChannelEmail)
	}

	if smsOn && contact.Phone != "" {
		if err := s.sendSMS(ctx, contact.Phone, body); err != nil {
			receipt.Status = StatusFailed
			return receipt, fmt.Errorf("%w: %v", ErrNotificationSendFailed,
				commonerrors.NewNotificationSendFailedError(ChannelSMS, err))
		}
		receipt.Channels = append(receipt.Channels, ChannelSMS)
	}

	if len(receipt.Channels) > 0 {
		receipt.Status = StatusSent
	}

	s.logger.Info("order notification processed", map[string]interface{}{
		"orderId":  order.ID,
		"status":   receipt.Status,
		"channels": receipt.Channels,
	})
	return receipt, nil
}

func (s *Service) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := s.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(s.config.FromEmail),
	})
	return err
}

func (s *Service) sendSMS(ctx context.Context, to, message string) error {
	input := &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	}
	if s.config.SenderID != "" {
		input.MessageAttributes = map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(s.config.SenderID),
			},
		}
	}
	_, err := s.snsClient.Publish(ctx, input)
	return err
}

// renderTemplate replaces {{key}} placeholders and drops any left unfilled.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl
	for k, v := range data {
		value := ""
		if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, "{{"+k+"}}", value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+2:]
	}
	return result
}

// Disabled never sends anything.
type Disabled struct{}

func (Disabled) OrderPlaced(ctx context.Context, order models.Order) (*Receipt, error) {
	return &Receipt{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
		SentAt:         time.Now().UTC().Format(time.RFC3339),
	}, nil
}
