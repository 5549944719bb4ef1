// internal/workers/communication/send-decision-notification/handler.go
package senddecisionnotification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"lending-workers/internal/common/aws"
	"lending-workers/internal/common/camunda"
	"lending-workers/internal/common/errors"
	"lending-workers/internal/common/logger"
	"lending-workers/internal/common/metrics"
	"lending-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "send-decision-notification"
)

// Define interfaces for mocking
type SMSSender interface {
	SendSMS(ctx context.Context, phone, message, senderID string) (string, error)
}

type EmailSender interface {
	SendEmail(ctx context.Context, e aws.Email) (string, error)
}

type Handler struct {
	config       *Config
	sms          SMSSender
	email        EmailSender
	validator    *validation.Validator
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

// NewHandler builds the handler. A nil sender disables its channel.
func NewHandler(config *Config, sms SMSSender, email EmailSender, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		sms:          sms,
		email:        email,
		validator:    validator,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	input, err := h.parseInput(job.Variables)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"error": err})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) parseInput(variables string) (*Input, error) {
	if h.validator != nil {
		res, err := h.validator.ValidateVariables(TaskType, variables)
		if err != nil {
			return nil, errors.NewInputParseError(err)
		}
		if !res.Valid {
			return nil, errors.NewNotificationValidationError(strings.Join(res.GetErrorMessages(), "; "))
		}
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewInputParseError(err)
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := validateRecipient(input); err != nil {
		return nil, err
	}

	msg, err := renderMessage(input)
	if err != nil {
		return nil, errors.NewInternalError(fmt.Errorf("render decision message: %w", err))
	}

	output := &Output{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
		SentAt:         time.Now().UTC().Format(time.RFC3339),
	}

	if h.config.SMSEnabled && h.sms != nil && input.Phone != "" {
		id, err := h.sms.SendSMS(ctx, input.Phone, msg.SMS, h.config.SenderID)
		if err != nil {
			return nil, errors.NewNotificationSendFailedError(ChannelSMS, err).
				WithMetadata("assessmentId", input.AssessmentID)
		}
		h.delivered(output, ChannelSMS, id)
	}

	if h.config.EmailEnabled && h.email != nil && input.Email != "" {
		id, err := h.email.SendEmail(ctx, aws.Email{
			From:    h.config.FromEmail,
			To:      input.Email,
			Subject: msg.Subject,
			Text:    msg.Email,
		})
		if err != nil {
			return nil, errors.NewNotificationSendFailedError(ChannelEmail, err).
				WithMetadata("assessmentId", input.AssessmentID).
				WithMetadata("smsDelivered", len(output.Deliveries) > 0)
		}
		h.delivered(output, ChannelEmail, id)
	}

	h.logger.Info("decision notification processed", map[string]interface{}{
		"notificationId": output.NotificationID,
		"assessmentId":   input.AssessmentID,
		"approved":       input.Assessment.Approved,
		"status":         output.Status,
		"deliveries":     len(output.Deliveries),
	})
	return output, nil
}

func (h *Handler) delivered(output *Output, channel, messageID string) {
	output.Deliveries = append(output.Deliveries, Delivery{Channel: channel, MessageID: messageID})
	output.Status = StatusSent
	metrics.NotificationsSent.WithLabelValues(channel).Inc()
}

func validateRecipient(input *Input) error {
	if input.Phone == "" && input.Email == "" {
		return errors.NewNotificationValidationError("phone or email is required")
	}
	if input.Phone != "" && !validation.ValidatePhone(input.Phone) {
		return errors.NewNotificationValidationError(fmt.Sprintf("phone is not E.164: %s", input.Phone))
	}
	if input.Email != "" && !validation.ValidateEmail(input.Email) {
		return errors.NewNotificationValidationError(fmt.Sprintf("invalid email: %s", input.Email))
	}
	if !input.Assessment.RiskLevel.Valid() {
		return errors.NewNotificationValidationError(fmt.Sprintf("assessment has unknown riskLevel %q", input.Assessment.RiskLevel))
	}
	return nil
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errorHandler.HandleJobError(context.Background(), client, job, err)
}
