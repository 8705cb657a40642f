// internal/workers/insight/send-anomaly-alert/handler.go
package sendanomalyalert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	awsclients "github.com/Ananya-0081/insightx-upi/internal/common/aws"
	httpclient "github.com/Ananya-0081/insightx-upi/internal/common/http"
	"github.com/Ananya-0081/insightx-upi/internal/common/logger"
	"github.com/Ananya-0081/insightx-upi/internal/common/metrics"
	"github.com/Ananya-0081/insightx-upi/internal/models"
)

const (
	TaskType = "send-anomaly-alert"
)

var (
	ErrInvalidInput        = errors.New("INVALID_INPUT")
	ErrAlertDispatchFailed = errors.New("ALERT_DISPATCH_FAILED")
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type WebhookService interface {
	PostJSON(ctx context.Context, url string, payload interface{}) error
}

type Handler struct {
	config        *Config
	logger        logger.Logger
	sesClient     SESService
	snsClient     SNSService
	webhookClient WebhookService
}

func NewHandler(config *Config, log logger.Logger) (*Handler, error) {
	ctx := context.Background()
	sesClient, err := awsclients.NewSESClient(ctx, config.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("init SES client: %w", err)
	}
	snsClient, err := awsclients.NewSNSClient(ctx, config.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("init SNS client: %w", err)
	}

	return &Handler{
		config:        config,
		logger:        log.WithFields(map[string]interface{}{"taskType": TaskType}),
		sesClient:     sesClient,
		snsClient:     snsClient,
		webhookClient: httpclient.NewClient(config.WebhookTimeout),
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, fmt.Errorf("%w: parse input: %v", ErrInvalidInput, err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		retries := int32(0)
		if errors.Is(err, ErrAlertDispatchFailed) {
			retries = 3
		}
		h.failJob(client, job, err, retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Result == nil {
		return nil, fmt.Errorf("%w: aggregationResult is missing", ErrInvalidInput)
	}

	anomalies := flaggedRows(input.Result)
	if len(anomalies) == 0 {
		h.logger.Info("no anomalies to alert on", map[string]interface{}{
			"sessionId": input.SessionID,
		})
		return &Output{Skipped: true}, nil
	}

	if !h.config.EmailEnabled && !h.config.SNSEnabled && !h.config.WebhookEnabled {
		h.logger.Warn("anomalies found but every alert channel is disabled", map[string]interface{}{
			"sessionId": input.SessionID,
			"anomalies": len(anomalies),
		})
		return &Output{Skipped: true}, nil
	}

	alert := h.buildAlert(input, anomalies)

	var results []models.ChannelResult
	sent := 0

	if h.config.EmailEnabled {
		results = append(results, h.dispatch(ctx, models.ChannelEmail, alert, h.sendEmail))
	}
	if h.config.SNSEnabled {
		results = append(results, h.dispatch(ctx, models.ChannelSNS, alert, h.publishSNS))
	}
	if h.config.WebhookEnabled {
		results = append(results, h.dispatch(ctx, models.ChannelWebhook, alert, h.postWebhook))
	}

	for _, r := range results {
		if r.Status == models.AlertStatusSent {
			sent++
		}
	}
	if sent == 0 {
		return nil, fmt.Errorf("%w: every enabled channel failed", ErrAlertDispatchFailed)
	}

	h.logger.Info("anomaly alert dispatched", map[string]interface{}{
		"sessionId": input.SessionID,
		"alertId":   alert.ID,
		"anomalies": len(anomalies),
		"channels":  len(results),
		"sent":      sent,
	})

	return &Output{
		AlertID:  alert.ID,
		Channels: results,
		SentAt:   alert.CreatedAt,
	}, nil
}

// flaggedRows collects every group the detector marked, from both the main
// series and the scalar breakdown.
func flaggedRows(res *models.AggregationResult) []models.GroupRow {
	var out []models.GroupRow
	for _, r := range res.Rows {
		if r.IsAnomaly {
			out = append(out, r)
		}
	}
	for _, r := range res.Breakdown {
		if r.IsAnomaly {
			out = append(out, r)
		}
	}
	return out
}

func (h *Handler) buildAlert(input *Input, anomalies []models.GroupRow) *models.AnomalyAlert {
	parts := make([]string, 0, len(anomalies))
	for _, a := range anomalies {
		parts = append(parts, fmt.Sprintf("%s (z=%.2f)", a.GroupKey, a.ZScore))
	}
	summary := fmt.Sprintf("%d anomalous group(s) in %s by %s: %s",
		len(anomalies), input.Result.Metric, input.Result.GroupBy, strings.Join(parts, ", "))

	return &models.AnomalyAlert{
		ID:        uuid.New().String(),
		SessionID: input.SessionID,
		Metric:    input.Result.Metric,
		GroupBy:   input.Result.GroupBy,
		Filters:   input.Result.AppliedFilters,
		Anomalies: anomalies,
		Summary:   summary,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func (h *Handler) dispatch(ctx context.Context, channel models.AlertChannel, alert *models.AnomalyAlert, send func(context.Context, *models.AnomalyAlert) error) models.ChannelResult {
	result := models.ChannelResult{Channel: channel, Status: models.AlertStatusSent}
	if err := send(ctx, alert); err != nil {
		h.logger.Error("alert channel failed", map[string]interface{}{
			"channel": string(channel),
			"alertId": alert.ID,
			"error":   err.Error(),
		})
		result.Status = models.AlertStatusFailed
		result.Detail = err.Error()
	}
	metrics.AlertsDispatched.WithLabelValues(string(channel), result.Status).Inc()
	return result
}

func (h *Handler) sendEmail(ctx context.Context, alert *models.AnomalyAlert) error {
	subject := fmt.Sprintf("Anomaly alert: %s by %s", alert.Metric, alert.GroupBy)
	body := alert.Summary

	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: h.config.ToEmails,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) publishSNS(ctx context.Context, alert *models.AnomalyAlert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	_, err = h.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(h.config.TopicARN),
		Subject:  aws.String(fmt.Sprintf("Anomaly alert: %s", alert.Metric)),
		Message:  aws.String(string(payload)),
	})
	return err
}

func (h *Handler) postWebhook(ctx context.Context, alert *models.AnomalyAlert) error {
	ctx, cancel := context.WithTimeout(ctx, h.config.WebhookTimeout)
	defer cancel()
	return h.webhookClient.PostJSON(ctx, h.config.WebhookURL, alert)
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)

	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error, retries int32) {
	errorCode := "UNKNOWN_ERROR"
	switch {
	case errors.Is(err, ErrInvalidInput):
		errorCode = "INVALID_INPUT"
	case errors.Is(err, ErrAlertDispatchFailed):
		errorCode = "ALERT_DISPATCH_FAILED"
	}

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"error":     err.Error(),
		"errorCode": errorCode,
	})

	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(errorCode + ": " + err.Error()).
		Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
