// internal/workers/insight/send-anomaly-alert/handler_test.go
package sendanomalyalert

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpclient "github.com/Ananya-0081/insightx-upi/internal/common/http"
	"github.com/Ananya-0081/insightx-upi/internal/common/logger"
	"github.com/Ananya-0081/insightx-upi/internal/models"
)

// ==========================
// Mock Implementations
// ==========================

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

type MockWebhookService struct {
	PostJSONFunc func(ctx context.Context, url string, payload interface{}) error
}

func (m *MockWebhookService) PostJSON(ctx context.Context, url string, payload interface{}) error {
	return m.PostJSONFunc(ctx, url, payload)
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		AWSRegion:      "ap-south-1",
		EmailEnabled:   true,
		FromEmail:      "alerts@insightx.example",
		ToEmails:       []string{"oncall@insightx.example"},
		SNSEnabled:     true,
		TopicARN:       "arn:aws:sns:ap-south-1:123456789012:upi-anomalies",
		WebhookEnabled: true,
		WebhookURL:     "http://localhost:9999/hooks/anomaly",
		WebhookTimeout: 5 * time.Second,
		Timeout:        30 * time.Second,
	}
}

func anomalousResult() *models.AggregationResult {
	return &models.AggregationResult{
		Type:    models.ResultSeries,
		Metric:  models.MetricFraudRate,
		GroupBy: models.DimCategory,
		Rows: []models.GroupRow{
			{GroupKey: "Gambling", Value: 4.8, IsAnomaly: true, ZScore: 2.41},
			{GroupKey: "Food", Value: 1.2, ZScore: -0.4},
			{GroupKey: "Shopping", Value: 1.5, ZScore: -0.1},
		},
		MatchedRows: 5000,
	}
}

func cleanResult() *models.AggregationResult {
	return &models.AggregationResult{
		Type:    models.ResultSeries,
		Metric:  models.MetricFailureRate,
		GroupBy: models.DimBank,
		Rows: []models.GroupRow{
			{GroupKey: "HDFC Bank", Value: 9.1, ZScore: 0.3},
			{GroupKey: "SBI", Value: 8.7, ZScore: -0.3},
		},
		MatchedRows: 5000,
	}
}

func okSES(t *testing.T) *MockSESService {
	return &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			assert.Equal(t, "alerts@insightx.example", *params.Source)
			assert.Equal(t, []string{"oncall@insightx.example"}, params.Destination.ToAddresses)
			return &ses.SendEmailOutput{}, nil
		},
	}
}

func okSNS(t *testing.T) *MockSNSService {
	return &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			assert.Contains(t, *params.TopicArn, "upi-anomalies")
			return &sns.PublishOutput{}, nil
		},
	}
}

func okWebhook() *MockWebhookService {
	return &MockWebhookService{
		PostJSONFunc: func(ctx context.Context, url string, payload interface{}) error {
			return nil
		},
	}
}

func channelStatus(results []models.ChannelResult, channel models.AlertChannel) string {
	for _, r := range results {
		if r.Channel == channel {
			return r.Status
		}
	}
	return ""
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	handler := &Handler{
		config:        createTestConfig(),
		logger:        logger.NewTestLogger(t),
		sesClient:     okSES(t),
		snsClient:     okSNS(t),
		webhookClient: okWebhook(),
	}

	output, err := handler.Execute(context.Background(), &Input{
		SessionID: "session-001",
		Result:    anomalousResult(),
	})

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.False(t, output.Skipped)
	assert.NotEmpty(t, output.AlertID)
	assert.NotEmpty(t, output.SentAt)
	require.Len(t, output.Channels, 3)
	assert.Equal(t, models.AlertStatusSent, channelStatus(output.Channels, models.ChannelEmail))
	assert.Equal(t, models.AlertStatusSent, channelStatus(output.Channels, models.ChannelSNS))
	assert.Equal(t, models.AlertStatusSent, channelStatus(output.Channels, models.ChannelWebhook))
}

func TestHandler_Execute_WebhookDelivery(t *testing.T) {
	var received models.AnomalyAlert
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	config := createTestConfig()
	config.EmailEnabled = false
	config.SNSEnabled = false
	config.WebhookURL = server.URL

	handler := &Handler{
		config:        config,
		logger:        logger.NewTestLogger(t),
		webhookClient: httpclient.NewClient(config.WebhookTimeout),
	}

	output, err := handler.Execute(context.Background(), &Input{
		SessionID: "session-002",
		Result:    anomalousResult(),
	})

	require.NoError(t, err)
	assert.False(t, output.Skipped)
	assert.Equal(t, output.AlertID, received.ID)
	assert.Equal(t, models.MetricFraudRate, received.Metric)
	assert.Equal(t, models.DimCategory, received.GroupBy)
	require.Len(t, received.Anomalies, 1)
	assert.Equal(t, "Gambling", received.Anomalies[0].GroupKey)
	assert.Contains(t, received.Summary, "Gambling")
}

func TestHandler_Execute_NoAnomaliesSkips(t *testing.T) {
	handler := &Handler{
		config:        createTestConfig(),
		logger:        logger.NewTestLogger(t),
		sesClient:     failingSES(t),
		snsClient:     failingSNS(t),
		webhookClient: okWebhook(),
	}

	output, err := handler.Execute(context.Background(), &Input{
		SessionID: "session-003",
		Result:    cleanResult(),
	})

	require.NoError(t, err)
	assert.True(t, output.Skipped)
	assert.Empty(t, output.AlertID)
	assert.Empty(t, output.Channels)
}

func TestHandler_Execute_AllChannelsDisabledSkips(t *testing.T) {
	config := createTestConfig()
	config.EmailEnabled = false
	config.SNSEnabled = false
	config.WebhookEnabled = false

	handler := &Handler{
		config: config,
		logger: logger.NewTestLogger(t),
	}

	output, err := handler.Execute(context.Background(), &Input{
		SessionID: "session-004",
		Result:    anomalousResult(),
	})

	require.NoError(t, err)
	assert.True(t, output.Skipped)
}

func TestHandler_Execute_PartialFailureStillCompletes(t *testing.T) {
	handler := &Handler{
		config:        createTestConfig(),
		logger:        logger.NewTestLogger(t),
		sesClient:     failingSES(t),
		snsClient:     okSNS(t),
		webhookClient: okWebhook(),
	}

	output, err := handler.Execute(context.Background(), &Input{
		SessionID: "session-005",
		Result:    anomalousResult(),
	})

	require.NoError(t, err)
	assert.False(t, output.Skipped)
	require.Len(t, output.Channels, 3)
	assert.Equal(t, models.AlertStatusFailed, channelStatus(output.Channels, models.ChannelEmail))
	assert.Equal(t, models.AlertStatusSent, channelStatus(output.Channels, models.ChannelSNS))
}

// ==========================
// Error Handling Tests
// ==========================

func failingSES(t *testing.T) *MockSESService {
	return &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("ses: throttled")
		},
	}
}

func failingSNS(t *testing.T) *MockSNSService {
	return &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, errors.New("sns: topic not found")
		},
	}
}

func TestHandler_Execute_AllChannelsFailed(t *testing.T) {
	handler := &Handler{
		config:    createTestConfig(),
		logger:    logger.NewTestLogger(t),
		sesClient: failingSES(t),
		snsClient: failingSNS(t),
		webhookClient: &MockWebhookService{
			PostJSONFunc: func(ctx context.Context, url string, payload interface{}) error {
				return errors.New("webhook returned status 503")
			},
		},
	}

	output, err := handler.Execute(context.Background(), &Input{
		SessionID: "session-006",
		Result:    anomalousResult(),
	})

	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrAlertDispatchFailed)
}

func TestHandler_Execute_MissingResult(t *testing.T) {
	handler := &Handler{
		config: createTestConfig(),
		logger: logger.NewTestLogger(t),
	}

	output, err := handler.Execute(context.Background(), &Input{SessionID: "session-007"})

	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLoadConfig_Defaults(t *testing.T) {
	config := LoadConfig()

	assert.Equal(t, "ap-south-1", config.AWSRegion)
	assert.False(t, config.EmailEnabled)
	assert.False(t, config.SNSEnabled)
	assert.False(t, config.WebhookEnabled)
	assert.Equal(t, 10*time.Second, config.WebhookTimeout)
	assert.Equal(t, 30*time.Second, config.Timeout)
}
