// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Pipeline error codes, grouped by the worker that raises them.
const (
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	ErrCodeInvalidQueryText ErrorCode = "INVALID_QUERY_TEXT"
	ErrCodeQueryParseFailed ErrorCode = "QUERY_PARSE_FAILED"

	ErrCodeContextStoreUnavailable ErrorCode = "CONTEXT_STORE_UNAVAILABLE"
	ErrCodeContextStoreTimeout     ErrorCode = "CONTEXT_STORE_TIMEOUT"
	ErrCodeContextMergeFailed      ErrorCode = "CONTEXT_MERGE_FAILED"

	ErrCodeDatasetLoadFailed             ErrorCode = "DATASET_LOAD_FAILED"
	ErrCodeDatabaseConnectionFailed      ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed          ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"

	ErrCodeUnsupportedIntent    ErrorCode = "UNSUPPORTED_INTENT"
	ErrCodeUnknownDimension     ErrorCode = "UNKNOWN_DIMENSION"
	ErrCodeAggregationFailed    ErrorCode = "AGGREGATION_FAILED"
	ErrCodeAggregationTimeout   ErrorCode = "AGGREGATION_TIMEOUT"
	ErrCodeEmptyResult          ErrorCode = "EMPTY_RESULT"
	ErrCodeInsightBuildFailed   ErrorCode = "INSIGHT_BUILD_FAILED"
	ErrCodeInsightInvalid       ErrorCode = "INSIGHT_VALIDATION_FAILED"
	ErrCodeAlertDispatchFailed  ErrorCode = "ALERT_DISPATCH_FAILED"
	ErrCodeAlertWebhookTimeout  ErrorCode = "ALERT_WEBHOOK_TIMEOUT"
	ErrCodeAlertChannelDisabled ErrorCode = "ALERT_CHANNEL_DISABLED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInvalidInputError creates a non-retryable input error.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Job input variables are invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidQueryTextError creates a non-retryable query text error.
func NewInvalidQueryTextError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidQueryText,
		Message:   "Query text is missing or unusable",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryParseFailedError creates a non-retryable parse error. Parsing is
// deterministic, so retrying the same text cannot help.
func NewQueryParseFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryParseFailed,
		Message:   "Query parsing failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewContextStoreUnavailableError creates a retryable session store error.
func NewContextStoreUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeContextStoreUnavailable,
		Message:   "Session context store is unreachable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewContextStoreTimeoutError creates a retryable session store timeout error.
func NewContextStoreTimeoutError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeContextStoreTimeout,
		Message:   "Session context store timeout",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewContextMergeFailedError creates a non-retryable merge error.
func NewContextMergeFailedError(sessionID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeContextMergeFailed,
		Message:   "Context merge failed",
		Details:   fmt.Sprintf("sessionId: %s, error: %s", sessionID, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatasetLoadFailedError creates a retryable dataset load error.
func NewDatasetLoadFailedError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatasetLoadFailed,
		Message:   "Transaction dataset load failed",
		Details:   fmt.Sprintf("source: %s, error: %s", source, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(table string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("table: %s, error: %s", table, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeElasticsearchConnectionFailed,
		Message:   "Elasticsearch connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(index string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Elasticsearch query error",
		Details:   fmt.Sprintf("index: %s, error: %s", index, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnsupportedIntentError creates a non-retryable intent error.
func NewUnsupportedIntentError(intent string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnsupportedIntent,
		Message:   "Query intent is not supported by the executor",
		Details:   fmt.Sprintf("intent: %s", intent),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownDimensionError creates a non-retryable dimension error.
func NewUnknownDimensionError(dimension string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownDimension,
		Message:   "Dimension is not part of the dataset schema",
		Details:   fmt.Sprintf("dimension: %s", dimension),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAggregationFailedError creates a non-retryable aggregation error.
// Execution runs over an immutable in-memory table, so a failing query
// fails on every retry too.
func NewAggregationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAggregationFailed,
		Message:   "Aggregation execution failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAggregationTimeoutError creates a retryable aggregation timeout error.
func NewAggregationTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeAggregationTimeout,
		Message:   "Aggregation exceeded the job deadline",
		Details:   "table scan did not finish before the context deadline",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptyResultError creates a non-retryable empty result error. Raised
// only where downstream steps cannot proceed without rows.
func NewEmptyResultError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyResult,
		Message:   "Query matched no transactions",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInsightBuildFailedError creates a non-retryable insight error.
func NewInsightBuildFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInsightBuildFailed,
		Message:   "Insight assembly failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInsightInvalidError creates a non-retryable insight validation error.
func NewInsightInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInsightInvalid,
		Message:   "Insight payload failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAlertDispatchFailedError creates a retryable alert delivery error.
func NewAlertDispatchFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlertDispatchFailed,
		Message:   "Anomaly alert delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAlertWebhookTimeoutError creates a retryable webhook timeout error.
func NewAlertWebhookTimeoutError(url string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlertWebhookTimeout,
		Message:   "Anomaly alert webhook timeout",
		Details:   fmt.Sprintf("url: %s", url),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      "AUTHENTICATION_ERROR",
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes. The
// workflow definitions branch on these exact strings, so internal and BPMN
// codes stay identical.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:                  "INVALID_INPUT",
	ErrCodeInvalidQueryText:              "INVALID_QUERY_TEXT",
	ErrCodeQueryParseFailed:              "QUERY_PARSE_FAILED",
	ErrCodeContextStoreUnavailable:       "CONTEXT_STORE_UNAVAILABLE",
	ErrCodeContextStoreTimeout:           "CONTEXT_STORE_TIMEOUT",
	ErrCodeContextMergeFailed:            "CONTEXT_MERGE_FAILED",
	ErrCodeDatasetLoadFailed:             "DATASET_LOAD_FAILED",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:          "QUERY_EXECUTION_FAILED",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeSearchQueryFailed:             "SEARCH_QUERY_FAILED",
	ErrCodeUnsupportedIntent:             "UNSUPPORTED_INTENT",
	ErrCodeUnknownDimension:              "UNKNOWN_DIMENSION",
	ErrCodeAggregationFailed:             "AGGREGATION_FAILED",
	ErrCodeAggregationTimeout:            "AGGREGATION_TIMEOUT",
	ErrCodeEmptyResult:                   "EMPTY_RESULT",
	ErrCodeInsightBuildFailed:            "INSIGHT_BUILD_FAILED",
	ErrCodeInsightInvalid:                "INSIGHT_VALIDATION_FAILED",
	ErrCodeAlertDispatchFailed:           "ALERT_DISPATCH_FAILED",
	ErrCodeAlertWebhookTimeout:           "ALERT_WEBHOOK_TIMEOUT",
	ErrCodeAlertChannelDisabled:          "ALERT_CHANNEL_DISABLED",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeContextStoreUnavailable,
		ErrCodeDatasetLoadFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeAlertDispatchFailed:
		return 3 // Retryable technical errors

	case ErrCodeContextStoreTimeout,
		ErrCodeAlertWebhookTimeout:
		return 2 // Partial retry for timeouts

	case ErrCodeAggregationTimeout:
		return 1 // Single retry, matching the BPMN boundary event

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "QUERY_PARSE") || strings.Contains(codeStr, "QUERY_TEXT"):
		return "NLU"
	case strings.Contains(codeStr, "CONTEXT") || strings.Contains(codeStr, "SESSION"):
		return "CONTEXT"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "DATASET"):
		return "DATA"
	case strings.Contains(codeStr, "AGGREGATION") || strings.Contains(codeStr, "INTENT") || strings.Contains(codeStr, "DIMENSION") || strings.Contains(codeStr, "RESULT"):
		return "ANALYTICS"
	case strings.Contains(codeStr, "INSIGHT"):
		return "INSIGHT"
	case strings.Contains(codeStr, "ALERT") || strings.Contains(codeStr, "WEBHOOK"):
		return "ALERT"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
