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

const (
	ErrCodeInputParseFailed      ErrorCode = "INPUT_PARSE_FAILED"
	ErrCodeLoanValidationFailed  ErrorCode = "LOAN_VALIDATION_FAILED"
	ErrCodeInvalidRiskLevel      ErrorCode = "INVALID_RISK_LEVEL"
	ErrCodeAssessmentTimeout     ErrorCode = "ASSESSMENT_TIMEOUT"
	ErrCodeCommunityLookupFailed ErrorCode = "COMMUNITY_LOOKUP_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeContractMethodUnknown ErrorCode = "CONTRACT_METHOD_UNKNOWN"

	ErrCodeNotificationValidationFailed ErrorCode = "NOTIFICATION_VALIDATION_FAILED"
	ErrCodeNotificationSendFailed       ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeBrokerUnavailable ErrorCode = "BROKER_UNAVAILABLE"
	ErrCodeBrokerTimeout     ErrorCode = "BROKER_TIMEOUT"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
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

// WithMetadata attaches a key/value to the error and returns it.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
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
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInputParseError is returned when job variables cannot be decoded.
func NewInputParseError(err error) *StandardError {
	return newError(ErrCodeInputParseFailed, "Job variables could not be parsed", err.Error(), false)
}

// NewLoanValidationError rejects a malformed loan application.
func NewLoanValidationError(details string) *StandardError {
	return newError(ErrCodeLoanValidationFailed, "Loan application validation failed", details, false)
}

// NewInvalidRiskLevelError rejects an unknown risk tier.
func NewInvalidRiskLevelError(level string) *StandardError {
	return newError(ErrCodeInvalidRiskLevel, "Unknown risk level", fmt.Sprintf("riskLevel: %s", level), false)
}

// NewAssessmentTimeoutError is returned when the job deadline passes mid-assessment.
func NewAssessmentTimeoutError(err error) *StandardError {
	return newError(ErrCodeAssessmentTimeout, "Assessment exceeded job deadline", err.Error(), true)
}

// NewCommunityLookupError wraps a failed community snapshot lookup.
func NewCommunityLookupError(communityID string, err error) *StandardError {
	return newError(ErrCodeCommunityLookupFailed, "Community snapshot lookup failed",
		fmt.Sprintf("communityId: %s, error: %s", communityID, err.Error()), true)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true)
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryType string) *StandardError {
	return newError(ErrCodeQueryTimeout, "Database query timeout", fmt.Sprintf("queryType: %s", queryType), true)
}

// NewContractMethodUnknownError rejects a call to a method the contract does not expose.
func NewContractMethodUnknownError(method string) *StandardError {
	return newError(ErrCodeContractMethodUnknown, "Unknown contract method", fmt.Sprintf("method: %s", method), false)
}

// NewNotificationValidationError rejects a notification request.
func NewNotificationValidationError(details string) *StandardError {
	return newError(ErrCodeNotificationValidationFailed, "Notification request validation failed", details, false)
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true)
}

// NewBrokerUnavailableError wraps a gateway connectivity failure.
func NewBrokerUnavailableError(operation string, err error) *StandardError {
	return newError(ErrCodeBrokerUnavailable, "Zeebe gateway unavailable",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true)
}

// NewBrokerTimeoutError wraps a gateway deadline failure.
func NewBrokerTimeoutError(operation string, err error) *StandardError {
	return newError(ErrCodeBrokerTimeout, "Zeebe gateway timeout",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true)
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the error codes modelled in
// the lending process.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInputParseFailed:             "INPUT_PARSE_FAILED",
	ErrCodeLoanValidationFailed:         "LOAN_VALIDATION_FAILED",
	ErrCodeInvalidRiskLevel:             "INVALID_RISK_LEVEL",
	ErrCodeAssessmentTimeout:            "ASSESSMENT_TIMEOUT",
	ErrCodeCommunityLookupFailed:        "COMMUNITY_LOOKUP_FAILED",
	ErrCodeDatabaseConnectionFailed:     "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryTimeout:                 "QUERY_TIMEOUT",
	ErrCodeContractMethodUnknown:        "CONTRACT_METHOD_UNKNOWN",
	ErrCodeNotificationValidationFailed: "NOTIFICATION_VALIDATION_FAILED",
	ErrCodeNotificationSendFailed:       "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCommunityLookupFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeNotificationSendFailed:
		return 3

	case ErrCodeQueryTimeout,
		ErrCodeAssessmentTimeout:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
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
	case strings.Contains(codeStr, "COMMUNITY"):
		return "COMMUNITY"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "BROKER"):
		return "BROKER"
	case strings.Contains(codeStr, "CONTRACT"):
		return "CONTRACT"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "PARSE"):
		return "VALIDATION"
	case strings.Contains(codeStr, "ASSESSMENT"):
		return "ASSESSMENT"
	default:
		return "OTHER"
	}
}
