package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"

	ErrCodeCatalogUnavailable ErrorCode = "CATALOG_UNAVAILABLE"
	ErrCodeRestaurantNotFound ErrorCode = "RESTAURANT_NOT_FOUND"
	ErrCodeMenuItemNotFound   ErrorCode = "MENU_ITEM_NOT_FOUND"

	ErrCodeMemoryReadFailed  ErrorCode = "MEMORY_READ_FAILED"
	ErrCodeMemoryWriteFailed ErrorCode = "MEMORY_WRITE_FAILED"

	ErrCodeCartUpdateFailed     ErrorCode = "CART_UPDATE_FAILED"
	ErrCodeWishlistUpdateFailed ErrorCode = "WISHLIST_UPDATE_FAILED"

	ErrCodeOrderPlacementFailed ErrorCode = "ORDER_PLACEMENT_FAILED"
	ErrCodeOrderNotFound        ErrorCode = "ORDER_NOT_FOUND"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"

	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout     ErrorCode = "SEARCH_TIMEOUT"

	ErrCodeChatCompletionFailed ErrorCode = "CHAT_COMPLETION_FAILED"
	ErrCodeChatTimeout          ErrorCode = "CHAT_TIMEOUT"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeRateLimited   ErrorCode = "RATE_LIMITED"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

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

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func NewInvalidRequestError(details string) *StandardError {
	return newError(ErrCodeInvalidRequest, "Invalid request", details, false, nil)
}

func NewCatalogUnavailableError(err error) *StandardError {
	return newError(ErrCodeCatalogUnavailable, "Catalog data could not be read", err.Error(), true, err)
}

func NewRestaurantNotFoundError(name string) *StandardError {
	return newError(ErrCodeRestaurantNotFound, "Restaurant not found", fmt.Sprintf("restaurant: %s", name), false, nil)
}

func NewMenuItemNotFoundError(name string) *StandardError {
	return newError(ErrCodeMenuItemNotFound, "Menu item not found", fmt.Sprintf("item: %s", name), false, nil)
}

func NewMemoryReadFailedError(userID string, err error) *StandardError {
	return newError(ErrCodeMemoryReadFailed, "User memory read failed", fmt.Sprintf("userId: %s, error: %s", userID, err.Error()), true, err)
}

func NewMemoryWriteFailedError(userID string, err error) *StandardError {
	return newError(ErrCodeMemoryWriteFailed, "User memory write failed", fmt.Sprintf("userId: %s, error: %s", userID, err.Error()), true, err)
}

func NewCartUpdateFailedError(err error) *StandardError {
	return newError(ErrCodeCartUpdateFailed, "Cart update failed", err.Error(), true, err)
}

func NewWishlistUpdateFailedError(err error) *StandardError {
	return newError(ErrCodeWishlistUpdateFailed, "Wishlist update failed", err.Error(), true, err)
}

func NewOrderPlacementFailedError(stage string, err error) *StandardError {
	return newError(ErrCodeOrderPlacementFailed, "Order placement failed", fmt.Sprintf("stage: %s, error: %s", stage, err.Error()), true, err)
}

func NewOrderNotFoundError(orderID string) *StandardError {
	return newError(ErrCodeOrderNotFound, "Order not found", fmt.Sprintf("orderId: %s", orderID), false, nil)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true, err)
}

func NewQueryExecutionFailedError(queryName string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error", fmt.Sprintf("query: %s, error: %s", queryName, err.Error()), true, err)
}

func NewSearchQueryFailedError(index string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Elasticsearch query error", fmt.Sprintf("index: %s, error: %s", index, err.Error()), true, err)
}

func NewSearchTimeoutError(index string) *StandardError {
	return newError(ErrCodeSearchTimeout, "Elasticsearch query timeout", fmt.Sprintf("index: %s", index), true, nil)
}

func NewChatCompletionFailedError(err error) *StandardError {
	return newError(ErrCodeChatCompletionFailed, "Chat completion failed", err.Error(), false, err)
}

func NewChatTimeoutError() *StandardError {
	return newError(ErrCodeChatTimeout, "Chat completion timeout", "completion call exceeded its deadline", false, nil)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed", fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true, err)
}

func NewRateLimitedError(userID string) *StandardError {
	return newError(ErrCodeRateLimited, "Too many requests", fmt.Sprintf("userId: %s", userID), true, nil)
}

func NewBusinessRuleError(message, details string) *StandardError {
	return newError("BUSINESS_RULE_VIOLATION", message, details, false, nil)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError("EXTERNAL_SERVICE_ERROR", fmt.Sprintf("External service '%s' error", service), err.Error(), true, err)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError("TIMEOUT_ERROR", fmt.Sprintf("Service '%s' timeout", service), err.Error(), true, err)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return newError("RESOURCE_NOT_FOUND", fmt.Sprintf("Resource not found in %s", service), details, false, nil)
}

func NewAuthenticationError(details string) *StandardError {
	return newError("AUTHENTICATION_ERROR", "Authentication failed", details, false, nil)
}

// AsStandardError unwraps err to a *StandardError, wrapping unknown errors
// as INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternalError, "Unexpected error", err.Error(), false, err)
}

// HasCode reports whether err carries code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return errors.As(err, &stdErr) && stdErr != nil && stdErr.Code == code
}

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidRequest:           "INVALID_REQUEST",
	ErrCodeCatalogUnavailable:       "CATALOG_UNAVAILABLE",
	ErrCodeMemoryReadFailed:         "MEMORY_READ_FAILED",
	ErrCodeMemoryWriteFailed:        "MEMORY_WRITE_FAILED",
	ErrCodeCartUpdateFailed:         "CART_UPDATE_FAILED",
	ErrCodeOrderPlacementFailed:     "ORDER_PLACEMENT_FAILED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:     "QUERY_EXECUTION_FAILED",
	ErrCodeSearchQueryFailed:        "SEARCH_QUERY_FAILED",
	ErrCodeSearchTimeout:            "SEARCH_TIMEOUT",
	ErrCodeChatCompletionFailed:     "CHAT_COMPLETION_FAILED",
	ErrCodeChatTimeout:              "CHAT_TIMEOUT",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount is the number of job retries a code earns on the workflow
// engine. The dialogue core itself never retries.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCatalogUnavailable,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeMemoryWriteFailed,
		ErrCodeNotificationSendFailed:
		return 3

	case ErrCodeSearchTimeout,
		ErrCodeMemoryReadFailed:
		return 2

	case ErrCodeOrderPlacementFailed,
		ErrCodeCartUpdateFailed:
		return 1

	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
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

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CATALOG") || strings.Contains(codeStr, "RESTAURANT") || strings.Contains(codeStr, "MENU"):
		return "CATALOG"
	case strings.Contains(codeStr, "MEMORY"):
		return "MEMORY"
	case strings.Contains(codeStr, "CART") || strings.Contains(codeStr, "WISHLIST") || strings.Contains(codeStr, "ORDER"):
		return "COMMERCE"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "CHAT"):
		return "AI"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "RATE"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
