package shopify

import (
	"fmt"
	"strings"

	"shopify-reconciler/internal/adapters/shopify/dto"
)

type userErrorDetail struct {
	Field   string
	Message string
}

// UserErrorsError is a mutation that returned HTTP 200 with userErrors.
// Shopify rejected the input, so it is never retried.
type UserErrorsError struct {
	Action string
	Errors []userErrorDetail
}

func (e *UserErrorsError) Error() string {
	if e == nil {
		return "shopify user errors"
	}
	parts := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		field := strings.TrimSpace(err.Field)
		message := strings.TrimSpace(err.Message)
		if field == "" {
			parts = append(parts, message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", field, message))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("shopify %s failed with user errors", e.Action)
	}
	return fmt.Sprintf("shopify %s failed: %s", e.Action, strings.Join(parts, "; "))
}

func userErrorsToDetailedError(action string, errs []dto.ShopifyUserError) error {
	if len(errs) == 0 {
		return nil
	}
	details := make([]userErrorDetail, 0, len(errs))
	for _, e := range errs {
		message := strings.TrimSpace(e.Message)
		if message == "" {
			continue
		}
		field := ""
		if len(e.Field) > 0 {
			field = strings.Join(e.Field, ".")
		}
		details = append(details, userErrorDetail{Field: field, Message: message})
	}
	if len(details) == 0 {
		return &UserErrorsError{Action: action, Errors: []userErrorDetail{{Message: "user errors returned"}}}
	}
	return &UserErrorsError{Action: action, Errors: details}
}

// GraphQLErrors is a top-level errors array that is not a throttle.
type GraphQLErrors struct {
	Errors []dto.GraphQLError
}

func (e *GraphQLErrors) Error() string {
	return "shopify graphql errors: " + formatGraphQLErrors(e.Errors)
}

func formatGraphQLErrors(errs []dto.GraphQLError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		msg := strings.TrimSpace(e.Message)
		if msg == "" {
			continue
		}
		if len(e.Path) > 0 {
			msg = fmt.Sprintf("%s (path: %v)", msg, e.Path)
		}
		parts = append(parts, msg)
	}
	if len(parts) == 0 {
		return "unknown graphql error"
	}
	return strings.Join(parts, "; ")
}

func isThrottleGraphQLError(errs []dto.GraphQLError) bool {
	for _, e := range errs {
		if strings.Contains(strings.ToLower(e.Message), "throttled") {
			return true
		}
		if code, ok := e.Extensions["code"].(string); ok && strings.EqualFold(code, "THROTTLED") {
			return true
		}
	}
	return false
}
