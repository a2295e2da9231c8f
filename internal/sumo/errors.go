package sumo

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/goccy/go-json"

	"github.com/jmurray2011/sumoknife/pkg/textutil"
)

var resourceNameRe = regexp.MustCompile(`v\d/([^?]+)`)

// ErrorItem is one entry of the service's error envelope.
type ErrorItem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIError is a 4xx/5xx answer from the service.
type APIError struct {
	ID           string      `json:"id"`
	StatusCode   int         `json:"status_code"`
	ResourceName string      `json:"resource_name"`
	Items        []ErrorItem `json:"errors"`
}

// Error renders the multi-line diagnostic shown to the user.
func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, " - Error - %s:\n", e.ID)
	fmt.Fprintf(&b, "   - Action: Getting or Manipulating %s\n", e.ResourceName)
	for _, item := range e.Items {
		fmt.Fprintf(&b, "   - Reason: %s\n   - Details: %s\n", item.Code, item.Message)
	}
	return b.String()
}

// Row converts the error into the row shape used for terminal batches.
func (e *APIError) Row() Row {
	items := make([]any, len(e.Items))
	for i, item := range e.Items {
		items[i] = map[string]any{"code": item.Code, "message": item.Message}
	}
	return Row{
		"id":            e.ID,
		"status_code":   e.StatusCode,
		"resource_name": e.ResourceName,
		"errors":        items,
		"msg":           e.Error(),
	}
}

// parseAPIError decodes the error envelope of a failed response.
// Bodies that are not an envelope keep the HTTP status text as the reason.
func parseAPIError(statusCode int, requestURL string, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}
	if m := resourceNameRe.FindStringSubmatch(requestURL); m != nil {
		apiErr.ResourceName = textutil.Title(m[1])
	}

	var envelope struct {
		ID     string      `json:"id"`
		Errors []ErrorItem `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Errors) == 0 {
		apiErr.Items = []ErrorItem{{
			Code:    http.StatusText(statusCode),
			Message: strings.TrimSpace(string(body)),
		}}
		return apiErr
	}

	apiErr.ID = envelope.ID
	for _, item := range envelope.Errors {
		apiErr.Items = append(apiErr.Items, ErrorItem{
			Code:    textutil.Title(item.Code),
			Message: item.Message,
		})
	}
	return apiErr
}

// TransportError is a connectivity failure or timeout. No body was received.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// TerminalBatchError marks a paginated fetch that ended on an error batch.
type TerminalBatchError struct {
	Resource string
	Message  string
}

func (e *TerminalBatchError) Error() string {
	if e.Resource == "" {
		return "terminal error batch: " + strings.TrimSpace(e.Message)
	}
	return fmt.Sprintf("terminal error batch for %s: %s", e.Resource, strings.TrimSpace(e.Message))
}
