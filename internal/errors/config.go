package errors

import "fmt"

// ConfigurationError reports a missing or invalid setting.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "configuration: " + e.Message
	}
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Message)
}

// MissingSetting creates a ConfigurationError for an empty required field.
func MissingSetting(field string) error {
	return &ConfigurationError{Field: field, Message: "is not set"}
}
