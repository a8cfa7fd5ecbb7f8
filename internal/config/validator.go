package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators registers appgate-specific validation rules.
// Must be called before validating Config.
func RegisterCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("duration", validateDuration); err != nil {
		return fmt.Errorf("failed to register duration validator: %w", err)
	}
	if err := v.RegisterValidation("auth_mode", validateAuthMode); err != nil {
		return fmt.Errorf("failed to register auth_mode validator: %w", err)
	}
	if err := v.RegisterValidation("listen_addr", validateListenAddr); err != nil {
		return fmt.Errorf("failed to register listen_addr validator: %w", err)
	}
	return nil
}

// validateDuration accepts a non-negative Go duration string.
func validateDuration(fl validator.FieldLevel) bool {
	d, err := time.ParseDuration(fl.Field().String())
	return err == nil && d >= 0
}

// validateAuthMode accepts popup, redirect or auto.
func validateAuthMode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "popup", "redirect", "auto":
		return true
	default:
		return false
	}
}

// validateListenAddr accepts host:port with a port in 0..65535.
func validateListenAddr(fl validator.FieldLevel) bool {
	_, port, err := net.SplitHostPort(fl.Field().String())
	if err != nil {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 0 && n <= 65535
}

// Validate validates the Config using struct tags and cross-field rules.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := RegisterCustomValidators(v); err != nil {
		return err
	}

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	if poll, _, _ := c.AuthDurations(); poll <= 0 {
		return errors.New("auth.poll_interval must be greater than zero")
	}
	if c.BackendTimeout() <= 0 {
		return errors.New("backend.timeout must be greater than zero")
	}

	return nil
}

// formatValidationErrors converts validator.ValidationErrors to user-friendly messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

// formatSingleValidationError creates a user-friendly message for a single validation error.
func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "duration":
		return fmt.Sprintf("%s must be a non-negative duration such as \"1s\" or \"100ms\"", field)
	case "auth_mode":
		return fmt.Sprintf("%s must be one of: popup redirect auto", field)
	case "listen_addr":
		return fmt.Sprintf("%s must be a valid host:port", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}
