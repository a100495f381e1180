package config

import (
	"fmt"
	"strings"

	"eclipse/internal/events"
	"eclipse/pkg/logging"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidateRequired checks if a required string field is not empty
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{Field: field, Value: value, Message: "is required"}
	}
	return nil
}

// ValidateOneOf checks if a value is in a list of allowed values
func ValidateOneOf(field, value string, allowed []string) error {
	for _, allowedValue := range allowed {
		if value == allowedValue {
			return nil
		}
	}
	return ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// ValidatePositive checks that a numeric field is greater than zero
func ValidatePositive[T ~int | ~int64](field string, value T) error {
	if value <= 0 {
		return ValidationError{Field: field, Value: value, Message: "must be greater than zero"}
	}
	return nil
}

// ValidateNonNegative checks that a numeric field is not below zero
func ValidateNonNegative[T ~int | ~int64](field string, value T) error {
	if value < 0 {
		return ValidationError{Field: field, Value: value, Message: "must not be negative"}
	}
	return nil
}

// Validate checks cfg and collects every problem. path is only used to
// label the errors.
func Validate(cfg Config, path string) *ConfigurationErrorCollection {
	errs := NewConfigurationErrorCollection()
	add := func(section string, err error, suggestions ...string) {
		if err == nil {
			return
		}
		ce := NewConfigurationError(path, section, ErrorTypeValidation, err.Error())
		ce.Suggestions = suggestions
		errs.Add(ce)
	}

	add("discord", ValidateNonNegative("discord.intents", cfg.Discord.Intents))

	add("store", ValidateOneOf("store.driver", cfg.Store.Driver, []string{StoreDriverSQLite, StoreDriverFile}))
	add("store", ValidateRequired("store.path", cfg.Store.Path),
		"Set store.path or ECLIPSE_DATABASE_PATH")
	add("store", ValidateNonNegative("store.cacheTTL", cfg.Store.CacheTTL))
	if cfg.Store.Driver == StoreDriverSQLite && len(cfg.Guilds) > 0 {
		add("guilds", ValidationError{Field: "guilds", Message: "static guilds are only read by the file store"},
			"Use store.driver: file, or manage guilds with 'eclipse autochannel set'")
	}

	add("autoChannel", ValidateNonNegative("autoChannel.renameWindow", cfg.AutoChannel.RenameWindow))
	add("autoChannel", ValidateRequired("autoChannel.defaultLabel", cfg.AutoChannel.DefaultLabel))
	add("autoChannel", ValidatePositive("autoChannel.maxConcurrentCalls", cfg.AutoChannel.MaxConcurrentCalls))
	add("autoChannel", ValidatePositive("autoChannel.callTimeout", cfg.AutoChannel.CallTimeout))
	if _, err := events.NewReasonEngine(cfg.AutoChannel.AuditReasons); err != nil {
		add("autoChannel", ValidationError{Field: "autoChannel.auditReasons", Message: err.Error()},
			fmt.Sprintf("Known reasons: %s", strings.Join(reasonNames(), ", ")))
	}

	add("dispatch", ValidatePositive("dispatch.workers", cfg.Dispatch.Workers))
	add("dispatch", ValidatePositive("dispatch.queueDepth", cfg.Dispatch.QueueDepth))
	add("dispatch", ValidatePositive("dispatch.handleTimeout", cfg.Dispatch.HandleTimeout))

	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		add("logging", ValidationError{Field: "logging.level", Value: cfg.Logging.Level, Message: err.Error()})
	}
	add("logging", ValidateOneOf("logging.format", cfg.Logging.Format, []string{string(logging.FormatText), string(logging.FormatJSON)}))

	add("shutdown", ValidatePositive("shutdown.timeout", cfg.Shutdown.Timeout))

	seen := make(map[string]bool, len(cfg.Guilds))
	for i, g := range cfg.Guilds {
		if err := g.Validate(); err != nil {
			add("guilds", ValidationError{Field: fmt.Sprintf("guilds[%d]", i), Message: err.Error()})
			continue
		}
		if seen[g.GuildID] {
			add("guilds", ValidationError{Field: fmt.Sprintf("guilds[%d]", i), Value: g.GuildID, Message: "duplicate guild"})
		}
		seen[g.GuildID] = true
	}

	return errs
}

func reasonNames() []string {
	names := make([]string, 0, len(events.Reasons))
	for _, r := range events.Reasons {
		names = append(names, string(r))
	}
	return names
}
