package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"svcwiki/internal/report"
)

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their config key rather than the Go name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks cfg and returns every problem found in one error.
func Validate(cfg *Config) error {
	var problems []string

	if err := structValidator.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("configuration validation failed: %w", err)
		}
		for _, fe := range fieldErrs {
			problems = append(problems, fieldMessage(fe))
		}
	}

	format := cfg.Wiki.PageTitleFormat
	if format != "" && !strings.Contains(format, "{name}") && !strings.Contains(format, "{id}") {
		problems = append(problems, fmt.Sprintf("wiki.page_title_format must contain {name} or {id}, got: %q", format))
	}
	if cfg.Wiki.Host == "" && cfg.Wiki.BaseURL == "" {
		problems = append(problems, "wiki.host or wiki.base_url is required")
	}

	if _, err := report.DefaultRubric().WithOverrides(cfg.Report.Rubric); err != nil {
		problems = append(problems, "report.rubric: "+err.Error())
	}

	// If there are any errors, return them
	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	key := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", key)
	case "url":
		return fmt.Sprintf("%s must be a URL, got: %q", key, fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got: %v", key, fe.Param(), fe.Value())
	case "gt", "gte", "lte":
		return fmt.Sprintf("%s must be %s %s, got: %v", key, fe.Tag(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %q validation", key, fe.Tag())
	}
}

// ValidateAndExit validates the configuration and exits with a non-zero code if validation fails.
// This is a convenience function that prints errors to stderr and exits.
func ValidateAndExit(cfg *Config) {
	if err := Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
