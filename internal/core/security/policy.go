package security

import (
	"fmt"
	"strings"
)

// SecurityPolicy defines how model-proposed commands are screened.
type SecurityPolicy struct {
	// CommandLevel determines when commands require confirmation.
	// "verdict" - only commands the model marked unsafe
	// "dangerous" - also commands the local checks flag
	// "always" - every proposed command
	CommandLevel ConfirmLevel `mapstructure:"command_level"`

	// RestrictedPaths contains paths that are completely forbidden.
	RestrictedPaths []string `mapstructure:"restricted_paths"`

	// ReadOnlyPaths contains paths that cannot be written to without confirmation.
	ReadOnlyPaths []string `mapstructure:"readonly_paths"`
}

// ConfirmLevel represents the command confirmation level.
type ConfirmLevel string

const (
	ConfirmVerdict   ConfirmLevel = "verdict"
	ConfirmDangerous ConfirmLevel = "dangerous"
	ConfirmAlways    ConfirmLevel = "always"
)

// DefaultPolicy returns the default security policy: trust the model's verdict.
func DefaultPolicy() *SecurityPolicy {
	return &SecurityPolicy{
		CommandLevel:    ConfirmVerdict,
		RestrictedPaths: []string{},
		ReadOnlyPaths:   []string{},
	}
}

// ParseConfirmLevel validates a configured level. Empty means ConfirmVerdict.
func ParseConfirmLevel(s string) (ConfirmLevel, error) {
	switch level := ConfirmLevel(strings.ToLower(strings.TrimSpace(s))); level {
	case "":
		return ConfirmVerdict, nil
	case ConfirmVerdict, ConfirmDangerous, ConfirmAlways:
		return level, nil
	default:
		return "", fmt.Errorf("unknown command level %q (want verdict, dangerous or always)", s)
	}
}
