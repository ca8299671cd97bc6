// Package errors provides standardized error handling for dirsort.
// It defines the error kinds raised while loading configuration, building
// rules and relocating entries, plus helpers for wrapping and inspecting them.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package errors that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
	// Join wraps several errors into one
	Join = errors.Join
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// Organization error kinds
	SourceMissing
	TargetUncreatable
	DirectoryCreateFailed
	CollisionUnresolved
	MoveFailed
	// Config error kinds
	InvalidConfig
	ConfigNotFound
	// Rule error kinds
	InvalidRule
	UnknownCondition
	InvalidValue
)

var kindNames = map[ErrorKind]string{
	Unknown:               "unknown",
	SourceMissing:         "source_missing",
	TargetUncreatable:     "target_uncreatable",
	DirectoryCreateFailed: "directory_create_failed",
	CollisionUnresolved:   "collision_unresolved",
	MoveFailed:            "move_failed",
	InvalidConfig:         "invalid_config",
	ConfigNotFound:        "config_not_found",
	InvalidRule:           "invalid_rule",
	UnknownCondition:      "unknown_condition",
	InvalidValue:          "invalid_value",
}

// String returns the snake_case name of the kind
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Common error constants for frequently occurring errors
var (
	ErrInvalidConfig = NewConfigError("invalid configuration", "", InvalidConfig, nil)
	ErrInvalidRule   = NewRuleError("invalid rule", "", InvalidRule, nil)
)

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// FileError represents errors related to filesystem operations on one path
type FileError struct {
	ApplicationError
	path string
}

// NewFileError creates a new file error
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// Error returns the file error message
func (e *FileError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the file path associated with the error
func (e *FileError) Path() string {
	return e.path
}

// ConfigError represents errors related to configuration
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		param: param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// RuleError represents errors related to sorting rules and their conditions
type RuleError struct {
	ApplicationError
	ruleName string
}

// NewRuleError creates a new rule error
func NewRuleError(msg string, ruleName string, kind ErrorKind, err error) *RuleError {
	return &RuleError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		ruleName: ruleName,
	}
}

// Error returns the rule error message
func (e *RuleError) Error() string {
	if e.ruleName != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.ruleName, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.ruleName)
	}
	return e.ApplicationError.Error()
}

// RuleName returns the rule name associated with the error
func (e *RuleError) RuleName() string {
	return e.ruleName
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{
		msg:  msg,
		kind: Unknown,
	}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		kind: Unknown,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: Unknown,
	}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		err:  err,
		kind: Unknown,
	}
}

type kinded interface {
	Kind() ErrorKind
}

// KindOf returns the kind of the first kinded error in err's chain that
// carries a kind other than Unknown, or Unknown.
// Joined errors are searched in order.
func KindOf(err error) ErrorKind {
	for err != nil {
		if k, ok := err.(kinded); ok && k.Kind() != Unknown {
			return k.Kind()
		}
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				if kind := KindOf(e); kind != Unknown {
					return kind
				}
			}
			return Unknown
		}
		err = errors.Unwrap(err)
	}
	return Unknown
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}

// IsInvalidRule checks if the error is a rule error of any rule kind
func IsInvalidRule(err error) bool {
	var ruleErr *RuleError
	if errors.As(err, &ruleErr) {
		switch ruleErr.Kind() {
		case InvalidRule, UnknownCondition, InvalidValue:
			return true
		}
	}
	return false
}
