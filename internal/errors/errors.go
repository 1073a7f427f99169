package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// IndexMissing indicates no SCIP index or index store was found
	IndexMissing ErrorCode = "INDEX_MISSING"
	// IndexLoadFailed indicates the index exists but could not be imported
	IndexLoadFailed ErrorCode = "INDEX_LOAD_FAILED"
	// IndexUnavailable indicates the store was used before a successful load
	IndexUnavailable ErrorCode = "INDEX_UNAVAILABLE"
	// SymbolNotFound indicates no symbol matched the requested name or USR
	SymbolNotFound ErrorCode = "SYMBOL_NOT_FOUND"
	// InvalidPreset indicates an unknown query preset name
	InvalidPreset ErrorCode = "INVALID_PRESET"
	// PathMissing indicates a location carries no file path
	PathMissing ErrorCode = "PATH_MISSING"
	// ContentsEmpty indicates a source file has no contents
	ContentsEmpty ErrorCode = "CONTENTS_EMPTY"
	// ReadFailed indicates a source file could not be read
	ReadFailed ErrorCode = "READ_FAILED"
	// LineOutOfRange indicates a location line beyond the end of the file
	LineOutOfRange ErrorCode = "LINE_OUT_OF_RANGE"
	// ConfigInvalid indicates a configuration value failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// OpenDocs suggests opening documentation
	OpenDocs FixActionType = "open-docs"
	// EditConfig suggests changing a configuration key
	EditConfig FixActionType = "edit-config"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
	Key         string        `json:"key,omitempty"`
}

// SymError is an error with a stable code, message and suggested fixes
type SymError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        any         `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a SymError with the default fixes registered for code.
func New(code ErrorCode, message string, cause error) *SymError {
	return &SymError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Newf is New with a formatted message and no cause.
func Newf(code ErrorCode, format string, args ...any) *SymError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *SymError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *SymError) Unwrap() error {
	return e.cause
}

// Is matches another *SymError by code, so sentinel comparisons work with errors.Is.
func (e *SymError) Is(target error) bool {
	t, ok := target.(*SymError)
	return ok && t.Code == e.Code
}

// WithDetails adds details to the error
func (e *SymError) WithDetails(details any) *SymError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first SymError in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var se *SymError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	IndexMissing: {
		{
			Type:        RunCommand,
			Command:     "symgraph index <path/to/index.scip>",
			Safe:        true,
			Description: "Import a SCIP index into the symbol store",
		},
	},
	IndexLoadFailed: {
		{
			Type:        RunCommand,
			Command:     "symgraph index",
			Safe:        true,
			Description: "Rebuild the symbol store from the SCIP index",
		},
	},
	IndexUnavailable: {
		{
			Type:        RunCommand,
			Command:     "symgraph status",
			Safe:        true,
			Description: "Check whether an index has been loaded",
		},
	},
	ConfigInvalid: {
		{
			Type:        EditConfig,
			Key:         ".symgraph/config.json",
			Description: "Fix the reported configuration key",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
