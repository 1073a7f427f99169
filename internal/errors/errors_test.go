package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	cause := errors.New("open index.scip: no such file")

	err := New(IndexMissing, "SCIP index not found", cause)

	assert.Equal(t, IndexMissing, err.Code)
	assert.Equal(t, "SCIP index not found", err.Message)
	assert.Len(t, err.SuggestedFixes, 1)
}

func TestSymError_Error(t *testing.T) {
	tests := []struct {
		name      string
		code      ErrorCode
		message   string
		cause     error
		wantParts []string
	}{
		{
			name:      "with cause",
			code:      ReadFailed,
			message:   "cannot read Sources/A.swift",
			cause:     errors.New("permission denied"),
			wantParts: []string{"READ_FAILED", "cannot read Sources/A.swift", "permission denied"},
		},
		{
			name:      "without cause",
			code:      SymbolNotFound,
			message:   "no symbol named 'Foo'",
			wantParts: []string{"SYMBOL_NOT_FOUND", "no symbol named 'Foo'"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.code, tt.message, tt.cause).Error()
			for _, part := range tt.wantParts {
				assert.Contains(t, got, part)
			}
		})
	}
}

func TestSymError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := New(InternalError, "something went wrong", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, Newf(LineOutOfRange, "line %d", 9).Unwrap())
}

func TestCodeOf(t *testing.T) {
	base := Newf(LineOutOfRange, "line %d beyond end of file", 40)
	wrapped := fmt.Errorf("declaration line: %w", base)

	assert.Equal(t, LineOutOfRange, CodeOf(wrapped))
	assert.Empty(t, CodeOf(errors.New("plain")))
	assert.True(t, HasCode(wrapped, LineOutOfRange))
	assert.False(t, HasCode(nil, LineOutOfRange))
	assert.ErrorIs(t, wrapped, &SymError{Code: LineOutOfRange}, "errors.Is matches by code")
	assert.NotErrorIs(t, wrapped, &SymError{Code: ReadFailed})
}

func TestSymError_JSON(t *testing.T) {
	err := New(IndexUnavailable, "index not loaded", errors.New("hidden")).WithDetails(map[string]string{"store": ".symgraph/index.db"})

	data, jerr := json.Marshal(err)
	require.NoError(t, jerr)
	s := string(data)
	assert.Contains(t, s, `"code":"INDEX_UNAVAILABLE"`)
	assert.NotContains(t, s, "hidden", "cause is not serialized")
	assert.Contains(t, s, "index.db")
}

func TestGetSuggestedFixes(t *testing.T) {
	fixes := GetSuggestedFixes(IndexMissing)
	require.NotEmpty(t, fixes)
	assert.Equal(t, RunCommand, fixes[0].Type)
	assert.Nil(t, GetSuggestedFixes(SymbolNotFound))
}
