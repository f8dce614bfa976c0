package common

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "info", want: slog.LevelInfo},
		{input: "", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := NewLogger(&buf, slog.LevelInfo, "json")
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("shown", "pattern", "MONEY_SENT")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"pattern":"MONEY_SENT"`)

	_, err = NewLogger(&buf, slog.LevelInfo, "xml")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestUserError(t *testing.T) {
	err := NewUserError("could not store message", ErrDuplicateEntry)

	assert.Equal(t, "could not store message: duplicate entry", err.Error())
	assert.True(t, errors.Is(err, ErrDuplicateEntry))

	var userErr *UserError
	require.True(t, errors.As(err, &userErr))
	assert.Equal(t, "could not store message", userErr.UserMessage)

	assert.Equal(t, "plain", NewUserError("plain", nil).Error())
}

func TestCompileCaseInsensitive(t *testing.T) {
	re, err := CompileCaseInsensitive(`kplc`)
	require.NoError(t, err)
	assert.True(t, re.MatchString("KPLC PREPAID"))

	re, err = CompileCaseInsensitive(`(?i)naivas`)
	require.NoError(t, err)
	assert.Equal(t, "(?i)naivas", re.String())

	_, err = CompileCaseInsensitive(`[unclosed`)
	assert.Error(t, err)
}
