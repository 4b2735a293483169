package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"  Info ", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"Error", slog.LevelError},
		{"", DefaultLevel},
		{"verbose", DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestLevelString_RoundTrip(t *testing.T) {
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		assert.Equal(t, level, ParseLevel(LevelString(level)))
	}
	assert.Equal(t, "UNKNOWN", LevelString(slog.Level(100)))
}

func TestNew_Formats(t *testing.T) {
	var text bytes.Buffer
	New(&text, slog.LevelDebug, "text").Debug("source merged", "source", "/etc/app/base.cfg")
	assert.Contains(t, text.String(), "msg=\"source merged\"")
	assert.Contains(t, text.String(), "source=/etc/app/base.cfg")

	var js bytes.Buffer
	New(&js, slog.LevelDebug, "JSON").Info("configuration built", "keys", 3)
	assert.Contains(t, js.String(), `"msg":"configuration built"`)
	assert.Contains(t, js.String(), `"keys":3`)
}

func TestNew_LevelFiltering(t *testing.T) {
	tests := []struct {
		name   string
		level  slog.Level
		log    func(Logger)
		logged bool
	}{
		{"warn drops debug", slog.LevelWarn, func(l Logger) { l.Debug("m") }, false},
		{"warn drops info", slog.LevelWarn, func(l Logger) { l.Info("m") }, false},
		{"warn keeps warn", slog.LevelWarn, func(l Logger) { l.Warn("m") }, true},
		{"warn keeps error", slog.LevelWarn, func(l Logger) { l.Error("m") }, true},
		{"error drops warn", slog.LevelError, func(l Logger) { l.Warn("m") }, false},
		{"debug keeps debug", slog.LevelDebug, func(l Logger) { l.Debug("m") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(New(&buf, tt.level, "text"))
			assert.Equal(t, tt.logged, buf.Len() > 0, buf.String())
		})
	}
}

func TestWith_Chains(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelDebug, "text").
		With("builder", "b-1").
		With("source", "base.cfg")
	l.Info("rendered")

	out := buf.String()
	assert.Contains(t, out, "builder=b-1")
	assert.Contains(t, out, "source=base.cfg")
}

func TestNop(t *testing.T) {
	l := Nop().With("k", "v")
	assert.NotPanics(t, func() {
		l.Debug("d")
		l.Info("i")
		l.Warn("w")
		l.Error("e")
	})
}

func TestDefault(t *testing.T) {
	t.Cleanup(ResetDefault)
	t.Setenv(LogLevelEnvVar, "debug")
	ResetDefault()

	first := Default()
	require.NotNil(t, first)
	assert.Equal(t, first, Default())

	custom := Nop()
	SetDefault(custom)
	assert.Equal(t, custom, Default())

	ResetDefault()
	assert.NotEqual(t, custom, Default())
}

func TestNewFromEnvWithLevel(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "error")
	t.Setenv(LogFormatEnvVar, "json")

	assert.NotNil(t, NewFromEnvWithLevel("debug"))
	assert.NotNil(t, NewFromEnv())
}

func TestFromSlog(t *testing.T) {
	var buf bytes.Buffer
	l := FromSlog(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	l.Debug("wrapped", "k", "v")
	assert.Contains(t, buf.String(), "k=v")

	assert.IsType(t, nopLogger{}, FromSlog(nil))
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	carried := New(&buf, slog.LevelInfo, "text")
	fallback := Nop()

	assert.Equal(t, fallback, FromContext(context.Background(), fallback))
	assert.IsType(t, nopLogger{}, FromContext(context.Background(), nil))

	ctx := IntoContext(context.Background(), carried)
	FromContext(ctx, fallback).Info("from context")
	assert.Contains(t, buf.String(), "from context")
}
