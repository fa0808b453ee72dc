package log

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"":        LevelInfo,
		" INFO ":  LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestSetLevelIsShared(t *testing.T) {
	l := NewNop()
	child := l.With(String("component", "test"))

	l.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, l.GetLevel())
	assert.Equal(t, LevelDebug, child.GetLevel())
}

func TestLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	l, err := New(Options{Level: LevelInfo, OutputPaths: []string{path}})
	require.NoError(t, err)

	id := uuid.New()
	l.With(String("component", "test")).Info("hello",
		UUID("entity", id),
		Int("n", 3),
		Duration("took", time.Second),
		Error(errors.New("boom")))
	l.Debug("hidden")
	require.NoError(t, l.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(raw)
	assert.Contains(t, out, `"msg":"hello"`)
	assert.Contains(t, out, `"component":"test"`)
	assert.Contains(t, out, id.String())
	assert.Contains(t, out, `"error":"boom"`)
	assert.False(t, strings.Contains(out, "hidden"))
}
