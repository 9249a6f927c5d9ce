package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLoggerAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "audit.jsonl")
	logger := NewFileLogger(path)

	require.NoError(t, logger.Log(context.Background(), Entry{Action: "pipeline.run", ResourceType: "predictions", Actor: "ops"}))
	require.NoError(t, logger.Log(context.Background(), Entry{
		Action:       "complaint.submit",
		ResourceType: "complaints",
		Metadata:     json.RawMessage(`{"device_id":"D1"}`),
	}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		entries = append(entries, e)
	}
	require.Len(t, entries, 2)
	assert.True(t, strings.HasPrefix(entries[0].ID, "audit-"))
	assert.False(t, entries[0].CreatedAt.IsZero())
	assert.Equal(t, DigestJSON([]byte(`{"device_id":"D1"}`)), entries[1].PayloadDigest)
}

func TestFileLoggerDisabled(t *testing.T) {
	var logger *FileLogger = NewFileLogger("")
	assert.Nil(t, logger)
	assert.NoError(t, logger.Log(context.Background(), Entry{Action: "x"}))
}

func TestFileLoggerRequiresAction(t *testing.T) {
	logger := NewFileLogger(filepath.Join(t.TempDir(), "audit.jsonl"))
	assert.Error(t, logger.Log(context.Background(), Entry{}))
}

func TestDigestJSON(t *testing.T) {
	assert.Empty(t, DigestJSON(nil))
	assert.Len(t, DigestJSON([]byte("{}")), 64)
}
