package dishmatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRunLogger_Flush(t *testing.T) {
	var buf bytes.Buffer
	logger := NewFileRunLogger(&buf)

	require.NoError(t, logger.LogRun(RunLog{RequestID: "r1", Prompt: "vegan food in Pune", Strategy: "validated", Results: 2}))
	require.NoError(t, logger.LogRun(RunLog{RequestID: "r2", Prompt: "pizza", Strategy: "none"}))
	require.NoError(t, logger.Flush())

	var doc struct {
		Session struct {
			Runs []RunLog `json:"runs"`
		} `json:"recommendation_session"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Session.Runs, 2)
	assert.Equal(t, "r1", doc.Session.Runs[0].RequestID)
	assert.Equal(t, 2, doc.Session.Runs[0].Results)

	// buffer is cleared after a successful flush
	buf.Reset()
	require.NoError(t, logger.Flush())
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Empty(t, doc.Session.Runs)
}

func TestFileRunLogger_NilWriter(t *testing.T) {
	logger := NewFileRunLogger(nil)
	require.NoError(t, logger.LogRun(RunLog{RequestID: "r1"}))
	assert.NoError(t, logger.Flush())
}

func TestStdoutRunLogger_WritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	logger := &StdoutRunLogger{out: &buf}

	require.NoError(t, logger.LogRun(RunLog{RequestID: "a"}))
	require.NoError(t, logger.LogRun(RunLog{RequestID: "b"}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var run RunLog
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &run))
	assert.Equal(t, "b", run.RequestID)
}

func TestRunLog_AddStage(t *testing.T) {
	var run RunLog
	run.AddStage("filter", 12, time.Now(), nil)
	run.AddStage("parse", 0, time.Now(), errors.New("not an array"))

	require.Len(t, run.Stages, 2)
	assert.Equal(t, "filter", run.Stages[0].Name)
	assert.Equal(t, 12, run.Stages[0].Count)
	assert.Empty(t, run.Stages[0].Error)
	assert.Equal(t, "not an array", run.Stages[1].Error)
}

func TestNewRunLogFilePath(t *testing.T) {
	p := NewRunLogFilePath("logs", "us.anthropic.claude:v1/x")
	assert.True(t, strings.HasPrefix(p, "logs/"))
	assert.True(t, strings.HasSuffix(p, ".us.anthropic.claude_v1_x.json"))
}

func TestNoOpRunLogger(t *testing.T) {
	assert.NoError(t, NewNoOpRunLogger().LogRun(RunLog{}))
}
