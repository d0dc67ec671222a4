package dishmatch

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// RunLogger records one entry per recommendation request.
type RunLogger interface {
	LogRun(run RunLog) error
}

// NewRunLogFilePath returns a file path based on a cleaned up provider or model name to make it easier to identify logs produced with various oracles.
func NewRunLogFilePath(dir, model string) string {
	name := strings.NewReplacer(":", "_", "/", "_").Replace(strings.ToLower(model))
	return filepath.Join(dir, fmt.Sprintf("%d.%s.json", time.Now().Unix(), name))
}

// RunLog captures every stage of a single recommendation request.
type RunLog struct {
	RequestID    string     `json:"request_id"`
	Timestamp    time.Time  `json:"timestamp"`
	Prompt       string     `json:"prompt"`
	Constraints  any        `json:"constraints,omitempty"`
	Stages       []StageLog `json:"stages,omitempty"`
	OracleInput  string     `json:"oracle_input,omitempty"`
	OracleOutput string     `json:"oracle_output,omitempty"`
	Strategy     string     `json:"strategy,omitempty"`
	Results      int        `json:"results"`
	Error        string     `json:"error,omitempty"`
}

// StageLog is the outcome of one pipeline stage.
type StageLog struct {
	Name     string        `json:"name"`
	Count    int           `json:"count"`
	Duration time.Duration `json:"duration_ns"`
	Error    string        `json:"error,omitempty"`
}

// AddStage appends a stage record.
func (r *RunLog) AddStage(name string, count int, started time.Time, err error) {
	s := StageLog{Name: name, Count: count, Duration: time.Since(started)}
	if err != nil {
		s.Error = err.Error()
	}
	r.Stages = append(r.Stages, s)
}

// FileRunLogger logs to a writer, accumulating runs and flushing at the end
type FileRunLogger struct {
	mu     sync.Mutex
	runs   []RunLog
	writer io.Writer
}

// NewFileRunLogger creates a new file-based run logger
func NewFileRunLogger(writer io.Writer) *FileRunLogger {
	return &FileRunLogger{
		runs:   make([]RunLog, 0),
		writer: writer,
	}
}

// LogRun adds a run to the buffer (does not flush immediately)
func (f *FileRunLogger) LogRun(run RunLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, run)
	return nil
}

// Flush writes all accumulated runs as a single JSON document.
func (f *FileRunLogger) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"recommendation_session": map[string]any{
			"timestamp": time.Now(),
			"runs":      f.runs,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run log: %w", err)
	}

	if _, err := f.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write run log: %w", err)
	}

	f.runs = f.runs[:0]
	return nil
}

// NoOpRunLogger discards all entries
type NoOpRunLogger struct{}

func NewNoOpRunLogger() *NoOpRunLogger {
	return &NoOpRunLogger{}
}

func (nop *NoOpRunLogger) LogRun(run RunLog) error {
	return nil
}

// StdoutRunLogger writes each run as a JSON line (for Lambda/CloudWatch)
type StdoutRunLogger struct {
	out io.Writer
}

func NewStdoutRunLogger() *StdoutRunLogger {
	return &StdoutRunLogger{out: os.Stdout}
}

func (l *StdoutRunLogger) LogRun(run RunLog) error {
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(l.out, string(data))
	return err
}
