package setup

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dishmatch"
	"dishmatch/recommend"
)

type routingHTTPClient struct {
	mu    sync.Mutex
	calls map[string]int
}

func (c *routingHTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	c.calls[req.URL.Host]++
	c.mu.Unlock()

	if req.URL.Host == "ollama.test" {
		return nil, errors.New("connection refused")
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Body:       io.NopCloser(strings.NewReader("ok")),
	}, nil
}

func (c *routingHTTPClient) count(host string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[host]
}

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	body := `{"items":[{"title":"Misal Pav","vendorName":"Katakir","city":"Pune","price":120,"rating":{"average":4.6,"count":90}}]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestService_BreakerStatePersistsAcrossRequests(t *testing.T) {
	httpClient := &routingHTTPClient{calls: map[string]int{}}
	cfg := Config{
		Model:   dishmatch.ModelConfig{ModelID: "llama3.2"},
		Engine:  dishmatch.EngineConfig{OracleProvider: "ollama", BaseOllamaEndpoint: "http://ollama.test", MaxResults: 6, OracleTimeout: time.Second},
		Catalog: dishmatch.CatalogConfig{Source: "file", Path: writeCatalog(t)},
		Breaker: dishmatch.BreakerConfig{Enabled: true, MinRequests: 3, FailureRatio: 0.5, OpenTimeout: time.Minute, MeasureInterval: time.Minute, HalfOpenRequests: 1},
		Slack:   dishmatch.SlackConfig{WebhookURL: "https://hooks.slack.test/services/x", Channel: "#food-recs"},
	}

	svc, err := NewService(context.Background(), cfg, httpClient, nil)
	require.NoError(t, err)
	defer svc.Close() // nolint: errcheck

	for i := 0; i < 6; i++ {
		res, err := svc.Handle(context.Background(), "misal in pune")
		require.NoError(t, err)
		assert.Equal(t, recommend.StrategyOracleUnavailable, res.Strategy)
		assert.Equal(t, []string{"Misal Pav"}, titles(res))
	}

	// once open, the breaker answers without reaching the oracle
	assert.Equal(t, 3, httpClient.count("ollama.test"))
	assert.Equal(t, 6, httpClient.count("hooks.slack.test"))
}

func TestService_EngineErrorSkipsSlack(t *testing.T) {
	httpClient := &routingHTTPClient{calls: map[string]int{}}
	cfg := Config{
		Engine:  dishmatch.EngineConfig{OracleProvider: "mock", MaxResults: 6},
		Catalog: dishmatch.CatalogConfig{Source: "file", Path: writeCatalog(t)},
		Slack:   dishmatch.SlackConfig{WebhookURL: "https://hooks.slack.test/services/x"},
	}

	svc, err := NewService(context.Background(), cfg, httpClient, nil)
	require.NoError(t, err)

	_, err = svc.Handle(context.Background(), "   ")
	assert.ErrorIs(t, err, recommend.ErrEmptyPrompt)
	assert.Zero(t, httpClient.count("hooks.slack.test"))
}

func TestNewService_Errors(t *testing.T) {
	_, err := NewService(context.Background(), Config{Catalog: dishmatch.CatalogConfig{Source: "postgres"}}, nil, nil)
	assert.Error(t, err)

	_, err = NewService(context.Background(), Config{
		Engine:  dishmatch.EngineConfig{OracleProvider: "openai"},
		Catalog: dishmatch.CatalogConfig{Source: "file", Path: "catalog.json"},
	}, nil, nil)
	assert.Error(t, err)
}

func titles(res recommend.Result) []string {
	out := make([]string, 0, len(res.Items))
	for _, r := range res.Items {
		out = append(out, r.Title)
	}
	return out
}
