package catalog

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSource(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name      string
		filename  string
		data      string
		wantCount int
	}{
		{
			name:      "basic catalog load",
			filename:  "catalog.json",
			data:      `[{"title":"Paneer Tikka","city":"Delhi"},{"title":"Dal Makhani","city":"Delhi"}]`,
			wantCount: 2,
		},
		{
			name:      "empty catalog file",
			filename:  "empty.json",
			data:      `[]`,
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filePath := filepath.Join(tmpDir, tt.filename)
			require.NoError(t, os.WriteFile(filePath, []byte(tt.data), 0644))

			items, err := NewFileSource(filePath).ListAll(context.Background())
			require.NoError(t, err)
			assert.Len(t, items, tt.wantCount)
		})
	}

	t.Run("load nonexistent catalog", func(t *testing.T) {
		_, err := NewFileSource(filepath.Join(tmpDir, "nonexistent.json")).ListAll(context.Background())
		assert.Error(t, err)
		assert.True(t, os.IsNotExist(err))
	})
}

func TestStaticSource(t *testing.T) {
	src := NewStaticSource(Item{Title: "a"}, Item{Title: "b"})
	items, err := src.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)

	// callers must not be able to mutate the snapshot
	items[0].Title = "mutated"
	again, err := src.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].Title)

	_, err = NewStaticSourceWithError().ListAll(context.Background())
	assert.Error(t, err)
}

type mockS3 struct {
	body  string
	err   error
	input *s3.GetObjectInput
}

func (m *mockS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.input = params
	if m.err != nil {
		return nil, m.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(m.body))}, nil
}

func TestS3Source(t *testing.T) {
	t.Run("reads bucket and key", func(t *testing.T) {
		m := &mockS3{body: `{"items":[{"title":"Biryani","city":"Hyderabad","dietary":{"halal":true}}]}`}
		items, err := NewS3Source(m, "catalog-bucket", "snapshots/catalog.json").ListAll(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.True(t, items[0].Dietary.Halal)
		assert.Equal(t, "catalog-bucket", aws.ToString(m.input.Bucket))
		assert.Equal(t, "snapshots/catalog.json", aws.ToString(m.input.Key))
	})

	t.Run("get object error", func(t *testing.T) {
		m := &mockS3{err: errors.New("access denied")}
		_, err := NewS3Source(m, "b", "k").ListAll(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access denied")
	})
}

type mockRedis struct {
	vals []string
	err  error
	key  string
}

func (m *mockRedis) LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	m.key = key
	return redis.NewStringSliceResult(m.vals, m.err)
}

func TestRedisSource(t *testing.T) {
	t.Run("decodes records and skips bad ones", func(t *testing.T) {
		m := &mockRedis{vals: []string{
			`{"title":"Vada Pav","city":"Mumbai","price":30}`,
			`{not json`,
			`{"title":"Misal Pav","city":"Pune","price":90}`,
		}}
		items, err := NewRedisSource(m, "catalog:items").ListAll(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "Vada Pav", items[0].Title)
		assert.Equal(t, "Misal Pav", items[1].Title)
		assert.Equal(t, "catalog:items", m.key)
	})

	t.Run("redis error", func(t *testing.T) {
		m := &mockRedis{err: errors.New("connection refused")}
		_, err := NewRedisSource(m, "catalog:items").ListAll(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}
