package catalog

import (
	"context"
	"errors"
	"os"
	"slices"
)

// Source is read-only access to the catalog, newest items first.
type Source interface {
	ListAll(ctx context.Context) ([]Item, error)
}

type FileSource struct {
	FilePath string
}

func NewFileSource(filePath string) *FileSource {
	return &FileSource{FilePath: filePath}
}

func (f *FileSource) ListAll(ctx context.Context) ([]Item, error) {
	b, err := os.ReadFile(f.FilePath)
	if err != nil {
		return nil, err
	}
	return Decode(b)
}

// StaticSource is an in-memory implementation for tests and local runs.
type StaticSource struct {
	items []Item
	err   error
}

func NewStaticSource(items ...Item) *StaticSource {
	return &StaticSource{items: normalize(items)}
}

func NewStaticSourceWithError() *StaticSource {
	return &StaticSource{err: errors.New("catalog unavailable")}
}

func (s *StaticSource) ListAll(ctx context.Context) ([]Item, error) {
	if s.err != nil {
		return nil, s.err
	}
	return slices.Clone(s.items), nil
}
