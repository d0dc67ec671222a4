package dishmatch

import (
	"context"
	"net/http"

	"dishmatch/catalog"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type SlackClient interface {
	PostMessage(ctx context.Context, channel string, message string) error
}

// Oracle is the external text generator consulted for ranked selection.
// Its output has no guaranteed structure.
type Oracle interface {
	Generate(ctx context.Context, instruction string) (string, error)
}

// CatalogSource lists every catalog item, newest first.
type CatalogSource interface {
	ListAll(ctx context.Context) ([]catalog.Item, error)
}
