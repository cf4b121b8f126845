package providers

import "context"

// SourceProvider retrieves the raw text of one CSV export
type SourceProvider interface {
	FetchSource(ctx context.Context, url string) (string, error)
}
