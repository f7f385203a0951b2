package source

import "context"

// Source lists and fetches raw facility records from object storage.
type Source interface {
	// List returns the object keys under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Fetch returns the raw bytes of one object.
	Fetch(ctx context.Context, key string) ([]byte, error)
}
