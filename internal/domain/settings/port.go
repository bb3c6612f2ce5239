package settings

import "context"

// Repository port for the key/value configuration table.
type Repository interface {
	Upsert(ctx context.Context, entries []Entry) error
	All(ctx context.Context) ([]Entry, error)
}
