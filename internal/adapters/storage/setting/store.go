package setting

import "context"

// Store persists Setting key→value pairs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Upsert(ctx context.Context, key, value string) error
}
