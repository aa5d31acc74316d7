package rate_limiter

import "context"

// Store is the persistent key-value store the limiter keeps its submission
// log in. It is the local-storage analogue for the contact form: synchronous
// string keys and values, private to one client profile or shared server-side.
// Get reports ok=false when the key has no value.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}
