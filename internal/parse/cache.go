package parse

import (
	"context"
	"encoding/json"
)

// load reads and decodes a cached list. Store and decoding failures are
// logged and reported as a miss.
func load[T any](ctx context.Context, p Parse, key string) ([]T, bool) {
	if p.store == nil {
		return nil, false
	}

	has, err := p.store.Has(ctx, key)
	if err != nil {
		p.logger.Warn("cache lookup failed", "key", key, "error", err)
		return nil, false
	}
	if !has {
		p.logger.Debug("cache miss", "key", key)
		return nil, false
	}

	values, err := p.store.Get(ctx, key)
	if err != nil {
		p.logger.Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}

	out := make([]T, 0, len(values))
	for _, raw := range values {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			p.logger.Warn("cache entry undecodable", "key", key, "error", err)
			return nil, false
		}
		out = append(out, v)
	}

	p.logger.Debug("cache hit", "key", key, "values", len(out))
	return out, true
}

// save encodes and stores a list. Failures are logged and otherwise ignored.
func save[T any](ctx context.Context, p Parse, key string, values []T) {
	if p.store == nil {
		return
	}

	encoded := make([]json.RawMessage, 0, len(values))
	for _, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			p.logger.Warn("cache entry unencodable", "key", key, "error", err)
			return
		}
		encoded = append(encoded, raw)
	}

	if err := p.store.Put(ctx, key, encoded); err != nil {
		p.logger.Warn("cache write failed", "key", key, "error", err)
	}
}
