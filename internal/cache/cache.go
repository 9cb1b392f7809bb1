package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Entry is one cached value with its check timestamp. Expiry is lazy:
// consumers decide validity from CheckedAt and their own TTL, and discard
// stale entries on the next access.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	CheckedAt time.Time       `json:"checked_at"`
}

// Expired reports whether the entry is older than ttl at the given time.
func (e *Entry) Expired(ttl time.Duration, now time.Time) bool {
	if e == nil {
		return true
	}
	return now.After(e.CheckedAt.Add(ttl))
}

// Store is the key-value cache consumed by the reputation detectors and
// the threat aggregator. Get returns (nil, nil) on a miss.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry Entry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// EncodeEntry marshals a value into an entry stamped with checkedAt.
func EncodeEntry(value interface{}, checkedAt time.Time) (Entry, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Data: data, CheckedAt: checkedAt}, nil
}

// DecodeEntry unmarshals an entry's payload into out.
func DecodeEntry(entry *Entry, out interface{}) error {
	return json.Unmarshal(entry.Data, out)
}
