package timetable

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// StorageKey is the single key holding the saved course ids.
const StorageKey = "myTimetable"

// KV is a durable string key-value store.
type KV interface {
	// Read returns the value for key; ok is false when the key is absent.
	Read(ctx context.Context, key string) (value string, ok bool, err error)
	// Write stores value under key, replacing any previous value.
	Write(ctx context.Context, key, value string) error
}

// Store persists the set of added course ids.
type Store struct {
	kv     KV
	key    string
	logger *zap.Logger
}

// NewStore returns a Store writing under StorageKey.
func NewStore(kv KV, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{kv: kv, key: StorageKey, logger: logger}
}

// Save overwrites the snapshot with ids.
func (s *Store) Save(ctx context.Context, ids []string) error {
	sorted := append([]string{}, ids...)
	sort.Strings(sorted)

	data, err := json.Marshal(sorted)
	if err != nil {
		return fmt.Errorf("encoding course ids: %w", err)
	}
	if err := s.kv.Write(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("writing timetable: %w", err)
	}
	return nil
}

// Load returns the saved ids. A missing or malformed snapshot yields an
// empty list; only a failing store returns an error.
func (s *Store) Load(ctx context.Context) ([]string, error) {
	raw, ok, err := s.kv.Read(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("reading timetable: %w", err)
	}
	if !ok {
		return []string{}, nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		s.logger.Debug("ignoring malformed timetable snapshot", zap.String("key", s.key), zap.Error(err))
		return []string{}, nil
	}
	if ids == nil {
		return []string{}, nil
	}
	return ids, nil
}

// MemoryKV is an in-process KV, used when no database is configured.
type MemoryKV struct {
	values map[string]string
}

// NewMemoryKV returns an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

// Read implements KV.
func (m *MemoryKV) Read(_ context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

// Write implements KV.
func (m *MemoryKV) Write(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}
