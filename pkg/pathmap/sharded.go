package pathmap

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"runtime"
	"slices"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/MacroPower/fspath/pkg/paths"
	"github.com/MacroPower/fspath/pkg/syncs"
)

// ErrInvalidItems indicates a batch of items contained invalid paths.
var ErrInvalidItems = errors.New("invalid items")

// Sharded is a [PathMap] that is safe for concurrent use.
//
// Values are spread over one [PathMap] per top-level path component, each
// guarded by its own reader/writer lock, so operations on different
// top-level subtrees do not contend. The value at the root path lives in its
// own shard.
//
// Enumerations copy each shard's entries while holding its read lock and
// yield from the copy, so the map may be modified while ranging over a
// sequence. Shards are copied one at a time; an enumeration spanning several
// shards is not an atomic snapshot of the whole map.
type Sharded[V any] struct {
	locks  *syncs.KeyLock
	shards map[string]*PathMap[V]
	logger *slog.Logger

	// Guards shards. Always acquired after the shard's key lock.
	mu sync.RWMutex

	concurrency int
}

// ShardedConfig holds the settings applied by [ShardedOpts].
type ShardedConfig struct {
	Logger      *slog.Logger
	Concurrency int
}

type ShardedOpts func(*ShardedConfig)

// WithLogger sets the logger used for debug messages. Defaults to
// [slog.Default].
func WithLogger(logger *slog.Logger) ShardedOpts {
	return func(c *ShardedConfig) {
		c.Logger = logger
	}
}

// WithConcurrency sets the maximum number of shards [Sharded.SetMany] writes
// to in parallel. Values below one remove the limit. Defaults to
// [runtime.GOMAXPROCS].
func WithConcurrency(n int) ShardedOpts {
	return func(c *ShardedConfig) {
		c.Concurrency = n
	}
}

// NewSharded returns an empty [Sharded] map.
func NewSharded[V any](opts ...ShardedOpts) *Sharded[V] {
	cfg := &ShardedConfig{
		Logger:      slog.Default(),
		Concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Concurrency < 1 {
		cfg.Concurrency = -1
	}

	return &Sharded[V]{
		locks:       syncs.NewKeyLock(),
		shards:      make(map[string]*PathMap[V]),
		logger:      cfg.Logger,
		concurrency: cfg.Concurrency,
	}
}

// Get returns the value stored under path. See [PathMap.Get].
func (s *Sharded[V]) Get(path string) (V, error) {
	var zero V

	key, err := shardKey(path)
	if err != nil {
		return zero, err
	}

	s.locks.RLock(key)
	defer s.locks.RUnlock(key)

	pm := s.shard(key)
	if pm == nil {
		return zero, keyNotFound(path)
	}

	return pm.Get(path)
}

// Contains reports whether a value is stored under path.
func (s *Sharded[V]) Contains(path string) bool {
	_, err := s.Get(path)

	return err == nil
}

// GetOrDefault returns the value stored under path, or def if there is none.
// See [PathMap.GetOrDefault].
func (s *Sharded[V]) GetOrDefault(path string, def V) (V, error) {
	v, err := s.Get(path)
	if errors.Is(err, ErrKeyNotFound) {
		return def, nil
	}

	return v, err
}

// Set stores v under path. See [PathMap.Set].
func (s *Sharded[V]) Set(path string, v V) error {
	key, err := shardKey(path)
	if err != nil {
		return err
	}

	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	pm := s.createShard(key)
	defer s.dropIfEmpty(key, pm)

	return pm.Set(path, v)
}

// SetDefault stores v under path unless a value is already stored there. See
// [PathMap.SetDefault].
func (s *Sharded[V]) SetDefault(path string, v V) (V, error) {
	var zero V

	key, err := shardKey(path)
	if err != nil {
		return zero, err
	}

	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	pm := s.createShard(key)
	defer s.dropIfEmpty(key, pm)

	return pm.SetDefault(path, v)
}

// Delete removes the value stored under path. See [PathMap.Delete].
func (s *Sharded[V]) Delete(path string) error {
	key, err := shardKey(path)
	if err != nil {
		return err
	}

	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	pm := s.shard(key)
	if pm == nil {
		return keyNotFound(path)
	}
	defer s.dropIfEmpty(key, pm)

	return pm.Delete(path)
}

// Pop removes and returns the value stored under path, or def if there is
// none. See [PathMap.Pop].
func (s *Sharded[V]) Pop(path string, def V) (V, error) {
	key, err := shardKey(path)
	if err != nil {
		return def, err
	}

	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	pm := s.shard(key)
	if pm == nil {
		return def, nil
	}
	defer s.dropIfEmpty(key, pm)

	return pm.Pop(path, def)
}

// Clear removes all values stored at or below root. See [PathMap.Clear].
func (s *Sharded[V]) Clear(root string) error {
	comps, err := paths.Components(root)
	if err != nil {
		return err
	}

	for _, key := range s.shardKeys(comps) {
		s.clearShard(key, root)
	}

	return nil
}

func (s *Sharded[V]) clearShard(key, root string) {
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	pm := s.shard(key)
	if pm == nil {
		return
	}
	defer s.dropIfEmpty(key, pm)

	// The root has already been validated, and the shard is never iterated
	// while its lock is held for writing.
	_ = pm.Clear(root)
}

// SetMany stores all items. Paths are validated up front: if any are
// invalid, an error wrapping [ErrInvalidItems] that lists every invalid path
// is returned and nothing is stored. Otherwise shards are written in
// parallel, and writing stops early if ctx is canceled.
func (s *Sharded[V]) SetMany(ctx context.Context, items map[string]V) error {
	var merr error

	batches := map[string][]string{}

	for _, path := range slices.Sorted(maps.Keys(items)) {
		key, err := shardKey(path)
		if err != nil {
			merr = multierror.Append(merr, err)

			continue
		}

		batches[key] = append(batches[key], path)
	}

	if merr != nil {
		return fmt.Errorf("%w: %w", ErrInvalidItems, merr)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for key, batch := range batches {
		g.Go(func() error {
			s.locks.Lock(key)
			defer s.locks.Unlock(key)

			pm := s.createShard(key)
			defer s.dropIfEmpty(key, pm)

			for _, path := range batch {
				if err := gCtx.Err(); err != nil {
					return fmt.Errorf("set %s: %w", path, err)
				}

				if err := pm.Set(path, items[path]); err != nil {
					return fmt.Errorf("set %s: %w", path, err)
				}
			}

			return nil
		})
	}

	return g.Wait() //nolint:wrapcheck // Wrapped in each goroutine.
}

// Keys returns a sequence of the paths of all values stored at or below root.
// See [PathMap.Keys].
func (s *Sharded[V]) Keys(root string) (iter.Seq[string], error) {
	items, err := s.Items(root)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		for k := range items {
			if !yield(k) {
				return
			}
		}
	}, nil
}

// Values returns a sequence of all values stored at or below root. See
// [PathMap.Values].
func (s *Sharded[V]) Values(root string) (iter.Seq[V], error) {
	items, err := s.Items(root)
	if err != nil {
		return nil, err
	}

	return func(yield func(V) bool) {
		for _, v := range items {
			if !yield(v) {
				return
			}
		}
	}, nil
}

// Items returns a sequence of all (path, value) pairs stored at or below
// root, in the same order a single [PathMap] would produce them.
func (s *Sharded[V]) Items(root string) (iter.Seq2[string, V], error) {
	comps, err := paths.Components(root)
	if err != nil {
		return nil, err
	}

	return func(yield func(string, V) bool) {
		for _, key := range s.shardKeys(comps) {
			for _, e := range s.snapshot(key, root) {
				if !yield(e.key, e.value) {
					return
				}
			}
		}
	}, nil
}

// Names returns a sequence of the names of the immediate children of root
// that hold a value or have descendants. See [PathMap.Names].
func (s *Sharded[V]) Names(root string) (iter.Seq[string], error) {
	comps, err := paths.Components(root)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		var names []string

		if len(comps) == 0 {
			// Every shard other than the root's holds at least one value
			// below its top-level component.
			for _, key := range s.shardKeys(nil) {
				if key != "" {
					names = append(names, key)
				}
			}
		} else {
			names = s.names(comps[0], root)
		}

		for _, name := range names {
			if !yield(name) {
				return
			}
		}
	}, nil
}

// Len returns the number of values stored in the map.
func (s *Sharded[V]) Len() int {
	total := 0

	for _, key := range s.shardKeys(nil) {
		s.locks.RLock(key)
		if pm := s.shard(key); pm != nil {
			total += pm.Len()
		}
		s.locks.RUnlock(key)
	}

	return total
}

type entry[V any] struct {
	value V
	key   string
}

func (s *Sharded[V]) snapshot(key, root string) []entry[V] {
	s.locks.RLock(key)
	defer s.locks.RUnlock(key)

	pm := s.shard(key)
	if pm == nil {
		return nil
	}

	items, err := pm.Items(root)
	if err != nil {
		return nil
	}

	entries := make([]entry[V], 0, pm.Len())
	for k, v := range items {
		entries = append(entries, entry[V]{key: k, value: v})
	}

	return entries
}

func (s *Sharded[V]) names(key, root string) []string {
	s.locks.RLock(key)
	defer s.locks.RUnlock(key)

	pm := s.shard(key)
	if pm == nil {
		return nil
	}

	names, err := pm.Names(root)
	if err != nil {
		return nil
	}

	return slices.Collect(names)
}

// shardKeys returns the keys of the shards holding entries at or below the
// path with the given components, in ascending order.
func (s *Sharded[V]) shardKeys(comps []string) []string {
	if len(comps) > 0 {
		return []string{comps[0]}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Sorted(maps.Keys(s.shards))
}

func (s *Sharded[V]) shard(key string) *PathMap[V] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.shards[key]
}

// createShard returns the shard for key, creating it if needed. The caller
// must hold the write lock for key.
func (s *Sharded[V]) createShard(key string) *PathMap[V] {
	if pm := s.shard(key); pm != nil {
		return pm
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pm := New[V]()
	s.shards[key] = pm
	s.logger.Debug("created shard", slog.String("shard", key))

	return pm
}

// dropIfEmpty removes the shard for key if it holds no values. The caller
// must hold the write lock for key.
func (s *Sharded[V]) dropIfEmpty(key string, pm *PathMap[V]) {
	if !pm.IsEmpty() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shards[key] == pm {
		delete(s.shards, key)
		s.logger.Debug("dropped shard", slog.String("shard", key))
	}
}

// shardKey returns the top-level component of path, or "" for the root.
func shardKey(path string) (string, error) {
	comps, err := paths.SplitComponents(path, 1)
	if err != nil {
		return "", err
	}

	if len(comps) == 0 {
		return "", nil
	}

	return comps[0], nil
}
