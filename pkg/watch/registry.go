package watch

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/MacroPower/fspath/pkg/pathmap"
	"github.com/MacroPower/fspath/pkg/paths"
)

// ErrUnknownWatch indicates that no watch is registered with an ID.
var ErrUnknownWatch = errors.New("unknown watch")

// Watch is a single registration.
type Watch struct {
	// Path is the canonical absolute path being watched.
	Path string
	// Recursive watches also match every path below Path.
	Recursive bool
	ID        uuid.UUID
}

// Registry is an index of [Watch] registrations. It is safe for concurrent
// use.
type Registry struct {
	watches *pathmap.PathMap[map[uuid.UUID]Watch]
	paths   map[uuid.UUID]string
	logger  *slog.Logger
	mu      sync.Mutex
}

// RegistryConfig holds the settings applied by [RegistryOpts].
type RegistryConfig struct {
	Logger *slog.Logger
}

type RegistryOpts func(*RegistryConfig)

// WithLogger sets the logger used for debug messages. Defaults to
// [slog.Default].
func WithLogger(logger *slog.Logger) RegistryOpts {
	return func(c *RegistryConfig) {
		c.Logger = logger
	}
}

// NewRegistry returns an empty [Registry].
func NewRegistry(opts ...RegistryOpts) *Registry {
	cfg := &RegistryConfig{Logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Registry{
		watches: pathmap.New[map[uuid.UUID]Watch](),
		paths:   make(map[uuid.UUID]string),
		logger:  cfg.Logger,
	}
}

// Add registers a watch on path. Relative paths are treated as absolute.
func (r *Registry) Add(path string, recursive bool) (Watch, error) {
	p, err := paths.Normalize(path)
	if err != nil {
		return Watch{}, err
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return Watch{}, fmt.Errorf("generate watch id: %w", err)
	}

	w := Watch{ID: id, Path: paths.Abs(p), Recursive: recursive}

	r.mu.Lock()
	defer r.mu.Unlock()

	set, err := r.watches.SetDefault(w.Path, map[uuid.UUID]Watch{})
	if err != nil {
		return Watch{}, fmt.Errorf("add watch: %w", err)
	}

	set[id] = w
	r.paths[id] = w.Path

	r.logger.Debug("added watch",
		slog.String("id", id.String()),
		slog.String("path", w.Path),
		slog.Bool("recursive", recursive),
	)

	return w, nil
}

// Remove unregisters the watch with the given ID.
func (r *Registry) Remove(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	path, ok := r.paths[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWatch, id)
	}

	if err := r.remove(id, path); err != nil {
		return err
	}

	r.logger.Debug("removed watch", slog.String("id", id.String()), slog.String("path", path))

	return nil
}

// Match returns the watches that cover path: those registered on path itself
// and recursive watches registered on any of its ancestors. Watches on
// deeper paths come first.
func (r *Registry) Match(path string) ([]Watch, error) {
	ancestors, err := paths.Ancestors(path, true)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []Watch

	for i, p := range ancestors {
		set, err := r.watches.GetOrDefault(p, nil)
		if err != nil {
			return nil, fmt.Errorf("match %s: %w", path, err)
		}

		for _, w := range sortedWatches(set) {
			if i == 0 || w.Recursive {
				matched = append(matched, w)
			}
		}
	}

	return matched, nil
}

// Under returns every watch registered at or below root, in traversal order.
func (r *Registry) Under(root string) ([]Watch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.watches.Values(root)
	if err != nil {
		return nil, err
	}

	var under []Watch
	for set := range values {
		under = append(under, sortedWatches(set)...)
	}

	return under, nil
}

// RemoveTree unregisters every watch at or below root and returns how many
// were removed.
func (r *Registry) RemoveTree(root string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.watches.Values(root)
	if err != nil {
		return 0, err
	}

	var doomed []Watch
	for set := range values {
		doomed = append(doomed, sortedWatches(set)...)
	}

	for _, w := range doomed {
		if err := r.remove(w.ID, w.Path); err != nil {
			return 0, err
		}
	}

	r.logger.Debug("removed watch tree", slog.String("root", root), slog.Int("count", len(doomed)))

	return len(doomed), nil
}

// Len returns the number of registered watches.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.paths)
}

// remove drops a watch and prunes its node once no watches remain there.
// The caller must hold mu.
func (r *Registry) remove(id uuid.UUID, path string) error {
	set, err := r.watches.Get(path)
	if err != nil {
		return fmt.Errorf("remove watch %s: %w", id, err)
	}

	delete(set, id)
	delete(r.paths, id)

	if len(set) == 0 {
		if err := r.watches.Delete(path); err != nil {
			return fmt.Errorf("remove watch %s: %w", id, err)
		}
	}

	return nil
}

func sortedWatches(set map[uuid.UUID]Watch) []Watch {
	return slices.SortedFunc(maps.Values(set), func(a, b Watch) int {
		return bytes.Compare(a.ID[:], b.ID[:])
	})
}
