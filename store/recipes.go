// Package store persists the recipe collection as one JSON array under a
// single key of a kv.Store.
//
// Two APIs sit over the same operations. ReadAll, WriteAll, Append and
// Clear never fail: errors are logged and turned into an empty collection,
// false, or nothing. Load, Save, Add and Reset return the underlying
// outcome for callers that need to tell "never written" from "corrupt".
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"recipebox/kv"
	"recipebox/models"
)

// DefaultKey is the key the collection lives under.
const DefaultKey = "@recipebox:recipes"

// maxIDAttempts bounds how often Add draws a new id after a collision.
const maxIDAttempts = 16

var (
	// ErrCorrupt marks a stored value that is not a JSON array of recipes.
	ErrCorrupt = errors.New("stored recipe collection is corrupt")
	// ErrIDExhausted is returned when the id source keeps producing ids
	// that are already taken.
	ErrIDExhausted = errors.New("could not generate an unused recipe id")
)

// Outcome classifies a read of the collection.
type Outcome int

const (
	// OutcomeMissing means nothing was stored yet, or it was cleared.
	OutcomeMissing Outcome = iota
	OutcomeLoaded
	// OutcomeCorrupt means the stored value could not be decoded.
	OutcomeCorrupt
	// OutcomeFailed means the key-value store itself returned an error.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMissing:
		return "missing"
	case OutcomeLoaded:
		return "loaded"
	case OutcomeCorrupt:
		return "corrupt"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// ReadResult is the result of Load. Recipes is never nil.
type ReadResult struct {
	Recipes []models.Recipe
	Outcome Outcome
	Err     error
}

// RecipeStore owns the durable recipe collection.
//
// Append is a read-modify-write. Unless the store was built with
// WithSerializedWrites(true), two overlapping appends can each read the
// same collection and the later write drops the earlier record.
type RecipeStore struct {
	kv        kv.Store
	key       string
	logger    zerolog.Logger
	metrics   *Metrics
	newID     IDSource
	serialize bool

	mu sync.Mutex
}

// Option configures a RecipeStore.
type Option func(*RecipeStore)

// WithKey stores the collection under key instead of DefaultKey.
func WithKey(key string) Option {
	return func(s *RecipeStore) { s.key = key }
}

// WithLogger sets the logger failures are reported to.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *RecipeStore) { s.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(s *RecipeStore) { s.metrics = m }
}

// WithIDSource replaces the default millisecond timestamp ids.
func WithIDSource(src IDSource) Option {
	return func(s *RecipeStore) { s.newID = src }
}

// WithSerializedWrites runs Append, WriteAll and Clear one at a time.
func WithSerializedWrites(on bool) Option {
	return func(s *RecipeStore) { s.serialize = on }
}

// New returns a store over backend.
func New(backend kv.Store, opts ...Option) *RecipeStore {
	s := &RecipeStore{
		kv:     backend,
		key:    DefaultKey,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.newID == nil {
		s.newID = TimestampSource(nil)
	}
	s.logger = s.logger.With().Str("key", s.key).Logger()
	return s
}

// ReadAll returns the stored recipes, newest first. It never fails: an
// absent, corrupt or unreadable collection comes back empty.
func (s *RecipeStore) ReadAll(ctx context.Context) []models.Recipe {
	res := s.Load(ctx)
	switch res.Outcome {
	case OutcomeCorrupt:
		s.logger.Warn().Err(res.Err).Msg("stored recipes are corrupt, treating as empty")
	case OutcomeFailed:
		s.logger.Error().Err(res.Err).Msg("failed to read recipes")
	}
	return res.Recipes
}

// WriteAll replaces the stored collection and reports whether it succeeded.
func (s *RecipeStore) WriteAll(ctx context.Context, recipes []models.Recipe) bool {
	if err := s.Save(ctx, recipes); err != nil {
		s.logger.Error().Err(err).Int("count", len(recipes)).Msg("failed to save recipes")
		return false
	}
	return true
}

// Append stores a new recipe built from p at the front of the collection.
// The payload is stored as given; trimming and title validation belong to
// the caller. ok is false when nothing was stored.
func (s *RecipeStore) Append(ctx context.Context, p models.RecipePayload) (recipe models.Recipe, ok bool) {
	created, err := s.Add(ctx, p)
	if err != nil {
		s.logger.Error().Err(err).Str("title", p.Title).Msg("failed to add recipe")
		return models.Recipe{}, false
	}
	return created, true
}

// Clear removes the stored collection. Failures are logged and dropped.
func (s *RecipeStore) Clear(ctx context.Context) {
	if err := s.Reset(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to clear recipes")
	}
}

// Load reads the collection and reports how the read went.
func (s *RecipeStore) Load(ctx context.Context) ReadResult {
	res := s.load(ctx)
	switch res.Outcome {
	case OutcomeLoaded:
		s.metrics.observe("read", resultOK)
	case OutcomeMissing:
		s.metrics.observe("read", resultMissing)
	case OutcomeCorrupt:
		s.metrics.observe("read", resultCorrupt)
	default:
		s.metrics.observe("read", resultError)
	}
	return res
}

// Save replaces the stored collection. A nil slice is stored as an empty
// array.
func (s *RecipeStore) Save(ctx context.Context, recipes []models.Recipe) error {
	s.lock()
	defer s.unlock()

	err := s.save(ctx, recipes)
	s.metrics.observe("write", result(err))
	return err
}

// Add reads the collection, prepends a recipe built from p under a fresh
// id and writes the collection back. A missing or corrupt collection is
// replaced by one holding only the new recipe; a failed read aborts
// without writing.
func (s *RecipeStore) Add(ctx context.Context, p models.RecipePayload) (models.Recipe, error) {
	s.lock()
	defer s.unlock()

	created, err := s.add(ctx, p)
	s.metrics.observe("append", result(err))
	return created, err
}

// Reset deletes the stored collection.
func (s *RecipeStore) Reset(ctx context.Context) error {
	s.lock()
	defer s.unlock()

	err := s.kv.Remove(ctx, s.key)
	s.metrics.observe("clear", result(err))
	if err != nil {
		return fmt.Errorf("remove recipes: %w", err)
	}
	s.metrics.size(0)
	return nil
}

func (s *RecipeStore) add(ctx context.Context, p models.RecipePayload) (models.Recipe, error) {
	current := s.load(ctx)
	if current.Outcome == OutcomeFailed {
		return models.Recipe{}, current.Err
	}
	if current.Outcome == OutcomeCorrupt {
		s.logger.Warn().Err(current.Err).Msg("replacing corrupt recipe collection")
	}

	id, err := s.uniqueID(current.Recipes)
	if err != nil {
		return models.Recipe{}, err
	}
	created := p.WithID(id)

	updated := make([]models.Recipe, 0, len(current.Recipes)+1)
	updated = append(updated, created)
	updated = append(updated, current.Recipes...)

	if err := s.save(ctx, updated); err != nil {
		return models.Recipe{}, err
	}

	s.logger.Debug().Str("id", id).Int("count", len(updated)).Msg("recipe added")
	return created, nil
}

func (s *RecipeStore) load(ctx context.Context) ReadResult {
	empty := []models.Recipe{}

	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return ReadResult{Recipes: empty, Outcome: OutcomeFailed, Err: fmt.Errorf("read recipes: %w", err)}
	}
	if !ok || raw == "" {
		return ReadResult{Recipes: empty, Outcome: OutcomeMissing}
	}

	recipes, err := decodeCollection(raw)
	if err != nil {
		return ReadResult{Recipes: empty, Outcome: OutcomeCorrupt, Err: err}
	}

	s.metrics.size(len(recipes))
	return ReadResult{Recipes: recipes, Outcome: OutcomeLoaded}
}

// decodeCollection parses a stored value. Anything other than an array of
// recipe objects is ErrCorrupt.
func decodeCollection(raw string) ([]models.Recipe, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	// "null" decodes without error but is not an array.
	if elems == nil {
		return nil, fmt.Errorf("%w: not an array", ErrCorrupt)
	}

	recipes := make([]models.Recipe, 0, len(elems))
	for i, elem := range elems {
		if bytes.Equal(bytes.TrimSpace(elem), []byte("null")) {
			return nil, fmt.Errorf("%w: element %d is null", ErrCorrupt, i)
		}
		var r models.Recipe
		if err := json.Unmarshal(elem, &r); err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrCorrupt, i, err)
		}
		recipes = append(recipes, r)
	}
	return recipes, nil
}

func (s *RecipeStore) save(ctx context.Context, recipes []models.Recipe) error {
	if recipes == nil {
		recipes = []models.Recipe{}
	}
	data, err := json.Marshal(recipes)
	if err != nil {
		return fmt.Errorf("encode recipes: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("write recipes: %w", err)
	}
	s.metrics.size(len(recipes))
	return nil
}

func (s *RecipeStore) uniqueID(existing []models.Recipe) (string, error) {
	taken := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		taken[r.ID] = struct{}{}
	}
	for i := 0; i < maxIDAttempts; i++ {
		id := s.newID()
		if _, dup := taken[id]; !dup && id != "" {
			return id, nil
		}
	}
	return "", ErrIDExhausted
}

func (s *RecipeStore) lock() {
	if s.serialize {
		s.mu.Lock()
	}
}

func (s *RecipeStore) unlock() {
	if s.serialize {
		s.mu.Unlock()
	}
}

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultOK
}
