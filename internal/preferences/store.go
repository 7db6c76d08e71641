package preferences

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

const EventChanged = "preferences:changed"

var ErrInvalidValue = errors.New("invalid preference value")

type Emitter func(eventName string, payload any)

type ChangeListener func(key string)

type Change struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Store is a key/value preference store backed by the preferences table.
type Store struct {
	mu        sync.Mutex
	db        *sql.DB
	logger    *slog.Logger
	emit      Emitter
	listeners []ChangeListener
}

func NewStore(database *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: database, logger: logger}
}

func (s *Store) SetEmitter(emitter Emitter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emit = emitter
}

// OnChange registers a listener called after every successful write or
// delete. Listeners run on the writer's goroutine.
func (s *Store) OnChange(listener ChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

func (s *Store) lookup(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read preference %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) write(ctx context.Context, key string, value string) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO preferences(key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key,
		value,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("write preference %s: %w", key, err)
	}

	s.notify(key, value)
	return nil
}

func (s *Store) remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM preferences WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete preference %s: %w", key, err)
	}

	s.notify(key, "")
	return nil
}

func (s *Store) notify(key string, value string) {
	s.mu.Lock()
	emitter := s.emit
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, listener := range listeners {
		listener(key)
	}
	if emitter != nil {
		emitter(EventChanged, Change{Key: key, Value: value})
	}
}

// Preference is a typed accessor for one key with a default value.
type Preference[T any] struct {
	store  *Store
	key    string
	def    T
	encode func(T) string
	decode func(string) (T, error)
}

func (p Preference[T]) Key() string {
	return p.key
}

func (p Preference[T]) Default() T {
	return p.def
}

// Get returns the stored value, or the default when the key is unset,
// unreadable or holds a value that no longer decodes.
func (p Preference[T]) Get(ctx context.Context) T {
	raw, ok, err := p.store.lookup(ctx, p.key)
	if err != nil {
		p.store.logger.Warn("preference read failed", "key", p.key, "error", err)
		return p.def
	}
	if !ok {
		return p.def
	}

	value, err := p.decode(raw)
	if err != nil {
		p.store.logger.Warn("preference holds undecodable value", "key", p.key, "value", raw, "error", err)
		return p.def
	}
	return value
}

func (p Preference[T]) Set(ctx context.Context, value T) error {
	encoded := p.encode(value)
	if _, err := p.decode(encoded); err != nil {
		return fmt.Errorf("%w for %s: %v", ErrInvalidValue, p.key, err)
	}
	return p.store.write(ctx, p.key, encoded)
}

// SetRaw decodes raw the way stored values are decoded and writes it.
func (p Preference[T]) SetRaw(ctx context.Context, raw string) error {
	value, err := p.decode(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w for %s: %v", ErrInvalidValue, p.key, err)
	}
	return p.Set(ctx, value)
}

// RawSetter is a Preference of any type addressed by key.
type RawSetter interface {
	Key() string
	SetRaw(ctx context.Context, raw string) error
}

func (p Preference[T]) IsSet(ctx context.Context) (bool, error) {
	_, ok, err := p.store.lookup(ctx, p.key)
	return ok, err
}

func (p Preference[T]) Delete(ctx context.Context) error {
	return p.store.remove(ctx, p.key)
}

func (s *Store) Bool(key string, def bool) Preference[bool] {
	return Preference[bool]{
		store:  s,
		key:    key,
		def:    def,
		encode: strconv.FormatBool,
		decode: strconv.ParseBool,
	}
}

func (s *Store) Int(key string, def int) Preference[int] {
	return Preference[int]{
		store:  s,
		key:    key,
		def:    def,
		encode: strconv.Itoa,
		decode: strconv.Atoi,
	}
}

func (s *Store) Float(key string, def float64) Preference[float64] {
	return Preference[float64]{
		store: s,
		key:   key,
		def:   def,
		encode: func(value float64) string {
			return strconv.FormatFloat(value, 'f', -1, 64)
		},
		decode: func(raw string) (float64, error) {
			return strconv.ParseFloat(raw, 64)
		},
	}
}

func (s *Store) String(key string, def string) Preference[string] {
	return Preference[string]{
		store:  s,
		key:    key,
		def:    def,
		encode: func(value string) string { return value },
		decode: func(raw string) (string, error) { return raw, nil },
	}
}

// IntRange is an int preference whose values must fall in [minimum, maximum].
func (s *Store) IntRange(key string, def int, minimum int, maximum int) Preference[int] {
	pref := s.Int(key, def)
	pref.decode = func(raw string) (int, error) {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return 0, err
		}
		if value < minimum || value > maximum {
			return 0, fmt.Errorf("%d outside [%d, %d]", value, minimum, maximum)
		}
		return value, nil
	}
	return pref
}

// Enum stores one of the allowed string values.
func Enum[T ~string](s *Store, key string, def T, allowed ...T) Preference[T] {
	return Preference[T]{
		store:  s,
		key:    key,
		def:    def,
		encode: func(value T) string { return string(value) },
		decode: func(raw string) (T, error) {
			for _, candidate := range allowed {
				if strings.EqualFold(string(candidate), raw) {
					return candidate, nil
				}
			}
			return def, fmt.Errorf("%q is not one of %v", raw, allowed)
		},
	}
}
