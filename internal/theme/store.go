package theme

import (
	"covertint/internal/average"
	"covertint/internal/palette"
	"sync"
	"time"
)

const EventDynamicColor = "theme:dynamic-color"

type Emitter func(eventName string, payload any)

type ChangeListener func(state State)

// DynamicColor is the value the front end themes itself from.
type DynamicColor struct {
	Palette palette.Palette `json:"palette"`
	Average average.Color   `json:"average"`
}

// State is the published slot. A nil DynamicColor means absent.
type State struct {
	DynamicColor *DynamicColor `json:"dynamicColor,omitempty"`
	Generation   uint64        `json:"generation"`
	UpdatedAt    string        `json:"updatedAt,omitempty"`
}

// Token authorizes writes for one request. Issuing a new token invalidates
// every earlier one.
type Token struct {
	generation uint64
}

func (t Token) Generation() uint64 {
	return t.generation
}

// Store holds the process-wide dynamic color slot. Writers must present the
// most recently issued token; anything else is dropped.
type Store struct {
	mu                 sync.Mutex
	generation         uint64
	current            *DynamicColor
	updatedAt          time.Time
	suppressDuplicates bool
	emit               Emitter
	onChange           ChangeListener
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) SetEmitter(emitter Emitter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emit = emitter
}

func (s *Store) SetOnChange(listener ChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = listener
}

// SetSuppressDuplicates skips the change event when a write would not alter
// the visible colors.
func (s *Store) SetSuppressDuplicates(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppressDuplicates = enabled
}

func (s *Store) Issue() Token {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	return Token{generation: s.generation}
}

// Publish stores color if token is current and reports whether it did.
func (s *Store) Publish(token Token, color DynamicColor) bool {
	copied := color
	return s.write(token, &copied, false)
}

// Clear sets the slot to absent if token is current.
func (s *Store) Clear(token Token) bool {
	return s.write(token, nil, false)
}

// Reset sets the slot to absent regardless of tokens and invalidates every
// outstanding one.
func (s *Store) Reset() {
	s.write(Token{}, nil, true)
}

func (s *Store) Current() *DynamicColor {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}
	copied := *s.current
	return &copied
}

func (s *Store) GetState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) write(token Token, color *DynamicColor, force bool) bool {
	s.mu.Lock()
	if force {
		s.generation++
	} else if token.generation == 0 || token.generation != s.generation {
		s.mu.Unlock()
		return false
	}

	unchanged := sameColors(s.current, color)
	s.current = color
	s.updatedAt = time.Now().UTC()
	state := s.snapshotLocked()
	emitter := s.emit
	listener := s.onChange
	skip := s.suppressDuplicates && unchanged && !force
	s.mu.Unlock()

	if skip {
		return true
	}
	if emitter != nil {
		emitter(EventDynamicColor, state)
	}
	if listener != nil {
		listener(state)
	}
	return true
}

func (s *Store) snapshotLocked() State {
	state := State{Generation: s.generation}
	if s.current != nil {
		copied := *s.current
		state.DynamicColor = &copied
	}
	if !s.updatedAt.IsZero() {
		state.UpdatedAt = s.updatedAt.Format(time.RFC3339)
	}
	return state
}

func sameColors(left, right *DynamicColor) bool {
	if left == nil || right == nil {
		return left == right
	}
	if left.Average.Hex != right.Average.Hex || left.Average.A != right.Average.A {
		return false
	}
	for _, slot := range palette.Slots {
		if hexOf(left.Palette.Get(slot)) != hexOf(right.Palette.Get(slot)) {
			return false
		}
	}
	return true
}

func hexOf(swatch *palette.Swatch) string {
	if swatch == nil {
		return ""
	}
	return swatch.Hex
}
