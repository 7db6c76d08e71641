package dynamiccolor

import (
	"covertint/internal/manga"
	"log/slog"
	"sync"
)

// Mount tracks the manga whose thumbnail is on screen. Showing a different
// manga unmounts the previous controller before a new one starts.
type Mount struct {
	mu        sync.Mutex
	loader    ImageLoader
	extractor ColorExtractor
	publisher Publisher
	enabled   func() bool
	logger    *slog.Logger

	baseURL    string
	controller *Controller
	current    *manga.Manga
}

// NewMount builds an empty mount. enabled is consulted on every evaluation.
func NewMount(
	loader ImageLoader,
	extractor ColorExtractor,
	publisher Publisher,
	enabled func() bool,
	baseURL string,
	logger *slog.Logger,
) *Mount {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mount{
		loader:    loader,
		extractor: extractor,
		publisher: publisher,
		enabled:   enabled,
		baseURL:   baseURL,
		logger:    logger,
	}
}

func (m *Mount) Show(item manga.Manga) error {
	if item.ID <= 0 {
		return manga.ErrMissingID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.controller != nil && m.current != nil && m.current.ID != item.ID {
		m.controller.Unmount()
		m.controller = nil
	}
	if m.controller == nil {
		m.controller = NewController(m.loader, m.extractor, m.publisher, m.logger)
	}
	shown := item
	m.current = &shown
	m.updateLocked()
	return nil
}

// Hide unmounts the current thumbnail. Hiding an empty mount does nothing.
func (m *Mount) Hide() {
	m.mu.Lock()
	controller := m.controller
	m.controller = nil
	m.current = nil
	m.mu.Unlock()

	if controller != nil {
		controller.Unmount()
	}
}

// Refresh re-evaluates the shown manga, e.g. after the feature was toggled.
func (m *Mount) Refresh() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateLocked()
}

func (m *Mount) SetBaseURL(baseURL string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.baseURL == baseURL {
		return
	}
	m.baseURL = baseURL
	m.updateLocked()
}

func (m *Mount) BaseURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.baseURL
}

func (m *Mount) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.controller == nil {
		return PhaseIdle
	}
	return m.controller.Phase()
}

// Wait blocks until the current controller's requests have finished.
func (m *Mount) Wait() {
	m.mu.Lock()
	controller := m.controller
	m.mu.Unlock()

	if controller != nil {
		controller.Wait()
	}
}

func (m *Mount) updateLocked() {
	if m.controller == nil || m.current == nil {
		return
	}
	enabled := m.enabled == nil || m.enabled()
	m.controller.Update(manga.Resolve(m.baseURL, *m.current), enabled)
}
