package dynamiccolor

import (
	"context"
	"covertint/internal/average"
	"covertint/internal/manga"
	"covertint/internal/palette"
	"covertint/internal/theme"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseLoading    Phase = "loading"
	PhaseExtracting Phase = "extracting"
	PhasePublished  Phase = "published"
)

type ImageLoader interface {
	Load(ctx context.Context, rawURL string) (image.Image, error)
}

// URLValidator is implemented by loaders that can reject a URL without
// reading it.
type URLValidator interface {
	ValidateURL(rawURL string) error
}

type ColorExtractor interface {
	Extract(ctx context.Context, img image.Image) (palette.Palette, average.Color, error)
}

// Publisher is the write side of theme.Store.
type Publisher interface {
	Issue() theme.Token
	Publish(token theme.Token, color theme.DynamicColor) bool
	Clear(token theme.Token) bool
	Reset()
}

// Request is one extraction attempt. It is superseded by the next Update or
// by Unmount.
type Request struct {
	ID          string      `json:"id"`
	MangaID     int         `json:"mangaId"`
	ImageURL    string      `json:"imageUrl"`
	RequestedAt time.Time   `json:"requestedAt"`
	Token       theme.Token `json:"-"`
}

// Controller drives the dynamic color of one mounted thumbnail.
type Controller struct {
	mu        sync.Mutex
	loader    ImageLoader
	validator URLValidator
	extractor ColorExtractor
	publisher Publisher
	logger    *slog.Logger

	started   bool
	unmounted bool
	enabled   bool
	imageURL  string
	phase     Phase
	request   *Request
	cancel    context.CancelFunc
	inFlight  sync.WaitGroup
}

func NewController(loader ImageLoader, extractor ColorExtractor, publisher Publisher, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	validator, _ := loader.(URLValidator)
	return &Controller{
		loader:    loader,
		validator: validator,
		extractor: extractor,
		publisher: publisher,
		logger:    logger.With("component", "dynamiccolor"),
		phase:     PhaseIdle,
	}
}

// Update applies the current subject and feature flag. A change of URL or
// flag clears the published color and, when enabled with a resolvable
// subject, starts exactly one new request. An unchanged call is a no-op.
func (c *Controller) Update(subject manga.Subject, enabled bool) {
	imageURL := ""
	if resolvable, ok := subject.(manga.Resolvable); ok {
		imageURL = resolvable.URL
	}
	var rejected error
	if imageURL != "" && c.validator != nil {
		rejected = c.validator.ValidateURL(imageURL)
	}

	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return
	}
	if c.started && c.enabled == enabled && c.imageURL == imageURL {
		c.mu.Unlock()
		return
	}

	c.started = true
	c.enabled = enabled
	c.imageURL = imageURL
	c.cancelLocked()

	token := c.publisher.Issue()
	c.publisher.Clear(token)

	if !enabled || imageURL == "" || rejected != nil {
		c.phase = PhaseIdle
		c.request = nil
		c.mu.Unlock()

		if !enabled {
			return
		}
		if unresolvable, ok := subject.(manga.Unresolvable); ok {
			c.logger.Debug("thumbnail not resolvable", "manga", unresolvable.MangaID, "error", unresolvable.Reason)
		} else if rejected != nil {
			c.logger.Debug("thumbnail url rejected", "manga", manga.MangaID(subject), "url", imageURL, "error", rejected)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	request := &Request{
		ID:          uuid.NewString(),
		MangaID:     manga.MangaID(subject),
		ImageURL:    imageURL,
		RequestedAt: time.Now().UTC(),
		Token:       token,
	}
	c.request = request
	c.cancel = cancel
	c.phase = PhaseLoading
	c.inFlight.Add(1)
	c.mu.Unlock()

	go c.run(ctx, *request)
}

// Unmount clears the published color and drops any in-flight result. Only
// the first call has an effect.
func (c *Controller) Unmount() {
	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return
	}
	c.unmounted = true
	c.cancelLocked()
	c.phase = PhaseIdle
	c.request = nil
	c.mu.Unlock()

	c.publisher.Reset()
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Request returns the current request, if any.
func (c *Controller) Request() (Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.request == nil {
		return Request{}, false
	}
	return *c.request, true
}

// Wait blocks until every request this controller started has finished.
func (c *Controller) Wait() {
	c.inFlight.Wait()
}

func (c *Controller) run(ctx context.Context, request Request) {
	defer c.inFlight.Done()

	logger := c.logger.With("request", request.ID, "manga", request.MangaID, "generation", request.Token.Generation())
	started := time.Now()

	img, err := c.loader.Load(ctx, request.ImageURL)
	if err != nil {
		c.fail(logger, request, fmt.Errorf("%w: %w", ErrImageLoad, err))
		return
	}

	if !c.advance(request, PhaseExtracting) {
		logger.Debug("dropping stale bitmap", "url", request.ImageURL)
		return
	}

	candidate, color, err := c.extractor.Extract(ctx, img)
	if err != nil {
		c.fail(logger, request, fmt.Errorf("%w: %w", ErrColorExtraction, err))
		return
	}

	accepted, err := Accept(candidate)
	if err != nil {
		c.fail(logger, request, err)
		return
	}

	if !c.publisher.Publish(request.Token, theme.DynamicColor{Palette: accepted, Average: color}) {
		logger.Debug("dropping stale dynamic color", "url", request.ImageURL)
		return
	}
	c.advance(request, PhasePublished)

	logger.Debug("dynamic color published",
		"average", color.Hex,
		"vibrant", accepted.Vibrant.Hex,
		"elapsed", time.Since(started).Round(time.Millisecond),
	)
}

func (c *Controller) fail(logger *slog.Logger, request Request, err error) {
	if !c.advance(request, PhaseIdle) {
		logger.Debug("ignoring failure of superseded request", "error", err)
		return
	}
	c.publisher.Clear(request.Token)

	switch {
	case errors.Is(err, ErrIncompletePalette), errors.Is(err, context.Canceled):
		logger.Debug("dynamic color cleared", "url", request.ImageURL, "error", err)
	default:
		logger.Warn("dynamic color cleared", "url", request.ImageURL, "error", err)
	}
}

// advance moves to phase if request is still the current one.
func (c *Controller) advance(request Request, phase Phase) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.request == nil || c.request.ID != request.ID {
		return false
	}
	c.phase = phase
	return true
}

func (c *Controller) cancelLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
