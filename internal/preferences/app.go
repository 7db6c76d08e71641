package preferences

import "context"

const (
	KeyMangaDynamicColorSchemes = "manga_dynamic_color_schemes"
	KeyMangaThumbnailBackdrop   = "manga_thumbnail_backdrop"
)

// AppPreferences holds the manga screen toggles.
type AppPreferences struct {
	store *Store
}

type AppSnapshot struct {
	MangaDynamicColorSchemes bool `json:"mangaDynamicColorSchemes"`
	MangaThumbnailBackdrop   bool `json:"mangaThumbnailBackdrop"`
}

func NewAppPreferences(store *Store) *AppPreferences {
	return &AppPreferences{store: store}
}

// MangaDynamicColorSchemes gates thumbnail color extraction.
func (p *AppPreferences) MangaDynamicColorSchemes() Preference[bool] {
	return p.store.Bool(KeyMangaDynamicColorSchemes, true)
}

func (p *AppPreferences) MangaThumbnailBackdrop() Preference[bool] {
	return p.store.Bool(KeyMangaThumbnailBackdrop, true)
}

func (p *AppPreferences) Snapshot(ctx context.Context) AppSnapshot {
	return AppSnapshot{
		MangaDynamicColorSchemes: p.MangaDynamicColorSchemes().Get(ctx),
		MangaThumbnailBackdrop:   p.MangaThumbnailBackdrop().Get(ctx),
	}
}
