package main

import (
	"context"
	"covertint/internal/config"
	"covertint/internal/dynamiccolor"
	"covertint/internal/manga"
	"covertint/internal/preferences"
	"covertint/internal/theme"
	"log/slog"
)

// ThemeService mounts the manga screen's thumbnail and keeps the dynamic
// color slot in step with it.
type ThemeService struct {
	store     *theme.Store
	extractor *dynamiccolor.Extractor
	mount     *dynamiccolor.Mount
}

func NewThemeService(
	store *theme.Store,
	loader dynamiccolor.ImageLoader,
	extractor *dynamiccolor.Extractor,
	prefs *preferences.AppPreferences,
	baseURL string,
	logger *slog.Logger,
) *ThemeService {
	enabled := func() bool {
		return prefs.MangaDynamicColorSchemes().Get(context.Background())
	}
	return &ThemeService{
		store:     store,
		extractor: extractor,
		mount:     dynamiccolor.NewMount(loader, extractor, store, enabled, baseURL, logger),
	}
}

// ShowManga mounts m, or updates the mount when m is already shown.
func (s *ThemeService) ShowManga(m manga.Manga) (theme.State, error) {
	if err := s.mount.Show(m); err != nil {
		return s.store.GetState(), err
	}
	return s.store.GetState(), nil
}

// HideManga unmounts the current thumbnail and clears its colors.
func (s *ThemeService) HideManga() theme.State {
	s.mount.Hide()
	return s.store.GetState()
}

func (s *ThemeService) GetDynamicColor() theme.State {
	return s.store.GetState()
}

func (s *ThemeService) GetPhase() dynamiccolor.Phase {
	return s.mount.Phase()
}

func (s *ThemeService) refresh() {
	s.mount.Refresh()
}

func (s *ThemeService) applySettings(settings config.Settings) {
	s.extractor.Configure(dynamicColorSettings(settings))
	s.store.SetSuppressDuplicates(settings.DynamicColor.SuppressDuplicates)
	s.mount.SetBaseURL(settings.Server.BaseURL)
}

func (s *ThemeService) serverBaseURL() string {
	return s.mount.BaseURL()
}

func (s *ThemeService) close() {
	s.mount.Hide()
}
