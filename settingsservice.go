package main

import (
	"context"
	"covertint/internal/preferences"
	"errors"
	"fmt"
	"strings"
)

type SettingsService struct {
	app    *preferences.AppPreferences
	reader *preferences.ReaderPreferences
}

func NewSettingsService(app *preferences.AppPreferences, reader *preferences.ReaderPreferences) *SettingsService {
	return &SettingsService{app: app, reader: reader}
}

func (s *SettingsService) GetAppPreferences() preferences.AppSnapshot {
	return s.app.Snapshot(context.Background())
}

func (s *SettingsService) SetMangaDynamicColorSchemes(enabled bool) (preferences.AppSnapshot, error) {
	if err := s.app.MangaDynamicColorSchemes().Set(context.Background(), enabled); err != nil {
		return s.GetAppPreferences(), err
	}
	return s.GetAppPreferences(), nil
}

func (s *SettingsService) SetMangaThumbnailBackdrop(enabled bool) (preferences.AppSnapshot, error) {
	if err := s.app.MangaThumbnailBackdrop().Set(context.Background(), enabled); err != nil {
		return s.GetAppPreferences(), err
	}
	return s.GetAppPreferences(), nil
}

func (s *SettingsService) GetReaderPreferences() preferences.ReaderSnapshot {
	return s.reader.Snapshot(context.Background())
}

func (s *SettingsService) SetReaderPreference(key string, value string) (preferences.ReaderSnapshot, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return s.GetReaderPreferences(), errors.New("preference key is required")
	}

	pref, ok := s.reader.Lookup(trimmed)
	if !ok {
		return s.GetReaderPreferences(), fmt.Errorf("reader preference %q does not exist", trimmed)
	}

	if err := pref.SetRaw(context.Background(), value); err != nil {
		return s.GetReaderPreferences(), err
	}
	return s.GetReaderPreferences(), nil
}
