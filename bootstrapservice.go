package main

import (
	"context"
	"covertint/internal/preferences"
	"covertint/internal/theme"
)

type StartupSnapshot struct {
	AppPreferences    preferences.AppSnapshot    `json:"appPreferences"`
	ReaderPreferences preferences.ReaderSnapshot `json:"readerPreferences"`
	DynamicColor      theme.State                `json:"dynamicColor"`
	ServerBaseURL     string                     `json:"serverBaseUrl"`
}

type BootstrapService struct {
	app     *preferences.AppPreferences
	reader  *preferences.ReaderPreferences
	store   *theme.Store
	baseURL func() string
}

func NewBootstrapService(
	app *preferences.AppPreferences,
	reader *preferences.ReaderPreferences,
	store *theme.Store,
	baseURL func() string,
) *BootstrapService {
	return &BootstrapService{
		app:     app,
		reader:  reader,
		store:   store,
		baseURL: baseURL,
	}
}

func (s *BootstrapService) GetInitialState() StartupSnapshot {
	ctx := context.Background()
	return StartupSnapshot{
		AppPreferences:    s.app.Snapshot(ctx),
		ReaderPreferences: s.reader.Snapshot(ctx),
		DynamicColor:      s.store.GetState(),
		ServerBaseURL:     s.baseURL(),
	}
}
