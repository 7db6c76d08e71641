package main

import (
	"context"
	"covertint/internal/average"
	"covertint/internal/config"
	"covertint/internal/db"
	"covertint/internal/dynamiccolor"
	"covertint/internal/imageload"
	"covertint/internal/logging"
	"covertint/internal/palette"
	"covertint/internal/preferences"
	"covertint/internal/theme"
	"embed"
	"log"
	"log/slog"
	"time"

	"github.com/wailsapp/wails/v3/pkg/application"
)

//go:embed all:frontend/dist
var assets embed.FS

func init() {
	application.RegisterEvent[theme.State](theme.EventDynamicColor)
	application.RegisterEvent[preferences.Change](preferences.EventChanged)
}

func main() {
	paths, err := config.ResolvePaths("covertint")
	if err != nil {
		log.Fatal(err)
	}

	settings, err := config.Load(paths.SettingsPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, logFile, err := logging.Setup(settings.Logging.Level, paths.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	slog.SetDefault(logger)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	sqliteDB, err := db.Bootstrap(ctx, paths.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer sqliteDB.Close()

	prefStore := preferences.NewStore(sqliteDB, logger)
	appPrefs := preferences.NewAppPreferences(prefStore)
	readerPrefs := preferences.NewReaderPreferences(prefStore)

	themeStore := theme.NewStore()
	themeStore.SetSuppressDuplicates(settings.DynamicColor.SuppressDuplicates)
	themeStore.SetOnChange(func(state theme.State) {
		logger.Debug("dynamic color changed", "generation", state.Generation, "present", state.DynamicColor != nil)
	})

	loader := imageload.NewLoader(imageload.Options{
		Timeout:   time.Duration(settings.Loader.FetchTimeoutSeconds) * time.Second,
		LocalRoot: paths.ThumbnailDir,
		MaxBytes:  int64(settings.Loader.MaxImageBytes),
	})
	extractor := dynamiccolor.NewExtractor(nil, nil, dynamicColorSettings(settings))

	themeService := NewThemeService(themeStore, loader, extractor, appPrefs, settings.Server.BaseURL, logger)
	defer themeService.close()
	settingsService := NewSettingsService(appPrefs, readerPrefs)
	bootstrapService := NewBootstrapService(appPrefs, readerPrefs, themeStore, themeService.serverBaseURL)

	prefStore.OnChange(func(key string) {
		if key == preferences.KeyMangaDynamicColorSchemes {
			themeService.refresh()
		}
	})

	app := application.New(application.Options{
		Name:        "Covertint",
		Description: "Manga thumbnail dynamic color",
		Services: []application.Service{
			application.NewService(themeService),
			application.NewService(settingsService),
			application.NewService(bootstrapService),
		},
		Assets: application.AssetOptions{
			Handler: application.AssetFileServerFS(assets),
		},
		Mac: application.MacOptions{
			ApplicationShouldTerminateAfterLastWindowClosed: true,
		},
	})

	emit := func(eventName string, payload any) {
		app.Event.Emit(eventName, payload)
	}
	themeStore.SetEmitter(emit)
	prefStore.SetEmitter(emit)

	go func() {
		err := config.Watch(ctx, paths.SettingsPath, logger, func(updated config.Settings) {
			if updated.Loader != settings.Loader {
				logger.Info("loader settings take effect after restart")
			}
			themeService.applySettings(updated)
		})
		if err != nil {
			logger.Warn("settings watcher disabled", "error", err)
		}
	}()

	app.Window.NewWithOptions(application.WebviewWindowOptions{
		Title: "Covertint",
		Mac: application.MacWindow{
			InvisibleTitleBarHeight: 50,
			Backdrop:                application.MacBackdropTranslucent,
			TitleBar:                application.MacTitleBarHiddenInset,
		},
		BackgroundColour: application.NewRGB(12, 18, 24),
		URL:              "/",
	})

	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}

func dynamicColorSettings(settings config.Settings) dynamiccolor.Settings {
	algorithm, err := average.ParseAlgorithm(settings.DynamicColor.AverageAlgorithm)
	if err != nil {
		algorithm = average.AlgorithmDominant
	}

	paletteOptions := palette.DefaultOptions()
	paletteOptions.FillMissing = settings.DynamicColor.FillMissingSwatches

	return dynamiccolor.Settings{
		FastModeThreshold: settings.DynamicColor.FastModeThreshold,
		IgnoreTolerance:   settings.DynamicColor.IgnoreTolerance,
		Algorithm:         algorithm,
		Palette:           paletteOptions,
	}
}
