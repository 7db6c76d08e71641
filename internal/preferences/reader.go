package preferences

import "context"

type FlashColor string

const (
	FlashColorBlack      FlashColor = "BLACK"
	FlashColorWhite      FlashColor = "WHITE"
	FlashColorWhiteBlack FlashColor = "WHITE_BLACK"
)

type TappingInvertMode string

const (
	TappingInvertNone       TappingInvertMode = "NONE"
	TappingInvertHorizontal TappingInvertMode = "HORIZONTAL"
	TappingInvertVertical   TappingInvertMode = "VERTICAL"
	TappingInvertBoth       TappingInvertMode = "BOTH"
)

func (m TappingInvertMode) InvertsHorizontal() bool {
	return m == TappingInvertHorizontal || m == TappingInvertBoth
}

func (m TappingInvertMode) InvertsVertical() bool {
	return m == TappingInvertVertical || m == TappingInvertBoth
}

type HideThreshold string

const (
	HideThresholdHighest HideThreshold = "HIGHEST"
	HideThresholdHigh    HideThreshold = "HIGH"
	HideThresholdLow     HideThreshold = "LOW"
	HideThresholdLowest  HideThreshold = "LOWEST"
)

// Pixels returns the scroll distance that hides the reader menu.
func (h HideThreshold) Pixels() int {
	switch h {
	case HideThresholdHighest:
		return 5
	case HideThresholdHigh:
		return 13
	case HideThresholdLowest:
		return 47
	default:
		return 31
	}
}

const (
	ReadingModeDefault     = 0
	ReadingModeLeftToRight = 1
	ReadingModeRightToLeft = 2
	ReadingModeVertical    = 3
	ReadingModeWebtoon     = 4
	ReadingModeContinuous  = 5
)

const (
	ArchiveModeLoadFromFile   = 0
	ArchiveModeLoadIntoMemory = 1
	ArchiveModeCacheToDisk    = 2
)

const (
	WebtoonPaddingMin = 0
	WebtoonPaddingMax = 25

	flashDurationDefault = 100
)

// ReaderPreferences exposes the reader settings with their historical keys.
type ReaderPreferences struct {
	store *Store
}

func NewReaderPreferences(store *Store) *ReaderPreferences {
	return &ReaderPreferences{store: store}
}

func (p *ReaderPreferences) PageTransitionsPager() Preference[bool] {
	return p.store.Bool("pref_enable_transitions_pager_key", true)
}

func (p *ReaderPreferences) PageTransitionsWebtoon() Preference[bool] {
	return p.store.Bool("pref_enable_transitions_webtoon_key", true)
}

func (p *ReaderPreferences) FlashOnPageChange() Preference[bool] {
	return p.store.Bool("pref_reader_flash", false)
}

func (p *ReaderPreferences) FlashDurationMillis() Preference[int] {
	return p.store.Int("pref_reader_flash_duration", flashDurationDefault)
}

func (p *ReaderPreferences) FlashPageInterval() Preference[int] {
	return p.store.Int("pref_reader_flash_interval", 1)
}

func (p *ReaderPreferences) FlashColor() Preference[FlashColor] {
	return Enum(p.store, "pref_reader_flash_mode", FlashColorBlack, FlashColorBlack, FlashColorWhite, FlashColorWhiteBlack)
}

func (p *ReaderPreferences) DoubleTapAnimSpeed() Preference[int] {
	return p.store.Int("pref_double_tap_anim_speed", 500)
}

func (p *ReaderPreferences) ShowPageNumber() Preference[bool] {
	return p.store.Bool("pref_show_page_number_key", true)
}

func (p *ReaderPreferences) ShowReadingMode() Preference[bool] {
	return p.store.Bool("pref_show_reading_mode", true)
}

func (p *ReaderPreferences) Fullscreen() Preference[bool] {
	return p.store.Bool("fullscreen", true)
}

func (p *ReaderPreferences) KeepScreenOn() Preference[bool] {
	return p.store.Bool("pref_keep_screen_on_key", false)
}

func (p *ReaderPreferences) DefaultReadingMode() Preference[int] {
	return p.store.IntRange("pref_default_reading_mode_key", ReadingModeRightToLeft, ReadingModeDefault, ReadingModeContinuous)
}

func (p *ReaderPreferences) ImageScaleType() Preference[int] {
	return p.store.IntRange("pref_image_scale_type_key", 1, 1, 6)
}

func (p *ReaderPreferences) ReaderTheme() Preference[int] {
	return p.store.Int("pref_reader_theme_key", 1)
}

func (p *ReaderPreferences) CropBorders() Preference[bool] {
	return p.store.Bool("crop_borders", false)
}

func (p *ReaderPreferences) CropBordersWebtoon() Preference[bool] {
	return p.store.Bool("crop_borders_webtoon", false)
}

func (p *ReaderPreferences) WebtoonSidePadding() Preference[int] {
	return p.store.IntRange("webtoon_side_padding", WebtoonPaddingMin, WebtoonPaddingMin, WebtoonPaddingMax)
}

func (p *ReaderPreferences) ReaderHideThreshold() Preference[HideThreshold] {
	return Enum(p.store, "reader_hide_threshold", HideThresholdLow, HideThresholdHighest, HideThresholdHigh, HideThresholdLow, HideThresholdLowest)
}

func (p *ReaderPreferences) SkipRead() Preference[bool] {
	return p.store.Bool("skip_read", false)
}

func (p *ReaderPreferences) SkipFiltered() Preference[bool] {
	return p.store.Bool("skip_filtered", true)
}

func (p *ReaderPreferences) SkipDupe() Preference[bool] {
	return p.store.Bool("skip_dupe", false)
}

func (p *ReaderPreferences) DualPageSplitPaged() Preference[bool] {
	return p.store.Bool("pref_dual_page_split", false)
}

func (p *ReaderPreferences) DualPageInvertPaged() Preference[bool] {
	return p.store.Bool("pref_dual_page_invert", false)
}

func (p *ReaderPreferences) DualPageSplitWebtoon() Preference[bool] {
	return p.store.Bool("pref_dual_page_split_webtoon", false)
}

func (p *ReaderPreferences) DualPageInvertWebtoon() Preference[bool] {
	return p.store.Bool("pref_dual_page_invert_webtoon", false)
}

func (p *ReaderPreferences) CustomBrightness() Preference[bool] {
	return p.store.Bool("pref_custom_brightness_key", false)
}

func (p *ReaderPreferences) CustomBrightnessValue() Preference[int] {
	return p.store.IntRange("custom_brightness_value", 0, -75, 100)
}

func (p *ReaderPreferences) ColorFilter() Preference[bool] {
	return p.store.Bool("pref_color_filter_key", false)
}

func (p *ReaderPreferences) ColorFilterValue() Preference[int] {
	return p.store.Int("color_filter_value", 0)
}

func (p *ReaderPreferences) ColorFilterMode() Preference[int] {
	return p.store.IntRange("color_filter_mode", 0, 0, 5)
}

func (p *ReaderPreferences) Grayscale() Preference[bool] {
	return p.store.Bool("pref_grayscale", false)
}

func (p *ReaderPreferences) InvertedColors() Preference[bool] {
	return p.store.Bool("pref_inverted_colors", false)
}

func (p *ReaderPreferences) ReadWithLongTap() Preference[bool] {
	return p.store.Bool("reader_long_tap", true)
}

func (p *ReaderPreferences) ReadWithVolumeKeys() Preference[bool] {
	return p.store.Bool("reader_volume_keys", false)
}

func (p *ReaderPreferences) ReadWithVolumeKeysInverted() Preference[bool] {
	return p.store.Bool("reader_volume_keys_inverted", false)
}

func (p *ReaderPreferences) NavigationModePager() Preference[int] {
	return p.store.IntRange("reader_navigation_mode_pager", 0, 0, 5)
}

func (p *ReaderPreferences) NavigationModeWebtoon() Preference[int] {
	return p.store.IntRange("reader_navigation_mode_webtoon", 0, 0, 5)
}

func (p *ReaderPreferences) PagerNavInverted() Preference[TappingInvertMode] {
	return tappingInvert(p.store, "reader_tapping_inverted")
}

func (p *ReaderPreferences) WebtoonNavInverted() Preference[TappingInvertMode] {
	return tappingInvert(p.store, "reader_tapping_inverted_webtoon")
}

func (p *ReaderPreferences) ReaderThreads() Preference[int] {
	return p.store.IntRange("eh_reader_threads", 2, 1, 5)
}

func (p *ReaderPreferences) CacheSize() Preference[string] {
	return p.store.String("eh_cache_size", "75")
}

func (p *ReaderPreferences) AutoscrollInterval() Preference[float64] {
	return p.store.Float("eh_util_autoscroll_interval", 3)
}

func (p *ReaderPreferences) PreloadSize() Preference[int] {
	return p.store.IntRange("eh_preload_size", 10, 1, 50)
}

func (p *ReaderPreferences) ArchiveReaderMode() Preference[int] {
	return p.store.IntRange("archive_reader_mode", ArchiveModeLoadFromFile, ArchiveModeLoadFromFile, ArchiveModeCacheToDisk)
}

func tappingInvert(store *Store, key string) Preference[TappingInvertMode] {
	return Enum(store, key, TappingInvertNone, TappingInvertNone, TappingInvertHorizontal, TappingInvertVertical, TappingInvertBoth)
}

// ReaderSnapshot is the reader settings as seen by the front end.
type ReaderSnapshot struct {
	DefaultReadingMode  int               `json:"defaultReadingMode"`
	ImageScaleType      int               `json:"imageScaleType"`
	ShowPageNumber      bool              `json:"showPageNumber"`
	Fullscreen          bool              `json:"fullscreen"`
	KeepScreenOn        bool              `json:"keepScreenOn"`
	FlashOnPageChange   bool              `json:"flashOnPageChange"`
	FlashColor          FlashColor        `json:"flashColor"`
	CropBorders         bool              `json:"cropBorders"`
	WebtoonSidePadding  int               `json:"webtoonSidePadding"`
	ReaderHideThreshold HideThreshold     `json:"readerHideThreshold"`
	Grayscale           bool              `json:"grayscale"`
	InvertedColors      bool              `json:"invertedColors"`
	PagerNavInverted    TappingInvertMode `json:"pagerNavInverted"`
	PreloadSize         int               `json:"preloadSize"`
	ArchiveReaderMode   int               `json:"archiveReaderMode"`
}

// Lookup finds a reader preference that appears in ReaderSnapshot by key.
func (p *ReaderPreferences) Lookup(key string) (RawSetter, bool) {
	for _, pref := range []RawSetter{
		p.DefaultReadingMode(),
		p.ImageScaleType(),
		p.ShowPageNumber(),
		p.Fullscreen(),
		p.KeepScreenOn(),
		p.FlashOnPageChange(),
		p.FlashColor(),
		p.CropBorders(),
		p.WebtoonSidePadding(),
		p.ReaderHideThreshold(),
		p.Grayscale(),
		p.InvertedColors(),
		p.PagerNavInverted(),
		p.PreloadSize(),
		p.ArchiveReaderMode(),
	} {
		if pref.Key() == key {
			return pref, true
		}
	}
	return nil, false
}

func (p *ReaderPreferences) Snapshot(ctx context.Context) ReaderSnapshot {
	return ReaderSnapshot{
		DefaultReadingMode:  p.DefaultReadingMode().Get(ctx),
		ImageScaleType:      p.ImageScaleType().Get(ctx),
		ShowPageNumber:      p.ShowPageNumber().Get(ctx),
		Fullscreen:          p.Fullscreen().Get(ctx),
		KeepScreenOn:        p.KeepScreenOn().Get(ctx),
		FlashOnPageChange:   p.FlashOnPageChange().Get(ctx),
		FlashColor:          p.FlashColor().Get(ctx),
		CropBorders:         p.CropBorders().Get(ctx),
		WebtoonSidePadding:  p.WebtoonSidePadding().Get(ctx),
		ReaderHideThreshold: p.ReaderHideThreshold().Get(ctx),
		Grayscale:           p.Grayscale().Get(ctx),
		InvertedColors:      p.InvertedColors().Get(ctx),
		PagerNavInverted:    p.PagerNavInverted().Get(ctx),
		PreloadSize:         p.PreloadSize().Get(ctx),
		ArchiveReaderMode:   p.ArchiveReaderMode().Get(ctx),
	}
}
