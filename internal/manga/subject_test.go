package manga

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		baseURL string
		manga   Manga
		wantURL string
		wantErr error
	}{
		{
			name:    "relative path joined onto base",
			baseURL: "http://127.0.0.1:4567/",
			manga:   Manga{ID: 7, ThumbnailURL: "/api/v1/manga/7/thumbnail"},
			wantURL: "http://127.0.0.1:4567/api/v1/manga/7/thumbnail",
		},
		{
			name:    "base with path prefix",
			baseURL: "https://example.com/suwayomi",
			manga:   Manga{ID: 7, ThumbnailURL: "api/v1/manga/7/thumbnail"},
			wantURL: "https://example.com/suwayomi/api/v1/manga/7/thumbnail",
		},
		{
			name:    "absolute url kept with cache buster",
			baseURL: "",
			manga:   Manga{ID: 3, ThumbnailURL: "https://cdn.example.com/a.jpg?w=300", ThumbnailURLLastFetched: 1700000000},
			wantURL: "https://cdn.example.com/a.jpg?lastFetched=1700000000&w=300",
		},
		{
			name:    "missing id",
			manga:   Manga{ThumbnailURL: "/a.jpg"},
			wantErr: ErrMissingID,
		},
		{
			name:    "missing thumbnail",
			manga:   Manga{ID: 1, ThumbnailURL: "  "},
			wantErr: ErrMissingThumbnail,
		},
		{
			name:    "relative without base",
			manga:   Manga{ID: 1, ThumbnailURL: "/a.jpg"},
			wantErr: ErrInvalidThumbnail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject := Resolve(tt.baseURL, tt.manga)
			assert.Equal(t, tt.manga.ID, MangaID(subject))

			if tt.wantErr != nil {
				unresolvable, ok := subject.(Unresolvable)
				require.True(t, ok, "expected Unresolvable, got %T", subject)
				assert.ErrorIs(t, unresolvable.Reason, tt.wantErr)
				return
			}

			resolvable, ok := subject.(Resolvable)
			require.True(t, ok, "expected Resolvable, got %T", subject)
			assert.Equal(t, tt.wantURL, resolvable.URL)
		})
	}
}

func TestMangaIDOfNilSubject(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, MangaID(nil))
}
