package manga

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

var (
	ErrMissingID        = errors.New("manga id is required")
	ErrMissingThumbnail = errors.New("manga has no thumbnail url")
	ErrInvalidThumbnail = errors.New("manga thumbnail url is invalid")
)

// Manga carries the fields needed to locate a thumbnail.
type Manga struct {
	ID                      int    `json:"id"`
	ThumbnailURL            string `json:"thumbnailUrl"`
	ThumbnailURLLastFetched int64  `json:"thumbnailUrlLastFetched,omitempty"`
}

// Subject is either Resolvable or Unresolvable.
type Subject interface {
	subjectMangaID() int
}

type Resolvable struct {
	MangaID int
	URL     string
}

type Unresolvable struct {
	MangaID int
	Reason  error
}

func (r Resolvable) subjectMangaID() int { return r.MangaID }

func (u Unresolvable) subjectMangaID() int { return u.MangaID }

// MangaID returns the id carried by either variant.
func MangaID(subject Subject) int {
	if subject == nil {
		return 0
	}
	return subject.subjectMangaID()
}

// Resolve computes the display URL of a manga thumbnail. Relative thumbnail
// paths are joined onto baseURL; a positive ThumbnailURLLastFetched is added
// as a cache-busting query parameter.
func Resolve(baseURL string, m Manga) Subject {
	thumbnailURL, err := ThumbnailURL(baseURL, m)
	if err != nil {
		return Unresolvable{MangaID: m.ID, Reason: err}
	}
	return Resolvable{MangaID: m.ID, URL: thumbnailURL}
}

func ThumbnailURL(baseURL string, m Manga) (string, error) {
	if m.ID <= 0 {
		return "", ErrMissingID
	}

	raw := strings.TrimSpace(m.ThumbnailURL)
	if raw == "" {
		return "", ErrMissingThumbnail
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidThumbnail, err)
	}

	resolved := ref
	if !ref.IsAbs() {
		base := strings.TrimSpace(baseURL)
		if base == "" {
			return "", fmt.Errorf("%w: relative url %q without server base url", ErrInvalidThumbnail, raw)
		}
		baseParsed, err := url.Parse(strings.TrimRight(base, "/") + "/")
		if err != nil || !baseParsed.IsAbs() {
			return "", fmt.Errorf("%w: server base url %q", ErrInvalidThumbnail, base)
		}
		resolved = baseParsed.ResolveReference(&url.URL{
			Path:     strings.TrimLeft(ref.Path, "/"),
			RawQuery: ref.RawQuery,
		})
	}

	if m.ThumbnailURLLastFetched > 0 {
		query := resolved.Query()
		query.Set("lastFetched", strconv.FormatInt(m.ThumbnailURLLastFetched, 10))
		resolved.RawQuery = query.Encode()
	}

	return resolved.String(), nil
}
