package models

import (
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrMissingURL is returned when a command carries no URL argument
	ErrMissingURL = errors.New("missing URL")
	// ErrUnsupportedURL is returned when the URL does not belong to a recognized site
	ErrUnsupportedURL = errors.New("unsupported URL")
)

// siteRegex matches links the extraction tool is expected to handle
var siteRegex = regexp.MustCompile(`^(https?://)?(www\.|m\.|music\.)?(youtube\.com|youtu\.be)/\S+$`)

// IsRecognizedURL reports whether text is a single link to a recognized site
func IsRecognizedURL(text string) bool {
	return siteRegex.MatchString(strings.TrimSpace(text))
}

// MediaRequest is one user request for media. It is never mutated after creation.
type MediaRequest struct {
	URL       string
	Kind      MediaKind
	RequestID string // unique per request, keys working files
}

// NewMediaRequest validates the URL and assigns a fresh request ID
func NewMediaRequest(rawURL string, kind MediaKind) (MediaRequest, error) {
	url := strings.TrimSpace(rawURL)
	if url == "" {
		return MediaRequest{}, ErrMissingURL
	}
	if !IsRecognizedURL(url) {
		return MediaRequest{}, ErrUnsupportedURL
	}
	return MediaRequest{
		URL:       url,
		Kind:      kind,
		RequestID: uuid.NewString(),
	}, nil
}

// Token returns the short form of the request ID used in file names
func (r MediaRequest) Token() string {
	id := strings.ReplaceAll(r.RequestID, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// CaptionKind derives the chat presentation from the requested kind only
func (k MediaKind) CaptionKind() CaptionKind {
	switch k {
	case KindAudioPassthrough, KindAudioTranscode:
		return CaptionAudio
	case KindVideoCapped:
		return CaptionVideo
	default:
		return CaptionDocument
	}
}
