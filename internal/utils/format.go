package utils

import (
	"github.com/amaumene/tubegram/internal/models"
)

// Limits bounds the format ladders
type Limits struct {
	CapBytes        int64  // inline upload limit
	PreferredHeight int    // first video rung
	FallbackHeight  int    // second video rung
	Container       string // preferred video container
}

// DefaultLimits returns the ladder bounds for a given upload cap
func DefaultLimits(capBytes int64) Limits {
	return Limits{
		CapBytes:        capBytes,
		PreferredHeight: 720,
		FallbackHeight:  480,
		Container:       "mp4",
	}
}

// SelectorsFor returns the ordered format ladder for a media kind.
// The result is never empty and always ends with an unconstrained rung.
func SelectorsFor(kind models.MediaKind, limits Limits) models.FormatChain {
	switch kind {
	case models.KindAudioPassthrough:
		// Prefer m4a so no re-encoding is needed
		return models.FormatChain{
			{Base: "bestaudio", Ext: "m4a"},
			{Base: "bestaudio"},
			{Base: "best"},
		}
	case models.KindAudioTranscode:
		// Container is irrelevant, the transcode step normalizes it
		return models.FormatChain{
			{Base: "bestaudio"},
			{Base: "best"},
		}
	case models.KindVideoCapped:
		return models.FormatChain{
			{Base: limits.Container, MaxHeight: limits.PreferredHeight, MaxFilesize: limits.CapBytes},
			{Base: limits.Container, MaxHeight: limits.FallbackHeight},
			{Base: "best"},
		}
	default:
		return models.FormatChain{{Base: "best"}}
	}
}

// TranscodeFor returns the post-processing step for a kind, or nil when none applies
func TranscodeFor(kind models.MediaKind, ffmpegPath string) *models.TranscodeSpec {
	if kind != models.KindAudioTranscode {
		return nil
	}
	return &models.TranscodeSpec{
		Codec:    "mp3",
		Quality:  "192K",
		ToolPath: ffmpegPath,
	}
}
