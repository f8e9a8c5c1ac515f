package models

import (
	"fmt"
	"strings"
)

// FormatSelector is one rung of a format ladder, rendered in yt-dlp selector syntax
type FormatSelector struct {
	Base        string // "best", "bestaudio" or a container name such as "mp4"
	Ext         string // container constraint applied to Base, e.g. "m4a"
	MaxHeight   int    // 0 means unconstrained
	MaxFilesize int64  // bytes, 0 means unconstrained
}

// String renders the selector, e.g. mp4[height<=720][filesize<48M]
func (s FormatSelector) String() string {
	var b strings.Builder
	b.WriteString(s.Base)
	if s.Ext != "" {
		fmt.Fprintf(&b, "[ext=%s]", s.Ext)
	}
	if s.MaxHeight > 0 {
		fmt.Fprintf(&b, "[height<=%d]", s.MaxHeight)
	}
	if s.MaxFilesize > 0 {
		b.WriteString("[filesize<")
		b.WriteString(formatSize(s.MaxFilesize))
		b.WriteString("]")
	}
	return b.String()
}

// formatSize prints whole mebibytes with the M suffix yt-dlp understands
func formatSize(n int64) string {
	const mib = 1 << 20
	if n%mib == 0 {
		return fmt.Sprintf("%dM", n/mib)
	}
	return fmt.Sprintf("%d", n)
}

// FormatChain is an ordered ladder of selectors; the first viable one wins
type FormatChain []FormatSelector

// String joins the ladder into one composite selector
func (c FormatChain) String() string {
	parts := make([]string, len(c))
	for i, s := range c {
		parts[i] = s.String()
	}
	return strings.Join(parts, "/")
}

// TranscodeSpec describes the post-processing step for transcoded audio
type TranscodeSpec struct {
	Codec    string // target codec and extension, e.g. "mp3"
	Quality  string // target bitrate, e.g. "192K"
	ToolPath string // ffmpeg binary handed to the extraction tool
}

// ResolvedArtifact is the result of a successful extraction
type ResolvedArtifact struct {
	Title         string
	LocalPath     string // empty when no bytes were materialized
	EstimatedSize int64  // from metadata, advisory only
	StreamURL     string // direct URL, possibly time-limited
}

// HasLocalFile reports whether the extraction produced a path
func (a *ResolvedArtifact) HasLocalFile() bool {
	return a != nil && a.LocalPath != ""
}

// HasStreamURL reports whether a direct link is available
func (a *ResolvedArtifact) HasStreamURL() bool {
	return a != nil && a.StreamURL != ""
}

// AcquisitionOutcome is either a success carrying an artifact or a categorized failure
type AcquisitionOutcome struct {
	Artifact *ResolvedArtifact
	Category FailureCategory
	Detail   string // raw failure text, surfaced verbatim when unclassified
}

// Success wraps an artifact
func Success(artifact *ResolvedArtifact) AcquisitionOutcome {
	return AcquisitionOutcome{Artifact: artifact}
}

// Failure builds a failed outcome
func Failure(category FailureCategory, detail string) AcquisitionOutcome {
	return AcquisitionOutcome{Category: category, Detail: detail}
}

// OK reports whether the outcome is a success
func (o AcquisitionOutcome) OK() bool {
	return o.Category == CategoryNone && o.Artifact != nil
}

// DeliveryAction is what the chat layer should do with a resolved artifact
type DeliveryAction struct {
	Type        DeliveryType
	Path        string      // inline file
	CaptionKind CaptionKind // inline file
	Title       string      // link message
	URL         string      // link message
}
