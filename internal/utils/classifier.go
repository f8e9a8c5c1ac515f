package utils

import (
	"strings"

	"github.com/amaumene/tubegram/internal/models"
)

// FailureDetail is the raw failure text reported by the extraction layer
type FailureDetail struct {
	Text string
	Kind models.MediaKind
}

// Classification is the user-facing result of classifying a failure
type Classification struct {
	Category models.FailureCategory
	Message  string
	Hint     string
}

// Text joins the message and the hint into one reply
func (c Classification) Text() string {
	if c.Hint == "" {
		return c.Message
	}
	return c.Message + "\n" + c.Hint
}

// Rule maps any of its markers to a category. Markers match case-insensitively.
type Rule struct {
	Category models.FailureCategory
	Markers  []string
	Message  string
	Hint     string
	// CookieHint attaches the hint only while no cookie file is configured
	CookieHint bool
}

const cookieHint = "Set COOKIES_FILE to a cookies.txt exported from a signed-in browser to allow these downloads."

// DefaultRules is the ordered rule table; the first matching rule wins
var DefaultRules = []Rule{
	{
		Category: models.CategoryAuthRequired,
		Markers: []string{
			"sign in to confirm", "login required", "age-restricted", "age restricted",
			"confirm your age", "inappropriate for some users",
			"members-only", "members only", "join this channel",
		},
		Message:    "This video requires a signed-in account (age or membership restricted).",
		Hint:       cookieHint,
		CookieHint: true,
	},
	{
		Category: models.CategoryPrivate,
		Markers:  []string{"private video", "video is private", "is private"},
		Message:  "This video is private.",
	},
	{
		Category: models.CategoryGeoBlocked,
		Markers: []string{
			"available in your country", "blocked it in your country",
			"geo restrict", "geo-restrict", "geoblock",
		},
		Message: "This video is not available in the bot's region.",
	},
	{
		Category: models.CategoryNotFound,
		Markers: []string{
			"video unavailable", "unsupported url", "http error 404", "does not exist",
			"has been removed", "is not a valid url",
		},
		Message: "The video was not found or the link is not supported.",
	},
}

// Classifier maps raw failure text to a category with a reply
type Classifier struct {
	rules             []Rule
	cookiesConfigured bool
}

// NewClassifier creates a classifier over the default rule table
func NewClassifier(cookiesConfigured bool) *Classifier {
	return NewClassifierWithRules(DefaultRules, cookiesConfigured)
}

// NewClassifierWithRules creates a classifier over a custom rule table
func NewClassifierWithRules(rules []Rule, cookiesConfigured bool) *Classifier {
	return &Classifier{rules: rules, cookiesConfigured: cookiesConfigured}
}

// Classify evaluates the rules in order. Unmatched text falls back to Unknown with the detail verbatim.
func (c *Classifier) Classify(detail FailureDetail) Classification {
	text := strings.ToLower(detail.Text)

	for _, rule := range c.rules {
		if !matchesAny(text, rule.Markers) {
			continue
		}

		result := Classification{Category: rule.Category, Message: rule.Message}
		if rule.Hint != "" && !(rule.CookieHint && c.cookiesConfigured) {
			result.Hint = rule.Hint
		}
		if rule.Category == models.CategoryNotFound {
			result.Message += "\n" + strings.TrimSpace(detail.Text)
		}
		return result
	}

	return c.unknown(detail)
}

// ClassifyOutcome classifies a failed acquisition, including the up-front transcode check
func (c *Classifier) ClassifyOutcome(outcome models.AcquisitionOutcome, kind models.MediaKind) Classification {
	if outcome.Category == models.CategoryTranscodeUnavailable {
		return c.TranscodeUnavailable()
	}
	return c.Classify(FailureDetail{Text: outcome.Detail, Kind: kind})
}

// TranscodeUnavailable is the fixed reply for /mp3 without the transcoding tool
func (c *Classifier) TranscodeUnavailable() Classification {
	return Classification{
		Category: models.CategoryTranscodeUnavailable,
		Message:  "MP3 is unavailable right now (ffmpeg is missing). m4a still works.",
		Hint:     "Send /audio <url> instead.",
	}
}

func (c *Classifier) unknown(detail FailureDetail) Classification {
	text := strings.TrimSpace(detail.Text)
	if text == "" {
		text = "unknown error"
	}

	result := Classification{
		Category: models.CategoryUnknown,
		Message:  "Error: " + text,
	}
	if detail.Kind == models.KindVideoCapped {
		result.Hint = "The video could not be fetched. Try /audio or /mp3 with the same link."
	}
	return result
}

func matchesAny(text string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(text, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}
