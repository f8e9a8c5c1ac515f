package models

// MediaKind represents what the user asked for
type MediaKind string

const (
	KindAudioPassthrough MediaKind = "audio" // /audio or a plain link, no re-encoding
	KindAudioTranscode   MediaKind = "mp3"   // /mp3, needs the transcoding tool
	KindVideoCapped      MediaKind = "video" // /video, resolution ladder under the size cap
)

// CaptionKind selects how a file is presented in the chat
type CaptionKind string

const (
	CaptionAudio    CaptionKind = "audio"
	CaptionVideo    CaptionKind = "video"
	CaptionDocument CaptionKind = "document"
)

// FailureCategory is the closed set of user-facing failure classes
type FailureCategory string

const (
	CategoryNone                 FailureCategory = ""
	CategoryAuthRequired         FailureCategory = "auth_required"
	CategoryPrivate              FailureCategory = "private"
	CategoryGeoBlocked           FailureCategory = "geo_blocked"
	CategoryTranscodeUnavailable FailureCategory = "transcode_unavailable"
	CategoryNotFound             FailureCategory = "not_found"
	CategoryUnknown              FailureCategory = "unknown"
)

// DeliveryType is the terminal action taken for a successful acquisition
type DeliveryType string

const (
	DeliverInlineFile  DeliveryType = "inline_file"
	DeliverLinkMessage DeliveryType = "link_message"
	DeliverUnavailable DeliveryType = "unavailable"
)
