package controllers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/amaumene/tubegram/internal/models"
)

// DecideDelivery picks the terminal action for a successful acquisition.
// Only the measured on-disk size gates inline delivery; the estimate is ignored.
func DecideDelivery(artifact *models.ResolvedArtifact, capBytes int64, kind models.MediaKind) models.DeliveryAction {
	if artifact.HasLocalFile() {
		if info, err := os.Stat(artifact.LocalPath); err == nil && info.Mode().IsRegular() && info.Size() <= capBytes {
			return models.DeliveryAction{
				Type:        models.DeliverInlineFile,
				Path:        artifact.LocalPath,
				CaptionKind: kind.CaptionKind(),
			}
		}
	}

	if artifact.HasStreamURL() {
		title := artifact.Title
		if title == "" {
			title = "media"
		}
		return models.DeliveryAction{
			Type:  models.DeliverLinkMessage,
			Title: title,
			URL:   artifact.StreamURL,
		}
	}

	return models.DeliveryAction{Type: models.DeliverUnavailable}
}

// DeliveryText builds the reply for non-file actions
func DeliveryText(action models.DeliveryAction) string {
	switch action.Type {
	case models.DeliverLinkMessage:
		return fmt.Sprintf("The file is too large to send directly. Here is a link to play or download it:\n%s\n%s\n\n"+
			"⚠️ The link may be temporary. If it stops working, send /audio or /video again.", action.Title, action.URL)
	case models.DeliverUnavailable:
		return "Could not send the file or get a direct link."
	default:
		return ""
	}
}

// Caption labels an inline file
func Caption(path string, kind models.CaptionKind) string {
	name := filepath.Base(path)
	switch kind {
	case models.CaptionAudio:
		return "🎧 " + name
	case models.CaptionVideo:
		return "🎬 " + name
	default:
		return "📎 " + name
	}
}
