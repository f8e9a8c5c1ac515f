package main

import (
	"encoding/json"
	"fmt"

	"github.com/amaumene/tubegram/internal/config"
	"github.com/amaumene/tubegram/internal/controllers"
	"github.com/amaumene/tubegram/internal/models"
	"github.com/amaumene/tubegram/internal/services/ytdlp"
	"github.com/amaumene/tubegram/internal/utils"
	"github.com/spf13/cobra"
)

var flagKind string

var fetchCmd = &cobra.Command{
	Use:               "fetch <url>",
	Short:             "Run the acquisition pipeline once and print the delivery decision",
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: loadConfig,
	RunE:              fetchRun,
}

func init() {
	fetchCmd.Flags().StringVarP(&flagKind, "kind", "k", string(models.KindAudioPassthrough), "Media kind: audio | mp3 | video")
}

// fetchResult is printed as JSON
type fetchResult struct {
	RequestID string                 `json:"request_id"`
	Kind      models.MediaKind       `json:"kind"`
	Category  models.FailureCategory `json:"category,omitempty"`
	Reply     string                 `json:"reply"`
	Action    models.DeliveryType    `json:"action,omitempty"`
	Path      string                 `json:"path,omitempty"`
	Title     string                 `json:"title,omitempty"`
	URL       string                 `json:"url,omitempty"`
}

func fetchRun(cmd *cobra.Command, args []string) error {
	kind, err := parseKind(flagKind)
	if err != nil {
		return err
	}

	req, err := models.NewMediaRequest(args[0], kind)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", args[0], err)
	}

	extractor, err := ytdlp.NewClient(cfg, logger)
	if err != nil {
		return err
	}
	acquisitionCtrl := controllers.NewAcquisitionController(cfg, extractor, logger)
	classifier := utils.NewClassifier(cfg.CookiesConfigured())

	result := fetchResult{RequestID: req.RequestID, Kind: kind}

	outcome := acquisitionCtrl.Acquire(cmd.Context(), req)
	if !outcome.OK() {
		classification := classifier.ClassifyOutcome(outcome, kind)
		result.Category = classification.Category
		result.Reply = classification.Text()
	} else {
		action := controllers.DecideDelivery(outcome.Artifact, config.MaxSendBytes, kind)
		result.Action = action.Type
		result.Path = action.Path
		result.Title = action.Title
		result.URL = action.URL
		if action.Type == models.DeliverInlineFile {
			result.Reply = controllers.Caption(action.Path, action.CaptionKind)
		} else {
			result.Reply = controllers.DeliveryText(action)
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func parseKind(s string) (models.MediaKind, error) {
	switch kind := models.MediaKind(s); kind {
	case models.KindAudioPassthrough, models.KindAudioTranscode, models.KindVideoCapped:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown kind %q (want audio, mp3 or video)", s)
	}
}
