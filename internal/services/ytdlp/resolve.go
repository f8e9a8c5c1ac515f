package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/amaumene/tubegram/internal/models"
	"github.com/sirupsen/logrus"
)

// ResolveRequest is one extraction job
type ResolveRequest struct {
	URL       string
	Token     string // request-unique, embedded in the output file name
	Formats   models.FormatChain
	Transcode *models.TranscodeSpec
}

// info is the subset of the yt-dlp JSON we consume
type info struct {
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	Ext            string  `json:"ext"`
	Filename       string  `json:"_filename"`
	FilenameAlt    string  `json:"filename"`
	Filesize       float64 `json:"filesize"`
	FilesizeApprox float64 `json:"filesize_approx"`
}

// Resolve downloads the media in one yt-dlp call and locates the resulting file
func (c *Client) Resolve(ctx context.Context, req ResolveRequest) (*models.ResolvedArtifact, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := c.buildArgs(req)
	c.logger.WithFields(logrus.Fields{
		"url":     req.URL,
		"format":  req.Formats.String(),
		"token":   req.Token,
		"convert": req.Transcode != nil,
	}).Debug("Running yt-dlp")

	stdout, stderr, err := c.runner.Run(ctx, c.binary, args...)
	if err != nil {
		return nil, newExtractionError(ctx, stderr, err)
	}

	meta, err := parseInfo(stdout)
	if err != nil {
		return nil, &ExtractionError{Detail: err.Error(), Err: err}
	}

	expected := meta.Filename
	if expected == "" {
		expected = meta.FilenameAlt
	}
	ext := meta.Ext
	if req.Transcode != nil {
		ext = req.Transcode.Codec
		if expected != "" {
			expected = strings.TrimSuffix(expected, filepath.Ext(expected)) + "." + ext
		}
	}

	artifact := &models.ResolvedArtifact{
		Title:         meta.Title,
		LocalPath:     locateArtifact(c.workDir, expected, ext, req.Token, meta.Title),
		EstimatedSize: meta.estimatedSize(),
		StreamURL:     meta.URL,
	}

	c.logger.WithFields(logrus.Fields{
		"title": artifact.Title,
		"path":  artifact.LocalPath,
	}).Debug("yt-dlp finished")

	return artifact, nil
}

// buildArgs renders the command line for one extraction
func (c *Client) buildArgs(req ResolveRequest) []string {
	template := filepath.Join(c.workDir, "%(title).200B."+req.Token+".%(ext)s")

	args := []string{
		"-f", req.Formats.String(),
		"--no-playlist",
		"-q",
		"--no-warnings",
		"--no-progress",
		"--no-mtime",
		"--restrict-filenames",
		"--dump-json",
		"--no-simulate",
		"--socket-timeout", strconv.Itoa(int(socketTimeout.Seconds())),
		"-o", template,
	}

	if c.cookiesFile != "" {
		args = append(args, "--cookies", c.cookiesFile)
	}

	if t := req.Transcode; t != nil {
		args = append(args, "-x", "--audio-format", t.Codec, "--audio-quality", t.Quality)
		if t.ToolPath != "" {
			args = append(args, "--ffmpeg-location", t.ToolPath)
		}
	}

	// "--" keeps a URL starting with a dash from being read as a flag
	return append(args, "--", req.URL)
}

// parseInfo reads the last JSON document printed by yt-dlp
func parseInfo(stdout []byte) (*info, error) {
	lines := bytes.Split(bytes.TrimSpace(stdout), []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		line := bytes.TrimSpace(lines[i])
		if len(line) == 0 || line[0] != '{' {
			continue
		}

		var meta info
		if err := json.Unmarshal(line, &meta); err != nil {
			return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
		}
		if meta.Title == "" {
			meta.Title = "media"
		}
		return &meta, nil
	}

	return nil, fmt.Errorf("yt-dlp printed no metadata")
}

func (i *info) estimatedSize() int64 {
	if i.FilesizeApprox > 0 {
		return int64(i.FilesizeApprox)
	}
	return int64(i.Filesize)
}
