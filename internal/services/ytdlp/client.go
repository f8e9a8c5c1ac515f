package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/amaumene/tubegram/internal/config"
	"github.com/sirupsen/logrus"
)

// socketTimeout bounds each network read inside the extraction tool
const socketTimeout = 30 * time.Second

// Runner executes the extraction binary
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Client wraps the yt-dlp binary
type Client struct {
	binary      string
	workDir     string
	cookiesFile string
	timeout     time.Duration
	runner      Runner
	logger      *logrus.Logger
}

// NewClient creates a new yt-dlp client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.YTDLPPath == "" {
		return nil, fmt.Errorf("yt-dlp path is required")
	}
	if cfg.WorkDir == "" {
		return nil, fmt.Errorf("work directory is required")
	}

	return &Client{
		binary:      cfg.YTDLPPath,
		workDir:     cfg.WorkDir,
		cookiesFile: cfg.CookiesFile,
		timeout:     cfg.YTDLPTimeout,
		runner:      execRunner{},
		logger:      logger,
	}, nil
}

// WithRunner replaces the process runner
func (c *Client) WithRunner(r Runner) *Client {
	c.runner = r
	return c
}

// WorkDir returns the directory artifacts are written to
func (c *Client) WorkDir() string {
	return c.workDir
}

// Version returns the installed yt-dlp version
func (c *Client) Version(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stdout, stderr, err := c.runner.Run(ctx, c.binary, "--version")
	if err != nil {
		return "", newExtractionError(ctx, stderr, err)
	}
	return strings.TrimSpace(string(stdout)), nil
}

// ExtractionError carries the raw failure text of the extraction tool, uncategorized
type ExtractionError struct {
	Detail string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("yt-dlp failed: %s", e.Detail)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func newExtractionError(ctx context.Context, stderr []byte, err error) *ExtractionError {
	detail := strings.TrimSpace(string(stderr))
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		detail = strings.TrimSpace("timed out waiting for yt-dlp. " + detail)
		err = ctx.Err()
	}
	if detail == "" && err != nil {
		detail = err.Error()
	}
	return &ExtractionError{Detail: detail, Err: err}
}
