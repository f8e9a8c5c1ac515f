package controllers

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/amaumene/tubegram/internal/config"
	"github.com/amaumene/tubegram/internal/models"
	"github.com/amaumene/tubegram/internal/services/ytdlp"
	"github.com/amaumene/tubegram/internal/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

type fakeExtractor struct {
	mu       sync.Mutex
	requests []ytdlp.ResolveRequest
	artifact *models.ResolvedArtifact
	err      error
}

func (f *fakeExtractor) Resolve(ctx context.Context, req ytdlp.ResolveRequest) (*models.ResolvedArtifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.artifact, f.err
}

func (f *fakeExtractor) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type sentFile struct {
	kind    models.CaptionKind
	path    string
	caption string
}

type fakeMessenger struct {
	mu      sync.Mutex
	texts   []string
	files   []sentFile
	fileErr error
}

func (f *fakeMessenger) SendText(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeMessenger) SendFile(ctx context.Context, chatID int64, kind models.CaptionKind, path, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fileErr != nil {
		return f.fileErr
	}
	f.files = append(f.files, sentFile{kind: kind, path: path, caption: caption})
	return nil
}

func (f *fakeMessenger) lastText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.texts) == 0 {
		return ""
	}
	return f.texts[len(f.texts)-1]
}

func testLogger() *logrus.Logger {
	return utils.NewLoggerTo(io.Discard, "error")
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		WorkDir:             t.TempDir(),
		FFmpegPath:          "/usr/bin/ffmpeg",
		TranscodeAvailable:  true,
		DeleteAfterDelivery: true,
		ArtifactRetention:   0,
	}
}

func testDB(t *testing.T) *models.Database {
	t.Helper()
	db, err := models.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDatabase() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type chatFixture struct {
	chat      *ChatController
	extractor *fakeExtractor
	messenger *fakeMessenger
	db        *models.Database
	cfg       *config.Config
}

func newChatFixture(t *testing.T, cfg *config.Config) *chatFixture {
	t.Helper()
	extractor := &fakeExtractor{}
	messenger := &fakeMessenger{}
	db := testDB(t)
	logger := testLogger()

	acquisition := NewAcquisitionController(cfg, extractor, logger)
	chat := NewChatController(cfg, acquisition, utils.NewClassifier(cfg.CookiesConfigured()), messenger, db, logger)
	return &chatFixture{chat: chat, extractor: extractor, messenger: messenger, db: db, cfg: cfg}
}

func textUpdate(id int, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{Text: text, Chat: &tgbotapi.Chat{ID: 42}}
	if strings.HasPrefix(text, "/") {
		length := strings.IndexByte(text, ' ')
		if length < 0 {
			length = len(text)
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}}
	}
	return tgbotapi.Update{UpdateID: id, Message: msg}
}

var errUpload = errors.New("upload failed")
