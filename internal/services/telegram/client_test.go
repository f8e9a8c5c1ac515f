package telegram

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/amaumene/tubegram/internal/models"
	"github.com/amaumene/tubegram/internal/utils"
)

const testToken = "123:abc"

type fakeAPI struct {
	mu       sync.Mutex
	calls    map[string]int
	failures map[string][]string // method -> queued error bodies
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	io.Copy(io.Discard, r.Body)

	f.mu.Lock()
	f.calls[method]++
	var failure string
	if queue := f.failures[method]; len(queue) > 0 {
		failure, f.failures[method] = queue[0], queue[1:]
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if failure != "" {
		io.WriteString(w, failure)
		return
	}

	switch method {
	case "getMe":
		io.WriteString(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Tube","username":"tube_bot"}}`)
	case "setWebhook", "setMyCommands":
		io.WriteString(w, `{"ok":true,"result":true}`)
	default:
		io.WriteString(w, `{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`)
	}
}

func (f *fakeAPI) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func newTestClient(t *testing.T, failures map[string][]string) (*Client, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{calls: map[string]int{}, failures: failures}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c, err := NewClientWithEndpoint(testToken, srv.URL+"/bot%s/%s", srv.Client(), utils.NewLoggerTo(io.Discard, "error"))
	if err != nil {
		t.Fatalf("NewClientWithEndpoint() error: %v", err)
	}
	c.initialInterval = time.Millisecond
	c.maxElapsed = time.Second
	return c, api
}

func TestNewClient(t *testing.T) {
	c, api := newTestClient(t, nil)
	if c.Username() != "tube_bot" {
		t.Errorf("Username() = %q", c.Username())
	}
	if api.count("getMe") != 1 {
		t.Errorf("getMe calls = %d, want 1", api.count("getMe"))
	}

	if _, err := NewClientWithEndpoint("", "", http.DefaultClient, utils.NewLoggerTo(io.Discard, "error")); err == nil {
		t.Error("empty token should be rejected")
	}
}

func TestSendTextRetriesServerErrors(t *testing.T) {
	c, api := newTestClient(t, map[string][]string{
		"sendMessage": {`{"ok":false,"error_code":502,"description":"Bad Gateway"}`},
	})

	if err := c.SendText(context.Background(), 42, "hello"); err != nil {
		t.Fatalf("SendText() error: %v", err)
	}
	if api.count("sendMessage") != 2 {
		t.Errorf("sendMessage calls = %d, want 2", api.count("sendMessage"))
	}
}

func TestSendTextDoesNotRetryRejections(t *testing.T) {
	c, api := newTestClient(t, map[string][]string{
		"sendMessage": {`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`},
	})

	err := c.SendText(context.Background(), 42, "hello")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("SendText() error = %v, want rejection", err)
	}
	if api.count("sendMessage") != 1 {
		t.Errorf("sendMessage calls = %d, want 1", api.count("sendMessage"))
	}
}

func TestSendFileByKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Song_X.abc.m4a")
	if err := os.WriteFile(path, []byte("audio"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		kind   models.CaptionKind
		method string
	}{
		{models.CaptionAudio, "sendAudio"},
		{models.CaptionVideo, "sendVideo"},
		{models.CaptionDocument, "sendDocument"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			c, api := newTestClient(t, nil)
			if err := c.SendFile(context.Background(), 42, tt.kind, path, "caption"); err != nil {
				t.Fatalf("SendFile() error: %v", err)
			}
			if api.count(tt.method) != 1 {
				t.Errorf("%s calls = %d, want 1", tt.method, api.count(tt.method))
			}
		})
	}
}

func TestSetWebhook(t *testing.T) {
	c, api := newTestClient(t, nil)
	if err := c.SetWebhook("https://bot.example.com/webhook/secret"); err != nil {
		t.Fatalf("SetWebhook() error: %v", err)
	}
	if api.count("setWebhook") != 1 {
		t.Errorf("setWebhook calls = %d, want 1", api.count("setWebhook"))
	}
}
