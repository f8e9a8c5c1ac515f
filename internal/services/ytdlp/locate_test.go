package ytdlp

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLocateArtifact(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		expected string // base name passed as the expected path
		ext      string
		token    string
		title    string
		want     string
	}{
		{
			name:     "expected path exists",
			files:    []string{"Song_X.aaaa1111.m4a"},
			expected: "Song_X.aaaa1111.m4a",
			ext:      "m4a",
			token:    "aaaa1111",
			title:    "Song X",
			want:     "Song_X.aaaa1111.m4a",
		},
		{
			name:     "renamed on disk, found by token",
			files:    []string{"Song_X_remastered.aaaa1111.m4a", "other.bbbb2222.m4a"},
			expected: "Song_X.aaaa1111.m4a",
			ext:      "m4a",
			token:    "aaaa1111",
			title:    "Song X",
			want:     "Song_X_remastered.aaaa1111.m4a",
		},
		{
			name:     "closest name wins",
			files:    []string{"Song_X.aaaa1111.mp3", "Song_X_live_version_extended.aaaa1111.mp3"},
			expected: "Song_X.aaaa1111.webm.mp3",
			ext:      "mp3",
			token:    "aaaa1111",
			title:    "Song X",
			want:     "Song_X.aaaa1111.mp3",
		},
		{
			name:     "wrong extension ignored",
			files:    []string{"Song_X.aaaa1111.webm"},
			expected: "Song_X.aaaa1111.mp3",
			ext:      "mp3",
			token:    "aaaa1111",
			title:    "Song X",
			want:     "Song_X.aaaa1111.mp3",
		},
		{
			name:     "same title, other token is ignored",
			files:    []string{"Song_X.bbbb2222.m4a"},
			expected: "Song_X.aaaa1111.m4a",
			ext:      "m4a",
			token:    "aaaa1111",
			title:    "Song X",
			want:     "Song_X.aaaa1111.m4a",
		},
		{
			name:     "own token beats closer title match",
			files:    []string{"Song_X.m4a", "Song_X_remastered.aaaa1111.m4a"},
			expected: "Song_X.aaaa1111.m4a",
			ext:      "m4a",
			token:    "aaaa1111",
			title:    "Song X",
			want:     "Song_X_remastered.aaaa1111.m4a",
		},
		{
			name:     "untokened title match accepted",
			files:    []string{"Song_X.m4a", "Song_X.bbbb2222.m4a"},
			expected: "Song_X.aaaa1111.m4a",
			ext:      "m4a",
			token:    "aaaa1111",
			title:    "Song X",
			want:     "Song_X.m4a",
		},
		{
			name:     "other request ignored",
			files:    []string{"Different.cccc3333.m4a"},
			expected: "Song_X.aaaa1111.m4a",
			ext:      "m4a",
			token:    "aaaa1111",
			title:    "Song X",
			want:     "Song_X.aaaa1111.m4a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				touch(t, filepath.Join(dir, f))
			}

			got := locateArtifact(dir, filepath.Join(dir, tt.expected), tt.ext, tt.token, tt.title)
			if got != filepath.Join(dir, tt.want) {
				t.Errorf("locateArtifact() = %q, want %q", got, filepath.Join(dir, tt.want))
			}
		})
	}
}

func TestLocateArtifactDefaultPath(t *testing.T) {
	dir := t.TempDir()
	got := locateArtifact(dir, "", "m4a", "aaaa1111", "Song X")
	if got != filepath.Join(dir, "Song_X.aaaa1111.m4a") {
		t.Errorf("locateArtifact() = %q", got)
	}
}
