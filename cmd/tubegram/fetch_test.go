package main

import (
	"testing"

	"github.com/amaumene/tubegram/internal/models"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    models.MediaKind
		wantErr bool
	}{
		{"audio", models.KindAudioPassthrough, false},
		{"mp3", models.KindAudioTranscode, false},
		{"video", models.KindVideoCapped, false},
		{"flac", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseKind(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseKind(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
