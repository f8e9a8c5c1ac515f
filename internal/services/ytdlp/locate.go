package ytdlp

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/amaumene/tubegram/internal/utils"
)

// tokenSegment matches the request token slot in <title>.<token>.<ext>
var tokenSegment = regexp.MustCompile(`^[0-9a-f]{8}$`)

// locateArtifact finds the file yt-dlp wrote for one request.
// The expected path wins when it exists. Otherwise the working directory is scanned for
// files with the right extension. Files carrying this request's token are preferred; a
// sanitized title match is accepted only for names without any token, so another
// request's file is never picked. Ties go to the name closest to the expected one.
// When nothing matches the computed default is returned even though it may not exist.
func locateArtifact(workDir, expected, ext, token, title string) string {
	if expected == "" {
		expected = filepath.Join(workDir, utils.SanitizeTitle(title)+"."+token+"."+ext)
	}
	if fileExists(expected) {
		return expected
	}

	entries, err := os.ReadDir(workDir)
	if err != nil {
		return expected
	}

	want := filepath.Base(expected)
	sanitized := utils.SanitizeTitle(title)
	suffix := "." + strings.TrimPrefix(ext, ".")

	best := ""
	bestRank, bestDistance := -1, -1
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if ext != "" && !strings.HasSuffix(name, suffix) {
			continue
		}

		rank := matchRank(strings.TrimSuffix(name, suffix), token, sanitized)
		if rank < 0 {
			continue
		}

		distance := levenshtein.ComputeDistance(name, want)
		if best == "" || rank < bestRank || (rank == bestRank && distance < bestDistance) {
			best = name
			bestRank = rank
			bestDistance = distance
		}
	}

	if best == "" {
		return expected
	}
	return filepath.Join(workDir, best)
}

// matchRank returns 0 for a name stamped with token, 1 for an untokened name containing
// the title and -1 for anything else, including names stamped with another token.
func matchRank(stem, token, sanitized string) int {
	var tokens []string
	for _, segment := range strings.Split(stem, ".") {
		if tokenSegment.MatchString(segment) {
			tokens = append(tokens, segment)
		}
	}

	for _, t := range tokens {
		if token != "" && t == token {
			return 0
		}
	}
	if len(tokens) == 0 && strings.Contains(stem, sanitized) {
		return 1
	}
	return -1
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
