// Package version orders release versions and looks up the newest
// published build, backing the update-check command.
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// releasesURL is a var so tests can point it at a stub server.
var releasesURL = "https://api.github.com/repos/qinggan/qinggan/releases/latest"

const lookupTimeout = 5 * time.Second

// Release is a published build as the GitHub releases API reports it.
type Release struct {
	Tag  string `json:"tag_name"`
	Name string `json:"name"`
	URL  string `json:"html_url"`
}

// Version returns the release version without the leading v.
func (r Release) Version() string {
	return strings.TrimPrefix(r.Tag, "v")
}

// NewerThan reports whether the release is ahead of current.
func (r Release) NewerThan(current string) bool {
	return Compare(r.Version(), strings.TrimPrefix(current, "v")) > 0
}

// Latest fetches the newest release. current is sent as the user
// agent so release download stats stay meaningful.
func Latest(ctx context.Context, current string) (Release, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, releasesURL, nil)
	if err != nil {
		return Release{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "qinggan/"+current)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Release{}, fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Release{}, fmt.Errorf("release lookup returned HTTP %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return Release{}, fmt.Errorf("failed to decode release: %w", err)
	}
	if release.Tag == "" {
		return Release{}, fmt.Errorf("release lookup returned no tag")
	}
	return release, nil
}

// Compare orders two dotted version strings numerically: -1 when
// a < b, 0 when equal, 1 when a > b. Pre-release and build suffixes
// ("-dev", "+build3") are ignored; missing segments count as zero, so
// "1.0" equals "1.0.0".
func Compare(a, b string) int {
	as, bs := segments(a), segments(b)
	for i := 0; i < len(as) || i < len(bs); i++ {
		var av, bv int
		if i < len(as) {
			av = as[i]
		}
		if i < len(bs) {
			bv = bs[i]
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	}
	return 0
}

func segments(version string) []int {
	if idx := strings.IndexAny(version, "-+"); idx != -1 {
		version = version[:idx]
	}

	parts := strings.Split(version, ".")
	segs := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		segs = append(segs, n)
	}
	return segs
}
