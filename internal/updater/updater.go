// Package updater checks GitHub Releases for a newer weft build and can
// swap the running binary in place. The whole package stays on net/http
// and encoding/json: the unauthenticated Releases API is a single GET,
// and pulling an HTTP or semver library in for that would outweigh the
// code it saves.
//
// The replace is atomic (download to a sibling temp file, then rename)
// and nothing restarts automatically: the user relaunches the server
// after an update.
package updater

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	repoSlug   = "weftdev/weft"
	binaryName = "weft"

	apiTimeout = 10 * time.Second
)

// Test seams: the release endpoint and client are package vars so tests
// can point them at an httptest server.
var (
	releaseEndpoint = "https://api.github.com/repos/" + repoSlug + "/releases/latest"
	httpClient      = &http.Client{Timeout: apiTimeout}
)

// ReleaseInfo holds the fields weft reads from a GitHub release.
type ReleaseInfo struct {
	TagName string  `json:"tag_name"`
	HTMLURL string  `json:"html_url"`
	Assets  []Asset `json:"assets"`
}

// Asset is one downloadable file attached to a release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// UpdateResult reports the outcome of a version check.
type UpdateResult struct {
	CurrentVersion  string
	LatestVersion   string
	UpdateAvailable bool
	ReleaseURL      string
}

// fetchLatest asks the GitHub API for the newest release.
func fetchLatest(currentVersion string) (*ReleaseInfo, error) {
	req, err := http.NewRequest(http.MethodGet, releaseEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("updater: building request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", binaryName+"/"+currentVersion)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("updater: release lookup: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("updater: GitHub API status %d", resp.StatusCode)
	}

	var release ReleaseInfo
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("updater: decoding release: %w", err)
	}
	return &release, nil
}

// CheckVersion compares the running version against the newest release.
// It is best-effort and never errors: on any failure the result simply
// reports no update.
func CheckVersion(currentVersion string) *UpdateResult {
	result := &UpdateResult{CurrentVersion: normalizeVersion(currentVersion)}

	release, err := fetchLatest(currentVersion)
	if err != nil {
		return result
	}

	result.LatestVersion = normalizeVersion(release.TagName)
	result.ReleaseURL = release.HTMLURL
	result.UpdateAvailable = isNewer(result.CurrentVersion, result.LatestVersion)
	return result
}

// SelfUpdate downloads the release asset for this OS/arch and replaces
// the running executable atomically.
func SelfUpdate(currentVersion string) error {
	release, err := fetchLatest(currentVersion)
	if err != nil {
		return err
	}

	latest := normalizeVersion(release.TagName)
	if !isNewer(normalizeVersion(currentVersion), latest) {
		return fmt.Errorf("already at latest version (%s)", currentVersion)
	}

	assetName := buildAssetName(latest)
	downloadURL := ""
	for _, asset := range release.Assets {
		if asset.Name == assetName {
			downloadURL = asset.BrowserDownloadURL
			break
		}
	}
	if downloadURL == "" {
		return fmt.Errorf("updater: release has no asset %s for %s/%s",
			assetName, runtime.GOOS, runtime.GOARCH)
	}

	resp, err := http.Get(downloadURL) //nolint:gosec // URL comes from GitHub API
	if err != nil {
		return fmt.Errorf("updater: downloading %s: %w", assetName, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("updater: download status %d", resp.StatusCode)
	}

	binaryData, err := extractBinary(resp.Body, assetName)
	if err != nil {
		return err
	}
	return replaceExecutable(binaryData)
}

// replaceExecutable writes the new binary next to the current one and
// renames it over. Windows can't rename over a running binary, so the
// old one is moved aside first.
func replaceExecutable(binaryData []byte) error {
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("updater: locating executable: %w", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return fmt.Errorf("updater: resolving executable path: %w", err)
	}

	tmpPath := execPath + ".new"
	if err := os.WriteFile(tmpPath, binaryData, 0o755); err != nil {
		return fmt.Errorf("updater: staging new binary: %w", err)
	}

	if runtime.GOOS == "windows" {
		oldPath := execPath + ".old"
		_ = os.Remove(oldPath)
		if err := os.Rename(execPath, oldPath); err != nil {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("updater: moving current binary aside: %w", err)
		}
	}

	if err := os.Rename(tmpPath, execPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("updater: installing new binary: %w", err)
	}
	return nil
}

// extractBinary pulls the weft binary out of a release archive,
// dispatching on the asset's extension.
func extractBinary(reader io.Reader, assetName string) ([]byte, error) {
	if strings.HasSuffix(assetName, ".zip") {
		return extractFromZip(reader)
	}
	return extractFromTarGz(reader)
}

// extractFromTarGz scans a .tar.gz archive for the weft binary.
func extractFromTarGz(reader io.Reader) ([]byte, error) {
	gz, err := gzip.NewReader(reader)
	if err != nil {
		return nil, fmt.Errorf("updater: opening gzip: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("updater: reading archive: %w", err)
		}

		switch filepath.Base(header.Name) {
		case binaryName, binaryName + ".exe":
			data, err := io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("updater: reading binary entry: %w", err)
			}
			return data, nil
		}
	}
	return nil, fmt.Errorf("updater: %s binary not found in archive", binaryName)
}

// extractFromZip would need random access (archive/zip wants a
// ReadSeeker), which means buffering the whole download. Windows users
// install manually for now.
//
// TODO: buffer the zip to a temp file and extract with archive/zip.
func extractFromZip(io.Reader) ([]byte, error) {
	return nil, fmt.Errorf("updater: zip extraction not supported yet; download manually from the GitHub release")
}

// archiveExt maps GOOS to the release archive format GoReleaser uses.
var archiveExt = map[string]string{
	"windows": "zip",
}

// buildAssetName reconstructs the release asset filename for this
// OS/arch, matching GoReleaser's name_template.
func buildAssetName(version string) string {
	ext, ok := archiveExt[runtime.GOOS]
	if !ok {
		ext = "tar.gz"
	}
	return fmt.Sprintf("%s_%s_%s_%s.%s", binaryName, version, runtime.GOOS, runtime.GOARCH, ext)
}

// normalizeVersion strips a single leading "v".
func normalizeVersion(v string) string {
	return strings.TrimPrefix(v, "v")
}

// isNewer reports whether latest is a strictly higher semver than
// current. A "dev" or empty current never updates.
func isNewer(current, latest string) bool {
	if current == "" || latest == "" || current == "dev" {
		return false
	}

	cur := strings.Split(current, ".")
	lat := strings.Split(latest, ".")
	for i := 0; i < 3; i++ {
		c, l := 0, 0
		if i < len(cur) {
			c = leadingInt(cur[i])
		}
		if i < len(lat) {
			l = leadingInt(lat[i])
		}
		if l != c {
			return l > c
		}
	}
	return false
}

// leadingInt parses the digits at the front of s, so pre-release
// suffixes like "3rc1" compare by their numeric part.
func leadingInt(s string) int {
	n := 0
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			break
		}
		n = n*10 + int(ch-'0')
	}
	return n
}
