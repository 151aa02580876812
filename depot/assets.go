package depot

import (
	"strings"
	"time"

	"github.com/ssotops/depot-sync/lib"
)

const zipExtension = ".zip"

// DownloadableZip is a zip asset of a release that may contain a template.
// Result is nil until the asset has been resolved from cache or fetched.
type DownloadableZip struct {
	AssetID     int64
	DownloadURL string
	UpdatedAt   time.Time
	Prerelease  bool
	Result      *BaseTemplate
}

// WithResult returns a copy of z carrying result.
func (z DownloadableZip) WithResult(result *BaseTemplate) DownloadableZip {
	z.Result = result
	return z
}

func GetDownloadableZips(release lib.Release) []DownloadableZip {
	zips := make([]DownloadableZip, 0, len(release.Assets))
	for _, asset := range release.Assets {
		if !strings.HasSuffix(asset.Name, zipExtension) {
			continue
		}
		zips = append(zips, DownloadableZip{
			AssetID:     asset.ID,
			DownloadURL: asset.BrowserDownloadURL,
			UpdatedAt:   asset.UpdatedAt,
			Prerelease:  release.Prerelease,
		})
	}
	return zips
}

func CollectDownloadableZips(releases []lib.Release) []DownloadableZip {
	var zips []DownloadableZip
	for _, release := range releases {
		zips = append(zips, GetDownloadableZips(release)...)
	}
	return zips
}
