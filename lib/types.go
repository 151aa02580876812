package lib

import (
	"errors"
	"time"
)

// ErrNotFound is returned by providers when the requested branch, file or
// reference does not exist.
var ErrNotFound = errors.New("not found")

type Release struct {
	TagName    string  `json:"tag_name"`
	Prerelease bool    `json:"prerelease"`
	Assets     []Asset `json:"assets"`
}

type Asset struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	ContentType        string    `json:"content_type"`
	BrowserDownloadURL string    `json:"browser_download_url"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// RawFile is a file read from a branch together with the data needed to
// update it and to judge its freshness.
type RawFile struct {
	Content      string
	SHA          string
	LastModified time.Time
}

type FileLocation struct {
	Owner  string
	Repo   string
	Branch string
	Path   string
}

type TreeFile struct {
	Path    string
	Content string
}
