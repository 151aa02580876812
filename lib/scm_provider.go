package lib

import "context"

type ReleaseSource interface {
	ListReleases(ctx context.Context, owner, repo string) ([]Release, error)
}

type FileReader interface {
	// ReadFile returns ErrNotFound when the branch or the path is absent.
	ReadFile(ctx context.Context, loc FileLocation) (*RawFile, error)
}

type AssetFetcher interface {
	DownloadAsset(ctx context.Context, owner, repo string, assetID int64) ([]byte, error)
}

// BranchWriter covers the calls the publish protocol makes against the
// target repository.
type BranchWriter interface {
	BranchExists(ctx context.Context, owner, repo, branch string) error
	WriteFile(ctx context.Context, loc FileLocation, content []byte, message string, previousSHA string) error
	CreateTree(ctx context.Context, owner, repo string, files []TreeFile) (string, error)
	CreateRootCommit(ctx context.Context, owner, repo, message, treeSHA string) (string, error)
	CreateBranch(ctx context.Context, owner, repo, branch, commitSHA string) error
}

type SCMProvider interface {
	ReleaseSource
	FileReader
	AssetFetcher
	BranchWriter
}
