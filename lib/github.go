package lib

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/go-github/v39/github"
	"golang.org/x/oauth2"
)

const (
	fileMode = "100644"
	blobType = "blob"
)

type GitHubProvider struct {
	client *github.Client
	// assetClient follows the storage redirect of asset downloads without
	// forwarding the API token.
	assetClient *http.Client
}

func NewGitHubProvider(ctx context.Context, token string) (*GitHubProvider, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub token not set")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)

	return NewGitHubProviderWithClient(github.NewClient(tc)), nil
}

func NewGitHubProviderWithClient(client *github.Client) *GitHubProvider {
	return &GitHubProvider{client: client, assetClient: http.DefaultClient}
}

func (g *GitHubProvider) ListReleases(ctx context.Context, owner, repo string) ([]Release, error) {
	var releases []Release
	opts := &github.ListOptions{PerPage: 100}

	for {
		page, resp, err := g.client.Repositories.ListReleases(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("error fetching releases of %s/%s: %w", owner, repo, translateError(err))
		}

		for _, r := range page {
			releases = append(releases, convertRelease(r))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return releases, nil
}

func convertRelease(r *github.RepositoryRelease) Release {
	release := Release{
		TagName:    r.GetTagName(),
		Prerelease: r.GetPrerelease(),
		Assets:     make([]Asset, 0, len(r.Assets)),
	}
	for _, a := range r.Assets {
		release.Assets = append(release.Assets, Asset{
			ID:                 a.GetID(),
			Name:               a.GetName(),
			ContentType:        a.GetContentType(),
			BrowserDownloadURL: a.GetBrowserDownloadURL(),
			UpdatedAt:          a.GetUpdatedAt().Time,
		})
	}
	return release
}

func (g *GitHubProvider) ReadFile(ctx context.Context, loc FileLocation) (*RawFile, error) {
	fileContent, _, _, err := g.client.Repositories.GetContents(ctx, loc.Owner, loc.Repo, loc.Path,
		&github.RepositoryContentGetOptions{Ref: loc.Branch})
	if err != nil {
		return nil, fmt.Errorf("error fetching %s: %w", loc.Path, translateError(err))
	}
	if fileContent == nil {
		return nil, fmt.Errorf("%s is a directory: %w", loc.Path, ErrNotFound)
	}

	var content string
	if fileContent.GetEncoding() == "none" {
		// Files over 1 MB come back without content; read them as a blob.
		content, err = g.readBlob(ctx, loc.Owner, loc.Repo, fileContent.GetSHA())
	} else {
		content, err = fileContent.GetContent()
	}
	if err != nil {
		return nil, fmt.Errorf("error decoding file content: %w", err)
	}

	commits, _, err := g.client.Repositories.ListCommits(ctx, loc.Owner, loc.Repo, &github.CommitsListOptions{
		SHA:         loc.Branch,
		Path:        loc.Path,
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("error fetching last commit of %s: %w", loc.Path, translateError(err))
	}
	if len(commits) == 0 {
		return nil, fmt.Errorf("no commit touches %s on %s", loc.Path, loc.Branch)
	}

	return &RawFile{
		Content:      content,
		SHA:          fileContent.GetSHA(),
		LastModified: commits[0].GetCommit().GetCommitter().GetDate(),
	}, nil
}

func (g *GitHubProvider) readBlob(ctx context.Context, owner, repo, sha string) (string, error) {
	blob, _, err := g.client.Git.GetBlob(ctx, owner, repo, sha)
	if err != nil {
		return "", fmt.Errorf("error fetching blob %s: %w", sha, translateError(err))
	}
	if blob.GetEncoding() != "base64" {
		return blob.GetContent(), nil
	}
	data, err := base64.StdEncoding.DecodeString(blob.GetContent())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (g *GitHubProvider) DownloadAsset(ctx context.Context, owner, repo string, assetID int64) ([]byte, error) {
	rc, _, err := g.client.Repositories.DownloadReleaseAsset(ctx, owner, repo, assetID, g.assetClient)
	if err != nil {
		return nil, fmt.Errorf("error downloading asset %d: %w", assetID, translateError(err))
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("error reading asset %d: %w", assetID, err)
	}
	return data, nil
}

func (g *GitHubProvider) BranchExists(ctx context.Context, owner, repo, branch string) error {
	_, _, err := g.client.Git.GetRef(ctx, owner, repo, "refs/heads/"+branch)
	if err != nil {
		return fmt.Errorf("error fetching branch %s: %w", branch, translateError(err))
	}
	return nil
}

func (g *GitHubProvider) WriteFile(ctx context.Context, loc FileLocation, content []byte, message string, previousSHA string) error {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
		Branch:  github.String(loc.Branch),
	}

	var err error
	if previousSHA == "" {
		_, _, err = g.client.Repositories.CreateFile(ctx, loc.Owner, loc.Repo, loc.Path, opts)
	} else {
		opts.SHA = github.String(previousSHA)
		_, _, err = g.client.Repositories.UpdateFile(ctx, loc.Owner, loc.Repo, loc.Path, opts)
	}
	if err != nil {
		return fmt.Errorf("error writing %s: %w", loc.Path, translateError(err))
	}
	return nil
}

func (g *GitHubProvider) CreateTree(ctx context.Context, owner, repo string, files []TreeFile) (string, error) {
	entries := make([]*github.TreeEntry, 0, len(files))
	for _, f := range files {
		entries = append(entries, &github.TreeEntry{
			Path:    github.String(f.Path),
			Mode:    github.String(fileMode),
			Type:    github.String(blobType),
			Content: github.String(f.Content),
		})
	}

	tree, _, err := g.client.Git.CreateTree(ctx, owner, repo, "", entries)
	if err != nil {
		return "", fmt.Errorf("error creating tree: %w", translateError(err))
	}
	return tree.GetSHA(), nil
}

// CreateRootCommit creates a commit without parents.
func (g *GitHubProvider) CreateRootCommit(ctx context.Context, owner, repo, message, treeSHA string) (string, error) {
	commit, _, err := g.client.Git.CreateCommit(ctx, owner, repo, &github.Commit{
		Message: github.String(message),
		Tree:    &github.Tree{SHA: github.String(treeSHA)},
	})
	if err != nil {
		return "", fmt.Errorf("error creating commit: %w", translateError(err))
	}
	return commit.GetSHA(), nil
}

func (g *GitHubProvider) CreateBranch(ctx context.Context, owner, repo, branch, commitSHA string) error {
	_, _, err := g.client.Git.CreateRef(ctx, owner, repo, &github.Reference{
		Ref:    github.String("refs/heads/" + branch),
		Object: &github.GitObject{SHA: github.String(commitSHA)},
	})
	if err != nil {
		return fmt.Errorf("error creating branch %s: %w", branch, translateError(err))
	}
	return nil
}

// translateError maps a 404 response onto ErrNotFound and leaves every other
// error untouched.
func translateError(err error) error {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, errResp.Message)
	}
	return err
}
