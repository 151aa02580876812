package depot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"github.com/ssotops/depot-sync/lib"
)

type writeCall struct {
	Location    lib.FileLocation
	Content     []byte
	Message     string
	PreviousSHA string
}

type fakeProvider struct {
	mu sync.Mutex

	releases    []lib.Release
	releasesErr error

	file    *lib.RawFile
	fileErr error

	assets    map[int64][]byte
	downloads []int64

	branchErr error
	writeErr  error
	treeErr   error
	commitErr error
	refErr    error

	calls     []string
	written   *writeCall
	treeFiles []lib.TreeFile
	commitMsg string
	branchRef string
}

var _ lib.SCMProvider = (*fakeProvider)(nil)

func (f *fakeProvider) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeProvider) ListReleases(ctx context.Context, owner, repo string) ([]lib.Release, error) {
	f.record("ListReleases")
	return f.releases, f.releasesErr
}

func (f *fakeProvider) ReadFile(ctx context.Context, loc lib.FileLocation) (*lib.RawFile, error) {
	f.record("ReadFile")
	if f.fileErr != nil {
		return nil, f.fileErr
	}
	if f.file == nil {
		return nil, fmt.Errorf("%s: %w", loc.Path, lib.ErrNotFound)
	}
	return f.file, nil
}

func (f *fakeProvider) DownloadAsset(ctx context.Context, owner, repo string, assetID int64) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads = append(f.downloads, assetID)
	data, ok := f.assets[assetID]
	if !ok {
		return nil, fmt.Errorf("asset %d: %w", assetID, lib.ErrNotFound)
	}
	return data, nil
}

func (f *fakeProvider) downloaded() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := append([]int64(nil), f.downloads...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (f *fakeProvider) BranchExists(ctx context.Context, owner, repo, branch string) error {
	f.record("BranchExists")
	return f.branchErr
}

func (f *fakeProvider) WriteFile(ctx context.Context, loc lib.FileLocation, content []byte, message string, previousSHA string) error {
	f.record("WriteFile")
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written = &writeCall{Location: loc, Content: content, Message: message, PreviousSHA: previousSHA}
	return nil
}

func (f *fakeProvider) CreateTree(ctx context.Context, owner, repo string, files []lib.TreeFile) (string, error) {
	f.record("CreateTree")
	if f.treeErr != nil {
		return "", f.treeErr
	}
	f.treeFiles = files
	return "tree-sha", nil
}

func (f *fakeProvider) CreateRootCommit(ctx context.Context, owner, repo, message, treeSHA string) (string, error) {
	f.record("CreateRootCommit")
	if f.commitErr != nil {
		return "", f.commitErr
	}
	f.commitMsg = message
	return "commit-sha", nil
}

func (f *fakeProvider) CreateBranch(ctx context.Context, owner, repo, branch, commitSHA string) error {
	f.record("CreateBranch")
	if f.refErr != nil {
		return f.refErr
	}
	f.branchRef = branch + "@" + commitSHA
	return nil
}

func makeArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func descriptorJSON(t *testing.T, name, version string) string {
	t.Helper()

	data, err := json.Marshal(TemplateDescription{
		Name:             name,
		SupportedKernels: "^3.8.0",
		SystemFiles:      []string{"etc/motd"},
		Target:           "rpi4",
		UserFiles:        []string{"home/.bashrc"},
		Version:          version,
		Metadata:         map[string]interface{}{"location": "https://elsewhere.example/ignored.zip"},
	})
	require.NoError(t, err)
	return string(data)
}

func templateArchive(t *testing.T, name, version string) []byte {
	t.Helper()
	return makeArchive(t, map[string]string{
		DefaultDescriptorPath: descriptorJSON(t, name, version),
		"files/etc/motd":      "hello",
	})
}

func entry(location, name, version string) BaseTemplate {
	return BaseTemplate{
		Metadata:         Metadata{Location: location},
		Name:             name,
		SupportedKernels: "^3.8.0",
		Target:           "rpi4",
		Version:          version,
	}
}
