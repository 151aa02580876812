package depot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ssotops/depot-sync/lib"
)

// Options are the already validated inputs of a run.
type Options struct {
	Source  Repository
	Target  Repository
	Branch  string
	Path    string
	Include IncludeStrategy
	Push    bool
	// DescriptorPath is the descriptor location inside each archive.
	DescriptorPath string
	// MaxConcurrentFetches bounds parallel asset downloads; 0 means the
	// whole batch runs at once.
	MaxConcurrentFetches int
	// Output receives the depot when Push is false.
	Output io.Writer
}

type Result struct {
	Depot     Depot
	Diff      Diff
	Releases  int
	Filtered  int
	Dropped   int
	Reused    int
	Fetched   int
	Failed    int
	Published bool
}

type Syncer struct {
	provider lib.SCMProvider
	logger   *log.Logger
	opts     Options
}

func NewSyncer(provider lib.SCMProvider, logger *log.Logger, opts Options) *Syncer {
	if opts.DescriptorPath == "" {
		opts.DescriptorPath = DefaultDescriptorPath
	}
	if opts.Include == "" {
		opts.Include = IncludeAll
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Syncer{provider: provider, logger: orDiscard(logger), opts: opts}
}

func (s *Syncer) Run(ctx context.Context) (*Result, error) {
	src := s.opts.Source
	s.logger.Info("Fetching releases", "repository", src)
	releases, err := s.provider.ListReleases(ctx, src.Owner, src.Repo)
	if err != nil {
		return nil, fmt.Errorf("error listing releases: %w", err)
	}

	result := &Result{Releases: len(releases)}

	candidates := CollectDownloadableZips(releases)
	included := s.opts.Include.Filter(candidates)
	result.Filtered = len(candidates) - len(included)
	s.logger.Info("Collected zip assets", "releases", len(releases), "zips", len(candidates), "included", len(included))

	previous := s.loadSnapshot(ctx)

	kept, dropped := NewResolver(previous).Partition(included)
	result.Dropped = dropped

	var pending []int
	for i, zip := range kept {
		if zip.Result == nil {
			pending = append(pending, i)
		}
	}
	result.Reused = len(kept) - len(pending)
	s.logger.Info("Resolved cache", "reused", result.Reused, "pending", len(pending), "dropped", dropped)

	if err := s.fetchAll(ctx, kept, pending); err != nil {
		return nil, fmt.Errorf("error fetching assets: %w", err)
	}
	for _, i := range pending {
		if kept[i].Result != nil {
			result.Fetched++
		} else {
			result.Failed++
		}
	}

	result.Depot = assemble(kept)

	var previousDepot Depot
	if previous != nil {
		previousDepot = previous.Depot
	}
	result.Diff = Compare(previousDepot, result.Depot)

	content, err := result.Depot.Encode()
	if err != nil {
		return result, err
	}

	if !s.opts.Push {
		s.logger.Info("Push disabled, writing depot to output", "entries", len(result.Depot))
		if _, err := s.opts.Output.Write(content); err != nil {
			return result, fmt.Errorf("error writing depot: %w", err)
		}
		return result, nil
	}

	if previous != nil && result.Diff.Empty() {
		s.logger.Info("Depot is up to date", "entries", len(result.Depot))
		return result, nil
	}

	req := PublishRequest{
		Target:  s.opts.Target,
		Branch:  s.opts.Branch,
		Path:    s.opts.Path,
		Content: content,
		Message: result.Diff.CommitMessage(),
	}
	if previous != nil {
		req.PreviousSHA = previous.SHA
	}

	s.logger.Info("Publishing depot", "repository", s.opts.Target, "branch", s.opts.Branch, "message", req.Message)
	if err := NewPublisher(s.provider, s.logger).Publish(ctx, req); err != nil {
		return result, err
	}
	result.Published = true
	s.logger.Info("Depot published", "entries", len(result.Depot))
	return result, nil
}

// loadSnapshot reads the previous depot. Any failure is treated as a first
// run.
func (s *Syncer) loadSnapshot(ctx context.Context) *Snapshot {
	loc := lib.FileLocation{
		Owner:  s.opts.Target.Owner,
		Repo:   s.opts.Target.Repo,
		Branch: s.opts.Branch,
		Path:   s.opts.Path,
	}

	file, err := s.provider.ReadFile(ctx, loc)
	if err != nil {
		if errors.Is(err, lib.ErrNotFound) {
			s.logger.Info("No previous depot found", "branch", loc.Branch, "path", loc.Path)
		} else {
			s.logger.Warn("Failed to read previous depot", "error", err)
		}
		return nil
	}

	d, err := DecodeDepot(file.Content)
	if err != nil {
		s.logger.Warn("Ignoring unreadable previous depot", "error", err)
		return nil
	}

	s.logger.Debug("Loaded previous depot", "entries", len(d), "last_updated", file.LastModified)
	return &Snapshot{Depot: d, SHA: file.SHA, LastUpdated: file.LastModified}
}

// fetchAll fills in the Result of kept[i] for every i in pending. Each
// goroutine writes only its own slot. A failed asset is skipped; only a
// cancelled context stops the batch.
func (s *Syncer) fetchAll(ctx context.Context, kept []DownloadableZip, pending []int) error {
	var g errgroup.Group
	if s.opts.MaxConcurrentFetches > 0 {
		g.SetLimit(s.opts.MaxConcurrentFetches)
	}

	for _, i := range pending {
		g.Go(func() error {
			entry, err := s.fetchTemplate(ctx, kept[i])
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				s.logger.Warn("Skipping asset", "asset", kept[i].DownloadURL, "error", err)
				return nil
			}
			kept[i] = kept[i].WithResult(&entry)
			return nil
		})
	}

	return g.Wait()
}

func (s *Syncer) fetchTemplate(ctx context.Context, zip DownloadableZip) (BaseTemplate, error) {
	src := s.opts.Source
	s.logger.Debug("Fetching asset", "asset", zip.DownloadURL, "id", zip.AssetID)

	data, err := s.provider.DownloadAsset(ctx, src.Owner, src.Repo, zip.AssetID)
	if err != nil {
		return BaseTemplate{}, err
	}
	return ConvertArchive(zip.DownloadURL, data, s.opts.DescriptorPath)
}

// assemble collects resolved entries in candidate order, keeping the first
// entry for each location.
func assemble(zips []DownloadableZip) Depot {
	d := Depot{}
	seen := make(map[string]bool, len(zips))
	for _, zip := range zips {
		if zip.Result == nil || seen[zip.Result.Metadata.Location] {
			continue
		}
		seen[zip.Result.Metadata.Location] = true
		d = append(d, *zip.Result)
	}
	return d
}

func orDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard)
	}
	return logger
}
