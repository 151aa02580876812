package depot

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/ssotops/depot-sync/lib"
)

var ErrPublishFailed = errors.New("publish failed")

// State is a step of the publish protocol.
type State int

const (
	CheckingBranch State = iota
	UpdatingExistingBranch
	BootstrappingOrphanBranch
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case CheckingBranch:
		return "checking-branch"
	case UpdatingExistingBranch:
		return "updating-existing-branch"
	case BootstrappingOrphanBranch:
		return "bootstrapping-orphan-branch"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type PublishRequest struct {
	Target  Repository
	Branch  string
	Path    string
	Content []byte
	Message string
	// PreviousSHA is the blob SHA of the file being replaced, empty when
	// the file does not exist yet.
	PreviousSHA string
}

func (r PublishRequest) location() lib.FileLocation {
	return lib.FileLocation{Owner: r.Target.Owner, Repo: r.Target.Repo, Branch: r.Branch, Path: r.Path}
}

// Publisher writes a depot to its target branch, creating the branch as an
// orphan when it does not exist. A Publisher is used for a single attempt.
type Publisher struct {
	writer lib.BranchWriter
	logger *log.Logger
	state  State
}

func NewPublisher(writer lib.BranchWriter, logger *log.Logger) *Publisher {
	return &Publisher{writer: writer, logger: orDiscard(logger), state: CheckingBranch}
}

func (p *Publisher) State() State {
	return p.state
}

func (p *Publisher) Publish(ctx context.Context, req PublishRequest) error {
	p.transition(CheckingBranch)

	err := p.writer.BranchExists(ctx, req.Target.Owner, req.Target.Repo, req.Branch)
	switch {
	case err == nil:
		p.transition(UpdatingExistingBranch)
		err = p.updateExistingBranch(ctx, req)
	case errors.Is(err, lib.ErrNotFound):
		p.transition(BootstrappingOrphanBranch)
		err = p.bootstrapOrphanBranch(ctx, req)
	default:
		err = fmt.Errorf("checking branch %s: %w", req.Branch, err)
	}

	if err != nil {
		p.transition(Failed)
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	p.transition(Done)
	return nil
}

func (p *Publisher) updateExistingBranch(ctx context.Context, req PublishRequest) error {
	return p.writer.WriteFile(ctx, req.location(), req.Content, req.Message, req.PreviousSHA)
}

func (p *Publisher) bootstrapOrphanBranch(ctx context.Context, req PublishRequest) error {
	owner, repo := req.Target.Owner, req.Target.Repo

	treeSHA, err := p.writer.CreateTree(ctx, owner, repo, []lib.TreeFile{{Path: req.Path, Content: string(req.Content)}})
	if err != nil {
		return err
	}
	commitSHA, err := p.writer.CreateRootCommit(ctx, owner, repo, req.Message, treeSHA)
	if err != nil {
		return err
	}
	return p.writer.CreateBranch(ctx, owner, repo, req.Branch, commitSHA)
}

func (p *Publisher) transition(next State) {
	p.logger.Debug("Publish state", "from", p.state, "to", next)
	p.state = next
}
