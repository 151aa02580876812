package depot

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const genericCommitMessage = "Update one or more version(s)"

// Diff classifies the entries of a new depot against the previous one.
type Diff struct {
	Added   []BaseTemplate
	Updated []BaseTemplate
	Removed []BaseTemplate
}

// Compare matches entries by location. An entry present in both depots
// counts as updated only when its content differs.
func Compare(previous, next Depot) Diff {
	var diff Diff
	index := previous.Index()

	for _, entry := range next {
		old, ok := index[entry.Metadata.Location]
		if !ok {
			diff.Added = append(diff.Added, entry)
			continue
		}
		if !cmp.Equal(old, entry, cmpopts.EquateEmpty()) {
			diff.Updated = append(diff.Updated, entry)
		}
		delete(index, entry.Metadata.Location)
	}

	for _, entry := range previous {
		if _, ok := index[entry.Metadata.Location]; ok {
			diff.Removed = append(diff.Removed, entry)
			delete(index, entry.Metadata.Location)
		}
	}

	return diff
}

func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Updated) == 0 && len(d.Removed) == 0
}

// CommitMessage names the version when the change is a single new release.
func (d Diff) CommitMessage() string {
	if len(d.Added) == 1 && len(d.Updated) == 0 && len(d.Removed) == 0 {
		return "Release version " + d.Added[0].Version
	}
	return genericCommitMessage
}
