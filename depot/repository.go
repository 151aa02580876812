package depot

import (
	"fmt"
	"strings"
)

// Repository identifies a GitHub repository as owner and name.
type Repository struct {
	Owner string
	Repo  string
}

// ParseRepository splits s on its first "/". Either half may be empty; a
// string without any "/" is rejected.
func ParseRepository(s string) (Repository, error) {
	owner, repo, ok := strings.Cut(s, "/")
	if !ok {
		return Repository{}, fmt.Errorf("invalid repository %q: expected owner/repo", s)
	}
	return Repository{Owner: owner, Repo: repo}, nil
}

func (r Repository) String() string {
	return r.Owner + "/" + r.Repo
}
