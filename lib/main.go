package lib

import (
	"context"
	"os"
	"strings"
)

func TokenFromEnv() string {
	if tok := strings.TrimSpace(os.Getenv("DEPOT_SYNC_GITHUB_TOKEN")); tok != "" {
		return tok
	}
	return strings.TrimSpace(os.Getenv("GITHUB_TOKEN"))
}

// GetSCMProvider builds a GitHub provider authenticated with the token found
// in the environment.
func GetSCMProvider(ctx context.Context) (SCMProvider, error) {
	return NewGitHubProvider(ctx, TokenFromEnv())
}
