package selectors

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

// GitHub builds selectors that query the GitHub API for repositories.
type GitHub struct {
	client *github.Client
}

// NewGitHub creates a GitHub selector builder authenticated with a
// personal access token.
func NewGitHub(ctx context.Context, token string) *GitHub {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &GitHub{client: github.NewClient(oauth2.NewClient(ctx, ts))}
}

// NewGitHubClient wraps an already-configured client, for callers that
// need enterprise endpoints or custom transports.
func NewGitHubClient(client *github.Client) *GitHub {
	return &GitHub{client: client}
}

// OrgPrefix selects the HTTPS clone URLs of every repository in the
// organization whose name starts with prefix.
func (g *GitHub) OrgPrefix(org, prefix string) Selector {
	return Func(func(ctx context.Context) ([]string, error) {
		var uris []string
		opts := &github.RepositoryListByOrgOptions{
			ListOptions: github.ListOptions{PerPage: 100},
		}
		for {
			repos, resp, err := g.client.Repositories.ListByOrg(ctx, org, opts)
			if err != nil {
				return nil, fmt.Errorf("cannot list repositories for organization %s: %w", org, err)
			}
			for _, repo := range repos {
				if strings.HasPrefix(repo.GetName(), prefix) {
					uris = append(uris, repo.GetCloneURL())
				}
			}
			if resp.NextPage == 0 {
				break
			}
			opts.Page = resp.NextPage
		}
		return uris, nil
	})
}

// Custom selects repositories through an arbitrary API query and
// returns their HTTPS clone URLs.
func (g *GitHub) Custom(query func(ctx context.Context, client *github.Client) ([]*github.Repository, error)) Selector {
	return Func(func(ctx context.Context) ([]string, error) {
		repos, err := query(ctx, g.client)
		if err != nil {
			return nil, err
		}
		uris := make([]string, 0, len(repos))
		for _, repo := range repos {
			uris = append(uris, repo.GetCloneURL())
		}
		return uris, nil
	})
}
