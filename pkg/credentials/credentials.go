// Package credentials attaches transport authentication to clone
// operations. Each provider mutates the pending gitrepo.CloneCommand;
// none of them talk to the network themselves.
package credentials

import (
	"fmt"
	"net/url"
	"os"

	"github.com/gitfleet/gitfleet/pkg/gitrepo"
)

// Provider attaches authentication material to a pending clone.
type Provider interface {
	Apply(cc *gitrepo.CloneCommand) error
}

// None returns a provider that leaves the clone untouched.
func None() Provider {
	return noneProvider{}
}

type noneProvider struct{}

func (noneProvider) Apply(*gitrepo.CloneCommand) error { return nil }

// Token returns a provider for HTTPS basic authentication, typically a
// platform access token as the username. The secret is written to a
// 0600 scratch file wired in via git's credential store so it never
// appears in a process argument list; the file is removed when the
// repository handle is closed. Non-HTTP remotes are left untouched,
// matching the behavior of credential helpers generally.
func Token(username, password string) Provider {
	return &tokenProvider{username: username, password: password}
}

type tokenProvider struct {
	username string
	password string
}

func (p *tokenProvider) Apply(cc *gitrepo.CloneCommand) error {
	u, err := url.Parse(cc.URI)
	if err != nil {
		return fmt.Errorf("cannot parse repository URI %q: %w", cc.URI, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil
	}

	credPath := cc.Dir + ".credentials"
	line := fmt.Sprintf("%s://%s:%s@%s\n",
		u.Scheme,
		url.QueryEscape(p.username),
		url.QueryEscape(p.password),
		u.Host,
	)
	if err := os.WriteFile(credPath, []byte(line), 0o600); err != nil {
		return fmt.Errorf("cannot write credential file: %w", err)
	}

	cc.AddConfig("credential.helper", fmt.Sprintf("store --file=%s", credPath))
	cc.AddEnv("GIT_TERMINAL_PROMPT", "0")
	cc.AddScratchFile(credPath)
	return nil
}
