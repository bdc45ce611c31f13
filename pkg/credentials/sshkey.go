package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/gitfleet/gitfleet/pkg/gitrepo"
)

// SSHKeyConfig configures private-key authentication for SSH remotes.
type SSHKeyConfig struct {
	// PrivateKeyPath is the private key file. Defaults to ~/.ssh/id_rsa.
	PrivateKeyPath string

	// Passphrase decrypts an encrypted key during validation. The ssh
	// client itself runs in batch mode, so an encrypted key must also be
	// loaded into an agent for the clone to succeed.
	Passphrase string

	// KnownHostsPath overrides the known_hosts file consulted for host
	// key verification. Empty means the ssh client's defaults.
	KnownHostsPath string

	// InsecureSkipHostKey disables host key verification entirely. This
	// accepts whatever key the remote presents (trust-on-first-use with
	// no pinning at all) and should only be enabled for throwaway
	// automation against hosts you already trust.
	InsecureSkipHostKey bool
}

// SSHKey returns a provider that routes clones of SSH remotes through a
// specific private key via GIT_SSH_COMMAND. The key is parsed up front
// so an unusable key surfaces as a credential error before any network
// work starts.
func SSHKey(cfg SSHKeyConfig) Provider {
	return &sshKeyProvider{cfg: cfg}
}

type sshKeyProvider struct {
	cfg SSHKeyConfig
}

func (p *sshKeyProvider) Apply(cc *gitrepo.CloneCommand) error {
	keyPath := p.cfg.PrivateKeyPath
	if keyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory for default ssh key: %w", err)
		}
		keyPath = filepath.Join(home, ".ssh", "id_rsa")
	}

	keyBytes, err := os.ReadFile(keyPath)
	if err != nil {
		return fmt.Errorf("cannot read private key: %w", err)
	}
	if p.cfg.Passphrase != "" {
		_, err = ssh.ParsePrivateKeyWithPassphrase(keyBytes, []byte(p.cfg.Passphrase))
	} else {
		_, err = ssh.ParsePrivateKey(keyBytes)
	}
	if err != nil {
		return fmt.Errorf("cannot parse private key %s: %w", keyPath, err)
	}

	parts := []string{
		"ssh",
		"-i", shellQuote(keyPath),
		"-o", "IdentitiesOnly=yes",
		"-o", "BatchMode=yes",
	}
	switch {
	case p.cfg.InsecureSkipHostKey:
		parts = append(parts, "-o", "StrictHostKeyChecking=no", "-o", "UserKnownHostsFile=/dev/null")
	case p.cfg.KnownHostsPath != "":
		parts = append(parts, "-o", "UserKnownHostsFile="+shellQuote(p.cfg.KnownHostsPath))
	}

	cc.AddEnv("GIT_SSH_COMMAND", strings.Join(parts, " "))
	return nil
}

// shellQuote makes a path safe inside GIT_SSH_COMMAND, which git hands
// to a shell.
func shellQuote(s string) string {
	if !strings.ContainsAny(s, " \t'\"\\$`") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
