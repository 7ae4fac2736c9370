package git

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/masonlet/starlet-setup/internal/foundation/errors"
	"github.com/masonlet/starlet-setup/internal/logfields"
)

// NativeClient clones with go-git, without a git executable.
type NativeClient struct {
	// SSHKeyPath selects a private key for ssh URLs; the ssh-agent is used when empty.
	SSHKeyPath string
	// Progress receives transfer progress (verbose mode); may be nil.
	Progress io.Writer
}

// NewNativeClient creates a go-git backed client.
func NewNativeClient(sshKeyPath string, progress io.Writer) *NativeClient {
	return &NativeClient{SSHKeyPath: sshKeyPath, Progress: progress}
}

// Clone clones url into dest.
func (c *NativeClient) Clone(ctx context.Context, url, dest string) error {
	auth, err := c.authFor(url)
	if err != nil {
		return errors.WrapError(err, errors.CategoryClone, "failed to set up ssh authentication").
			WithContext(errors.KeyURL, url).
			WithContext(errors.KeyHint, "start an ssh-agent or set git.ssh_key_path").
			Build()
	}
	slog.Debug("go-git clone", logfields.URL(url), logfields.Path(dest))
	_, err = gogit.PlainCloneContext(ctx, dest, false, &gogit.CloneOptions{
		URL:      url,
		Auth:     auth,
		Progress: c.Progress,
	})
	if err != nil {
		return classifyNative(err, "clone").
			WithContext(errors.KeyURL, url).
			WithContext(errors.KeyPath, dest).
			Build()
	}
	return nil
}

// Pull fast-forwards the checkout at dir from its origin remote.
func (c *NativeClient) Pull(ctx context.Context, dir string) error {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return classifyNative(err, "open").WithContext(errors.KeyPath, dir).Build()
	}
	var url string
	if remote, rerr := repo.Remote("origin"); rerr == nil && len(remote.Config().URLs) > 0 {
		url = remote.Config().URLs[0]
	}
	auth, err := c.authFor(url)
	if err != nil {
		return errors.WrapError(err, errors.CategoryClone, "failed to set up ssh authentication").
			WithContext(errors.KeyPath, dir).
			Build()
	}
	wt, err := repo.Worktree()
	if err != nil {
		return classifyNative(err, "pull").WithContext(errors.KeyPath, dir).Build()
	}
	err = wt.PullContext(ctx, &gogit.PullOptions{RemoteName: "origin", Auth: auth, Progress: c.Progress})
	if err != nil && !stderrors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return classifyNative(err, "pull").WithContext(errors.KeyPath, dir).Build()
	}
	return nil
}

// authFor returns ssh credentials for scp-style and ssh:// URLs and nil otherwise.
func (c *NativeClient) authFor(url string) (transport.AuthMethod, error) {
	if !isSSHURL(url) {
		return nil, nil
	}
	user := "git"
	if at := strings.Index(url, "@"); at > 0 && !strings.Contains(url[:at], "/") {
		user = strings.TrimPrefix(url[:at], "ssh://")
	}
	if c.SSHKeyPath != "" {
		return gitssh.NewPublicKeysFromFile(user, c.SSHKeyPath, "")
	}
	return gitssh.NewSSHAgentAuth(user)
}

func isSSHURL(url string) bool {
	if strings.HasPrefix(url, "ssh://") {
		return true
	}
	if strings.Contains(url, "://") {
		return false
	}
	at := strings.Index(url, "@")
	colon := strings.Index(url, ":")
	return at > 0 && colon > at
}

func classifyNative(err error, op string) *errors.ErrorBuilder {
	b := errors.WrapError(err, errors.CategoryClone, "go-git "+op+" failed").WithOutput(err.Error())
	switch {
	case stderrors.Is(err, transport.ErrAuthenticationRequired), stderrors.Is(err, transport.ErrAuthorizationFailed):
		b.WithContext("reason", "auth")
	case stderrors.Is(err, transport.ErrRepositoryNotFound), stderrors.Is(err, gogit.ErrRepositoryNotExists):
		b.WithContext("reason", "not_found")
	case stderrors.Is(err, gogit.ErrRepositoryAlreadyExists):
		b.WithContext("reason", "destination_exists")
	}
	return b
}
