package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// Client defines the git operations needed to read tag data.
type Client interface {
	IsRepo(path string) bool
	RepoRoot(path string) (string, error)
	TagList(path string) (string, error)
	LsRemoteTags(remote string) (string, error)
}

// RealClient implements Client using real git commands.
type RealClient struct{}

// NewClient returns a new RealClient.
func NewClient() *RealClient {
	return &RealClient{}
}

func gitCmd(path string, args ...string) (string, error) {
	var fullArgs []string
	if path != "" {
		fullArgs = append(fullArgs, "-C", path)
	}
	fullArgs = append(fullArgs, args...)
	out, err := exec.Command("git", fullArgs...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (c *RealClient) IsRepo(path string) bool {
	out, err := gitCmd(path, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

func (c *RealClient) RepoRoot(path string) (string, error) {
	return gitCmd(path, "rev-parse", "--show-toplevel")
}

// TagList returns `git tag --list` output for the repo at path, one tag per line.
func (c *RealClient) TagList(path string) (string, error) {
	return gitCmd(path, "tag", "--list")
}

// LsRemoteTags returns `git ls-remote --tags` output for a remote URL or path.
func (c *RealClient) LsRemoteTags(remote string) (string, error) {
	return gitCmd("", "ls-remote", "--tags", remote)
}

// IsRemoteLocator reports whether s looks like a git remote rather than a local path.
func IsRemoteLocator(s string) bool {
	return strings.Contains(s, "://") || strings.HasPrefix(s, "git@")
}
