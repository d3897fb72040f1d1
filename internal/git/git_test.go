package git

import (
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initTestRepo creates a git repo in dir with a user config so commits work on CI.
func initTestRepo(t *testing.T, dir string) {
	t.Helper()
	cmds := [][]string{
		{"git", "-C", dir, "init"},
		{"git", "-C", dir, "config", "user.email", "test@test.com"},
		{"git", "-C", dir, "config", "user.name", "Test"},
		{"git", "-C", dir, "commit", "--allow-empty", "-m", "init"},
	}
	for _, args := range cmds {
		require.NoError(t, exec.Command(args[0], args[1:]...).Run())
	}
}

func tag(t *testing.T, dir string, args ...string) {
	t.Helper()
	full := append([]string{"-C", dir, "tag"}, args...)
	require.NoError(t, exec.Command("git", full...).Run())
}

func TestIsRepo(t *testing.T) {
	c := NewClient()
	assert.False(t, c.IsRepo(t.TempDir()))

	dir := t.TempDir()
	initTestRepo(t, dir)
	assert.True(t, c.IsRepo(dir))
}

func TestTagList_NoTags(t *testing.T) {
	dir := t.TempDir()
	initTestRepo(t, dir)

	out, err := NewClient().TagList(dir)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestTagList_WithTags(t *testing.T) {
	dir := t.TempDir()
	initTestRepo(t, dir)
	tag(t, dir, "compile-2024.01.01_09.00.00")
	tag(t, dir, "submission-1")

	out, err := NewClient().TagList(dir)
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	assert.ElementsMatch(t, []string{"compile-2024.01.01_09.00.00", "submission-1"}, lines)
}

func TestTagList_NotARepo(t *testing.T) {
	_, err := NewClient().TagList(t.TempDir())
	assert.Error(t, err)
}

func TestLsRemoteTags_LocalPath(t *testing.T) {
	dir := t.TempDir()
	initTestRepo(t, dir)
	tag(t, dir, "compile-2024.01.01_09.00.00")
	tag(t, dir, "-a", "submission-1", "-m", "submit")

	out, err := NewClient().LsRemoteTags(dir)
	require.NoError(t, err)
	assert.Contains(t, out, "refs/tags/compile-2024.01.01_09.00.00")
	assert.Contains(t, out, "refs/tags/submission-1")
	assert.Contains(t, out, "refs/tags/submission-1^{}")
}

func TestLsRemoteTags_Missing(t *testing.T) {
	_, err := NewClient().LsRemoteTags(t.TempDir() + "/nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git ls-remote --tags")
}

func TestRepoRoot(t *testing.T) {
	dir := t.TempDir()
	initTestRepo(t, dir)

	root, err := NewClient().RepoRoot(dir)
	require.NoError(t, err)
	assert.NotEmpty(t, root)
}

func TestIsRemoteLocator(t *testing.T) {
	assert.True(t, IsRemoteLocator("https://github.com/joescharf/codetime.git"))
	assert.True(t, IsRemoteLocator("file:///tmp/repo"))
	assert.True(t, IsRemoteLocator("git@github.com:joescharf/codetime.git"))
	assert.False(t, IsRemoteLocator("tags.txt"))
	assert.False(t, IsRemoteLocator("/home/joe/project"))
}
