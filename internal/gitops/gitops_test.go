package gitops

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func gitLog(t *testing.T, dir, format string) string {
	t.Helper()
	cmd := exec.Command("git", "log", "--format="+format, "-1")
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err)
	return string(out)
}

func TestInit(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	r, err := Init(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, r.Dir)

	_, err = os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git directory should exist")
}

func TestOpen(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	_, ok := Open(dir)
	assert.False(t, ok, "empty dir should not be a repo")

	_, err := Init(dir)
	require.NoError(t, err)
	r, ok := Open(dir)
	require.True(t, ok, "initialized dir should be a repo")
	assert.Equal(t, dir, r.Dir)
}

func TestCommit_All(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	r, err := Init(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "datasets.json"), []byte("{}\n"), 0o644))

	hash, err := r.Commit("init: finstat project")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	assert.Contains(t, gitLog(t, dir, "%s"), "init: finstat project")
	assert.Contains(t, gitLog(t, dir, "%an <%ae>"), "finstat <finstat@localhost>")
}

func TestCommit_Paths(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	r, err := Init(dir)
	require.NoError(t, err)

	tracked := filepath.Join(dir, "datasets.json")
	require.NoError(t, os.WriteFile(tracked, []byte("{}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch.txt"), []byte("x"), 0o644))

	_, err = r.Commit("import: fio", tracked)
	require.NoError(t, err)

	cmd := exec.Command("git", "status", "--porcelain")
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "?? scratch.txt", "unlisted files stay untracked")
}

func TestCommit_NothingToCommit(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	r, err := Init(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	_, err = r.Commit("first")
	require.NoError(t, err)

	_, err = r.Commit("second")
	assert.True(t, errors.Is(err, ErrNothingToCommit))
}
