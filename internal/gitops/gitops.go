// Package gitops records project changes as git commits.
package gitops

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Commit identity.
const (
	AuthorName  = "finstat"
	AuthorEmail = "finstat@localhost"
)

// ErrNothingToCommit is returned by Commit when no staged change exists.
var ErrNothingToCommit = errors.New("nothing to commit")

// Repo is a git working tree holding a project.
type Repo struct {
	Dir string
}

// Init creates a git repository at dir.
func Init(dir string) (*Repo, error) {
	r := &Repo{Dir: dir}
	if _, err := r.git("init", "-q"); err != nil {
		return nil, err
	}
	return r, nil
}

// Open returns the repository at dir, or false if dir is not the root of
// one.
func Open(dir string) (*Repo, bool) {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		return nil, false
	}
	return &Repo{Dir: dir}, true
}

// Commit stages paths (everything when none are given) and commits them.
// Returns the short commit hash.
func (r *Repo) Commit(message string, paths ...string) (string, error) {
	add := []string{"add", "-A"}
	if len(paths) > 0 {
		add = append(add, "--")
		for _, p := range paths {
			rel, err := filepath.Rel(r.Dir, p)
			if err != nil || !filepath.IsAbs(p) {
				rel = p
			}
			add = append(add, rel)
		}
	}
	if _, err := r.git(add...); err != nil {
		return "", err
	}

	// Exit status 0 means the index matches HEAD.
	diff := exec.Command("git", "diff", "--cached", "--quiet")
	diff.Dir = r.Dir
	if err := diff.Run(); err == nil {
		return "", ErrNothingToCommit
	}

	if _, err := r.git(
		"-c", "user.name="+AuthorName,
		"-c", "user.email="+AuthorEmail,
		"commit", "-q", "-m", message,
	); err != nil {
		return "", err
	}

	out, err := r.git("rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (r *Repo) git(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		name := args[0]
		if name == "-c" {
			name = "commit"
		}
		return "", fmt.Errorf("git %s: %s: %w", name, strings.TrimSpace(string(out)), err)
	}
	return string(out), nil
}
