// Package gitops records data directory changes as git commits.
package gitops

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Author identifies who commits to the data directory.
type Author struct {
	Name  string
	Email string
}

// Init initializes a new git repository at dir.
func Init(dir string) error {
	if out, err := git(dir, Author{}, "init", "--quiet").CombinedOutput(); err != nil {
		return fmt.Errorf("git init: %s: %w", out, err)
	}
	return nil
}

// HasChanges reports whether dir has uncommitted or untracked files.
func HasChanges(dir string) (bool, error) {
	out, err := git(dir, Author{}, "status", "--porcelain").Output()
	if err != nil {
		return false, fmt.Errorf("git status: %w", err)
	}
	return len(strings.TrimSpace(string(out))) > 0, nil
}

// CommitAll stages all files and creates a commit. Returns the short commit hash.
func CommitAll(dir, message string, author Author) (string, error) {
	if out, err := git(dir, author, "add", "-A").CombinedOutput(); err != nil {
		return "", fmt.Errorf("git add: %s: %w", out, err)
	}

	commit := git(dir, author, "commit", "--quiet", "-m", message,
		"--author", fmt.Sprintf("%s <%s>", author.Name, author.Email))
	if out, err := commit.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git commit: %s: %w", out, err)
	}

	out, err := git(dir, author, "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// CommitIfChanged commits everything in dir when something changed.
// Returns an empty hash when the tree was clean.
func CommitIfChanged(dir, message string, author Author) (string, error) {
	changed, err := HasChanges(dir)
	if err != nil || !changed {
		return "", err
	}
	return CommitAll(dir, message, author)
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// git builds a git command in dir. The committer identity is set from author
// so commits work without a global git config.
func git(dir string, author Author, args ...string) *exec.Cmd {
	var full []string
	if author.Name != "" {
		full = append(full, "-c", "user.name="+author.Name, "-c", "user.email="+author.Email)
	}
	cmd := exec.Command("git", append(full, args...)...)
	cmd.Dir = dir
	return cmd
}
