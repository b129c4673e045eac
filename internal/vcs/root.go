// Package vcs locates the project root through git.
package vcs

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// ProjectRoot runs `git rev-parse --show-toplevel` in dir and returns the
// repository toplevel. When repoName is non-empty the toplevel must end
// with it, guarding against running the linter in the wrong checkout.
func ProjectRoot(dir, repoName string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil && stderr.Len() == 0 {
		return "", fmt.Errorf("vcs: run 'git rev-parse --show-toplevel': %w", err)
	}

	return parseToplevel(stdout.Bytes(), stderr.Bytes(), repoName)
}

// parseToplevel validates the rev-parse output. Any stderr output or an
// empty stdout is an error.
func parseToplevel(stdout, stderr []byte, repoName string) (string, error) {
	if msg := strings.TrimSpace(string(stderr)); msg != "" {
		return "", fmt.Errorf("vcs: %s", msg)
	}
	top := strings.TrimRight(string(stdout), "\r\n")
	if top == "" {
		return "", fmt.Errorf("vcs: 'git rev-parse --show-toplevel' output is empty")
	}
	if repoName != "" && !strings.HasSuffix(top, repoName) {
		return "", fmt.Errorf("vcs: %s is not the %s repository", top, repoName)
	}
	return top, nil
}
