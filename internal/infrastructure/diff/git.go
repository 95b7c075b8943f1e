// Package diff computes unified diffs by shelling out to git.
package diff

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/doeshing/rai-go/internal/ports"
)

// GitEngine implements ports.DiffEngine via `git diff --no-index`, which
// diffs two arbitrary files rather than tracked repository blobs.
type GitEngine struct {
	gitPath string
}

// NewGitEngine builds an engine that resolves git from PATH.
func NewGitEngine() *GitEngine {
	return &GitEngine{gitPath: "git"}
}

// Diff returns git's unified-diff output for the two paths. git exits 1 when
// the files differ; that is the expected outcome here, not an error. The
// subprocess is intentionally started without a context: once running it is
// allowed to finish even if the surrounding invocation is cancelled.
func (e *GitEngine) Diff(pathA, pathB string) (string, error) {
	cmd := exec.Command(e.gitPath, "diff", "--no-index", "--", pathA, pathB)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return stdout.String(), nil
		}
		return "", fmt.Errorf("git diff --no-index: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// Available reports whether the git binary can be found on PATH.
func (e *GitEngine) Available() bool {
	_, err := exec.LookPath(e.gitPath)
	return err == nil
}

var _ ports.DiffEngine = (*GitEngine)(nil)
