package services

import (
	"fmt"
	"os/exec"

	"github.com/sirupsen/logrus"
)

// Git checkpoints the content tree after successful mutations so the site
// source keeps a history of what the endpoint changed. Best effort: a broken
// or absent git setup must never fail a request.
type Git struct {
	dir     string
	enabled bool
	log     *logrus.Logger
}

func NewGit(dir string, enabled bool, log *logrus.Logger) *Git {
	return &Git{dir: dir, enabled: enabled, log: log}
}

// Checkpoint stages the content directory and commits it with a message
// describing the mutation.
func (g *Git) Checkpoint(action, subject string) {
	if !g.enabled {
		return
	}
	addCmd := exec.Command("git", "add", "content")
	addCmd.Dir = g.dir
	if out, err := addCmd.CombinedOutput(); err != nil {
		g.log.WithError(err).WithField("output", string(out)).Warn("git add failed")
		return
	}
	msg := fmt.Sprintf("micropub: %s %s", action, subject)
	commitCmd := exec.Command("git", "commit", "-m", msg)
	commitCmd.Dir = g.dir
	if out, err := commitCmd.CombinedOutput(); err != nil {
		// Commit also fails when there is nothing staged; keep it quiet.
		g.log.WithField("output", string(out)).Debug("git commit skipped")
	}
}
