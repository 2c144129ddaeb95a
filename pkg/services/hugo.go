package services

import (
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Builder triggers the external site build. The contract is fire-and-forget:
// callers only need the command to have been invoked, not to have succeeded,
// so failures are logged and never surfaced to the client.
type Builder struct {
	cfg command
	log *logrus.Logger
}

type command struct {
	argv []string
	dir  string
}

func NewBuilder(buildCommand, dir string, log *logrus.Logger) *Builder {
	return &Builder{cfg: command{argv: strings.Fields(buildCommand), dir: dir}, log: log}
}

// Build runs the configured command. An empty command disables the step.
func (b *Builder) Build() {
	if len(b.cfg.argv) == 0 {
		return
	}
	cmd := exec.Command(b.cfg.argv[0], b.cfg.argv[1:]...)
	cmd.Dir = b.cfg.dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		b.log.WithError(err).WithField("output", string(output)).Warn("site build failed")
		return
	}
	b.log.Debug("site build triggered")
}
