package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultContainer is the AMF container of the OAI 5G core rfsim setup.
const DefaultContainer = "rfsim5g-oai-amf"

// CommandSource runs a command and takes its standard output as the log
// text. By default it runs "docker logs <container>".
type CommandSource struct {
	name string
	args []string
}

// NewCommandSource creates a source that runs name with args.
func NewCommandSource(name string, args ...string) *CommandSource {
	return &CommandSource{name: name, args: args}
}

// NewContainerSource creates a source that reads the logs of a container.
// An empty container uses DefaultContainer.
func NewContainerSource(container string) *CommandSource {
	if container == "" {
		container = DefaultContainer
	}
	return NewCommandSource("docker", "logs", container)
}

// Name implements Source.
func (s *CommandSource) Name() string {
	return strings.Join(append([]string{s.name}, s.args...), " ")
}

// Fetch implements Source. A failing or silent command is reported as
// ErrUnavailable with its standard error attached.
func (s *CommandSource) Fetch(ctx context.Context) (string, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, s.name, s.args...) // #nosec G204 -- command comes from local configuration
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: %s: %s", ErrUnavailable, s.Name(), strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("%w: %s: %w", ErrUnavailable, s.Name(), err)
	}

	if stdout.Len() == 0 {
		return "", fmt.Errorf("%w: %s produced no output", ErrUnavailable, s.Name())
	}
	return stdout.String(), nil
}
