// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunPiped(name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) RunPiped(name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// CommandConverter converts text by piping it through the opencc command
// line tool: `opencc -c <configID>` with the text on stdin.
type CommandConverter struct {
	bin  string
	exec executor
}

// NewCommandConverter returns a converter running bin. It verifies that bin
// is on PATH before returning.
func NewCommandConverter(bin string) (*CommandConverter, error) {
	return newCommandConverter(bin, osExecutor{})
}

func newCommandConverter(bin string, ex executor) (*CommandConverter, error) {
	if bin == "" {
		bin = "opencc"
	}
	path, err := ex.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("%s not available: %w", bin, err)
	}
	return &CommandConverter{bin: path, exec: ex}, nil
}

// Convert runs the command with configID passed through unmodified.
func (c *CommandConverter) Convert(text, configID string) (string, error) {
	var out, errOut bytes.Buffer
	args := []string{"-c", configID}
	if err := c.exec.RunPiped(c.bin, args, strings.NewReader(text), &out, &errOut); err != nil {
		if msg := strings.TrimSpace(errOut.String()); msg != "" {
			return "", fmt.Errorf("running %s -c %s: %w: %s", c.bin, configID, err, msg)
		}
		return "", fmt.Errorf("running %s -c %s: %w", c.bin, configID, err)
	}
	if out.Len() == 0 && text != "" {
		return "", fmt.Errorf("%s produced empty output for config %s", c.bin, configID)
	}
	return out.String(), nil
}
