package recording

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"
)

var DefaultCommand = []string{"arecord", "-q", "-f", "cd", "-t", "wav"}

const drainTimeout = 2 * time.Second

// CommandMicrophone records by running an external program that writes audio
// to its standard output until interrupted.
type CommandMicrophone struct {
	Command []string
}

func (m CommandMicrophone) Open(ctx context.Context) (io.ReadCloser, error) {
	command := m.Command
	if len(command) == 0 {
		command = DefaultCommand
	}

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	err = cmd.Start()
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", command[0], err)
	}

	return &commandStream{
		cmd:     cmd,
		stdout:  stdout,
		drained: make(chan struct{}),
	}, nil
}

type commandStream struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser

	drainOnce sync.Once
	drained   chan struct{}

	closeOnce sync.Once
	closeErr  error
}

func (s *commandStream) Read(p []byte) (int, error) {
	n, err := s.stdout.Read(p)
	if err != nil {
		s.drainOnce.Do(func() { close(s.drained) })
	}
	return n, err
}

// Close interrupts the program, lets the reader drain the pipe and reaps the
// process. A program that does not exit in time is killed.
func (s *commandStream) Close() error {
	s.closeOnce.Do(func() {
		err := s.cmd.Process.Signal(os.Interrupt)
		if err != nil && !errors.Is(err, os.ErrProcessDone) {
			_ = s.cmd.Process.Kill()
		}

		select {
		case <-s.drained:
		case <-time.After(drainTimeout):
			_ = s.cmd.Process.Kill()
		}

		err = s.cmd.Wait()

		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			s.closeErr = err
		}
	})

	return s.closeErr
}
