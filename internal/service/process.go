package service

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Process is a running recorder subprocess
type Process interface {
	// Stop asks the process to exit and kills it after timeout
	Stop(timeout time.Duration) error
	Pid() int
}

// ProcessLauncher starts a recorder process writing to outputPath
type ProcessLauncher interface {
	Launch(ctx context.Context, outputPath string) (Process, error)
}

// ExecLauncher runs an external command. The placeholder {output} in Args is
// replaced with the output path; without it the path is appended.
type ExecLauncher struct {
	Command string
	Args    []string
}

// NewExecLauncher creates a launcher for command
func NewExecLauncher(command string, args []string) *ExecLauncher {
	return &ExecLauncher{Command: command, Args: args}
}

func (l *ExecLauncher) Launch(ctx context.Context, outputPath string) (Process, error) {
	args := make([]string, 0, len(l.Args)+1)
	substituted := false
	for _, a := range l.Args {
		if strings.Contains(a, "{output}") {
			a = strings.ReplaceAll(a, "{output}", outputPath)
			substituted = true
		}
		args = append(args, a)
	}
	if !substituted {
		args = append(args, outputPath)
	}

	// Not bound to ctx: the recording outlives the HTTP request that started it
	cmd := exec.Command(l.Command, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", l.Command, err)
	}

	p := &execProcess{cmd: cmd, done: make(chan struct{})}
	go func() {
		p.err = cmd.Wait()
		close(p.done)
	}()
	return p, nil
}

type execProcess struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

func (p *execProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Stop(timeout time.Duration) error {
	select {
	case <-p.done:
		return nil
	default:
	}

	if err := p.cmd.Process.Signal(os.Interrupt); err != nil {
		// Interrupt is unsupported on some platforms
		return p.kill()
	}
	select {
	case <-p.done:
		return nil
	case <-time.After(timeout):
		return p.kill()
	}
}

func (p *execProcess) kill() error {
	if err := p.cmd.Process.Kill(); err != nil {
		select {
		case <-p.done:
			return nil
		default:
			return fmt.Errorf("failed to kill recorder pid %d: %w", p.Pid(), err)
		}
	}
	<-p.done
	return nil
}
