// Package launcher starts the finite-element solver under mpiexec with its
// output redirected to a log file.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

var ErrInvalidJob = errors.New("launcher: invalid job")

// Job describes one solver invocation:
//
//	<mpiexec> -n <ranks> <bindir>/<app>-<method> -i <input>
type Job struct {
	MPIExec   string
	Ranks     int
	App       string
	Method    string // "opt" or "dbg"
	BinDir    string
	InputFile string
	LogFile   string
	WorkDir   string
}

// Binary is the solver executable for the configured build method.
func (j Job) Binary() string {
	return filepath.Join(j.BinDir, j.App+"-"+j.Method)
}

func (j Job) Args() []string {
	return []string{"-n", fmt.Sprint(j.Ranks), j.Binary(), "-i", j.InputFile}
}

func (j Job) Validate() error {
	if j.MPIExec == "" {
		return fmt.Errorf("%w: no mpiexec command", ErrInvalidJob)
	}
	if j.Ranks < 1 {
		return fmt.Errorf("%w: ranks must be at least 1, got %d", ErrInvalidJob, j.Ranks)
	}
	if j.App == "" {
		return fmt.Errorf("%w: no application name", ErrInvalidJob)
	}
	if j.Method != "opt" && j.Method != "dbg" {
		return fmt.Errorf("%w: method must be opt or dbg, got %q", ErrInvalidJob, j.Method)
	}
	if j.InputFile == "" {
		return fmt.Errorf("%w: no input file", ErrInvalidJob)
	}
	if j.LogFile == "" {
		return fmt.Errorf("%w: no log file", ErrInvalidJob)
	}
	if _, err := os.Stat(j.resolve(j.InputFile)); err != nil {
		return fmt.Errorf("%w: input file: %w", ErrInvalidJob, err)
	}
	return nil
}

func (j Job) resolve(path string) string {
	if j.WorkDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(j.WorkDir, path)
}

// Process is a running solver job.
type Process struct {
	Job     Job
	Started time.Time

	cmd  *exec.Cmd
	log  *os.File
	done chan struct{}
	err  error
}

// Start launches the job and returns without waiting, as a backgrounded
// shell job would.
func Start(ctx context.Context, j Job) (*Process, error) {
	if err := j.Validate(); err != nil {
		return nil, err
	}

	log, err := os.Create(j.resolve(j.LogFile))
	if err != nil {
		return nil, fmt.Errorf("create log: %w", err)
	}

	cmd := exec.CommandContext(ctx, j.MPIExec, j.Args()...)
	cmd.Dir = j.WorkDir
	cmd.Stdout = log
	cmd.Stderr = log

	if err := cmd.Start(); err != nil {
		log.Close()
		return nil, fmt.Errorf("start %s: %w", j.MPIExec, err)
	}

	p := &Process{
		Job:     j,
		Started: time.Now(),
		cmd:     cmd,
		log:     log,
		done:    make(chan struct{}),
	}
	go p.wait()
	return p, nil
}

func (p *Process) wait() {
	err := p.cmd.Wait()
	if cerr := p.log.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		p.err = fmt.Errorf("%s %s: %w", p.Job.MPIExec, p.Job.Binary(), err)
	}
	close(p.done)
}

func (p *Process) PID() int { return p.cmd.Process.Pid }

// Wait blocks until the process exits.
func (p *Process) Wait() error {
	<-p.done
	return p.err
}

// Run starts the job and waits for it.
func Run(ctx context.Context, j Job) error {
	p, err := Start(ctx, j)
	if err != nil {
		return err
	}
	return p.Wait()
}
