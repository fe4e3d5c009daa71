package launcher

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func testJob(t *testing.T) Job {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "deck.i"), []byte("[Mesh]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return Job{
		MPIExec:   "mpiexec",
		Ranks:     16,
		App:       "cdf_update",
		Method:    "opt",
		BinDir:    "../..",
		InputFile: "deck.i",
		LogFile:   "record.log",
		WorkDir:   dir,
	}
}

func TestArgs(t *testing.T) {
	j := testJob(t)

	want := []string{"-n", "16", "../../cdf_update-opt", "-i", "deck.i"}
	if got := j.Args(); !reflect.DeepEqual(got, want) {
		t.Errorf("Args() = %v, want %v", got, want)
	}

	j.Method = "dbg"
	if got := j.Binary(); got != "../../cdf_update-dbg" {
		t.Errorf("Binary() = %s", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Job)
	}{
		{"no mpiexec", func(j *Job) { j.MPIExec = "" }},
		{"zero ranks", func(j *Job) { j.Ranks = 0 }},
		{"no app", func(j *Job) { j.App = "" }},
		{"bad method", func(j *Job) { j.Method = "prof" }},
		{"no input", func(j *Job) { j.InputFile = "" }},
		{"missing input", func(j *Job) { j.InputFile = "missing.i" }},
		{"no log", func(j *Job) { j.LogFile = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := testJob(t)
			tt.mutate(&j)
			if err := j.Validate(); !errors.Is(err, ErrInvalidJob) {
				t.Errorf("expected ErrInvalidJob, got %v", err)
			}
		})
	}

	if err := testJob(t).Validate(); err != nil {
		t.Errorf("valid job rejected: %v", err)
	}
}

func TestRunWritesLog(t *testing.T) {
	echo, err := exec.LookPath("echo")
	if err != nil {
		t.Skip("echo not available")
	}
	j := testJob(t)
	j.MPIExec = echo

	if err := Run(context.Background(), j); err != nil {
		t.Fatalf("run: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(j.WorkDir, j.LogFile))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "../../cdf_update-opt -i deck.i") {
		t.Errorf("unexpected log contents %q", data)
	}
}

func TestRunFailure(t *testing.T) {
	falseBin, err := exec.LookPath("false")
	if err != nil {
		t.Skip("false not available")
	}
	j := testJob(t)
	j.MPIExec = falseBin

	err = Run(context.Background(), j)
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Errorf("expected *exec.ExitError, got %v", err)
	}
}

func TestStartCanceled(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	j := testJob(t)
	script := filepath.Join(t.TempDir(), "fake-mpiexec")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nexec sleep 30\n"), 0755); err != nil {
		t.Fatal(err)
	}
	j.MPIExec = script

	ctx, cancel := context.WithCancel(context.Background())
	p, err := Start(ctx, j)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if p.PID() <= 0 {
		t.Errorf("unexpected pid %d", p.PID())
	}
	cancel()

	errc := make(chan error, 1)
	go func() { errc <- p.Wait() }()
	select {
	case err := <-errc:
		if err == nil {
			t.Error("expected error from canceled process")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("process did not stop after cancel")
	}
}

func TestStartMissingBinary(t *testing.T) {
	j := testJob(t)
	j.MPIExec = filepath.Join(t.TempDir(), "no-such-mpiexec")

	if _, err := Start(context.Background(), j); err == nil {
		t.Error("expected start error")
	}
}
