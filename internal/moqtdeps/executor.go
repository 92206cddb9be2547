package moqtdeps

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// Runner is the single capability the engine needs from the outside
// world: run a command in a working directory and hand back whatever it
// printed. Tests substitute a fake so no real toolchain is invoked.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}

// tailBuffer keeps the last max bytes written to it, so a failing tool's
// final output can be attached to the error without buffering gigabytes
// of compiler noise.
type tailBuffer struct {
	buf []byte
	max int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if len(t.buf) > t.max {
		t.buf = t.buf[len(t.buf)-t.max:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string { return string(t.buf) }

// Executor runs external tools (git, cmake, xcodebuild), streaming their
// output to the terminal while capturing a tail for error reporting.
type Executor struct {
	Echo  bool // print each command before running it
	Quiet bool // suppress streamed tool output
}

// Run executes the command, isolating it in its own process group so the
// whole tree can be killed on cancellation. Output streams through and
// the combined tail is returned; on a non-zero exit the tail rides along
// inside the *ToolError.
func (e *Executor) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	if e.Echo {
		colArrow.Print("+ ")
		fmt.Printf("%s %s\n", name, strings.Join(args, " "))
	}

	tail := &tailBuffer{max: 8 * 1024}

	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Env = os.Environ()
	if e.Quiet {
		cmd.Stdout = tail
		cmd.Stderr = tail
	} else {
		cmd.Stdout = io.MultiWriter(os.Stdout, tail)
		cmd.Stderr = io.MultiWriter(os.Stderr, tail)
	}

	// Own process group so cancellation kills cmake's children too.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return "", &ToolError{Tool: name, Args: args, Dir: dir, Err: err}
	}
	pgid := cmd.Process.Pid

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			syscall.Kill(-pgid, syscall.SIGKILL)
		case <-done:
		}
	}()

	if waitErr := cmd.Wait(); waitErr != nil {
		if ctx.Err() != nil {
			time.Sleep(100 * time.Millisecond)
			return tail.String(), fmt.Errorf("command aborted: %v", ctx.Err())
		}
		return tail.String(), &ToolError{Tool: name, Args: args, Dir: dir, Output: tail.String(), Err: waitErr}
	}
	return tail.String(), nil
}
