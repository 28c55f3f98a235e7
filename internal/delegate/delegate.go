package delegate

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
)

// ipcFD is the file descriptor number the child sees for the IPC
// channel: stdio slots 0-2 are taken, the appended "ipc" entry lands
// on 3, matching NODE_CHANNEL_FD below.
const ipcFD = 3

// ExitStatus is the child's terminal state. Exactly one of Signal or
// Code is meaningful: Signal is non-zero when the child was killed.
type ExitStatus struct {
	Code   int
	Signal syscall.Signal
}

// Run spawns the real package manager per the launch plan, sends the
// one-shot IPC handshake, and waits for the child to finish. The
// returned status must be forwarded exactly: a wrapper that succeeds
// when the wrapped tool failed is a security regression.
//
// Spawn failure is fatal and returned verbatim.
func Run(spec *Spec) (ExitStatus, error) {
	cmd := exec.Command(spec.BinPath, spec.Args...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = stdioStreams(spec.Stdio)
	cmd.Env = append(spec.Env, fmt.Sprintf("NODE_CHANNEL_FD=%d", ipcFD))

	// The child reads the handshake from the extra fd; the parent
	// keeps the write end. ExtraFiles[0] becomes fd 3 in the child.
	childEnd, parentEnd, err := os.Pipe()
	if err != nil {
		return ExitStatus{}, fmt.Errorf("delegate: create ipc channel: %w", err)
	}
	cmd.ExtraFiles = []*os.File{childEnd}

	if err := cmd.Start(); err != nil {
		_ = childEnd.Close()
		_ = parentEnd.Close()
		return ExitStatus{}, fmt.Errorf("delegate: spawn %s: %w", spec.BinPath, err)
	}
	_ = childEnd.Close()

	// Handshake goes out immediately post-spawn so the injected
	// instrumentation inside the child never has to re-derive
	// configuration. A child that never reads it is fine.
	if err := sendHandshake(parentEnd, spec.Handshake); err != nil {
		// Non-fatal: the child runs with or without instrumentation.
		_ = err
	}
	_ = parentEnd.Close()

	err = cmd.Wait()
	if err == nil {
		return ExitStatus{Code: 0}, nil
	}

	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return ExitStatus{}, fmt.Errorf("delegate: wait for %s: %w", spec.BinPath, err)
	}

	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return ExitStatus{Signal: ws.Signal()}, nil
	}
	return ExitStatus{Code: exitErr.ExitCode()}, nil
}

// Forward applies the child's terminal state to this process: re-raise
// the child's fatal signal against ourselves, or exit with the child's
// code verbatim. Does not return.
func Forward(status ExitStatus) {
	if status.Signal != 0 {
		// Restore default disposition first so the re-raised signal
		// actually terminates us with the same status.
		signal.Reset(status.Signal)
		_ = syscall.Kill(os.Getpid(), status.Signal)
		// Fallback in case the signal is caught or ignored.
		os.Exit(128 + int(status.Signal))
	}
	os.Exit(status.Code)
}

// stdioStreams maps the launch plan's stdio entries onto the three
// standard streams: "inherit" attaches the parent's stream, "ignore"
// leaves the slot empty so os/exec substitutes the null device, and
// "pipe" falls back to inherit because the wrapper has no consumer
// for a captured stream. The "ipc" entry occupies the first extra fd
// (3), matching NormalizeStdio's placement for three-slot configs.
func stdioStreams(stdio []string) (stdin io.Reader, stdout, stderr io.Writer) {
	stdio = NormalizeStdio(stdio)
	mode := func(i int) string {
		if i < len(stdio) {
			return stdio[i]
		}
		return "inherit"
	}
	if mode(0) != "ignore" {
		stdin = os.Stdin
	}
	if mode(1) != "ignore" {
		stdout = os.Stdout
	}
	if mode(2) != "ignore" {
		stderr = os.Stderr
	}
	return stdin, stdout, stderr
}

func sendHandshake(w *os.File, payload map[string]any) error {
	line, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = w.Write(append(line, '\n'))
	return err
}
