//go:build !windows

// Package stderr captures output that C libraries (rtmidi, ALSA) write
// straight to file descriptor 2, bypassing Go's os.Stderr, and forwards it
// to a structured logger so it cannot corrupt the TUI.
package stderr

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"syscall"
)

var (
	mu         sync.Mutex
	origStderr = -1
	pipeRead   *os.File
	pipeWrite  *os.File
	forwarded  sync.WaitGroup
	started    bool
)

// Start redirects fd 2 into a pipe and logs every non-empty captured line
// at warn level on logger. logger must not write to stderr itself. It must
// be called before the MIDI driver is initialised. If capture cannot be set up the error is returned and output
// keeps going to the original stderr.
func Start(logger *slog.Logger) error {
	mu.Lock()
	defer mu.Unlock()
	if started {
		return nil
	}

	r, w, err := os.Pipe()
	if err != nil {
		return err
	}

	orig, err := syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return err
	}

	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		syscall.Close(orig)
		r.Close()
		w.Close()
		return err
	}

	origStderr = orig
	pipeRead = r
	pipeWrite = w
	started = true

	forwarded.Add(1)
	go func() {
		defer forwarded.Done()
		forward(r, logger)
	}()

	return nil
}

func forward(r io.Reader, logger *slog.Logger) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			logger.Warn("captured stderr", "line", line)
		}
	}
}

// WriteOriginal writes directly to the original stderr, bypassing capture.
// Useful for fatal errors that must be visible while the TUI is running.
func WriteOriginal(msg string) {
	mu.Lock()
	fd := origStderr
	mu.Unlock()
	if fd >= 0 {
		_, _ = syscall.Write(fd, []byte(msg))
		return
	}
	_, _ = os.Stderr.WriteString(msg)
}

// Stop restores the original stderr and waits for captured output to be
// logged.
func Stop() {
	mu.Lock()
	defer mu.Unlock()
	if !started {
		return
	}

	_ = syscall.Dup2(origStderr, int(os.Stderr.Fd()))
	_ = syscall.Close(origStderr)
	origStderr = -1

	pipeWrite.Close()
	forwarded.Wait()
	pipeRead.Close()
	started = false
}
