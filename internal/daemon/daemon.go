// Package daemon manages the background scheduler process through a pid file
// in the storage directory.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"gitdelayed/internal/domain"
)

const (
	PIDFile = "daemon.pid"
	OutFile = "daemon.out"
	ErrFile = "daemon.err"
	LogFile = "daemon.log"
)

type Manager struct {
	Dir string
	// Args re-invoke the current executable as the daemon body.
	Args []string

	StopPoll     time.Duration
	StopAttempts int
}

func New(dir string) *Manager {
	return &Manager{
		Dir:          dir,
		Args:         []string{"daemon", "run"},
		StopPoll:     500 * time.Millisecond,
		StopAttempts: 10,
	}
}

type Status struct {
	Running bool
	PID     int
}

func (m *Manager) PIDPath() string { return filepath.Join(m.Dir, PIDFile) }

// ReadPID returns the recorded pid, or 0 when no usable pid file exists.
func (m *Manager) ReadPID() (int, error) {
	data, err := os.ReadFile(m.PIDPath())
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: read pid file: %w", domain.ErrStorage, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, nil
	}
	return pid, nil
}

func (m *Manager) WritePID(pid int) error {
	if err := os.MkdirAll(m.Dir, 0o755); err != nil {
		return fmt.Errorf("%w: create storage directory: %w", domain.ErrStorage, err)
	}
	if err := os.WriteFile(m.PIDPath(), []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("%w: write pid file: %w", domain.ErrStorage, err)
	}
	return nil
}

func (m *Manager) RemovePID() error {
	if err := os.Remove(m.PIDPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove pid file: %w", domain.ErrStorage, err)
	}
	return nil
}

// Status reports whether the process named by the pid file is alive. A
// missing, unreadable or stale pid file means not running.
func (m *Manager) Status() (Status, error) {
	pid, err := m.ReadPID()
	if err != nil {
		return Status{}, err
	}
	if pid == 0 || !isProcessRunning(pid) {
		return Status{PID: pid}, nil
	}
	return Status{Running: true, PID: pid}, nil
}

// Claim records the calling process as the daemon unless another live
// process already holds the pid file.
func (m *Manager) Claim() error {
	st, err := m.Status()
	if err != nil {
		return err
	}
	self := os.Getpid()
	if st.Running && st.PID != self {
		return fmt.Errorf("%w (pid %d)", domain.ErrDaemonRunning, st.PID)
	}
	return m.WritePID(self)
}

// Release removes the pid file if it still names the calling process.
func (m *Manager) Release() error {
	pid, err := m.ReadPID()
	if err != nil {
		return err
	}
	if pid != os.Getpid() {
		return nil
	}
	return m.RemovePID()
}

// Start launches a detached copy of the current executable running the
// daemon body and returns its pid.
func (m *Manager) Start(ctx context.Context) (int, error) {
	st, err := m.Status()
	if err != nil {
		return 0, err
	}
	if st.Running {
		return 0, fmt.Errorf("%w (pid %d)", domain.ErrDaemonRunning, st.PID)
	}

	exe, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("locate executable: %w", err)
	}
	if err := os.MkdirAll(m.Dir, 0o755); err != nil {
		return 0, fmt.Errorf("%w: create storage directory: %w", domain.ErrStorage, err)
	}

	stdout, err := os.OpenFile(filepath.Join(m.Dir, OutFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, fmt.Errorf("%w: open %s: %w", domain.ErrStorage, OutFile, err)
	}
	defer stdout.Close()
	stderr, err := os.OpenFile(filepath.Join(m.Dir, ErrFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, fmt.Errorf("%w: open %s: %w", domain.ErrStorage, ErrFile, err)
	}
	defer stderr.Close()

	// not CommandContext: the daemon must outlive this process
	cmd := exec.Command(exe, m.Args...) //nolint:gosec // re-exec of our own binary
	cmd.Dir = m.Dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	configureDaemonProcess(cmd)

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start daemon: %w", err)
	}
	pid := cmd.Process.Pid
	if err := m.WritePID(pid); err != nil {
		return pid, err
	}
	if err := cmd.Process.Release(); err != nil {
		log.Ctx(ctx).Warn().Err(err).Int("pid", pid).Msg("failed to release daemon process")
	}
	log.Ctx(ctx).Debug().Int("pid", pid).Msg("daemon started")
	return pid, nil
}

// Stop signals the daemon and waits for it to exit.
func (m *Manager) Stop(ctx context.Context) error {
	st, err := m.Status()
	if err != nil {
		return err
	}
	if !st.Running {
		return domain.ErrDaemonNotRunning
	}

	if err := sendStopSignal(st.PID); err != nil {
		return fmt.Errorf("signal daemon (pid %d): %w", st.PID, err)
	}

	for i := 0; i < m.StopAttempts && isProcessRunning(st.PID); i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.StopPoll):
		}
	}
	if isProcessRunning(st.PID) {
		return fmt.Errorf("daemon didn't stop (pid %d)", st.PID)
	}
	return m.RemovePID()
}
