// Package process runs resolved command lines and tracks their lifetime.
//
// Background commands run in their own process group with output streamed
// line by line. At most one foreground command runs at a time; it owns the
// terminal until it exits.
package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrForegroundBusy is returned when a foreground command is requested
	// while another one still owns the terminal.
	ErrForegroundBusy = errors.New("a foreground command is already running")
	// ErrEmptyCommand is returned for blank command lines.
	ErrEmptyCommand = errors.New("empty command line")
)

// State is the lifecycle stage of a process.
type State int

const (
	Running State = iota
	Exited
	Killed
	Failed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Exited:
		return "exited"
	case Killed:
		return "killed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is a State plus its detail: the exit code for Exited and the
// reason for Failed.
type Status struct {
	State  State
	Code   int
	Reason string
}

func (s Status) String() string {
	switch s.State {
	case Exited:
		return fmt.Sprintf("exited(%d)", s.Code)
	case Failed:
		return fmt.Sprintf("failed: %s", s.Reason)
	default:
		return s.State.String()
	}
}

// Done reports whether the process has finished in any way.
func (s Status) Done() bool {
	return s.State != Running
}

// Success reports a clean exit.
func (s Status) Success() bool {
	return s.State == Exited && s.Code == 0
}

// Handle is a read-only view of a tracked process.
type Handle struct {
	ID          int
	CommandLine string
	Foreground  bool
	PID         int
	StartedAt   time.Time
	FinishedAt  time.Time
	Status      Status
}

// Stream identifies where an output line came from.
type Stream int

const (
	Stdout Stream = iota
	Stderr
	// Combined is a PTY, which merges both streams.
	Combined
)

func (s Stream) String() string {
	switch s {
	case Stderr:
		return "stderr"
	case Combined:
		return "pty"
	default:
		return "stdout"
	}
}

// Line is one line of background output.
type Line struct {
	ID     int
	Stream Stream
	Text   string
}

// Terminal is the render side's hold on the terminal. A foreground command
// releases it before starting and restores it after exit, whatever the
// outcome.
type Terminal interface {
	Release() error
	Restore() error
}

// Options control a single spawn.
type Options struct {
	Foreground bool
	// Terminal is released around foreground commands. Nil means the
	// caller does not hold the terminal.
	Terminal Terminal
}

// Config configures a Manager.
type Config struct {
	// Dir is the working directory for every command.
	Dir string
	// Shell is the interpreter argv prefix. Defaults to DefaultShell().
	Shell []string
	// PTY runs background commands on a pseudo-terminal.
	PTY bool
	// Stdin, Stdout and Stderr are handed to foreground commands.
	// They default to the process's own stdio.
	Stdin          io.Reader
	Stdout, Stderr io.Writer
	Log            logrus.FieldLogger
}

const outputBuffer = 1024

type proc struct {
	handle Handle
	cmd    *exec.Cmd
	killed bool
}

// Manager owns the process table.
type Manager struct {
	cfg Config
	log logrus.FieldLogger

	mu         sync.Mutex
	nextID     int
	procs      map[int]*proc
	foreground bool

	output chan Line

	doneMu   sync.Mutex
	finished []Handle
}

// NewManager creates a Manager.
func NewManager(cfg Config) *Manager {
	if len(cfg.Shell) == 0 {
		cfg.Shell = DefaultShell()
	}
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	log := cfg.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Manager{
		cfg:    cfg,
		log:    log.WithField("component", "process"),
		procs:  make(map[int]*proc),
		output: make(chan Line, outputBuffer),
	}
}

// Output streams background output lines.
func (m *Manager) Output() <-chan Line {
	return m.output
}

// Spawn starts line through the interpreter. Background commands return
// immediately with a Running handle. Foreground commands block until they
// exit and return the final handle.
//
// A command that cannot be started yields a Failed handle together with
// the error; the handle is also reported by PollCompletions.
func (m *Manager) Spawn(ctx context.Context, line string, opts Options) (Handle, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Handle{}, ErrEmptyCommand
	}
	if opts.Foreground {
		return m.runForeground(ctx, line, opts.Terminal)
	}
	return m.startBackground(ctx, line)
}

func (m *Manager) command(ctx context.Context, line string) *exec.Cmd {
	args := append(append([]string(nil), m.cfg.Shell[1:]...), line)
	cmd := exec.CommandContext(ctx, m.cfg.Shell[0], args...)
	cmd.Dir = m.cfg.Dir
	return cmd
}

func (m *Manager) register(line string, foreground bool, cmd *exec.Cmd) *proc {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p := &proc{
		handle: Handle{
			ID:          m.nextID,
			CommandLine: line,
			Foreground:  foreground,
			StartedAt:   time.Now(),
			Status:      Status{State: Running},
		},
		cmd: cmd,
	}
	m.procs[p.handle.ID] = p
	return p
}

func (m *Manager) startBackground(ctx context.Context, line string) (Handle, error) {
	cmd := m.command(ctx, line)
	p := m.register(line, false, cmd)
	log := m.log.WithFields(logrus.Fields{"id": p.handle.ID, "cmd": line})

	var readers []namedReader
	var closer io.Closer
	var err error
	if m.cfg.PTY {
		var tty io.ReadCloser
		tty, err = startPTY(cmd)
		if err == nil {
			readers = []namedReader{{tty, Combined}}
			closer = tty
		}
	} else {
		readers, err = startPiped(cmd)
	}
	if err != nil {
		log.WithError(err).Warn("spawn failed")
		return m.finish(p, Status{State: Failed, Reason: err.Error()}), err
	}

	m.mu.Lock()
	p.handle.PID = cmd.Process.Pid
	h := p.handle
	m.mu.Unlock()
	log.WithField("pid", h.PID).Debug("started")

	go m.wait(p, readers, closer)
	return h, nil
}

type namedReader struct {
	r      io.Reader
	stream Stream
}

func startPiped(cmd *exec.Cmd) ([]namedReader, error) {
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return terminate(cmd.Process) }
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return []namedReader{{stdout, Stdout}, {stderr, Stderr}}, nil
}

// wait drains output then reaps the process. Pipes must be fully read
// before Wait closes them.
func (m *Manager) wait(p *proc, readers []namedReader, closer io.Closer) {
	var wg sync.WaitGroup
	for _, nr := range readers {
		wg.Add(1)
		go func(nr namedReader) {
			defer wg.Done()
			readLines(nr.r, func(text string) {
				m.output <- Line{ID: p.handle.ID, Stream: nr.stream, Text: text}
			})
		}(nr)
	}
	wg.Wait()
	err := p.cmd.Wait()
	if closer != nil {
		closer.Close()
	}

	m.mu.Lock()
	killed := p.killed
	m.mu.Unlock()
	m.finish(p, statusFrom(err, killed))
}

// readLines reads until EOF or error, emitting lines without their
// terminator. A PTY reports EIO once the child side closes.
func readLines(r io.Reader, emit func(string)) {
	br := bufio.NewReader(r)
	for {
		s, err := br.ReadString('\n')
		if s != "" {
			emit(strings.TrimRight(s, "\r\n"))
		}
		if err != nil {
			return
		}
	}
}

func (m *Manager) runForeground(ctx context.Context, line string, term Terminal) (Handle, error) {
	m.mu.Lock()
	if m.foreground {
		m.mu.Unlock()
		return Handle{}, ErrForegroundBusy
	}
	m.foreground = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.foreground = false
		m.mu.Unlock()
	}()

	cmd := m.command(ctx, line)
	cmd.Stdin = m.cfg.Stdin
	cmd.Stdout = m.cfg.Stdout
	cmd.Stderr = m.cfg.Stderr
	p := m.register(line, true, cmd)
	log := m.log.WithFields(logrus.Fields{"id": p.handle.ID, "cmd": line})

	if term != nil {
		if err := term.Release(); err != nil {
			log.WithError(err).Warn("release terminal")
			return m.finish(p, Status{State: Failed, Reason: err.Error()}), fmt.Errorf("release terminal: %w", err)
		}
		defer func() {
			if err := term.Restore(); err != nil {
				log.WithError(err).Error("restore terminal")
			}
		}()
	}

	if err := cmd.Start(); err != nil {
		log.WithError(err).Warn("spawn failed")
		return m.finish(p, Status{State: Failed, Reason: err.Error()}), err
	}
	m.mu.Lock()
	p.handle.PID = cmd.Process.Pid
	m.mu.Unlock()

	err := cmd.Wait()
	return m.finish(p, statusFrom(err, false)), nil
}

func statusFrom(err error, killed bool) Status {
	if err == nil {
		return Status{State: Exited}
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		if code := ee.ExitCode(); code >= 0 {
			return Status{State: Exited, Code: code}
		}
		return Status{State: Killed}
	}
	if killed {
		return Status{State: Killed}
	}
	return Status{State: Failed, Reason: err.Error()}
}

// finish records the final status, queues the completion and drops the
// process from the table.
func (m *Manager) finish(p *proc, st Status) Handle {
	m.mu.Lock()
	p.handle.Status = st
	p.handle.FinishedAt = time.Now()
	h := p.handle
	delete(m.procs, h.ID)
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{"id": h.ID, "status": st.String()}).Debug("finished")
	m.doneMu.Lock()
	m.finished = append(m.finished, h)
	m.doneMu.Unlock()
	return h
}

// PollCompletions returns the processes that finished since the last
// call. It never blocks.
func (m *Manager) PollCompletions() []Handle {
	m.doneMu.Lock()
	defer m.doneMu.Unlock()
	out := m.finished
	m.finished = nil
	return out
}

// KillAll sends a termination signal to every running background process
// group. Signalled processes are returned still marked Running; their
// final status arrives through PollCompletions if and when they exit.
func (m *Manager) KillAll() []Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	var signalled []Handle
	for _, p := range m.procs {
		if p.handle.Foreground || p.handle.Status.Done() || p.cmd.Process == nil {
			continue
		}
		if err := terminate(p.cmd.Process); err != nil {
			if !errors.Is(err, os.ErrProcessDone) {
				m.log.WithError(err).WithField("id", p.handle.ID).Warn("terminate")
			}
			continue
		}
		p.killed = true
		signalled = append(signalled, p.handle)
	}
	sort.Slice(signalled, func(i, j int) bool { return signalled[i].ID < signalled[j].ID })
	return signalled
}

// Handles returns the running processes ordered by ID.
func (m *Manager) Handles() []Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Handle, 0, len(m.procs))
	for _, p := range m.procs {
		out = append(out, p.handle)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ForegroundActive reports whether a foreground command owns the terminal.
func (m *Manager) ForegroundActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.foreground
}
