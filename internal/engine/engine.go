// Package engine owns all project state and applies changes to it in
// discrete steps.
//
// Each Step drains pending filesystem batches and process events, applies
// at most one user intent, recomputes the view and returns a Snapshot.
// Nothing outside the engine mutates the tree, the marks or the process
// table, so every snapshot is internally consistent.
package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avitaltamir/projectable/internal/command"
	"github.com/avitaltamir/projectable/internal/config"
	"github.com/avitaltamir/projectable/internal/git"
	"github.com/avitaltamir/projectable/internal/ignore"
	"github.com/avitaltamir/projectable/internal/logging"
	"github.com/avitaltamir/projectable/internal/marks"
	"github.com/avitaltamir/projectable/internal/process"
	"github.com/avitaltamir/projectable/internal/search"
	"github.com/avitaltamir/projectable/internal/tree"
	"github.com/avitaltamir/projectable/internal/watcher"
)

// TickInterval bounds how long Run waits between steps.
const TickInterval = 100 * time.Millisecond

// Config is the startup snapshot the engine is built from.
type Config struct {
	// Root is the project root directory.
	Root     string
	Settings config.Config
	// ShowHidden and GitFilter are the initial toggle states.
	ShowHidden  bool
	GitFilter   bool
	LogCapacity int
}

// Deps are optional collaborators. Zero values select the real
// implementations.
type Deps struct {
	Log logrus.FieldLogger
	// Git replaces the provider opened from Root.
	Git git.Provider
	// Processes replaces the default process manager.
	Processes *process.Manager
	// Changes replaces the filesystem watcher.
	Changes <-chan []tree.Change
	// NoWatch disables live updates when Changes is nil.
	NoWatch bool
	// Terminal is released around foreground commands.
	Terminal process.Terminal
	Now      func() time.Time
}

// Engine is the single owner of the project state. It is not safe for
// concurrent use.
type Engine struct {
	settings config.Config
	root     string
	log      logrus.FieldLogger
	now      func() time.Time
	ctx      context.Context
	cancel   context.CancelFunc

	filter  *ignore.Filter
	tree    *tree.Tree
	marks   *marks.Store
	search  *search.Index
	special *command.SpecialCommands
	procs   *process.Manager
	term    process.Terminal
	git     *git.Session

	watcher *watcher.Watcher
	changes <-chan []tree.Change
	live    bool

	showHidden bool
	gitFilter  bool

	// view state
	rows      []Row
	cursor    int
	selected  string
	viewDirty bool

	// filter overlay; never written to the tree's expansion state
	candidates      []string
	candidateIDs    []tree.NodeID
	candidatesStale bool
	matchPos        map[tree.NodeID][]int
	matchCount      int
	firstMatch      string

	gitDirty  bool
	lastGit   time.Time
	gitStatus map[string]git.FileStatus
	// head carries branch and upstream counts; its Files are not kept
	head git.Status

	prompt  *pendingPrompt
	events  *eventLog
	fsGen   uint64
}

// New builds the engine: lists the root, opens git, starts watching.
// Failures of optional collaborators degrade features and are logged.
func New(cfg Config, deps Deps) (*Engine, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	log := deps.Log
	if log == nil {
		log = logging.Discard()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	s := cfg.Settings

	filter, err := ignore.New(root, ignore.Options{
		Globs:        s.Filetree.Ignore,
		UseGitignore: s.Filetree.UseGitignore,
	})
	if err != nil {
		return nil, fmt.Errorf("ignore rules: %w", err)
	}

	order := tree.Lexical
	if s.Filetree.NaturalSort {
		order = tree.Natural
	}
	t, err := tree.New(root, tree.Options{
		Filter:    filter,
		DirsFirst: s.Filetree.DirsFirst,
		Order:     order,
		Log:       log,
	})
	if err != nil {
		return nil, err
	}

	specs := make([]command.RuleSpec, len(s.SpecialCommands))
	for i, sc := range s.SpecialCommands {
		specs[i] = command.RuleSpec{Pattern: sc.Pattern, Commands: sc.Commands}
	}
	special, err := command.NewSpecialCommands(specs)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		settings:        s,
		root:            root,
		log:             log.WithField("component", "engine"),
		now:             now,
		ctx:             ctx,
		cancel:          cancel,
		filter:          filter,
		tree:            t,
		marks:           marks.New(),
		search:          search.NewIndex(),
		special:         special,
		procs:           deps.Processes,
		term:            deps.Terminal,
		showHidden:      cfg.ShowHidden,
		events:          newEventLog(cfg.LogCapacity),
		viewDirty:       true,
		candidatesStale: true,
		gitDirty:        true,
	}
	if e.procs == nil {
		e.procs = process.NewManager(process.Config{
			Dir:   root,
			Shell: s.Process.Shell,
			PTY:   s.Process.PTY,
			Log:   log,
		})
	}

	if s.Filetree.UseGit {
		provider := deps.Git
		if provider == nil {
			if p, err := git.Open(root); err == nil {
				provider = p
			} else {
				e.log.WithError(err).Debug("git decoration off")
			}
		}
		if provider != nil {
			e.git = git.NewSession(provider, log)
		}
	}

	switch {
	case deps.Changes != nil:
		e.changes = deps.Changes
	case !deps.NoWatch:
		w, err := watcher.New(root, watcher.Options{
			Debounce: s.Filetree.Debounce(),
			Filter:   filter,
			Log:      log,
		})
		if err != nil {
			e.warn("watch", fmt.Sprintf("live updates disabled: %v", err))
		} else {
			e.watcher = w
			e.changes = w.Events()
		}
	}
	e.live = e.changes != nil

	if cfg.GitFilter {
		e.setGitFilter(true)
	}
	e.refreshGit(true)
	e.recompute()
	return e, nil
}

// Close stops watching and signals background processes.
func (e *Engine) Close() error {
	e.procs.KillAll()
	e.cancel()
	if e.watcher != nil {
		return e.watcher.Close()
	}
	return nil
}

// Root returns the project root.
func (e *Engine) Root() string {
	return e.root
}

// Step runs one mutation pass. intent may be nil.
func (e *Engine) Step(intent Intent) Snapshot {
	e.drainChanges()
	e.drainProcesses()
	if intent != nil {
		// intents act on the rows the user is looking at
		e.recompute()
		e.apply(intent)
	}
	e.pruneMarks()
	e.refreshGit(false)
	e.recompute()
	return e.snapshot()
}

// Run steps on every intent and at least every TickInterval, handing
// each snapshot to render, until ctx is done or intents is closed.
func (e *Engine) Run(ctx context.Context, intents <-chan Intent, render func(Snapshot)) error {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()
	render(e.Step(nil))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in, ok := <-intents:
			if !ok {
				return nil
			}
			render(e.Step(in))
		case <-ticker.C:
			render(e.Step(nil))
		}
	}
}

// drainChanges applies every pending watcher batch without blocking.
func (e *Engine) drainChanges() {
	if e.changes == nil {
		return
	}
	for {
		select {
		case batch, ok := <-e.changes:
			if !ok {
				e.changes = nil
				e.live = false
				e.warn("watch", "filesystem watching stopped; the tree will no longer update on its own")
				return
			}
			e.applyChanges(batch)
		default:
			return
		}
	}
}

func (e *Engine) applyChanges(batch []tree.Change) {
	reload := false
	for _, c := range batch {
		if e.tree.ApplyChange(c) {
			e.touchTree()
		}
		if filepath.Base(c.Path) == ".gitignore" || filepath.Base(c.From) == ".gitignore" {
			reload = true
		}
		e.log.WithFields(logrus.Fields{"kind": c.Kind.String(), "path": c.Path}).Debug("change")
	}
	if reload {
		e.reloadIgnore()
	}
	if len(batch) > 0 {
		e.fsGen++
		e.gitDirty = true
	}
}

func (e *Engine) reloadIgnore() {
	if err := e.filter.Reload(); err != nil {
		e.errorf("ignore", "reload ignore rules: %v", err)
		return
	}
	e.tree.RescanAll()
	e.touchTree()
}

func (e *Engine) setUseGitignore(on bool) {
	if err := e.filter.SetUseGitignore(on); err != nil {
		e.errorf("ignore", "load ignore rules: %v", err)
	}
	e.tree.RescanAll()
	e.touchTree()
	if on {
		e.info("ignore", "gitignore rules on")
	} else {
		e.info("ignore", "gitignore rules off")
	}
}

// drainProcesses moves process output and completions into the log.
// Every line of a process is queued before its completion is, so taking
// completions first keeps a process's output ahead of its exit status.
func (e *Engine) drainProcesses() {
	finished := e.procs.PollCompletions()
	e.drainOutput()
	for _, h := range finished {
		e.reportCompletion(h)
	}
}

func (e *Engine) drainOutput() {
	out := e.procs.Output()
	for done := false; !done; {
		select {
		case line := <-out:
			level := logrus.InfoLevel
			if line.Stream == process.Stderr {
				level = logrus.WarnLevel
			}
			e.addLog(level, fmt.Sprintf("#%d", line.ID), line.Text)
		default:
			done = true
		}
	}
}

func (e *Engine) reportCompletion(h process.Handle) {
	level := logrus.InfoLevel
	if !h.Status.Success() {
		level = logrus.ErrorLevel
	}
	e.addLog(level, fmt.Sprintf("#%d", h.ID), fmt.Sprintf("%s: %s", h.CommandLine, h.Status))
	e.gitDirty = true
}

func (e *Engine) pruneMarks() {
	removed := e.marks.Prune(func(p string) bool {
		_, ok := e.tree.Lookup(p)
		return ok
	})
	if len(removed) > 0 {
		e.viewDirty = true
	}
}

// refreshGit re-tags the tree at most once per debounce window, and only
// when something happened since the last query.
func (e *Engine) refreshGit(force bool) {
	if e.git == nil || !e.gitDirty {
		return
	}
	if !force && e.now().Sub(e.lastGit) < e.settings.Filetree.Debounce() {
		return
	}
	e.gitDirty = false
	e.lastGit = e.now()

	st, ok := e.git.Status(e.ctx)
	if !ok {
		if e.gitStatus != nil {
			e.tree.ClearGitStatus()
			e.gitStatus = nil
			e.head = git.Status{}
			e.viewDirty = true
		}
		return
	}
	files := st.Files
	e.gitStatus = files
	e.head = *st
	e.head.Files = nil
	if e.gitFilter {
		e.deepScan()
	}
	e.tree.SetGitStatus(files)
	e.viewDirty = true
}

// deepScan lists every directory so filters can reach entries below
// collapsed ones.
func (e *Engine) deepScan() {
	if err := e.tree.ScanAll(); err != nil {
		e.log.WithError(err).Warn("deep scan")
	}
	e.touchTree()
}

// GitEnabled reports whether status decoration is active.
func (e *Engine) GitEnabled() bool {
	return e.git != nil && e.git.Enabled()
}

// Diff returns the working tree diff of path.
func (e *Engine) Diff(ctx context.Context, path string) (string, error) {
	if e.git == nil {
		return "", git.ErrNotRepo
	}
	return e.git.Diff(ctx, path)
}

func (e *Engine) touchTree() {
	e.candidatesStale = true
	e.viewDirty = true
}

func (e *Engine) addLog(level logrus.Level, source, text string) {
	e.events.add(LogEntry{Time: e.now(), Level: level, Source: source, Text: text})
}

func (e *Engine) info(source, text string) {
	e.addLog(logrus.InfoLevel, source, text)
}

func (e *Engine) warn(source, text string) {
	e.addLog(logrus.WarnLevel, source, text)
	e.log.WithField("source", source).Warn(text)
}

func (e *Engine) errorf(source, format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	e.addLog(logrus.ErrorLevel, source, text)
	e.log.WithField("source", source).Error(text)
}

// selectedNode returns the node under the cursor.
func (e *Engine) selectedNode() (tree.Node, bool) {
	if e.selected == "" {
		return tree.Node{}, false
	}
	id, ok := e.tree.Lookup(e.selected)
	if !ok {
		return tree.Node{}, false
	}
	return e.tree.Node(id), true
}

// targetDir is the selected directory, the selected file's directory, or
// the root.
func (e *Engine) targetDir() string {
	n, ok := e.selectedNode()
	if !ok {
		return e.root
	}
	if n.IsDir() {
		return n.Path
	}
	return filepath.Dir(n.Path)
}

// reveal expands every ancestor of path so that it becomes visible and
// selects it.
func (e *Engine) reveal(path string) bool {
	path = filepath.Clean(path)
	rel := e.tree.Rel(path)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return false
	}
	parts := strings.Split(rel, string(filepath.Separator))
	dir := e.root
	for i, part := range parts {
		dir = filepath.Join(dir, part)
		if _, ok := e.tree.Lookup(dir); !ok {
			return false
		}
		if i < len(parts)-1 {
			if err := e.tree.Expand(dir); err != nil {
				return false
			}
		}
	}
	e.touchTree()
	e.selected = path
	return true
}
