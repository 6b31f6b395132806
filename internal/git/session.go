package git

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// Session wraps a Provider for the lifetime of one run. The first failed
// query disables decoration for the rest of the session; callers then see
// Enabled() == false and empty results instead of errors.
type Session struct {
	provider Provider
	log      logrus.FieldLogger

	// query serializes provider calls; Diff may run off the UI goroutine
	query sync.Mutex

	mu      sync.Mutex
	enabled bool
	reason  error
}

// NewSession creates a session. A nil provider yields a disabled session.
func NewSession(p Provider, log logrus.FieldLogger) *Session {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Session{provider: p, log: log.WithField("component", "git")}
	s.enabled = p != nil && p.IsRepo()
	if p != nil && !s.enabled {
		s.reason = ErrNotRepo
	}
	return s
}

// Enabled reports whether status decoration is active.
func (s *Session) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Reason returns the error that disabled the session, if any.
func (s *Session) Reason() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

func (s *Session) disable(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return
	}
	s.enabled = false
	s.reason = err
	s.log.WithError(err).Warn("git status disabled for this session")
}

// Status queries the provider and returns a copy of the result with
// Files keyed by absolute path. ok is false when the session is disabled.
func (s *Session) Status(ctx context.Context) (*Status, bool) {
	if !s.Enabled() {
		return nil, false
	}
	s.query.Lock()
	st, err := s.provider.GetStatus(ctx)
	s.query.Unlock()
	if err != nil {
		if ctx.Err() != nil {
			return nil, false
		}
		s.disable(err)
		return nil, false
	}

	out := *st
	out.Files = make(map[string]FileStatus, len(st.Files))
	for rel, fs := range st.Files {
		abs := filepath.Join(st.Root, rel)
		fs.Path = abs
		out.Files[abs] = fs
	}
	return &out, true
}

// Diff returns the diff of an absolute path against the index. git
// accepts absolute pathspecs inside the worktree, so no conversion is
// needed. Errors do not disable the session.
func (s *Session) Diff(ctx context.Context, path string) (string, error) {
	if !s.Enabled() {
		return "", ErrNotRepo
	}
	s.query.Lock()
	defer s.query.Unlock()
	return s.provider.GetDiff(ctx, path)
}
