package engine

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultLogCapacity bounds the event log.
const DefaultLogCapacity = 500

// LogEntry is one line of the user-visible event log.
type LogEntry struct {
	Seq    uint64
	Time   time.Time
	Level  logrus.Level
	Source string
	Text   string
}

func (e LogEntry) String() string {
	if e.Source == "" {
		return e.Text
	}
	return fmt.Sprintf("[%s] %s", e.Source, e.Text)
}

// eventLog is a fixed-size ring of entries, oldest dropped first.
type eventLog struct {
	entries []LogEntry
	start   int
	size    int
	seq     uint64
}

func newEventLog(capacity int) *eventLog {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &eventLog{entries: make([]LogEntry, capacity)}
}

func (l *eventLog) add(e LogEntry) {
	l.seq++
	e.Seq = l.seq
	idx := (l.start + l.size) % len(l.entries)
	l.entries[idx] = e
	if l.size < len(l.entries) {
		l.size++
	} else {
		l.start = (l.start + 1) % len(l.entries)
	}
}

// list returns the entries oldest first.
func (l *eventLog) list() []LogEntry {
	out := make([]LogEntry, l.size)
	for i := 0; i < l.size; i++ {
		out[i] = l.entries[(l.start+i)%len(l.entries)]
	}
	return out
}
