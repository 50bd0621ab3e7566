// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logsink

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// RotatingFile writes one line per event to path, starting a fresh
// numbered file once the current one reaches maxBytes.
type RotatingFile struct {
	mu       sync.Mutex
	path     string
	maxBytes int64

	f   *os.File
	cur int64
	gen int
}

// NewRotatingFile opens path (creating it if absent) and rotates to
// path.<gen> before a write would take it past maxBytes.
func NewRotatingFile(path string, maxBytes int64) (*RotatingFile, error) {
	r := &RotatingFile{path: path, maxBytes: maxBytes}
	if err := r.openCurrent(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RotatingFile) openCurrent() error {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("logsink: could not open %q: %w", r.path, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("logsink: could not stat %q: %w", r.path, err)
	}
	r.f = f
	r.cur = st.Size()
	return nil
}

func (r *RotatingFile) Emit(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := []byte(fmt.Sprintf("%s [%s] %s: %v\n", e.Timestamp.Format(time.RFC3339), e.Level, e.SourceName, e.Msg))
	if r.cur+int64(len(line)) > r.maxBytes {
		if err := r.rotate(); err != nil {
			return err
		}
	}
	n, err := r.f.Write(line)
	r.cur += int64(n)
	if err != nil {
		return fmt.Errorf("logsink: could not write event: %w", err)
	}
	return nil
}

func (r *RotatingFile) rotate() error {
	if err := r.f.Close(); err != nil {
		return fmt.Errorf("logsink: could not close %q: %w", r.path, err)
	}
	r.gen++
	rotated := fmt.Sprintf("%s.%d", r.path, r.gen)
	if err := os.Rename(r.path, rotated); err != nil {
		return fmt.Errorf("logsink: could not rotate %q: %w", r.path, err)
	}
	return r.openCurrent()
}

func (r *RotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.f.Close()
}

// TimeRotatingFile writes to a new file named path.<window-start> each
// time the wall clock crosses into a new window of the given period.
type TimeRotatingFile struct {
	mu     sync.Mutex
	path   string
	period time.Duration

	f          *os.File
	windowFrom time.Time
}

// NewTimeRotatingFile opens the file for the window containing now.
func NewTimeRotatingFile(path string, period time.Duration) (*TimeRotatingFile, error) {
	t := &TimeRotatingFile{path: path, period: period}
	if err := t.openWindow(time.Now()); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *TimeRotatingFile) openWindow(at time.Time) error {
	t.windowFrom = at.Truncate(t.period)
	name := fmt.Sprintf("%s.%d", t.path, t.windowFrom.Unix())
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("logsink: could not open %q: %w", name, err)
	}
	t.f = f
	return nil
}

func (t *TimeRotatingFile) Emit(e Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e.Timestamp.Truncate(t.period).After(t.windowFrom) {
		if err := t.f.Close(); err != nil {
			return fmt.Errorf("logsink: could not close previous window file: %w", err)
		}
		if err := t.openWindow(e.Timestamp); err != nil {
			return err
		}
	}

	line := fmt.Sprintf("%s [%s] %s: %v\n", e.Timestamp.Format(time.RFC3339), e.Level, e.SourceName, e.Msg)
	if _, err := t.f.WriteString(line); err != nil {
		return fmt.Errorf("logsink: could not write event: %w", err)
	}
	return nil
}

func (t *TimeRotatingFile) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.f.Close()
}
