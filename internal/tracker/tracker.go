// Package tracker edits checklist items in a markdown tracking document.
//
// A task line is a list item with a checkbox that mentions the task id as a
// whole token:
//
//   - [ ] TASK-12 Write storyline view
//   - [~] TASK-13 Wire agent cache
//
// Update rewrites the checkbox of every matching line and refreshes a
// "Last updated:" line when the document has one.
package tracker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	ErrUnknownStatus = errors.New("unknown status")
	ErrTaskNotFound  = errors.New("task not found")
	ErrEmptyTaskID   = errors.New("task id is required")
)

// Status is a checklist state
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusBlocked    Status = "blocked"
	StatusDone       Status = "done"
)

var aliases = map[string]Status{
	"todo":        StatusTodo,
	"pending":     StatusTodo,
	"in-progress": StatusInProgress,
	"wip":         StatusInProgress,
	"blocked":     StatusBlocked,
	"done":        StatusDone,
	"complete":    StatusDone,
}

// ParseStatus resolves a keyword or alias, ignoring case
func ParseStatus(s string) (Status, error) {
	st, ok := aliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w %q (want todo, in-progress, blocked or done)", ErrUnknownStatus, s)
	}
	return st, nil
}

// Marker returns the checkbox character for the status
func (s Status) Marker() byte {
	switch s {
	case StatusInProgress:
		return '~'
	case StatusBlocked:
		return '!'
	case StatusDone:
		return 'x'
	}
	return ' '
}

const dateLayout = "2006-01-02"

var (
	checklistLine = regexp.MustCompile(`^(\s*(?:[-*+]|\d+[.)])\s+\[)[ xX~!](\].*)$`)
	lastUpdated   = regexp.MustCompile(`^(\s*[*_]{0,2}Last updated:[*_]{0,2}\s*)(.*)$`)
)

// Result describes an applied change
type Result struct {
	Lines   []int
	Status  Status
	Updated string
}

// Apply returns content with the task's checkbox set to status. Line
// endings are preserved. The input is not modified.
func Apply(content []byte, taskID string, status Status, today time.Time) ([]byte, *Result, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return nil, nil, ErrEmptyTaskID
	}
	if _, ok := aliases[string(status)]; !ok {
		return nil, nil, fmt.Errorf("%w %q", ErrUnknownStatus, status)
	}

	token := regexp.MustCompile(`(^|[^A-Za-z0-9_-])` + regexp.QuoteMeta(taskID) + `($|[^A-Za-z0-9_-])`)
	lines := strings.Split(string(content), "\n")
	res := &Result{Status: status}
	dateLine := -1

	for i, line := range lines {
		body := strings.TrimSuffix(line, "\r")
		if m := checklistLine.FindStringSubmatch(body); m != nil && token.MatchString(m[2][1:]) {
			lines[i] = m[1] + string(status.Marker()) + line[len(m[1])+1:]
			res.Lines = append(res.Lines, i+1)
			continue
		}
		if dateLine < 0 && lastUpdated.MatchString(body) {
			dateLine = i
		}
	}

	if len(res.Lines) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}

	if dateLine >= 0 {
		res.Updated = today.Format(dateLayout)
		line := lines[dateLine]
		cr := ""
		if strings.HasSuffix(line, "\r") {
			cr = "\r"
			line = strings.TrimSuffix(line, "\r")
		}
		m := lastUpdated.FindStringSubmatch(line)
		lines[dateLine] = m[1] + res.Updated + cr
	}

	return []byte(strings.Join(lines, "\n")), res, nil
}

// Update rewrites the file at path. On any error the file is left as it was.
func Update(path, taskID string, status Status, today time.Time) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	out, res, err := Apply(content, taskID, status, today)
	if err != nil {
		return nil, err
	}
	if err := writeAtomic(path, out, info.Mode().Perm()); err != nil {
		return nil, err
	}
	return res, nil
}

// writeAtomic writes to a temp file in the same directory and renames it
// over path.
func writeAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	defer func() {
		if name != "" {
			_ = os.Remove(name)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(name, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(name, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	name = ""
	return nil
}
