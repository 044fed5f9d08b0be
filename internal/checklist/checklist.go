// Package checklist owns the checklist_data.json document: an object
// mapping calendar date (YYYY-MM-DD) to an ordered array of tasks.
//
// Unlike the notes store there is no cached copy: every operation reloads
// the document from disk, mutates it, and rewrites it whole, so it always
// reflects the latest on-disk state. Tasks are addressed externally by
// array index; deleting a task shifts all later indices. Each task also
// carries a generated id that survives reordering, for clients that want
// a stable handle.
package checklist

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"pastebin/internal/storage/fs"
)

var (
	ErrValidation = errors.New("missing data")
	ErrNotFound   = errors.New("invalid task")
)

type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Done      bool   `json:"done"`
	Note      string `json:"note"`
	CreatedAt string `json:"created_at"`
}

// createdAtLayout matches the original timestamp format, leading space
// included: " 03:04 PM Monday January 02".
const createdAtLayout = " 03:04 PM Monday January 02"

type Engine struct {
	path   string
	loc    *time.Location
	locker *fs.Locker
	now    func() time.Time
}

func NewEngine(path string, loc *time.Location) *Engine {
	return &Engine{
		path:   path,
		loc:    loc,
		locker: fs.NewLocker(),
		now:    time.Now,
	}
}

// List returns the tasks recorded for date, empty if none.
func (e *Engine) List(date string) ([]Task, error) {
	data, err := e.load()
	if err != nil {
		return nil, err
	}
	return data[date], nil
}

// Add appends a new undone task to date's list.
func (e *Engine) Add(date, text string) error {
	if date == "" || text == "" {
		return ErrValidation
	}
	return e.locker.Do(e.path, func() error {
		data, err := e.load()
		if err != nil {
			return err
		}
		data[date] = append(data[date], Task{
			ID:        uuid.NewString(),
			Text:      text,
			CreatedAt: e.now().In(e.loc).Format(createdAtLayout),
		})
		return e.save(data)
	})
}

// Toggle flips the done flag of the task at index.
func (e *Engine) Toggle(date string, index int) error {
	return e.mutate(date, index, func(t *Task) {
		t.Done = !t.Done
	})
}

// SetNote overwrites the free-text note of the task at index.
func (e *Engine) SetNote(date string, index int, note string) error {
	return e.mutate(date, index, func(t *Task) {
		t.Note = note
	})
}

// Get returns the task at index.
func (e *Engine) Get(date string, index int) (Task, error) {
	data, err := e.load()
	if err != nil {
		return Task{}, err
	}
	tasks := data[date]
	if index < 0 || index >= len(tasks) {
		return Task{}, ErrNotFound
	}
	return tasks[index], nil
}

// Delete removes the task at index, shifting later tasks down by one.
func (e *Engine) Delete(date string, index int) error {
	return e.locker.Do(e.path, func() error {
		data, err := e.load()
		if err != nil {
			return err
		}
		tasks, ok := data[date]
		if !ok || index < 0 || index >= len(tasks) {
			return ErrNotFound
		}
		data[date] = append(tasks[:index], tasks[index+1:]...)
		return e.save(data)
	})
}

// Undone returns the tasks for date that are not done yet.
func (e *Engine) Undone(date string) ([]Task, error) {
	tasks, err := e.List(date)
	if err != nil {
		return nil, err
	}
	var out []Task
	for _, t := range tasks {
		if !t.Done {
			out = append(out, t)
		}
	}
	return out, nil
}

func (e *Engine) mutate(date string, index int, fn func(*Task)) error {
	return e.locker.Do(e.path, func() error {
		data, err := e.load()
		if err != nil {
			return err
		}
		tasks, ok := data[date]
		if !ok || index < 0 || index >= len(tasks) {
			return ErrNotFound
		}
		fn(&tasks[index])
		data[date] = tasks
		return e.save(data)
	})
}

func (e *Engine) load() (map[string][]Task, error) {
	data := make(map[string][]Task)
	if err := fs.ReadJSONDocument(e.path, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (e *Engine) save(data map[string][]Task) error {
	return fs.WriteJSONDocument(e.path, data)
}
