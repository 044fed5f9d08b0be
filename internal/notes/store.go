// Package notes owns the notes.json document: a map of note key to raw
// text content. Keys are either "<title>" or "<folder>/<title>"; a bare
// "<folder>/" key with empty content marks an otherwise-empty folder.
//
// The document is read once at startup and held in memory; every mutation
// rewrites the whole file. Member order is insertion order and is
// semantic: the home page lists notes newest-last-first, so the store
// keeps an explicit key sequence alongside the map.
package notes

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"pastebin/internal/storage/fs"
)

type Note struct {
	Key     string
	Content string
}

type Store struct {
	path string

	mu    sync.Mutex
	keys  []string
	notes map[string]string
}

// Open loads the document at path. A missing or malformed file yields an
// empty store; only filesystem errors other than absence are reported.
func Open(path string) (*Store, error) {
	s := &Store{path: path, notes: make(map[string]string)}
	doc, err := readOrdered(path)
	if err != nil {
		return nil, err
	}
	for _, m := range doc {
		s.keys = append(s.keys, m.key)
		s.notes[m.key] = m.value
	}
	return s, nil
}

// Get returns the stored content and whether the key exists at all.
// Callers that mirror the original view semantics additionally treat
// empty content as absent.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.notes[key]
	return content, ok
}

// All returns every note in insertion order.
func (s *Store) All() []Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Note, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, Note{Key: k, Content: s.notes[k]})
	}
	return out
}

// NotesIn returns the notes whose key lives under folder, in insertion
// order. The folder placeholder key itself is included.
func (s *Store) NotesIn(folder string) []Note {
	prefix := folder + "/"
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Note
	for _, k := range s.keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, Note{Key: k, Content: s.notes[k]})
		}
	}
	return out
}

// Folders returns the sorted set of folder names derived from key
// prefixes.
func (s *Store) Folders() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{})
	for _, k := range s.keys {
		if i := strings.Index(k, "/"); i > 0 {
			seen[k[:i]] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Save creates or overwrites a note. An empty title synthesizes
// "Untitled - <today> (N)" with N incremented until the key is unique
// within the folder scope. The resulting key is returned.
func (s *Store) Save(folder, title, content string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if title == "" {
		base := "Untitled - " + time.Now().Format("2006-01-02")
		for n := 1; ; n++ {
			title = fmt.Sprintf("%s (%d)", base, n)
			if _, exists := s.notes[s.scopedKey(folder, title)]; !exists {
				break
			}
		}
	}
	key := s.scopedKey(folder, title)
	s.setLocked(key, content)
	return key, s.persistLocked()
}

// Update overwrites the content of an existing key. Returns false without
// touching disk when the key is absent.
func (s *Store) Update(key, content string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[key]; !ok {
		return false, nil
	}
	s.notes[key] = content
	return true, s.persistLocked()
}

// Delete removes a single note. Deleting an absent key is a no-op.
func (s *Store) Delete(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[key]; !ok {
		return false, nil
	}
	s.removeLocked(key)
	return true, s.persistLocked()
}

// CreateFolder inserts the next free "Folder N" placeholder and returns
// the folder name.
func (s *Store) CreateFolder() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 1
	for {
		if _, exists := s.notes[fmt.Sprintf("Folder %d/", n)]; !exists {
			break
		}
		n++
	}
	name := fmt.Sprintf("Folder %d", n)
	s.setLocked(name+"/", "")
	return name, s.persistLocked()
}

// RenameFolder rewrites every "<old>/"-prefixed key to "<new>/". The bare
// placeholder "<old>/" is dropped rather than renamed. Returns false when
// newName is blank or a placeholder for newName already exists.
func (s *Store) RenameFolder(oldName, newName string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if newName == "" {
		return false, nil
	}
	if _, exists := s.notes[newName+"/"]; exists {
		return false, nil
	}

	oldPrefix := oldName + "/"
	keys := make([]string, 0, len(s.keys))
	renamed := make(map[string]string, len(s.notes))
	for _, k := range s.keys {
		if k == oldPrefix {
			continue
		}
		nk := k
		if strings.HasPrefix(k, oldPrefix) {
			nk = newName + "/" + strings.TrimPrefix(k, oldPrefix)
		}
		// A renamed key may collide with one already in the destination
		// folder; the earlier key keeps its position and the later
		// content wins, so keys stay unique.
		if _, seen := renamed[nk]; !seen {
			keys = append(keys, nk)
		}
		renamed[nk] = s.notes[k]
	}
	s.keys = keys
	s.notes = renamed
	return true, s.persistLocked()
}

// DeleteFolder removes every key under the folder, placeholder included.
// The uploads directory of the same name is deliberately left alone.
func (s *Store) DeleteFolder(folder string) error {
	prefix := folder + "/"
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := s.keys[:0]
	for _, k := range s.keys {
		if strings.HasPrefix(k, prefix) {
			delete(s.notes, k)
			continue
		}
		keys = append(keys, k)
	}
	s.keys = keys
	return s.persistLocked()
}

func (s *Store) scopedKey(folder, title string) string {
	if folder != "" {
		return folder + "/" + title
	}
	return title
}

func (s *Store) setLocked(key, content string) {
	if _, ok := s.notes[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.notes[key] = content
}

func (s *Store) removeLocked(key string) {
	delete(s.notes, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			return
		}
	}
}

func (s *Store) persistLocked() error {
	doc := make([]member, 0, len(s.keys))
	for _, k := range s.keys {
		doc = append(doc, member{key: k, value: s.notes[k]})
	}
	data, err := encodeOrdered(doc)
	if err != nil {
		return err
	}
	return fs.WriteFileAtomic(s.path, data, 0o644)
}
