// Package uploads manages the upload directory tree: one optional
// subdirectory per folder name, files stored verbatim under the name the
// client supplied. There is no metadata beyond filesystem attributes and
// no collision handling; same-name uploads overwrite.
package uploads

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"pastebin/internal/storage/fs"
)

type Dir struct {
	root string
}

func NewDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Dir{root: root}, nil
}

// Path resolves folder/name inside the tree, rejecting names that could
// escape it. folder may be empty for top-level files.
func (d *Dir) Path(folder, name string) (string, error) {
	clean, err := fs.SanitizeName(name)
	if err != nil {
		return "", err
	}
	if folder == "" {
		return filepath.Join(d.root, clean), nil
	}
	cleanFolder, err := fs.SanitizeName(folder)
	if err != nil {
		return "", err
	}
	return filepath.Join(d.root, cleanFolder, clean), nil
}

// List returns the file names under folder, sorted. An absent directory
// yields an empty list. Subdirectories are skipped.
func (d *Dir) List(folder string) ([]string, error) {
	dir := d.root
	if folder != "" {
		clean, err := fs.SanitizeName(folder)
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(d.root, clean)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Save writes the uploaded content under folder/name, creating the folder
// directory as needed. An existing file is overwritten.
func (d *Dir) Save(folder, name string, r io.Reader) error {
	path, err := d.Path(folder, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Remove deletes folder/name. A missing file is a no-op.
func (d *Dir) Remove(folder, name string) error {
	path, err := d.Path(folder, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Rename moves the folder directory from oldName to newName. An absent
// source directory is a no-op.
func (d *Dir) Rename(oldName, newName string) error {
	oldClean, err := fs.SanitizeName(oldName)
	if err != nil {
		return err
	}
	newClean, err := fs.SanitizeName(newName)
	if err != nil {
		return err
	}
	oldPath := filepath.Join(d.root, oldClean)
	if _, err := os.Stat(oldPath); os.IsNotExist(err) {
		return nil
	}
	return os.Rename(oldPath, filepath.Join(d.root, newClean))
}
