package fs

import (
	"errors"
	"path"
	"strings"
)

var ErrUnsafePath = errors.New("unsafe path")

// SanitizeName validates a single folder or file name supplied by a
// client. Names are used verbatim as directory entries, so anything that
// could escape its directory is rejected.
func SanitizeName(name string) (string, error) {
	if name == "" || strings.ContainsRune(name, 0) {
		return "", ErrUnsafePath
	}
	if strings.ContainsAny(name, "/\\") {
		return "", ErrUnsafePath
	}
	clean := path.Clean(name)
	if clean != name || clean == "." || clean == ".." {
		return "", ErrUnsafePath
	}
	return clean, nil
}
