package utils

import (
	"io/fs"
	"path/filepath"
	"regexp"
)

var whitespace = regexp.MustCompile(`\s+`)

// ReplaceWhitespace replaces each run of whitespace in name with a '-'
func ReplaceWhitespace(name string) string {
	return whitespace.ReplaceAllString(name, "-")
}

// DirSize returns the total size of the regular files under dir
func DirSize(dir string) (int64, error) {
	var size int64
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			size += info.Size()
		}
		return nil
	})
	return size, err
}
