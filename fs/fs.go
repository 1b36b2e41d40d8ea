// Copyright 2023 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package fs provides the filesystem helpers used by the generator.
// All functions work on an afero.Fs so callers can use the OS filesystem or
// an in-memory one.
package fs

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/terramate-io/extendgen/errors"
)

// Modes used when creating files and directories.
const (
	DirMode  os.FileMode = 0755
	FileMode os.FileMode = 0644
)

// ErrFileExists indicates an exclusive file creation found an existing file.
const ErrFileExists errors.Kind = "file already exists"

// ListFiles returns the names of the regular files of dir whose name matches
// pattern. A nil pattern matches every file. Symlinks are followed, so a link
// to a regular file is listed. Dotfiles are ignored. Results are sorted.
func ListFiles(fs afero.Fs, dir string, pattern glob.Glob) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, errors.E(err, "reading dir %s", dir)
	}

	var files []string
	for _, entry := range entries {
		fname := entry.Name()
		if fname == "" || fname[0] == '.' {
			continue
		}
		mode := entry.Mode()
		if mode&os.ModeSymlink != 0 {
			if !IsFile(fs, filepath.Join(dir, fname)) {
				continue
			}
		} else if !mode.IsRegular() {
			continue
		}
		if pattern != nil && !pattern.Match(fname) {
			continue
		}
		files = append(files, fname)
	}
	sort.Strings(files)
	return files, nil
}

// IsFile tells if path exists and is a regular file.
func IsFile(fs afero.Fs, path string) bool {
	st, err := fs.Stat(path)
	if err != nil {
		return false
	}
	return st.Mode().IsRegular()
}

// IsDir tells if path exists and is a directory.
func IsDir(fs afero.Fs, path string) bool {
	st, err := fs.Stat(path)
	if err != nil {
		return false
	}
	return st.IsDir()
}

// Exists tells if something exists at path, whatever its type.
func Exists(fs afero.Fs, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}

// WriteNewFile creates the file at path with the given data.
// The parent directory is created if needed. It never overwrites:
// if the file already exists an error of kind ErrFileExists is returned and
// the existing file is left untouched.
func WriteNewFile(fs afero.Fs, path string, data []byte) (err error) {
	if err := fs.MkdirAll(filepath.Dir(path), DirMode); err != nil {
		return errors.E(err, "creating dir %s", filepath.Dir(path))
	}

	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, FileMode)
	if err != nil {
		if stderrors.Is(err, os.ErrExist) {
			return errors.E(ErrFileExists, err, path)
		}
		return errors.E(err, "creating file %s", path)
	}

	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Warn().
				Str("file", path).
				Err(cerr).
				Msg("closing file")
			if err == nil {
				err = errors.E(cerr, "closing file %s", path)
			}
		}
	}()

	if _, err := f.Write(data); err != nil {
		return errors.E(err, "writing file %s", path)
	}
	return nil
}

// TrimExt returns fname without its last extension.
// A name without extension is returned unchanged, and a leading dot is not
// considered an extension separator.
func TrimExt(fname string) string {
	ext := filepath.Ext(fname)
	if ext == "" || ext == fname {
		return fname
	}
	return fname[:len(fname)-len(ext)]
}
