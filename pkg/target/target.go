// Package target owns the on-disk mutation of a single file being
// rewritten: the original-content snapshot, whole-file overwrites, and
// restoration when a rewrite is abandoned.
package target

import (
	"context"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// File is one file under rewrite. The original content is captured once,
// when the file is opened, and never changes afterwards; Restore puts it
// back byte-for-byte.
type File struct {
	path     string
	original []byte
	mode     fs.FileMode
}

// Open reads the file and captures its snapshot. Every file is opened
// exactly once per run, before the first attempt touches it.
func Open(ctx context.Context, path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Errorf("stating target file: %w", err)
	}
	if info.IsDir() {
		return nil, errors.Errorf("target %s is a directory", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading target file: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Int("bytes", len(content)).Msg("captured original content")

	return &File{
		path:     path,
		original: content,
		mode:     info.Mode().Perm(),
	}, nil
}

// Path returns the file's path.
func (f *File) Path() string {
	return f.path
}

// Original returns the snapshot taken at Open.
func (f *File) Original() string {
	return string(f.original)
}

// Write overwrites the file with new content, keeping its original
// permissions. Writes are whole-file, never partial patches.
func (f *File) Write(ctx context.Context, content string) error {
	if err := os.WriteFile(f.path, []byte(content), f.mode); err != nil {
		return errors.Errorf("writing target file: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("path", f.path).Int("bytes", len(content)).Msg("wrote target file")
	return nil
}

// ReadBack re-reads the current on-disk content. After a rejected attempt
// this is what seeds the next prompt.
func (f *File) ReadBack(ctx context.Context) (string, error) {
	content, err := os.ReadFile(f.path)
	if err != nil {
		return "", errors.Errorf("re-reading target file: %w", err)
	}
	return string(content), nil
}

// Restore writes the original snapshot back to disk.
func (f *File) Restore(ctx context.Context) error {
	if err := os.WriteFile(f.path, f.original, f.mode); err != nil {
		return errors.Errorf("restoring target file: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("path", f.path).Msg("restored original content")
	return nil
}
