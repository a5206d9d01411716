// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagfile

import (
	"context"
	"os"

	"github.com/pkg/errors"
)

// Source is a random-access byte provider for a bag file. It is the one
// external collaborator this package does not implement itself: callers
// may back it with an *os.File, a memory-mapped region, a network range
// request, or anything else capable of reporting its length and
// returning an arbitrary byte range.
type Source interface {
	// Length returns the total size of the underlying file, in bytes.
	Length(ctx context.Context) (int64, error)

	// ReadAt returns the length bytes starting at offset. It must return
	// exactly length bytes or an error; short reads are not valid.
	ReadAt(ctx context.Context, offset int64, length int64) ([]byte, error)
}

// FileSource is a convenience Source backed by an *os.File.
type FileSource struct {
	f *os.File
}

// NewFileSource opens path and returns a Source backed by it.
func NewFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening bag file")
	}
	return &FileSource{f: f}, nil
}

// Close closes the underlying file.
func (fs *FileSource) Close() error { return fs.f.Close() }

// Length implements Source.
func (fs *FileSource) Length(ctx context.Context) (int64, error) {
	st, err := fs.f.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "statting bag file")
	}
	return st.Size(), nil
}

// ReadAt implements Source.
func (fs *FileSource) ReadAt(ctx context.Context, offset int64, length int64) ([]byte, error) {
	buf := make([]byte, length)
	if _, err := fs.f.ReadAt(buf, offset); err != nil {
		return nil, errors.Wrapf(err, "reading %d bytes at offset %d", length, offset)
	}
	return buf, nil
}
