// Package input maps a measurements file into memory read-only.
package input

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Source is a read-only view of a file's bytes.
type Source struct {
	f    *os.File
	data []byte
}

// Open maps the file at path. A zero-length file yields an empty buffer and
// no mapping.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrOpen, path, err)
	}
	if fi.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", ErrOpen, path)
	}

	s := &Source{f: f}
	if size := fi.Size(); size > 0 {
		data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("%w: %s: %w", ErrMap, path, err)
		}
		s.data = data
	}
	return s, nil
}

// Bytes returns the mapped contents. The slice is invalid after Close.
func (s *Source) Bytes() []byte {
	return s.data
}

// Len returns the file size in bytes.
func (s *Source) Len() int {
	return len(s.data)
}

// Close unmaps the data and closes the file. It is safe to call twice.
func (s *Source) Close() error {
	var err error
	if s.data != nil {
		if uerr := unix.Munmap(s.data); uerr != nil {
			err = fmt.Errorf("%w: %w", ErrMap, uerr)
		}
		s.data = nil
	}
	if s.f != nil {
		if cerr := s.f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		s.f = nil
	}
	return err
}
