package imaging

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// DirectorySource yields the image files of one directory as frames, in
// lexical file-name order. Files that fail to decode surface as errors from
// Next without ending the sequence; io.EOF is returned after the last file.
type DirectorySource struct {
	paths []string
	next  int
}

// NewDirectorySource lists the image files of dir. Subdirectories and files
// with unknown extensions are skipped.
func NewDirectorySource(dir string) (*DirectorySource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !isImageFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	return &DirectorySource{paths: paths}, nil
}

// Len returns the number of frames the source will offer.
func (s *DirectorySource) Len() int {
	return len(s.paths)
}

// Path returns the file behind the most recently returned frame, or "" if
// Next has not been called.
func (s *DirectorySource) Path() string {
	if s.next == 0 {
		return ""
	}
	return s.paths[s.next-1]
}

// Next decodes the next frame.
func (s *DirectorySource) Next() (image.Image, error) {
	if s.next >= len(s.paths) {
		return nil, io.EOF
	}
	path := s.paths[s.next]
	s.next++
	return decodeFile(path)
}

// StaticSource replays one frame a fixed number of times. It stands in for
// a camera in tests and benchmarks.
type StaticSource struct {
	Frame image.Image
	Count int

	served int
}

// Next returns Frame until Count frames have been served.
func (s *StaticSource) Next() (image.Image, error) {
	if s.served >= s.Count {
		return nil, io.EOF
	}
	s.served++
	return s.Frame, nil
}
