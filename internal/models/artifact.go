package models

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Artifact is a user-supplied file or archive selected for analysis
type Artifact struct {
	Name string
	Size int64

	open func() (io.ReadCloser, error)
}

// ArtifactFromFile describes a file on disk without reading it
func ArtifactFromFile(path string) (*Artifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat artifact: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return &Artifact{
		Name: filepath.Base(path),
		Size: info.Size(),
		open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// ArtifactFromBytes wraps in-memory content
func ArtifactFromBytes(name string, data []byte) *Artifact {
	return &Artifact{
		Name: name,
		Size: int64(len(data)),
		open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// Open returns a reader over the artifact content
func (a *Artifact) Open() (io.ReadCloser, error) {
	if a.open == nil {
		return nil, fmt.Errorf("artifact %q has no content", a.Name)
	}
	return a.open()
}
