// Package blob is the client for the object-blob store holding uploaded
// media. Objects are streamed into a staging area and become publicly
// resolvable only after MakePublic moves them into the bucket.
package blob

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const stagingDirName = ".staging"

const metaSuffix = ".meta.json"

// Config holds the bucket location and the public root that references are
// derived from.
type Config struct {
	// Bucket is the object container name; it becomes a path segment of
	// every public URL.
	Bucket string
	// Dir is the local root directory holding the bucket.
	Dir string
	// StorageRoot is the fixed public root, e.g. "https://storage.example.com".
	StorageRoot string
}

// Writer streams one object into the store. Close finalizes the staged
// object; Abort discards it. A staged object is not publicly visible until
// Store.MakePublic is called with its name.
type Writer interface {
	io.Writer
	Close() error
	Abort() error
}

// Store is a filesystem-backed object store addressed by object name.
type Store struct {
	bucket      string
	publicDir   string
	stagingDir  string
	storageRoot string
}

// New creates the bucket and staging directories if needed.
func New(c Config) (*Store, error) {
	if c.Bucket == "" {
		return nil, errors.New("blob: bucket must be provided")
	}
	if c.Dir == "" {
		return nil, errors.New("blob: dir must be provided")
	}
	if c.StorageRoot == "" {
		return nil, errors.New("blob: storage root must be provided")
	}
	s := &Store{
		bucket:      c.Bucket,
		publicDir:   filepath.Join(c.Dir, c.Bucket),
		stagingDir:  filepath.Join(c.Dir, stagingDirName),
		storageRoot: strings.TrimRight(c.StorageRoot, "/"),
	}
	if err := os.MkdirAll(s.publicDir, 0o750); err != nil {
		return nil, errors.Wrap(err, "create bucket directory")
	}
	if err := os.MkdirAll(s.stagingDir, 0o750); err != nil {
		return nil, errors.Wrap(err, "create staging directory")
	}
	return s, nil
}

// NewWriter opens a streaming writer for the named object. The name must be
// a bare object name, not a path.
func (s *Store) NewWriter(object, contentType string) (Writer, error) {
	if err := validateObjectName(object); err != nil {
		return nil, err
	}
	f, err := os.CreateTemp(s.stagingDir, "*.tmp")
	if err != nil {
		return nil, errors.Wrap(err, "create staging file")
	}
	return &fileWriter{
		store:       s,
		object:      object,
		contentType: contentType,
		tmpPath:     f.Name(),
		file:        f,
	}, nil
}

// MakePublic moves a staged object into the bucket, making its public URL
// resolvable. The URL itself is already known before this step; it only
// starts working once MakePublic returns.
func (s *Store) MakePublic(object string) error {
	if err := validateObjectName(object); err != nil {
		return err
	}
	staged := filepath.Join(s.stagingDir, object)
	if err := os.Rename(staged, filepath.Join(s.publicDir, object)); err != nil {
		return errors.Wrapf(err, "publish object %s", object)
	}
	if err := os.Rename(staged+metaSuffix, filepath.Join(s.publicDir, object+metaSuffix)); err != nil {
		return errors.Wrapf(err, "publish metadata of object %s", object)
	}
	return nil
}

// PublicURL returns the public reference for an object name. It is derived
// from the storage root, the bucket and the name alone; no I/O happens here.
func (s *Store) PublicURL(object string) string {
	return s.storageRoot + "/" + s.bucket + "/" + object
}

func validateObjectName(object string) error {
	if object == "" {
		return errors.New("blob: object name must be provided")
	}
	if strings.ContainsAny(object, `/\`) || strings.Contains(object, "..") {
		return errors.Errorf("blob: invalid object name %q", object)
	}
	return nil
}

type objectMeta struct {
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

type fileWriter struct {
	store       *Store
	object      string
	contentType string
	tmpPath     string
	file        *os.File // nil after Close or Abort
	size        int64
}

func (w *fileWriter) Write(p []byte) (int, error) {
	if w.file == nil {
		return 0, os.ErrClosed
	}
	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

// Close finalizes the staged object and writes its metadata sidecar. The
// object stays in staging until MakePublic.
func (w *fileWriter) Close() error {
	if w.file == nil {
		return os.ErrClosed
	}
	err := w.file.Close()
	w.file = nil
	if err != nil {
		_ = os.Remove(w.tmpPath)
		return errors.Wrap(err, "close staging file")
	}

	staged := filepath.Join(w.store.stagingDir, w.object)
	meta, err := json.Marshal(objectMeta{ContentType: w.contentType, Size: w.size})
	if err != nil {
		_ = os.Remove(w.tmpPath)
		return errors.Wrap(err, "marshal object metadata")
	}
	if err := os.WriteFile(staged+metaSuffix, meta, 0o640); err != nil {
		_ = os.Remove(w.tmpPath)
		return errors.Wrap(err, "write object metadata")
	}
	if err := os.Rename(w.tmpPath, staged); err != nil {
		_ = os.Remove(staged + metaSuffix)
		_ = os.Remove(w.tmpPath)
		return errors.Wrapf(err, "stage object %s", w.object)
	}
	return nil
}

// Abort discards the partially written object.
func (w *fileWriter) Abort() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	if rmErr := os.Remove(w.tmpPath); err == nil {
		err = rmErr
	}
	return err
}
