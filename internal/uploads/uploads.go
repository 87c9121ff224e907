// Package uploads composes the blob store with the album store: it streams
// an out-of-band uploaded payload to object storage and merges the resulting
// public reference into the target record before persisting it.
package uploads

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"albums-service/internal/blob"
	cl "albums-service/pkg/catalog"

	"github.com/pkg/errors"
	"github.com/ryanfowler/uuid"
)

// BlobStore is the object-storage surface the orchestrator needs.
type BlobStore interface {
	NewWriter(object, contentType string) (blob.Writer, error)
	MakePublic(object string) error
	PublicURL(object string) string
}

// AlbumStore is the subset of the album store the orchestrator writes through.
type AlbumStore interface {
	CreateAlbum(ctx context.Context, data cl.Record) (cl.Record, error)
	UpdateAlbum(ctx context.Context, id string, data cl.Record) (cl.Record, error)
	AddTrack(ctx context.Context, id string, track cl.Track) (cl.Record, error)
}

// Service is the upload-attachment orchestrator.
type Service struct {
	Blobs  BlobStore
	Albums AlbumStore
	// MaxBytes bounds the accepted payload size; zero means unbounded.
	MaxBytes int64

	now func() time.Time
}

// New creates an upload service with the given collaborators.
func New(blobs BlobStore, albums AlbumStore, maxBytes int64) *Service {
	return &Service{
		Blobs:    blobs,
		Albums:   albums,
		MaxBytes: maxBytes,
		now:      time.Now,
	}
}

// Upload streams the payload to the blob store and makes it public. A nil
// payload is the no-blob case: it returns (nil, nil) and touches nothing.
// On a streaming error the object is discarded and never becomes public.
func (s *Service) Upload(ctx context.Context, payload []byte, filename, contentType string) (*cl.Attachment, error) {
	if payload == nil {
		return nil, nil
	}
	if s.MaxBytes > 0 && int64(len(payload)) > s.MaxBytes {
		return nil, errors.Wrapf(cl.ErrFileTooLarge, "%d bytes (max %d)", len(payload), s.MaxBytes)
	}

	object, err := s.objectName(filename)
	if err != nil {
		return nil, err
	}

	w, err := s.Blobs.NewWriter(object, contentType)
	if err != nil {
		return nil, &cl.UploadError{Object: object, Err: err}
	}
	if _, err := w.Write(payload); err != nil {
		_ = w.Abort()
		return nil, &cl.UploadError{Object: object, Err: err}
	}
	if err := w.Close(); err != nil {
		return nil, &cl.UploadError{Object: object, Err: err}
	}
	if err := s.Blobs.MakePublic(object); err != nil {
		return nil, &cl.UploadError{Object: object, Err: err}
	}

	return &cl.Attachment{
		ObjectName: object,
		URL:        s.Blobs.PublicURL(object),
	}, nil
}

// CreateAlbum persists a new album, first uploading the optional cover image
// and merging its public URL into the record. Only the derived imageUrl is
// added; caller-supplied fields are never overwritten otherwise.
func (s *Service) CreateAlbum(ctx context.Context, data cl.Record, payload []byte, filename, contentType string) (cl.Record, error) {
	data, err := s.withImage(ctx, data, payload, filename, contentType)
	if err != nil {
		return nil, err
	}
	return s.Albums.CreateAlbum(ctx, data)
}

// UpdateAlbum replaces an existing album, first uploading the optional cover
// image and merging its public URL into the record.
func (s *Service) UpdateAlbum(ctx context.Context, id string, data cl.Record, payload []byte, filename, contentType string) (cl.Record, error) {
	data, err := s.withImage(ctx, data, payload, filename, contentType)
	if err != nil {
		return nil, err
	}
	return s.Albums.UpdateAlbum(ctx, id, data)
}

// AttachTrack uploads a track file and appends a new track referencing it to
// the album. Unlike album covers, the file is required.
func (s *Service) AttachTrack(ctx context.Context, albumID, title string, payload []byte, filename, contentType string) (cl.Record, error) {
	if payload == nil {
		return nil, errors.Wrap(cl.ErrMissingFile, "track upload requires a file")
	}
	att, err := s.Upload(ctx, payload, filename, contentType)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = cl.DefaultTrackTitle
	}
	return s.Albums.AddTrack(ctx, albumID, cl.Track{
		Title:   title,
		FileURL: att.URL,
	})
}

func (s *Service) withImage(ctx context.Context, data cl.Record, payload []byte, filename, contentType string) (cl.Record, error) {
	att, err := s.Upload(ctx, payload, filename, contentType)
	if err != nil {
		return nil, err
	}
	if att == nil {
		return data, nil
	}
	data = data.Clone()
	data["imageUrl"] = att.URL
	return data, nil
}

// objectName builds a name unique per upload attempt: a timestamp prefix plus
// a random component, keeping the original filename for readability.
func (s *Service) objectName(filename string) (string, error) {
	u, err := uuid.NewV4()
	if err != nil {
		return "", errors.Wrap(err, "generate object name")
	}
	return fmt.Sprintf("%d-%s-%s", s.now().UnixNano(), u.String(), sanitizeFilename(filename)), nil
}

func sanitizeFilename(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." {
		return "upload"
	}
	return name
}
