package records

import (
	"context"
	"strconv"

	"albums-service/internal/docstore"
	cl "albums-service/pkg/catalog"

	"github.com/pkg/errors"
)

// Client is the document-store surface the album store needs.
type Client interface {
	Put(ctx context.Context, key docstore.Key, fields []docstore.Field) (docstore.Key, error)
	Get(ctx context.Context, key docstore.Key) (docstore.Entity, error)
	Delete(ctx context.Context, key docstore.Key) error
	Run(ctx context.Context, q docstore.Query) ([]docstore.Entity, string, bool, error)
	Modify(ctx context.Context, key docstore.Key, fn func([]docstore.Field) ([]docstore.Field, error)) ([]docstore.Field, error)
}

// nonIndexedAlbumFields are persisted but excluded from ordered queries.
var nonIndexedAlbumFields = []string{"imageUrl", "tracks"}

const defaultPageSize = 10

// Store owns identity assignment and CRUD for album records.
type Store struct {
	db           Client
	defaultLimit int
}

// New creates an album store on top of the given document-store client.
// defaultLimit is the page size used when a listing does not request one.
func New(db Client, defaultLimit int) *Store {
	if defaultLimit <= 0 {
		defaultLimit = defaultPageSize
	}
	return &Store{db: db, defaultLimit: defaultLimit}
}

// CreateAlbum persists a new album, assigning a fresh identity.
func (s *Store) CreateAlbum(ctx context.Context, data cl.Record) (cl.Record, error) {
	return s.UpdateAlbum(ctx, "", data)
}

// GetAlbum loads a single album by its identity.
func (s *Store) GetAlbum(ctx context.Context, id string) (cl.Record, error) {
	key, err := albumKey(id)
	if err != nil {
		return nil, err
	}
	e, err := s.db.Get(ctx, key)
	if errors.Cause(err) == docstore.ErrNoSuchEntity {
		return nil, errors.Wrapf(cl.ErrNotFound, "album %s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get album %s", id)
	}
	return fromStoreFormat(e), nil
}

// UpdateAlbum writes the album under the given identity, replacing all stored
// fields with exactly those supplied. An empty id allocates a new identity.
// The returned record is the input augmented with the resolved id.
func (s *Store) UpdateAlbum(ctx context.Context, id string, data cl.Record) (cl.Record, error) {
	key := docstore.Key{Kind: cl.Kind}
	if id != "" {
		var err error
		key, err = albumKey(id)
		if err != nil {
			return nil, err
		}
	}

	fields, err := toStoreFormat(data, nonIndexedAlbumFields)
	if err != nil {
		return nil, err
	}

	resolved, err := s.db.Put(ctx, key, fields)
	if errors.Cause(err) == docstore.ErrNoSuchEntity {
		return nil, errors.Wrapf(cl.ErrNotFound, "album %s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "save album %s", id)
	}

	out := data.Clone()
	out["id"] = resolved.ID
	return out, nil
}

// DeleteAlbum removes the album with the given identity.
func (s *Store) DeleteAlbum(ctx context.Context, id string) error {
	key, err := albumKey(id)
	if err != nil {
		return err
	}
	err = s.db.Delete(ctx, key)
	if errors.Cause(err) == docstore.ErrNoSuchEntity {
		return errors.Wrapf(cl.ErrNotFound, "album %s", id)
	}
	if err != nil {
		return errors.Wrapf(err, "delete album %s", id)
	}
	return nil
}

// AddTrack appends one track to the album's embedded track list. A missing
// "tracks" field is treated as empty. The append runs under the store's
// row lock, so two concurrent attachments to the same album cannot drop each
// other's track.
func (s *Store) AddTrack(ctx context.Context, id string, track cl.Track) (cl.Record, error) {
	key, err := albumKey(id)
	if err != nil {
		return nil, err
	}

	fields, err := s.db.Modify(ctx, key, func(fields []docstore.Field) ([]docstore.Field, error) {
		for i, f := range fields {
			if f.Name != "tracks" {
				continue
			}
			list, ok := f.Value.([]interface{})
			if !ok {
				return nil, errors.Wrapf(cl.ErrValidation, "tracks field of album %s is not a list", id)
			}
			fields[i].Value = append(list, trackValue(track))
			return fields, nil
		}
		return append(fields, docstore.Field{
			Name:    "tracks",
			Value:   []interface{}{trackValue(track)},
			NoIndex: true,
		}), nil
	})
	if errors.Cause(err) == docstore.ErrNoSuchEntity {
		return nil, errors.Wrapf(cl.ErrNotFound, "album %s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "add track to album %s", id)
	}

	return fromStoreFormat(docstore.Entity{Key: key, Fields: fields}), nil
}

func trackValue(t cl.Track) map[string]interface{} {
	return map[string]interface{}{
		"title":   t.Title,
		"fileUrl": t.FileURL,
	}
}

func albumKey(id string) (docstore.Key, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return docstore.Key{}, errors.Wrapf(cl.ErrInvalidID, "%q", id)
	}
	return docstore.Key{Kind: cl.Kind, ID: n}, nil
}
