package internal

import (
	"context"

	cl "albums-service/pkg/catalog"
)

// AlbumStore is the persistence surface consumed by the HTTP layer.
type AlbumStore interface {
	ListAlbums(ctx context.Context, req cl.ListAlbumsReq) (cl.ListAlbumsRes, error)
	GetAlbum(ctx context.Context, id string) (cl.Record, error)
	CreateAlbum(ctx context.Context, data cl.Record) (cl.Record, error)
	UpdateAlbum(ctx context.Context, id string, data cl.Record) (cl.Record, error)
	DeleteAlbum(ctx context.Context, id string) error
	AddTrack(ctx context.Context, id string, track cl.Track) (cl.Record, error)
}

// Uploads is the upload-attachment surface consumed by the HTTP layer. The
// payload is nil when the request carried no file.
type Uploads interface {
	CreateAlbum(ctx context.Context, data cl.Record, payload []byte, filename, contentType string) (cl.Record, error)
	UpdateAlbum(ctx context.Context, id string, data cl.Record, payload []byte, filename, contentType string) (cl.Record, error)
	AttachTrack(ctx context.Context, albumID, title string, payload []byte, filename, contentType string) (cl.Record, error)
}
