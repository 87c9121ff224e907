package mock

import (
	"context"

	cl "albums-service/pkg/catalog"
)

// Uploads implements the internal.Uploads interface for testing.
type Uploads struct {
	CreateAlbumFn func(ctx context.Context, data cl.Record, payload []byte, filename, contentType string) (cl.Record, error)
	UpdateAlbumFn func(ctx context.Context, id string, data cl.Record, payload []byte, filename, contentType string) (cl.Record, error)
	AttachTrackFn func(ctx context.Context, albumID, title string, payload []byte, filename, contentType string) (cl.Record, error)
}

// CreateAlbum proxies the request to the CreateAlbumFn that's injected when
// the mock service is created.
func (u *Uploads) CreateAlbum(ctx context.Context, data cl.Record, payload []byte, filename, contentType string) (cl.Record, error) {
	return u.CreateAlbumFn(ctx, data, payload, filename, contentType)
}

// UpdateAlbum proxies the request to the UpdateAlbumFn that's injected when
// the mock service is created.
func (u *Uploads) UpdateAlbum(ctx context.Context, id string, data cl.Record, payload []byte, filename, contentType string) (cl.Record, error) {
	return u.UpdateAlbumFn(ctx, id, data, payload, filename, contentType)
}

// AttachTrack proxies the request to the AttachTrackFn that's injected when
// the mock service is created.
func (u *Uploads) AttachTrack(ctx context.Context, albumID, title string, payload []byte, filename, contentType string) (cl.Record, error) {
	return u.AttachTrackFn(ctx, albumID, title, payload, filename, contentType)
}
