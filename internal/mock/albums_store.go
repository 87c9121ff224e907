package mock

import (
	"context"

	cl "albums-service/pkg/catalog"
)

// AlbumStore implements the internal.AlbumStore interface for testing.
type AlbumStore struct {
	ListAlbumsFn  func(ctx context.Context, req cl.ListAlbumsReq) (cl.ListAlbumsRes, error)
	GetAlbumFn    func(ctx context.Context, id string) (cl.Record, error)
	CreateAlbumFn func(ctx context.Context, data cl.Record) (cl.Record, error)
	UpdateAlbumFn func(ctx context.Context, id string, data cl.Record) (cl.Record, error)
	DeleteAlbumFn func(ctx context.Context, id string) error
	AddTrackFn    func(ctx context.Context, id string, track cl.Track) (cl.Record, error)
}

// ListAlbums proxies the request to the ListAlbumsFn that's injected when
// the mock store is created.
func (s *AlbumStore) ListAlbums(ctx context.Context, req cl.ListAlbumsReq) (cl.ListAlbumsRes, error) {
	return s.ListAlbumsFn(ctx, req)
}

// GetAlbum proxies the request to the GetAlbumFn that's injected when
// the mock store is created.
func (s *AlbumStore) GetAlbum(ctx context.Context, id string) (cl.Record, error) {
	return s.GetAlbumFn(ctx, id)
}

// CreateAlbum proxies the request to the CreateAlbumFn that's injected when
// the mock store is created.
func (s *AlbumStore) CreateAlbum(ctx context.Context, data cl.Record) (cl.Record, error) {
	return s.CreateAlbumFn(ctx, data)
}

// UpdateAlbum proxies the request to the UpdateAlbumFn that's injected when
// the mock store is created.
func (s *AlbumStore) UpdateAlbum(ctx context.Context, id string, data cl.Record) (cl.Record, error) {
	return s.UpdateAlbumFn(ctx, id, data)
}

// DeleteAlbum proxies the request to the DeleteAlbumFn that's injected when
// the mock store is created.
func (s *AlbumStore) DeleteAlbum(ctx context.Context, id string) error {
	return s.DeleteAlbumFn(ctx, id)
}

// AddTrack proxies the request to the AddTrackFn that's injected when
// the mock store is created.
func (s *AlbumStore) AddTrack(ctx context.Context, id string, track cl.Track) (cl.Record, error) {
	return s.AddTrackFn(ctx, id, track)
}
