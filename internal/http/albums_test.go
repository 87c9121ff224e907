package http

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"albums-service/internal/mock"
	cl "albums-service/pkg/catalog"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	httputils "github.com/twitsprout/tools/http"
	jsonutils "github.com/twitsprout/tools/json"
	tm "github.com/twitsprout/tools/mock"
)

func TestListAlbums(t *testing.T) {
	next := "next-token"
	url := "/v1/albums"
	table := []struct {
		label        string
		url          string
		listAlbumsFn func(ctx context.Context, req cl.ListAlbumsReq) (cl.ListAlbumsRes, error)
		expCode      int
		expRes       interface{}
	}{
		{
			label:   "should fail if the limit is not numeric",
			url:     url + "?limit=ten",
			expCode: http.StatusBadRequest,
		},
		{
			label: "should fail if the page token is invalid",
			url:   url + "?pageToken=bad",
			listAlbumsFn: func(ctx context.Context, req cl.ListAlbumsReq) (cl.ListAlbumsRes, error) {
				return cl.ListAlbumsRes{}, errors.Wrap(cl.ErrInvalidPageToken, "bad")
			},
			expCode: http.StatusBadRequest,
		},
		{
			label: "should fail if listAlbumsFn fails",
			url:   url,
			listAlbumsFn: func(ctx context.Context, req cl.ListAlbumsReq) (cl.ListAlbumsRes, error) {
				return cl.ListAlbumsRes{}, errors.New("internal server error")
			},
			expCode: http.StatusInternalServerError,
			expRes: httputils.JSONErrRes{
				Error: httputils.JSONErr{
					Message: "internal server error",
				},
			},
		},
		{
			label: "should pass the query parameters through",
			url:   url + "?limit=2&order=title&sort=ascending&pageToken=token",
			listAlbumsFn: func(ctx context.Context, req cl.ListAlbumsReq) (cl.ListAlbumsRes, error) {
				exp := cl.ListAlbumsReq{Limit: 2, Order: "title", Ascending: true, PageToken: "token"}
				if !cmp.Equal(req, exp) {
					t.Fatalf("unexpected request received: %s", cmp.Diff(exp, req))
				}
				return cl.ListAlbumsRes{
					Items:         []cl.Record{{"id": float64(1), "title": "Mountains"}},
					NextPageToken: &next,
				}, nil
			},
			expCode: http.StatusOK,
			expRes: cl.ListAlbumsRes{
				Items:         []cl.Record{{"id": float64(1), "title": "Mountains"}},
				NextPageToken: &next,
			},
		},
	}
	for i := 0; i < len(table); i++ {
		ts := table[i]
		t.Run(ts.label, func(t *testing.T) {
			h := Handler{
				AlbumStore: &mock.AlbumStore{
					ListAlbumsFn: ts.listAlbumsFn,
				},
				Logger: tm.NopLogger,
			}

			h.Handler()
			wr := httptest.NewRecorder()
			req := httptest.NewRequest("GET", ts.url, nil)
			h.router.ServeHTTP(wr, req)

			if wr.Code != ts.expCode {
				t.Fatalf("unexpected response code returned: %s", cmp.Diff(ts.expCode, wr.Code))
			}
			if ts.expRes == nil {
				return
			}

			if wr.Code != 200 {
				var res httputils.JSONErrRes
				err := jsonutils.Decode(wr.Body, &res)
				if err != nil {
					t.Fatalf("unexpected error returned from decoding response body: %s", err.Error())
				}

				if !cmp.Equal(res, ts.expRes) {
					t.Fatalf("unexpected response returned: %s", cmp.Diff(res, ts.expRes))
				}
			} else {
				var res cl.ListAlbumsRes
				err := jsonutils.Decode(wr.Body, &res)
				if err != nil {
					t.Fatalf("unexpected error returned from decoding response body: %s", err.Error())
				}

				if !cmp.Equal(res, ts.expRes) {
					t.Fatalf("unexpected response returned: %s", cmp.Diff(res, ts.expRes))
				}
			}
		})
	}
}

func TestGetAlbum(t *testing.T) {
	url := "/v1/album"
	table := []struct {
		label      string
		url        string
		getAlbumFn func(ctx context.Context, id string) (cl.Record, error)
		expCode    int
		expRes     interface{}
	}{
		{
			label: "should fail if the id is invalid",
			url:   url + "/abc",
			getAlbumFn: func(ctx context.Context, id string) (cl.Record, error) {
				return nil, errors.Wrapf(cl.ErrInvalidID, "%q", id)
			},
			expCode: http.StatusBadRequest,
		},
		{
			label: "should fail if getAlbumFn finds no album",
			url:   url + "/9999",
			getAlbumFn: func(ctx context.Context, id string) (cl.Record, error) {
				return nil, errors.Wrapf(cl.ErrNotFound, "album %s", id)
			},
			expCode: http.StatusNotFound,
		},
		{
			label: "should fail if getAlbumFn fails",
			url:   url + "/1234",
			getAlbumFn: func(ctx context.Context, id string) (cl.Record, error) {
				return nil, errors.New("internal server error")
			},
			expCode: http.StatusInternalServerError,
			expRes: httputils.JSONErrRes{
				Error: httputils.JSONErr{
					Message: "internal server error",
				},
			},
		},
		{
			label: "should pass with a valid id",
			url:   url + "/1234",
			getAlbumFn: func(ctx context.Context, id string) (cl.Record, error) {
				if id != "1234" {
					t.Fatalf("unexpected id received: %q", id)
				}
				return cl.Record{"id": float64(1234), "title": "Mountains"}, nil
			},
			expCode: http.StatusOK,
			expRes:  cl.Record{"id": float64(1234), "title": "Mountains"},
		},
	}
	for i := 0; i < len(table); i++ {
		ts := table[i]
		t.Run(ts.label, func(t *testing.T) {
			h := Handler{
				AlbumStore: &mock.AlbumStore{
					GetAlbumFn: ts.getAlbumFn,
				},
				Logger: tm.NopLogger,
			}

			h.Handler()
			wr := httptest.NewRecorder()
			req := httptest.NewRequest("GET", ts.url, nil)
			h.router.ServeHTTP(wr, req)

			if wr.Code != ts.expCode {
				t.Fatalf("unexpected response code returned: %s", cmp.Diff(ts.expCode, wr.Code))
			}
			if ts.expRes == nil {
				return
			}

			if wr.Code != 200 {
				var res httputils.JSONErrRes
				err := jsonutils.Decode(wr.Body, &res)
				if err != nil {
					t.Fatalf("unexpected error returned from decoding response body: %s", err.Error())
				}

				if !cmp.Equal(res, ts.expRes) {
					t.Fatalf("unexpected response returned: %s", cmp.Diff(res, ts.expRes))
				}
			} else {
				var res cl.Record
				err := jsonutils.Decode(wr.Body, &res)
				if err != nil {
					t.Fatalf("unexpected error returned from decoding response body: %s", err.Error())
				}

				if !cmp.Equal(res, ts.expRes) {
					t.Fatalf("unexpected response returned: %s", cmp.Diff(res, ts.expRes))
				}
			}
		})
	}
}

func TestCreateAlbum(t *testing.T) {
	url := "/v1/album"
	table := []struct {
		label         string
		body          string
		contentType   string
		createAlbumFn func(ctx context.Context, data cl.Record, payload []byte, filename, contentType string) (cl.Record, error)
		expCode       int
	}{
		{
			label:       "should fail if there's an error decoding json",
			body:        `{badjson`,
			contentType: "application/json",
			expCode:     http.StatusBadRequest,
		},
		{
			label:       "should fail if createAlbumFn fails",
			body:        `{"title":"Mountains"}`,
			contentType: "application/json",
			createAlbumFn: func(ctx context.Context, data cl.Record, payload []byte, filename, contentType string) (cl.Record, error) {
				return nil, errors.New("internal server error")
			},
			expCode: http.StatusInternalServerError,
		},
		{
			label:       "should pass a json body through without a file",
			body:        `{"title":"Mountains","rating":4.5}`,
			contentType: "application/json",
			createAlbumFn: func(ctx context.Context, data cl.Record, payload []byte, filename, contentType string) (cl.Record, error) {
				exp := cl.Record{"title": "Mountains", "rating": 4.5}
				if !cmp.Equal(data, exp) {
					t.Fatalf("unexpected record received: %s", cmp.Diff(exp, data))
				}
				if payload != nil {
					t.Fatalf("unexpected payload received: %q", payload)
				}
				out := data.Clone()
				out["id"] = 1
				return out, nil
			},
			expCode: http.StatusCreated,
		},
	}
	for i := 0; i < len(table); i++ {
		ts := table[i]
		t.Run(ts.label, func(t *testing.T) {
			h := Handler{
				Uploads: &mock.Uploads{
					CreateAlbumFn: ts.createAlbumFn,
				},
				Logger: tm.NopLogger,
			}

			h.Handler()
			wr := httptest.NewRecorder()
			req := httptest.NewRequest("POST", url, strings.NewReader(ts.body))
			req.Header.Set("Content-Type", ts.contentType)
			h.router.ServeHTTP(wr, req)

			if wr.Code != ts.expCode {
				var res httputils.JSONErrRes
				err := jsonutils.Decode(wr.Body, &res)
				if err != nil {
					t.Fatalf("unexpected error returned from decoding response body: %s", err.Error())
				}

				t.Fatalf("unexpected response code returned: %s %s", cmp.Diff(ts.expCode, wr.Code), res.Error.Message)
			}
		})
	}
}

func TestCreateAlbumMultipart(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("title", "Mountains"); err != nil {
		t.Fatalf("unexpected error writing form field: %s", err.Error())
	}
	if err := mw.WriteField("rating", "4.5"); err != nil {
		t.Fatalf("unexpected error writing form field: %s", err.Error())
	}
	fw, err := mw.CreateFormFile("image", "cover.jpg")
	if err != nil {
		t.Fatalf("unexpected error creating form file: %s", err.Error())
	}
	if _, err := fw.Write([]byte("cover bytes")); err != nil {
		t.Fatalf("unexpected error writing form file: %s", err.Error())
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("unexpected error closing form writer: %s", err.Error())
	}

	h := Handler{
		Uploads: &mock.Uploads{
			CreateAlbumFn: func(ctx context.Context, data cl.Record, payload []byte, filename, contentType string) (cl.Record, error) {
				exp := cl.Record{"title": "Mountains", "rating": "4.5"}
				if !cmp.Equal(data, exp) {
					t.Fatalf("unexpected record received: %s", cmp.Diff(exp, data))
				}
				if string(payload) != "cover bytes" {
					t.Fatalf("unexpected payload received: %q", payload)
				}
				if filename != "cover.jpg" {
					t.Fatalf("unexpected filename received: %q", filename)
				}
				out := data.Clone()
				out["id"] = 1
				return out, nil
			},
		},
		Logger: tm.NopLogger,
	}

	h.Handler()
	wr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/album", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	h.router.ServeHTTP(wr, req)

	if wr.Code != http.StatusCreated {
		var res httputils.JSONErrRes
		err := jsonutils.Decode(wr.Body, &res)
		if err != nil {
			t.Fatalf("unexpected error returned from decoding response body: %s", err.Error())
		}

		t.Fatalf("unexpected response code returned: %s %s", cmp.Diff(http.StatusCreated, wr.Code), res.Error.Message)
	}
}

func TestDeleteAlbum(t *testing.T) {
	table := []struct {
		label         string
		deleteAlbumFn func(ctx context.Context, id string) error
		expCode       int
	}{
		{
			label: "should fail if deleteAlbumFn finds no album",
			deleteAlbumFn: func(ctx context.Context, id string) error {
				return errors.Wrapf(cl.ErrNotFound, "album %s", id)
			},
			expCode: http.StatusNotFound,
		},
		{
			label: "should pass with a valid id",
			deleteAlbumFn: func(ctx context.Context, id string) error {
				if id != "1234" {
					t.Fatalf("unexpected id received: %q", id)
				}
				return nil
			},
			expCode: http.StatusOK,
		},
	}
	for i := 0; i < len(table); i++ {
		ts := table[i]
		t.Run(ts.label, func(t *testing.T) {
			h := Handler{
				AlbumStore: &mock.AlbumStore{
					DeleteAlbumFn: ts.deleteAlbumFn,
				},
				Logger: tm.NopLogger,
			}

			h.Handler()
			wr := httptest.NewRecorder()
			req := httptest.NewRequest("DELETE", "/v1/album/1234", nil)
			h.router.ServeHTTP(wr, req)

			if wr.Code != ts.expCode {
				t.Fatalf("unexpected response code returned: %s", cmp.Diff(ts.expCode, wr.Code))
			}
		})
	}
}

func TestAddTrack(t *testing.T) {
	newBody := func(t *testing.T, withFile bool) (*bytes.Buffer, string) {
		t.Helper()
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		if err := mw.WriteField("title", "Opening"); err != nil {
			t.Fatalf("unexpected error writing form field: %s", err.Error())
		}
		if withFile {
			fw, err := mw.CreateFormFile("track", "song.mp3")
			if err != nil {
				t.Fatalf("unexpected error creating form file: %s", err.Error())
			}
			if _, err := fw.Write([]byte("audio bytes")); err != nil {
				t.Fatalf("unexpected error writing form file: %s", err.Error())
			}
		}
		if err := mw.Close(); err != nil {
			t.Fatalf("unexpected error closing form writer: %s", err.Error())
		}
		return &body, mw.FormDataContentType()
	}

	table := []struct {
		label         string
		withFile      bool
		attachTrackFn func(ctx context.Context, albumID, title string, payload []byte, filename, contentType string) (cl.Record, error)
		expCode       int
	}{
		{
			label:    "should fail if no file was attached",
			withFile: false,
			attachTrackFn: func(ctx context.Context, albumID, title string, payload []byte, filename, contentType string) (cl.Record, error) {
				if payload != nil {
					t.Fatalf("unexpected payload received: %q", payload)
				}
				return nil, errors.Wrap(cl.ErrMissingFile, "track upload requires a file")
			},
			expCode: http.StatusBadRequest,
		},
		{
			label:    "should fail if the file is too large",
			withFile: true,
			attachTrackFn: func(ctx context.Context, albumID, title string, payload []byte, filename, contentType string) (cl.Record, error) {
				return nil, errors.Wrap(cl.ErrFileTooLarge, "11 bytes (max 4)")
			},
			expCode: http.StatusRequestEntityTooLarge,
		},
		{
			label:    "should pass the upload through",
			withFile: true,
			attachTrackFn: func(ctx context.Context, albumID, title string, payload []byte, filename, contentType string) (cl.Record, error) {
				if albumID != "1234" {
					t.Fatalf("unexpected album id received: %q", albumID)
				}
				if title != "Opening" {
					t.Fatalf("unexpected title received: %q", title)
				}
				if string(payload) != "audio bytes" {
					t.Fatalf("unexpected payload received: %q", payload)
				}
				return cl.Record{"id": float64(1234)}, nil
			},
			expCode: http.StatusOK,
		},
	}
	for i := 0; i < len(table); i++ {
		ts := table[i]
		t.Run(ts.label, func(t *testing.T) {
			h := Handler{
				Uploads: &mock.Uploads{
					AttachTrackFn: ts.attachTrackFn,
				},
				Logger: tm.NopLogger,
			}

			body, contentType := newBody(t, ts.withFile)
			h.Handler()
			wr := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/v1/album/1234/track", body)
			req.Header.Set("Content-Type", contentType)
			h.router.ServeHTTP(wr, req)

			if wr.Code != ts.expCode {
				var res httputils.JSONErrRes
				err := jsonutils.Decode(wr.Body, &res)
				if err != nil {
					t.Fatalf("unexpected error returned from decoding response body: %s", err.Error())
				}

				t.Fatalf("unexpected response code returned: %s %s", cmp.Diff(ts.expCode, wr.Code), res.Error.Message)
			}
		})
	}
}
