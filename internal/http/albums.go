package http

import (
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	cl "albums-service/pkg/catalog"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	httputils "github.com/twitsprout/tools/http"
	"github.com/twitsprout/tools/requestid"
	"gopkg.in/guregu/null.v3"
)

// ListAlbums returns a page of albums ordered by the requested field.
func (h *Handler) ListAlbums(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	v := r.URL.Query()
	reqID := requestid.Get(ctx)

	req, err := parseListAlbumsRequest(r)
	if err != nil {
		h.Logger.Error("[ListAlbums] error parsing request",
			"request_id", reqID,
			"details", err.Error(),
		)
		_ = httputils.WriteJSONError(w, v, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.AlbumStore.ListAlbums(ctx, req)
	if err != nil {
		h.Logger.Error("[ListAlbums] error getting albums list",
			"request_id", reqID,
			"details", err.Error(),
		)
		h.writeError(w, v, err)
		return
	}

	_ = httputils.WriteJSON(w, v, res, http.StatusOK)
}

// GetAlbum returns the album matching the id path variable.
func (h *Handler) GetAlbum(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	v := r.URL.Query()
	reqID := requestid.Get(ctx)

	id := mux.Vars(r)["id"]

	res, err := h.AlbumStore.GetAlbum(ctx, id)
	if err != nil {
		h.Logger.Error("[GetAlbum] error getting album",
			"request_id", reqID,
			"album_id", id,
			"details", err.Error(),
		)
		h.writeError(w, v, err)
		return
	}

	_ = httputils.WriteJSON(w, v, res, http.StatusOK)
}

// CreateAlbum creates an album from a JSON or multipart body, uploading the
// cover image when one is attached.
func (h *Handler) CreateAlbum(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	v := r.URL.Query()
	reqID := requestid.Get(ctx)

	data, file, err := h.parseAlbumUpload(r)
	if err != nil {
		h.Logger.Error("[CreateAlbum] error parsing request",
			"request_id", reqID,
			"details", err.Error(),
		)
		_ = httputils.WriteJSONError(w, v, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.Uploads.CreateAlbum(ctx, data, file.payload, file.name, file.contentType)
	if err != nil {
		h.Logger.Error("[CreateAlbum] error creating album",
			"request_id", reqID,
			"details", err.Error(),
		)
		h.writeError(w, v, err)
		return
	}

	_ = httputils.WriteJSON(w, v, res, http.StatusCreated)
}

// UpdateAlbum replaces the album matching the id path variable, uploading a
// new cover image when one is attached.
func (h *Handler) UpdateAlbum(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	v := r.URL.Query()
	reqID := requestid.Get(ctx)

	id := mux.Vars(r)["id"]

	data, file, err := h.parseAlbumUpload(r)
	if err != nil {
		h.Logger.Error("[UpdateAlbum] error parsing request",
			"request_id", reqID,
			"album_id", id,
			"details", err.Error(),
		)
		_ = httputils.WriteJSONError(w, v, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.Uploads.UpdateAlbum(ctx, id, data, file.payload, file.name, file.contentType)
	if err != nil {
		h.Logger.Error("[UpdateAlbum] error updating album",
			"request_id", reqID,
			"album_id", id,
			"details", err.Error(),
		)
		h.writeError(w, v, err)
		return
	}

	_ = httputils.WriteJSON(w, v, res, http.StatusOK)
}

// DeleteAlbum removes the album matching the id path variable.
func (h *Handler) DeleteAlbum(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	v := r.URL.Query()
	reqID := requestid.Get(ctx)

	id := mux.Vars(r)["id"]

	err := h.AlbumStore.DeleteAlbum(ctx, id)
	if err != nil {
		h.Logger.Error("[DeleteAlbum] error deleting album",
			"request_id", reqID,
			"album_id", id,
			"details", err.Error(),
		)
		h.writeError(w, v, err)
		return
	}

	res := struct {
		ID string `json:"id"`
	}{ID: id}
	_ = httputils.WriteJSON(w, v, res, http.StatusOK)
}

// AddTrack uploads an audio file and appends the resulting track to the album
// matching the id path variable.
func (h *Handler) AddTrack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	v := r.URL.Query()
	reqID := requestid.Get(ctx)

	id := mux.Vars(r)["id"]

	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		h.Logger.Error("[AddTrack] error parsing request",
			"request_id", reqID,
			"album_id", id,
			"details", err.Error(),
		)
		_ = httputils.WriteJSONError(w, v, err.Error(), http.StatusBadRequest)
		return
	}
	title := r.FormValue("title")
	file, err := readFormFile(r, "track")
	if err != nil {
		h.Logger.Error("[AddTrack] error reading track file",
			"request_id", reqID,
			"album_id", id,
			"details", err.Error(),
		)
		_ = httputils.WriteJSONError(w, v, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.Uploads.AttachTrack(ctx, id, title, file.payload, file.name, file.contentType)
	if err != nil {
		h.Logger.Error("[AddTrack] error adding track",
			"request_id", reqID,
			"album_id", id,
			"details", err.Error(),
		)
		h.writeError(w, v, err)
		return
	}

	_ = httputils.WriteJSON(w, v, res, http.StatusOK)
}

func parseListAlbumsRequest(r *http.Request) (cl.ListAlbumsReq, error) {
	var req cl.ListAlbumsReq
	v := r.URL.Query()

	if l := v.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			return req, errors.Wrap(err, "[parseListAlbumsRequest] invalid limit")
		}
		req.Limit = n
	}

	req.PageToken = v.Get("pageToken")
	req.Order = v.Get("order")
	req.Ascending = v.Get("sort") == "ascending"
	return req, nil
}

// formFile is the zero value when the request carried no file.
type formFile struct {
	payload     []byte
	name        string
	contentType string
}

// albumForm holds the optional album fields of a multipart form. Fields the
// client did not send stay invalid and are omitted from the record.
type albumForm struct {
	Title       null.String
	Author      null.String
	Rating      null.String
	Year        null.String
	Description null.String
}

func (f albumForm) record() cl.Record {
	data := cl.Record{}
	if f.Title.Valid {
		data["title"] = f.Title.String
	}
	if f.Author.Valid {
		data["author"] = f.Author.String
	}
	if f.Rating.Valid {
		data["rating"] = f.Rating.String
	}
	if f.Year.Valid {
		data["year"] = f.Year.String
	}
	if f.Description.Valid {
		data["description"] = f.Description.String
	}
	return data
}

// parseAlbumUpload decodes a create/update body. Multipart requests may carry
// an image file alongside the form fields; JSON requests carry the record
// directly and never attach a file.
func (h *Handler) parseAlbumUpload(r *http.Request) (cl.Record, formFile, error) {
	ct := r.Header.Get("Content-Type")
	mt, _, _ := mime.ParseMediaType(ct)
	if mt != "multipart/form-data" {
		var data cl.Record
		if err := httputils.ReadJSON(r.Body, &data); err != nil {
			return nil, formFile{}, errors.Wrap(err, "[parseAlbumUpload] invalid JSON body")
		}
		return data, formFile{}, nil
	}

	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		return nil, formFile{}, errors.Wrap(err, "[parseAlbumUpload] invalid multipart body")
	}

	var form albumForm
	setFormValue(r, "title", &form.Title)
	setFormValue(r, "author", &form.Author)
	setFormValue(r, "rating", &form.Rating)
	setFormValue(r, "year", &form.Year)
	setFormValue(r, "description", &form.Description)

	file, err := readFormFile(r, "image")
	if err != nil {
		return nil, formFile{}, err
	}
	return form.record(), file, nil
}

func setFormValue(r *http.Request, key string, dst *null.String) {
	if vs, ok := r.MultipartForm.Value[key]; ok && len(vs) > 0 {
		*dst = null.StringFrom(vs[0])
	}
}

// readFormFile reads the named multipart file into memory. A missing file is
// not an error; the returned formFile is simply empty.
func readFormFile(r *http.Request, key string) (formFile, error) {
	f, fh, err := r.FormFile(key)
	if err != nil {
		if err == http.ErrMissingFile {
			return formFile{}, nil
		}
		return formFile{}, errors.Wrapf(err, "[readFormFile] error reading %q", key)
	}
	defer f.Close()

	payload, err := io.ReadAll(f)
	if err != nil {
		return formFile{}, errors.Wrapf(err, "[readFormFile] error reading %q", key)
	}
	return formFile{
		payload:     payload,
		name:        fh.Filename,
		contentType: formFileContentType(fh),
	}, nil
}

func formFileContentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// writeError maps domain errors to their HTTP status.
func (h *Handler) writeError(w http.ResponseWriter, v url.Values, err error) {
	status := http.StatusInternalServerError
	switch errors.Cause(err) {
	case cl.ErrNotFound:
		status = http.StatusNotFound
	case cl.ErrInvalidID, cl.ErrValidation, cl.ErrInvalidPageToken, cl.ErrMissingFile:
		status = http.StatusBadRequest
	case cl.ErrFileTooLarge:
		status = http.StatusRequestEntityTooLarge
	}
	_ = httputils.WriteJSONError(w, v, err.Error(), status)
}
