package http

import (
	"albums-service/internal"

	"github.com/gorilla/mux"
	"github.com/twitsprout/tools"
)

type Handler struct {
	AppName        string
	Version        string
	router         *mux.Router
	Logger         tools.Logger
	AlbumStore     internal.AlbumStore
	Uploads        internal.Uploads
	MaxUploadBytes int64
}
