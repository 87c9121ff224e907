package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"syscall"
	"time"

	"albums-service/internal/blob"
	"albums-service/internal/docstore"
	"albums-service/internal/http"
	"albums-service/internal/records"
	"albums-service/internal/uploads"

	"cloud.google.com/go/compute/metadata"
	"github.com/kelseyhightower/envconfig"
	"github.com/twitsprout/tools"
	httputils "github.com/twitsprout/tools/http"
	"github.com/twitsprout/tools/lifecycle"
	"github.com/twitsprout/tools/zap"
)

var version string

type variables struct {
	Addr           string `required:"true" envconfig:"addr"`
	PostgresHost   string `required:"true" envconfig:"postgres_host"`
	PostgresPort   int    `required:"false" envconfig:"postgres_port"`
	PostgresDB     string `required:"true" envconfig:"postgres_db"`
	PostgresUser   string `required:"true" envconfig:"postgres_user"`
	PostgresPass   string `required:"true" envconfig:"postgres_pass"`
	LogLevel       string `required:"false" envconfig:"log_level"`
	AppName        string `required:"true" envconfig:"app_name"`
	BlobDir        string `required:"true" envconfig:"blob_dir"`
	BlobBucket     string `required:"true" envconfig:"blob_bucket"`
	StorageRoot    string `required:"false" envconfig:"storage_root"`
	PageSize       int    `required:"false" envconfig:"page_size"`
	MaxUploadBytes int64  `required:"false" envconfig:"max_upload_bytes"`
}

var v variables

func init() {
	if metadata.OnGCE() {
		port := os.Getenv("PORT")
		err := os.Setenv("ADDR", ":"+port)
		if err != nil {
			log.Fatal(err)
		}
	}

	envconfig.MustProcess("albums-service", &v)
	fmt.Println("Env variables :", v)
	if v.LogLevel == "" {
		v.LogLevel = "info"
	}
	if v.MaxUploadBytes <= 0 {
		v.MaxUploadBytes = 8 << 20
	}
}

func main() {
	logger := zap.New("albums-service", version, os.Stdout)
	if err := logger.SetLevel(v.LogLevel); err != nil {
		logger.Error("failed to set log level", "error", err.Error())
	}

	ds := newDocstore(v, nil)
	albums := records.New(ds, v.PageSize)

	blobs, err := blob.New(blob.Config{
		Bucket:      v.BlobBucket,
		Dir:         v.BlobDir,
		StorageRoot: v.StorageRoot,
	})
	if err != nil {
		panic(err)
	}
	ups := uploads.New(blobs, albums, v.MaxUploadBytes)

	ctx := context.Background()

	lc, ctx := lifecycle.New(ctx, logger)
	lc.Start("albums-service root context", func() error {
		<-ctx.Done()
		return ctx.Err()
	})

	h := http.Handler{
		Logger:         logger,
		Version:        version,
		AlbumStore:     albums,
		Uploads:        ups,
		AppName:        v.AppName,
		MaxUploadBytes: v.MaxUploadBytes,
	}
	server := httputils.NewServer(v.Addr, h.Handler())
	lc.StartServer(server)
	lc.StartSignals(syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	_ = lc.Wait(15 * time.Second)
}

func newDocstore(v variables, sc tools.StatsClient) *docstore.Store {
	dsConfig := docstore.Config{
		Host:       v.PostgresHost,
		Name:       v.PostgresDB,
		Password:   v.PostgresPass,
		Username:   v.PostgresUser,
		DisableSSL: true,
	}
	// Only use a Postgres port if one was provided
	if v.PostgresPort > 0 {
		dsConfig.Port = v.PostgresPort
	}
	ds, err := docstore.New(dsConfig, sc)
	if err != nil {
		panic(err)
	}
	return ds
}
