package main

import (
	"fmt"

	"github.com/andresuchdata/return-router/backend-go/internal/config"
	"github.com/andresuchdata/return-router/backend-go/internal/storage"
	"github.com/andresuchdata/return-router/backend-go/pkg/logger"
	"github.com/urfave/cli/v2"
)

// storageFlags override the STORAGE_* settings loaded by config.
func storageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "storage-endpoint", Usage: "S3-compatible endpoint (default $STORAGE_ENDPOINT)"},
		&cli.StringFlag{Name: "storage-access-key", Usage: "Access key (default $STORAGE_ACCESS_KEY)"},
		&cli.StringFlag{Name: "storage-secret-key", Usage: "Secret key (default $STORAGE_SECRET_KEY)"},
		&cli.StringFlag{Name: "storage-bucket", Usage: "Bucket name (default $STORAGE_BUCKET)"},
		&cli.StringFlag{Name: "storage-region", Usage: "Bucket region (default $STORAGE_REGION)"},
		&cli.BoolFlag{Name: "storage-use-ssl", Usage: "Use TLS when the endpoint has no scheme (default $STORAGE_USE_SSL)"},
	}
}

func storageConfig(c *cli.Context, base config.StorageConfig) config.StorageConfig {
	cfg := base
	for flag, dst := range map[string]*string{
		"storage-endpoint":   &cfg.Endpoint,
		"storage-access-key": &cfg.AccessKey,
		"storage-secret-key": &cfg.SecretKey,
		"storage-bucket":     &cfg.Bucket,
		"storage-region":     &cfg.Region,
	} {
		if c.IsSet(flag) {
			*dst = c.String(flag)
		}
	}
	if c.IsSet("storage-use-ssl") {
		cfg.UseSSL = c.Bool("storage-use-ssl")
	}
	return cfg
}

func newStorageClient(c *cli.Context) (*storage.MinioClient, error) {
	cfg := storageConfig(c, config.Load().Storage)
	if !cfg.Configured() {
		return nil, fmt.Errorf("object storage is not configured: storage endpoint and bucket are required")
	}
	return storage.NewMinioClient(cfg)
}

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Download input tables from object storage",
		Flags: append(storageFlags(),
			&cli.StringFlag{Name: "bucket-prefix", Usage: "Object prefix holding the input tables"},
			&cli.StringFlag{Name: "key", Usage: "Fetch a single object, relative to bucket-prefix"},
			&cli.StringFlag{
				Name:  "download-dir",
				Usage: "Local directory for downloaded tables (default $APP_DATA_DIR)",
			},
		),
		Action: func(c *cli.Context) error {
			client, err := newStorageClient(c)
			if err != nil {
				return err
			}
			dir := c.String("download-dir")
			if dir == "" {
				dir = config.Load().App.DataDir
			}
			paths, err := storage.DownloadTables(c.Context, client, c.String("bucket-prefix"), c.String("key"), dir)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(c.App.Writer, p)
			}
			logger.Log.Info().Int("files", len(paths)).Str("dir", dir).Msg("tables downloaded")
			return nil
		},
	}
}

func publishCommand() *cli.Command {
	return &cli.Command{
		Name:  "publish",
		Usage: "Upload a result file to object storage",
		Flags: append(storageFlags(),
			&cli.StringFlag{Name: "file", Usage: "Local file to upload", Required: true},
			&cli.StringFlag{Name: "key", Usage: "Object key, defaults to the file name"},
		),
		Action: func(c *cli.Context) error {
			client, err := newStorageClient(c)
			if err != nil {
				return err
			}
			if err := storage.PublishFile(c.Context, client, c.String("file"), c.String("key")); err != nil {
				return err
			}
			logger.Log.Info().Str("file", c.String("file")).Str("key", c.String("key")).Msg("result published")
			return nil
		},
	}
}
