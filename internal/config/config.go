package config

import (
	"context"
	"log"

	"github.com/spf13/viper"

	"bizflow/internal/infra/blob"
)

// Config aggregates the process configuration. Values come from a .env file
// in the working directory when present, overridden by BIZFLOW_* environment
// variables.
type Config struct {
	Env     string
	Storage StorageConfig
	Blob    BlobConfig
	Archive ArchiveConfig
}

type StorageConfig struct {
	Driver     string // memory|sqlite
	SQLitePath string
}

type BlobConfig struct {
	Driver      string // fs|s3|memory
	FSRoot      string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool
}

type ArchiveConfig struct {
	Prefix string
}

// Load reads configuration with sane defaults for a single-operator local
// deployment.
func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("BIZFLOW_ENV", "development")
	viper.SetDefault("BIZFLOW_STORAGE_DRIVER", "sqlite")
	viper.SetDefault("BIZFLOW_SQLITE_PATH", "bizflow.db")
	viper.SetDefault("BIZFLOW_BLOB_DRIVER", "fs")
	viper.SetDefault("BIZFLOW_BLOB_FS_ROOT", "blobs")
	viper.SetDefault("BIZFLOW_BLOB_S3_PATH_STYLE", false)
	viper.SetDefault("BIZFLOW_ARCHIVE_PREFIX", "snapshots")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Env: viper.GetString("BIZFLOW_ENV"),
		Storage: StorageConfig{
			Driver:     viper.GetString("BIZFLOW_STORAGE_DRIVER"),
			SQLitePath: viper.GetString("BIZFLOW_SQLITE_PATH"),
		},
		Blob: BlobConfig{
			Driver:      viper.GetString("BIZFLOW_BLOB_DRIVER"),
			FSRoot:      viper.GetString("BIZFLOW_BLOB_FS_ROOT"),
			S3Bucket:    viper.GetString("BIZFLOW_BLOB_S3_BUCKET"),
			S3Region:    viper.GetString("BIZFLOW_BLOB_S3_REGION"),
			S3Endpoint:  viper.GetString("BIZFLOW_BLOB_S3_ENDPOINT"),
			S3PathStyle: viper.GetBool("BIZFLOW_BLOB_S3_PATH_STYLE"),
		},
		Archive: ArchiveConfig{
			Prefix: viper.GetString("BIZFLOW_ARCHIVE_PREFIX"),
		},
	}
}

// OpenBlob constructs the configured blob store.
func (c *Config) OpenBlob(ctx context.Context) (blob.Store, error) {
	return blob.Open(ctx, blob.Options{
		Driver:      blob.Driver(c.Blob.Driver),
		FSRoot:      c.Blob.FSRoot,
		S3Bucket:    c.Blob.S3Bucket,
		S3Region:    c.Blob.S3Region,
		S3Endpoint:  c.Blob.S3Endpoint,
		S3PathStyle: c.Blob.S3PathStyle,
	})
}
