package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	RecordsSQLite   = "sqlite"
	RecordsPostgres = "postgres"

	BlobsFS = "fs"
	BlobsS3 = "s3"
)

type Config struct {
	Env        string `yaml:"env" env-required:"true"`
	JWTSecret  string `env:"SECRET" env-required:"true"`
	HTTPServer `yaml:"http_server"`
	Session    `yaml:"session"`
	Records    `yaml:"records"`
	Blobs      `yaml:"blobs"`
	Events     `yaml:"events"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env-default:"localhost:8082"`
	Timeout     time.Duration `yaml:"timeout" env-default:"30s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	TokenTTL    time.Duration `yaml:"token_ttl" env-default:"1h"`
}

type Session struct {
	// StorePath is the key-value file holding the session marker.
	StorePath string `yaml:"store_path" env-default:"./storage/session.json"`
}

type Records struct {
	Backend     string `yaml:"backend" env-default:"sqlite"`
	SQLitePath  string `yaml:"sqlite_path" env-default:"./storage/gallery.db"`
	PostgresDSN string `yaml:"postgres_dsn" env:"POSTGRES_DSN"`
	AutoMigrate bool   `yaml:"auto_migrate" env-default:"true"`
}

type Blobs struct {
	Backend string `yaml:"backend" env-default:"fs"`
	FS      FS     `yaml:"fs"`
	S3      S3     `yaml:"s3"`
}

type FS struct {
	Root    string `yaml:"root" env-default:"./storage/videos"`
	BaseURL string `yaml:"base_url" env-default:"http://localhost:8082"`
}

type S3 struct {
	Bucket    string `yaml:"bucket" env-default:"videos"`
	Region    string `yaml:"region" env-default:"us-east-1"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`
	PathStyle bool   `yaml:"path_style"`
	PublicURL string `yaml:"public_url"`
}

type Events struct {
	Brokers      []string      `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	Topic        string        `yaml:"topic" env-default:"video-events"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"5s"`
}

func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		panic("config path is empty")
	}

	return MustLoadPath(configPath)
}

func MustLoadPath(configPath string) *Config {
	cfg, err := LoadPath(configPath)
	if err != nil {
		panic(err.Error())
	}

	return cfg
}

func LoadPath(configPath string) (*Config, error) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, &os.PathError{Op: "config", Path: configPath, Err: os.ErrNotExist}
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// fetchConfigPath fetches config path from command line flag or environment variable.
// Priority: flag > env > default.
// Default value is empty string.
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
