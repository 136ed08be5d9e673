// Package config holds the service configuration. Values come from flags,
// MERKLE_* environment variables, an optional .env file and an optional config file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Tallal-Arif/MerkleStreamBackend/internal/chunk"
	"github.com/Tallal-Arif/MerkleStreamBackend/internal/crypto"
)

const (
	OptionAddr            = "addr"
	OptionMaxUploadBytes  = "max-upload-bytes"
	OptionChunkSize       = "chunk-size"
	OptionHashAlgorithm   = "hash-algorithm"
	OptionWorkers         = "workers"
	OptionDatabaseURL     = "database-url"
	OptionVerbosity       = "verbosity"
	OptionIncludeTree     = "include-tree"
	OptionShutdownTimeout = "shutdown-timeout"

	EnvPrefix = "merkle"

	DefaultMaxUploadBytes = 1024 * 1024 * 1024
)

// Config is handed to the server at construction time; nothing reads it globally.
type Config struct {
	Addr            string
	MaxUploadBytes  int64
	ChunkSize       int
	HashAlgorithm   string
	Workers         int
	DatabaseURL     string
	Verbosity       string
	IncludeTree     bool
	ShutdownTimeout time.Duration
}

func Default() Config {
	return Config{
		Addr:            ":8080",
		MaxUploadBytes:  DefaultMaxUploadBytes,
		ChunkSize:       chunk.DefaultSize,
		HashAlgorithm:   crypto.SHA256,
		Verbosity:       "info",
		ShutdownTimeout: 15 * time.Second,
	}
}

// NewViper returns a viper instance with defaults set, environment lookup
// enabled and cfgFile read when given. A missing .env file in the working
// directory is not an error.
func NewViper(cfgFile string) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	d := Default()
	v.SetDefault(OptionAddr, d.Addr)
	v.SetDefault(OptionMaxUploadBytes, d.MaxUploadBytes)
	v.SetDefault(OptionChunkSize, d.ChunkSize)
	v.SetDefault(OptionHashAlgorithm, d.HashAlgorithm)
	v.SetDefault(OptionWorkers, d.Workers)
	v.SetDefault(OptionDatabaseURL, d.DatabaseURL)
	v.SetDefault(OptionVerbosity, d.Verbosity)
	v.SetDefault(OptionIncludeTree, d.IncludeTree)
	v.SetDefault(OptionShutdownTimeout, d.ShutdownTimeout)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}
	return v, nil
}

// Load reads a Config out of v and validates it.
func Load(v *viper.Viper) (Config, error) {
	c := Config{
		Addr:            v.GetString(OptionAddr),
		MaxUploadBytes:  v.GetInt64(OptionMaxUploadBytes),
		ChunkSize:       v.GetInt(OptionChunkSize),
		HashAlgorithm:   v.GetString(OptionHashAlgorithm),
		Workers:         v.GetInt(OptionWorkers),
		DatabaseURL:     v.GetString(OptionDatabaseURL),
		Verbosity:       v.GetString(OptionVerbosity),
		IncludeTree:     v.GetBool(OptionIncludeTree),
		ShutdownTimeout: v.GetDuration(OptionShutdownTimeout),
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("%s must be positive, got %d", OptionMaxUploadBytes, c.MaxUploadBytes)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%s must be positive, got %d", OptionChunkSize, c.ChunkSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%s must not be negative, got %d", OptionWorkers, c.Workers)
	}
	if _, err := crypto.NewHasher(c.HashAlgorithm); err != nil {
		return fmt.Errorf("%s: %w", OptionHashAlgorithm, err)
	}
	return nil
}
