package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Tallal-Arif/MerkleStreamBackend/internal/api"
	"github.com/Tallal-Arif/MerkleStreamBackend/internal/config"
	"github.com/Tallal-Arif/MerkleStreamBackend/internal/crypto"
	"github.com/Tallal-Arif/MerkleStreamBackend/internal/db"
	"github.com/Tallal-Arif/MerkleStreamBackend/internal/logging"
	"github.com/Tallal-Arif/MerkleStreamBackend/internal/upload"
)

func (c *command) initServeCmd() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the upload HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.config)
			if err != nil {
				return err
			}
			logger, err := c.newLogger(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, logger, nil)
		},
	}

	d := config.Default()
	cmd.Flags().String(config.OptionAddr, d.Addr, "HTTP listen address")
	cmd.Flags().Int64(config.OptionMaxUploadBytes, d.MaxUploadBytes, "maximum upload size in bytes")
	cmd.Flags().Int(config.OptionChunkSize, d.ChunkSize, "chunk size in bytes")
	cmd.Flags().String(config.OptionHashAlgorithm, d.HashAlgorithm, fmt.Sprintf("hash algorithm, one of %v", crypto.Algorithms()))
	cmd.Flags().Int(config.OptionWorkers, d.Workers, "leaf hashing workers per upload, 0 uses GOMAXPROCS")
	cmd.Flags().String(config.OptionDatabaseURL, d.DatabaseURL, "postgres URL for upload records; records are kept in memory when empty")
	cmd.Flags().Bool(config.OptionIncludeTree, d.IncludeTree, "include the full tree in upload responses")
	cmd.Flags().Duration(config.OptionShutdownTimeout, d.ShutdownTimeout, "graceful shutdown timeout")

	c.root.AddCommand(cmd)
}

// serve runs the HTTP server until ctx is done. When ready is not nil the bound
// address is sent on it once the listener is open.
func serve(ctx context.Context, cfg config.Config, logger logging.Logger, ready chan<- net.Addr) error {
	hasher, err := crypto.NewHasher(cfg.HashAlgorithm)
	if err != nil {
		return err
	}

	var store upload.Store = upload.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		pool, err := db.ConnectDB(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()

		us := db.NewUploadStore(pool)
		if err := us.Migrate(ctx); err != nil {
			return err
		}
		store = us
	} else {
		logger.Warningf("no %s configured, upload records are kept in memory", config.OptionDatabaseURL)
	}

	svc := upload.NewService(upload.Options{
		Hasher:    hasher,
		ChunkSize: cfg.ChunkSize,
		Workers:   cfg.Workers,
		MaxBytes:  cfg.MaxUploadBytes,
		Store:     store,
		Logger:    logger,
	})
	handler, err := api.New(cfg, svc, logger, prometheus.NewRegistry())
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		_ = handler.Close()
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Infof("Server listening on %s", ln.Addr())
	if ready != nil {
		ready <- ln.Addr()
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()

	var result *multierror.Error
	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			result = multierror.Append(result, fmt.Errorf("serve: %w", err))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			result = multierror.Append(result, fmt.Errorf("shutdown: %w", err))
		}
	}
	if err := handler.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close access log: %w", err))
	}
	return result.ErrorOrNil()
}
