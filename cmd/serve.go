package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/browser"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/robalobadob/pairs/assets"
	"github.com/robalobadob/pairs/internal/config"
	"github.com/robalobadob/pairs/internal/game"
	"github.com/robalobadob/pairs/internal/httpserver"
	"github.com/robalobadob/pairs/internal/images"
	"github.com/robalobadob/pairs/internal/results"
	"github.com/robalobadob/pairs/internal/store"
)

var (
	servePort string
	serveOpen bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP/WebSocket game server.",
	Long: `Run the game server. Configuration comes from the environment ` +
		`(a .env file in the working directory is loaded first).`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "open the server root in a browser once listening")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := images.Init(cfg.ImagesFile); err != nil {
		return fmt.Errorf("load images: %w", err)
	}
	if err := checkProgression(cfg.Progression, images.Stats()); err != nil {
		return err
	}
	sounds, err := assets.SoundMap()
	if err != nil {
		return fmt.Errorf("load sounds: %w", err)
	}

	db, err := results.Open(cfg.ResultsDSN)
	if err != nil {
		return fmt.Errorf("open results: %w", err)
	}
	atexit.Register(func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("close results db")
		}
	})

	st := store.NewMemoryStore()
	atexit.Register(func() { st.Sweep(context.Background(), 0) })

	srv := httpserver.New(httpserver.Options{
		Config:  cfg,
		Store:   st,
		History: db,
		Pool:    images.Pool(),
		Sounds:  sounds,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go sweepLoop(ctx, st, cfg.SessionTTL)

	hs := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- hs.ListenAndServe() }()

	log.Info().
		Str("port", cfg.Port).
		Int("images", images.Stats()).
		Str("progression", fmt.Sprintf("%T", cfg.Progression)).
		Str("winLock", cfg.WinLock.String()).
		Msg("starting pairs server")

	if serveOpen {
		if err := browser.OpenURL("http://localhost:" + cfg.Port + "/"); err != nil {
			log.Warn().Err(err).Msg("open browser")
		}
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server exited: %w", err)
		}
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdown); err != nil {
		log.Warn().Err(err).Msg("shutdown")
	}
	log.Info().Msg("server stopped")
	return nil
}

// checkProgression fails when some level of p needs more distinct images than
// the pool holds, so a bad PROGRESSION or FINAL_LEVEL stops the server at
// startup instead of failing every new game.
func checkProgression(p game.Progression, pool int) error {
	if err := game.ValidateProgression(p, pool); err != nil {
		return fmt.Errorf("progression does not fit the image pool: %w", err)
	}
	return nil
}

// sweepLoop closes idle sessions until ctx is done.
func sweepLoop(ctx context.Context, st store.Store, ttl time.Duration) {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := st.Sweep(ctx, ttl); n > 0 {
				log.Info().Int("closed", n).Int("live", st.Len()).Msg("swept idle sessions")
			}
		}
	}
}
