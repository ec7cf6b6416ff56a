package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cameroncuttingedge/tictactoe-arena/api"
	"github.com/cameroncuttingedge/tictactoe-arena/matchmaker"
	"github.com/cameroncuttingedge/tictactoe-arena/router"
	"github.com/cameroncuttingedge/tictactoe-arena/websocket"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("Failed to load .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &Config{}
	if err := newCmd(cfg).ExecuteContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("Exiting")
	}
}

func run(ctx context.Context, cfg *Config) error {
	InitializeLogger(cfg.logLevel)

	hub := websocket.NewHub()
	mm := matchmaker.New(hub)
	r := router.New(mm, hub)

	log.Info().Str("version", releaseVersion).Msg("Starting App")
	return api.New(mm, hub, r).StartAPI(ctx, cfg.addr())
}

func InitializeLogger(level string) {
	loggingEnabled := os.Getenv("LOGGING")
	if loggingEnabled != "true" {
		log.Logger = log.Output(os.Stdout)
	} else {
		runLogFile, err := os.OpenFile(
			"tictactoe.log",
			os.O_APPEND|os.O_CREATE|os.O_WRONLY,
			0664,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open log file")
		}
		multi := zerolog.MultiLevelWriter(runLogFile, os.Stdout)
		log.Logger = zerolog.New(multi).With().Timestamp().Logger()
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
