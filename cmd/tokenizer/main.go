package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/layer-3/tokenizer/adapters/events"
	"github.com/layer-3/tokenizer/adapters/tokenizer"
	"github.com/layer-3/tokenizer/config"
	"github.com/layer-3/tokenizer/service"
	transport "github.com/layer-3/tokenizer/transport/http"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:  "tokenizer",
		Usage: "issue and verify HMAC-signed session tokens",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP token service",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "optional dotenv file"},
				},
				Action: serve,
			},
			{
				Name:      "encode-secret",
				Usage:     "print the base64 form of a raw secret for TOKENIZER_SECRET_BASE64",
				ArgsUsage: "<secret>",
				Action:    encodeSecret,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func encodeSecret(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("exactly one secret argument is required", 2)
	}

	tk := tokenizer.NewHMACTokenizer()
	encoded := tk.EncodeSecretKey([]byte(c.Args().First()))
	if err := tokenizer.ValidateSecretKey(encoded); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	fmt.Fprintln(c.App.Writer, encoded)
	return nil
}

func serve(c *cli.Context) error {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	publisher, closePublisher, err := newPublisher(cfg.RedisURL)
	if err != nil {
		return err
	}
	defer closePublisher()

	authService := service.NewAuthService(
		tokenizer.NewHMACTokenizer(),
		cfg.EncodedSecret,
		service.WithTTL(cfg.AccessTTL, cfg.RefreshTTL),
		service.WithEventPublisher(events.NewWatermillPublisher(publisher)),
		service.WithLogger(logger),
	)

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           transport.SetupRouter(authService, cfg.AdminAPIKey, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("token service listening", zap.String("addr", cfg.HTTPAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = lvl
	return zapCfg.Build()
}

// newPublisher uses Redis streams when REDIS_URL is set and an in-process
// channel otherwise, so issuance events always have somewhere to go.
func newPublisher(redisURL string) (message.Publisher, func(), error) {
	wmLogger := watermill.NewStdLogger(false, false)

	if redisURL == "" {
		pubSub := gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		return pubSub, func() { _ = pubSub.Close() }, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisClient := redis.NewClient(opts)

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		wmLogger,
	)
	if err != nil {
		_ = redisClient.Close()
		return nil, nil, fmt.Errorf("failed to create Redis publisher: %w", err)
	}

	return publisher, func() {
		_ = publisher.Close()
		_ = redisClient.Close()
	}, nil
}
