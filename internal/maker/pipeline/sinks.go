package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"quotemaker/config"
	"quotemaker/internal/maker/stream"
	"quotemaker/logger"
	"quotemaker/pkg/broker/kafkasink"
	"quotemaker/pkg/storage/postgres"
	redisstore "quotemaker/pkg/storage/redis"
	"quotemaker/pkg/wsfeed"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// BuildSinks creates every sink enabled in cfg. The returned cleanup flushes and closes
// them and must run after the consumer has stopped.
func BuildSinks(cfg *config.Config, log *zap.Logger) ([]stream.Sink, func(), error) {
	var sinks []stream.Sink
	var closers []func() error

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn("failed to close sink", zap.Error(err))
			}
		}
	}
	fail := func(err error) ([]stream.Sink, func(), error) {
		cleanup()
		return nil, nil, err
	}

	sc := cfg.Sinks

	if sc.Stdout {
		s := stream.NewLineSink("stdout", os.Stdout)
		sinks = append(sinks, s)
		closers = append(closers, s.Flush)
	}

	if sc.QuoteFile != "" {
		w, err := logger.NewQuoteWriter(sc.QuoteFile)
		if err != nil {
			return fail(fmt.Errorf("quote file: %w", err))
		}
		s := stream.NewLineSink("quote_file", w)
		sinks = append(sinks, s)
		closers = append(closers, s.Close)
	}

	if sc.Websocket.Enabled {
		hub := wsfeed.NewHub(log.Named("websocket"))
		mux := http.NewServeMux()
		mux.Handle(sc.Websocket.Path, hub)
		srv := &http.Server{Addr: sc.Websocket.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		go func() {
			log.Info("websocket feed listening", zap.String("addr", sc.Websocket.Addr), zap.String("path", sc.Websocket.Path))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("websocket server failed", zap.Error(err))
			}
		}()

		sinks = append(sinks, hub)
		closers = append(closers, func() error {
			hub.Close()
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		})
	}

	if sc.Postgres.Enabled {
		client, err := postgres.InitializeAndMigrateQuoteRecord(cfg.Postgres, cfg.Log.Environment, true)
		if err != nil {
			return fail(fmt.Errorf("failed to connect to DB: %w", err))
		}
		sinks = append(sinks, postgres.NewArchive(client, 2*time.Second))
		closers = append(closers, client.Close)
	}

	if sc.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     sc.Redis.Addr,
			Password: sc.Redis.Password,
			DB:       sc.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := client.Ping(ctx).Err()
		cancel()
		if err != nil {
			_ = client.Close()
			return fail(fmt.Errorf("redis ping: %w", err))
		}
		pub := redisstore.New(client, sc.Redis.ChannelPrefix, sc.Redis.LatestTTL)
		sinks = append(sinks, pub)
		closers = append(closers, pub.Close)
	}

	if sc.Kafka.Enabled {
		w := kafkasink.NewWriter(sc.Kafka.Brokers, sc.Kafka.Topic, sc.Kafka.BatchSize, sc.Kafka.BatchTimeout)
		s := kafkasink.NewSink(w)
		sinks = append(sinks, s)
		closers = append(closers, s.Close)
	}

	return sinks, cleanup, nil
}

// StartMaker builds the sinks and the maker from cfg and runs until ctx is cancelled
// or production fails.
func StartMaker(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	sinks, cleanup, err := BuildSinks(cfg, log)
	if err != nil {
		return err
	}

	mk, err := New(cfg, log, sinks)
	if err != nil {
		cleanup()
		return err
	}
	mk.cleanup = cleanup

	return mk.Run(ctx)
}
