package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	httpapi "tableboard/board-svc/internal/api/http"
	"tableboard/board-svc/internal/apiclient"
	"tableboard/board-svc/internal/events"
	"tableboard/board-svc/internal/service"
	"tableboard/board-svc/internal/storage"
	"tableboard/config"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(cfg.LogLevel)

	jar, err := newCookieJar(cfg)
	if err != nil {
		config.LogError(logger, "main", "newCookieJar", "seed session cookies", cfg.APIURL, err)
		os.Exit(1)
	}

	client, err := apiclient.New(apiclient.Options{
		BaseURL:    cfg.APIURL,
		BranchID:   cfg.BranchID,
		HTTPClient: &http.Client{Jar: jar, Timeout: cfg.HTTPTimeout},
		Jar:        jar,
		Logger:     logger,
	})
	if err != nil {
		config.LogError(logger, "main", "apiclient.New", "build api client", cfg.APIURL, err)
		os.Exit(1)
	}

	reservations, joined, cleanup := newStores(cfg, logger)
	defer cleanup()

	var publisher service.EventPublisher
	if writer := config.NewKafkaWriter(cfg); writer != nil {
		defer writer.Close()
		publisher = events.NewKafkaPublisher(writer)
		logger.WithField("topic", cfg.KafkaTopic).Info("publishing board events to kafka")
	}

	board := service.NewBoardService(client, reservations, joined, publisher, service.Options{
		BranchID:      cfg.BranchID,
		OrderEntryURL: cfg.OrderEntryURL,
		PaymentURL:    cfg.PaymentURL,
		Logger:        logger,
	})

	handler := httpapi.NewHandler(board, client, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if reader := config.NewKafkaReader(cfg); reader != nil {
		defer reader.Close()
		rdb := config.MustInitRedis(cfg, logger)
		defer rdb.Close()

		activity := storage.NewRedisActivityStore(rdb)
		handler.Activity = activity
		handler.BranchID = cfg.BranchID
		go events.NewConsumer(reader, activity, logger).Start(ctx)
	}

	if err := httpapi.StartServer(ctx, ":"+cfg.Port, httpapi.NewRouter(handler), logger); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

// newCookieJar seeds the backend session so CSRF and auth cookies ride along
// with every request.
func newCookieJar(cfg config.Config) (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(cfg.APIURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}

	var cookies []*http.Cookie
	if cfg.SessionID != "" {
		cookies = append(cookies, &http.Cookie{Name: "sessionid", Value: cfg.SessionID, Path: "/"})
	}
	if cfg.CSRFToken != "" {
		cookies = append(cookies, &http.Cookie{Name: "csrftoken", Value: cfg.CSRFToken, Path: "/"})
	}
	if len(cookies) > 0 {
		jar.SetCookies(base, cookies)
	}
	return jar, nil
}

func newStores(cfg config.Config, logger *logrus.Logger) (service.ReservationStore, service.JoinedTableStore, func()) {
	switch cfg.StoreDriver {
	case "redis":
		client := config.MustInitRedis(cfg, logger)
		logger.WithField("addr", cfg.RedisHost+":"+cfg.RedisPort).Info("using redis store")
		return storage.NewRedisReservationStore(client, cfg.BranchID),
			storage.NewRedisJoinedTableStore(client, cfg.BranchID),
			func() { client.Close() }
	case "postgres":
		db := config.MustInitPostgres(cfg, logger)
		if err := storage.Migrate(context.Background(), db); err != nil {
			logger.WithError(err).Fatal("failed to migrate database")
		}
		logger.WithField("db", cfg.DBName).Info("using postgres store")
		return storage.NewPostgresReservationStore(db, cfg.BranchID),
			storage.NewPostgresJoinedTableStore(db, cfg.BranchID),
			closeDB(db)
	default:
		if cfg.StoreDriver != "memory" {
			logger.WithField("driver", cfg.StoreDriver).Warn("unknown store driver, using memory")
		}
		return storage.NewMemoryReservationStore(), storage.NewMemoryJoinedTableStore(), func() {}
	}
}

func closeDB(db *sql.DB) func() {
	return func() { db.Close() }
}
