package main

import (
	"context"
	"database/sql"
	"errors"
	"ev-route-planner/internal/adapters/backend"
	"ev-route-planner/internal/adapters/cache"
	"ev-route-planner/internal/adapters/geocode"
	"ev-route-planner/internal/adapters/geolocate"
	"ev-route-planner/internal/api"
	"ev-route-planner/internal/config"
	"ev-route-planner/internal/domain"
	"ev-route-planner/internal/planner"
	"ev-route-planner/internal/platform/db"
	"ev-route-planner/internal/platform/logging"
	"ev-route-planner/internal/ports"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// main is the composition root. It wires concrete adapters behind ports,
// builds the session and serves the HTTP facade.
func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logrus.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	router, err := backend.NewRoutingClient(cfg.Router.URL, cfg.Router.Timeout)
	if err != nil {
		return err
	}

	geocoder, closeCache, err := buildGeocoder(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	session := planner.NewSession(planner.Deps{
		Geocoder: geocoder,
		Router:   router,
		Stations: router,
		Debounce: cfg.Search.Debounce,
		Center:   domain.Coordinate{Lat: cfg.Map.DefaultLat, Lon: cfg.Map.DefaultLon},
	})
	defer session.Close()

	session.Waypoints.Subscribe(func(ev planner.Event) {
		logrus.WithFields(logrus.Fields{
			"start": describe(ev.Start),
			"goal":  describe(ev.Goal),
		}).Debug("waypoints changed")
	})

	center := session.Startup(ctx, buildLocator(cfg), cfg.Geolocation.Timeout)
	logrus.WithFields(logrus.Fields{
		"center": center.Coordinate.String(),
		"source": center.Source,
	}).Info("map centre chosen")

	var hook planner.ResetHook
	hook.Register(session)
	hook.Install(ctx, resetSignals...)

	// Timeouts leave room for slow route computations on the backend.
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           api.NewRouter(session, hook.Trigger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{
			"addr":    srv.Addr,
			"session": session.ID,
			"router":  cfg.Router.URL,
		}).Info("Server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildGeocoder returns the ORS geocoder, wrapped by the configured suggestion cache.
func buildGeocoder(ctx context.Context, cfg *config.Config) (ports.Geocoder, func(), error) {
	ors, err := geocode.NewORSGeocoder(cfg.Geocoder.URL, cfg.Geocoder.APIKey, cfg.Geocoder.Country, cfg.Geocoder.Timeout)
	if err != nil {
		return nil, nil, err
	}
	noop := func() {}

	switch cfg.Cache.Backend {
	case config.CacheRedis:
		rc, err := cache.ConnectRedis(ctx, cfg.Cache.RedisAddr, cfg.Cache.TTL)
		if err != nil {
			return nil, nil, err
		}
		return geocode.NewCachingGeocoder(ors, rc), func() { _ = rc.Close() }, nil

	case config.CachePostgres:
		conn, err := db.Open(cfg.Cache.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := cache.InitSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return geocode.NewCachingGeocoder(ors, cache.NewSQLSuggestionCache(conn, cfg.Cache.TTL)), closeDB(conn), nil
	}

	return ors, noop, nil
}

func closeDB(conn *sql.DB) func() {
	return func() {
		if err := conn.Close(); err != nil {
			logrus.WithError(err).Warn("close cache database")
		}
	}
}

func buildLocator(cfg *config.Config) ports.Locator {
	if cfg.Geolocation.Static != "" {
		// Already checked by config validation.
		c, _ := domain.ParseCoordinate(cfg.Geolocation.Static)
		return geolocate.StaticLocator{Coordinate: c}
	}
	if cfg.Geolocation.URL == "" {
		return nil
	}
	loc, err := geolocate.NewIPLocator(cfg.Geolocation.URL, cfg.Geolocation.Timeout)
	if err != nil {
		logrus.WithError(err).Warn("geolocation disabled")
		return nil
	}
	return geolocate.NewCachedLocator(loc, cfg.Geolocation.MaxAge)
}

func describe(w domain.Waypoint) string {
	switch {
	case !w.IsSet():
		return "-"
	case w.Name != "":
		return w.Name
	default:
		return w.Coordinates.String()
	}
}
