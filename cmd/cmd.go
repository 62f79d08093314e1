package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anicoll/loxone-integration/internal/pkg/bridge"
	"github.com/anicoll/loxone-integration/internal/pkg/catalog"
	"github.com/anicoll/loxone-integration/internal/pkg/config"
	"github.com/anicoll/loxone-integration/internal/pkg/contxt"
	"github.com/anicoll/loxone-integration/internal/pkg/database"
	"github.com/anicoll/loxone-integration/internal/pkg/database/migration"
	"github.com/anicoll/loxone-integration/internal/pkg/loxone"
	"github.com/anicoll/loxone-integration/internal/pkg/model"
	"github.com/anicoll/loxone-integration/internal/pkg/mqtt"
	"github.com/anicoll/loxone-integration/internal/pkg/publisher"
	"github.com/anicoll/loxone-integration/internal/pkg/registry"
	"github.com/anicoll/loxone-integration/internal/pkg/server"
)

var (
	ErrConnect  = errors.New("unable to connect to relay")
	ErrNoLights = errors.New("structure file describes no lights")
	errCron     = errors.New("cron error")
)

func LightsCommand(ctx *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlags(ctx, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	return run(ctx.Context, cfg)
}

// applyFlags lets command line flags override the environment.
func applyFlags(ctx *cli.Context, cfg *config.Config) {
	str := func(name string, dst *string) {
		if ctx.IsSet(name) {
			*dst = ctx.String(name)
		}
	}
	str("log-level", &cfg.LogLevel)
	str("structure-file", &cfg.StructureFile)
	str("http-addr", &cfg.HTTPAddr)
	str("relay-url", &cfg.RelayCfg.URL)
	str("mqtt-host", &cfg.MqttCfg.Host)
	str("mqtt-user", &cfg.MqttCfg.Username)
	str("mqtt-pass", &cfg.MqttCfg.Password)
	str("database-url", &cfg.DatabaseCfg.URL)
	str("migrations-folder", &cfg.DatabaseCfg.MigrationsFolder)
	if ctx.IsSet("relay-insecure") {
		cfg.RelayCfg.InsecureSkipVerify = ctx.Bool("relay-insecure")
	}
}

func newLogger(level string) (*zap.Logger, error) {
	logCfg := zap.NewProductionConfig()

	var err error
	logCfg.Level, err = zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	logCfg.OutputPaths = []string{"stdout"}
	logCfg.ErrorOutputPaths = []string{"stdout"}
	logCfg.Sampling = nil
	return logCfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync() // flushes buffer, if any.
	}()
	zap.ReplaceGlobals(logger)

	structure, err := catalog.Load(cfg.StructureFile)
	if err != nil {
		return err
	}
	reg := registry.New(registry.WithLogger(logger))
	if err := catalog.New(structure, catalog.WithLogger(logger)).Populate(reg); err != nil {
		logger.Warn("some lights were not loaded", zap.Error(err))
	}
	if reg.Len() == 0 {
		return ErrNoLights
	}

	pub := publisher.New(publisher.WithLogger(logger))

	var history *database.Database
	if cfg.DatabaseCfg.URL != "" {
		if err := migration.Migrate(cfg.DatabaseCfg.URL, cfg.DatabaseCfg.MigrationsFolder); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		history, err = database.Connect(ctx, cfg.DatabaseCfg.URL, database.WithRetention(cfg.DatabaseCfg.Retention()))
		if err != nil {
			return err
		}
		defer history.Close()
		if err := pub.Register("postgres", history); err != nil {
			return err
		}
	}

	var mqttSvc mqttService
	if cfg.MqttCfg.Host != "" {
		svc := mqtt.New(newMqttClient(cfg.MqttCfg),
			mqtt.WithDiscoveryPrefix(cfg.MqttCfg.DiscoveryPrefix),
			mqtt.WithLogger(logger),
		)
		if err := svc.Connect(); err != nil {
			return fmt.Errorf("connect to mqtt: %w", err)
		}
		defer svc.Disconnect()
		if err := pub.Register("mqtt", svc); err != nil {
			return err
		}
		mqttSvc = svc
	}

	errorChan := make(chan error, 1000)

	// The relay hands events to the bridge, and the bridge sends commands
	// through the relay.
	var lights *bridge.Service
	relayOpts := []func(*loxone.Service){
		loxone.WithLogger(logger),
		loxone.WithPingInterval(cfg.RelayCfg.PingInterval),
	}
	if cfg.RelayCfg.InsecureSkipVerify {
		relayOpts = append(relayOpts, loxone.InsecureSkipVerify())
	}
	relay := loxone.New(cfg.RelayCfg.URL, func(ctx context.Context, ev model.Event) error {
		return lights.HandleEvent(ctx, ev)
	}, errorChan, relayOpts...)
	lights = bridge.New(reg, pub, relay, bridge.WithLogger(logger))

	var reader historyReader
	if history != nil {
		reader = history
	}

	eg, ctx := errgroup.WithContext(ctx)
	if history != nil {
		eg.Go(func() error {
			return cronDbCleanup(ctx, history, cfg.DatabaseCfg.CleanupSchedule, errorChan)
		})
	}
	if mqttSvc != nil {
		eg.Go(func() error {
			return mqttSvc.Subscribe(ctx, lights.Execute)
		})
	}
	eg.Go(func() error {
		return serve(ctx, cfg, relay, lights, reader, errorChan, logger)
	})
	return eg.Wait()
}

type mqttService interface {
	Subscribe(ctx context.Context, handler mqtt.CommandHandler) error
}

type historyReader interface {
	GetStateHistory(ctx context.Context, uuid model.Identifier, limit int) ([]model.StateSnapshot, error)
}

func newMqttClient(cfg config.MqttConfig) paho_mqtt.Client {
	opts := paho_mqtt.NewClientOptions().
		AddBroker(cfg.Host).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetCleanSession(false).
		SetResumeSubs(true)
	return paho_mqtt.NewClient(opts)
}

// serve runs the bridge loop, keeps the relay connected, serves the HTTP API
// and watches for fatal async errors until ctx is done.
func serve(ctx context.Context, cfg *config.Config, relay RelayService, lights *bridge.Service, history historyReader, errorChan chan error, logger *zap.Logger) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return lights.Run(ctx)
	})

	eg.Go(func() error {
		defer relay.Close()
		for {
			if err := relay.Connect(ctx); err != nil {
				return fmt.Errorf("%w: %w", ErrConnect, err)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case err := <-relay.Disconnected():
				logger.Error("relay disconnected", zap.Error(err))
			}
			_ = relay.Close()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.RelayCfg.ReconnectDelay):
			}
		}
	})

	srv := &http.Server{
		Handler:      server.New(lights, history),
		Addr:         cfg.HTTPAddr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		return srv.Shutdown(contxt.NewContext(5 * time.Second))
	})

	eg.Go(func() error {
		// handle any async errors from services
		for {
			select {
			case err := <-errorChan:
				if errors.Is(err, errCron) {
					logger.Error("cron error", zap.Error(err))
					return err
				}
				logger.Warn("async error", zap.Error(err))
			case <-ctx.Done():
				logger.Info("context done")
				return ctx.Err()
			}
		}
	})

	return eg.Wait()
}

type cleaner interface {
	Cleanup(ctx context.Context) (int64, error)
}

func cronDbCleanup(ctx context.Context, db cleaner, schedule string, errChan chan error) error {
	cleanup := func() error {
		removed, err := db.Cleanup(contxt.WithTimeout(ctx, time.Minute))
		if err != nil {
			return err
		}
		zap.L().Info("cleaned up light state history", zap.Int64("removed", removed))
		return nil
	}
	if err := cleanup(); err != nil {
		return err
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if err := cleanup(); err != nil {
			zap.L().Error("error cleaning up database", zap.Error(err))
			errChan <- fmt.Errorf("%w: %w", errCron, err)
		}
	}); err != nil {
		return err
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
