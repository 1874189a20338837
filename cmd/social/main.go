package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/flarexio/core/events"
	"github.com/flarexio/core/pubsub"
	"github.com/gin-gonic/gin"
	"github.com/go-kit/kit/metrics"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go/micro"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/flarexio/social"
	"github.com/flarexio/social/conf"
	"github.com/flarexio/social/discovery"
	"github.com/flarexio/social/persistence"

	transHTTP "github.com/flarexio/social/transport/http"
	transPubSub "github.com/flarexio/social/transport/pubsub"
)

var (
	Version   string = "0.0.0"
	BuildTime string
	GitCommit string
)

var versionCmd = &cli.Command{
	Name:    "version",
	Aliases: []string{"ver", "v"},
	Usage:   "Show version",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "all",
			Aliases: []string{"a"},
			Usage:   "Show all information (include: Version, BuildTime, GitCommit)",
			Value:   false,
		},
	},
	Action: func(ctx *cli.Context) error {
		if !ctx.Bool("all") {
			fmt.Println(ctx.App.Version)
		} else {
			cli.ShowVersion(ctx)
		}
		return nil
	},
}

var migrateCmd = &cli.Command{
	Name:  "migrate",
	Usage: "Open the configured store and migrate its schema",
	Action: func(cli *cli.Context) error {
		cfg, log, err := setup(cli)
		if err != nil {
			return err
		}
		defer log.Sync()

		repo, err := persistence.NewRepository(cfg.Persistence)
		if err != nil {
			return err
		}

		log.Info("migrated",
			zap.String("infra", "persistence"),
			zap.String("driver", cfg.Persistence.Driver.String()),
		)

		return repo.Close()
	},
}

func main() {
	godotenv.Load()

	cli.VersionPrinter = func(cli *cli.Context) {
		fmt.Println("Version: " + cli.App.Version)
		fmt.Println("BuildTime: " + BuildTime)
		fmt.Println("GitCommit: " + GitCommit)
	}

	app := &cli.App{
		Name:     "social",
		Usage:    "User accounts and friendships for game services",
		Version:  Version,
		Commands: []*cli.Command{versionCmd, migrateCmd},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "path",
				Usage:   "Specifies the working directory",
				EnvVars: []string{"SOCIAL_PATH"},
			},
			&cli.IntFlag{
				Name:    "port",
				Usage:   "Specifies the HTTP service port",
				Value:   8080,
				EnvVars: []string{"SOCIAL_HTTP_PORT"},
			},
			&cli.StringFlag{
				Name:    "nats",
				Usage:   "Specifies the NATS server URL",
				EnvVars: []string{"NATS_URL"},
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup(cli *cli.Context) (*conf.Config, *zap.Logger, error) {
	if err := conf.LoadEnv(cli); err != nil {
		return nil, nil, err
	}

	cfg, err := conf.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	conf.ReplaceGlobals(cfg)

	log, err := NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, err
	}

	zap.ReplaceGlobals(log)
	return cfg, log, nil
}

func NewLogger(cfg conf.Log) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}

	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}

		zcfg.Level = level
	}

	return zcfg.Build()
}

// NewEndpoints wraps the service in its middlewares and guards every
// endpoint with the circuit breaker. Events are notified to the global
// pubsub only when notify is set.
func NewEndpoints(cfg *conf.Config, repo persistence.Repository,
	counter metrics.Counter, latency metrics.Histogram, notify bool, log *zap.Logger) social.EndpointSet {

	svc := social.NewService(repo, repo)
	svc = social.LoggingMiddleware(log)(svc)
	svc = social.InstrumentingMiddleware(counter, latency)(svc)

	if notify {
		svc = social.EventMiddleware(log)(svc)
	}

	breaker := social.CircuitBreaker(cfg.Name, cfg.Breaker, log)
	return social.NewEndpointSet(svc).Wrap(breaker)
}

// serve runs the server until it fails or a signal arrives on quit.
func serve(server *http.Server, quit <-chan os.Signal, log *zap.Logger) error {
	errc := make(chan error, 1)
	go func() {
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	log.Info("http server started", zap.String("addr", server.Addr))

	select {
	case err := <-errc:
		log.Error(err.Error(), zap.String("transport", "http"))
		return err

	case sign := <-quit:
		log.Info("shutdown", zap.String("signal", sign.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return server.Shutdown(ctx)
	}
}

func run(cli *cli.Context) error {
	cfg, log, err := setup(cli)
	if err != nil {
		return err
	}
	defer log.Sync()

	// Add Persistence
	repo, err := persistence.NewRepository(cfg.Persistence)
	if err != nil {
		log.Error(err.Error(),
			zap.String("infra", "persistence"),
			zap.String("driver", cfg.Persistence.Driver.String()),
		)
		return err
	}
	defer repo.Close()

	// Add PubSub and Event Notification
	var ps pubsub.NATSPubSub
	if natsURL := cli.String("nats"); natsURL != "" {
		log := log.With(
			zap.String("infra", "pubsub"),
			zap.String("provider", cfg.EventBus.Provider.String()),
		)

		creds := conf.Path + "/user.creds"

		natsPS, err := pubsub.NewNATSPubSub(natsURL, cfg.Name, creds)
		if err != nil {
			log.Error(err.Error())
			return err
		}
		defer natsPS.Close()

		log.Info("connected")

		ps = natsPS
	}

	notify := cfg.EventBus.Enabled && ps != nil
	if notify {
		events.ReplaceGlobals(ps)
	}

	// Add Service, Middlewares and Endpoints
	counter, latency, err := social.NewPrometheusMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	endpoints := NewEndpoints(cfg, repo, counter, latency, notify, log)

	// Add PubSub Transport
	if ps != nil {
		srv, err := ps.AddService(micro.Config{
			Name:        "social",
			Version:     Version,
			Description: "User accounts and friendships for game services",
			Metadata: map[string]string{
				"id": cfg.Name,
			},
		})
		if err != nil {
			return err
		}
		defer srv.Stop()

		// SUB social.users.add, social.users.get,
		//     social.friends.add, social.friends.list
		if err := transPubSub.AddEndpoints(srv, endpoints); err != nil {
			return err
		}
	}

	// Add HTTP Transport
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	r := transHTTP.NewRouter(endpoints, log, cfg.CORS)

	server := &http.Server{
		Addr:    ":" + strconv.Itoa(conf.Port),
		Handler: r,
	}

	// Add Service Discovery
	if consul := cfg.Discovery.Consul; consul.Enabled {
		registrar, err := discovery.NewConsulRegistrar(consul, cfg.Name, conf.Port, log)
		if err != nil {
			return err
		}

		if err := registrar.Register(); err != nil {
			return err
		}
		defer registrar.Deregister()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	return serve(server, quit, log)
}
