package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"manpower/backend/foundation/web"
	"manpower/backend/internal/commands"
	"manpower/backend/internal/middleware"
	"manpower/backend/internal/pkg/config"
	"manpower/backend/internal/pkg/logger"
	"manpower/backend/internal/pkg/repository/postgresql"
	"manpower/backend/internal/pkg/repository/redisdb"
	"manpower/backend/internal/repository/hrbackend"
	"manpower/backend/internal/repository/wecomapi"
	"manpower/backend/internal/rollup"
	"manpower/backend/internal/router"
	"manpower/backend/internal/service/notify"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.NewConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, config.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		OutputPath: cfg.Log.OutputPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	log.Info("starting manpower service", zap.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// - postgresql
	postgresDB, err := postgresql.New(postgresql.Config{
		User:       cfg.DB.User,
		Password:   cfg.DB.Password,
		Host:       cfg.DB.Host,
		Port:       cfg.DB.Port,
		Name:       cfg.DB.Name,
		DisableTLS: cfg.DB.DisableTLS,
		Timeout:    cfg.DB.Timeout,
		Debug:      cfg.DB.Debug,
	}, log)
	if err != nil {
		return err
	}
	defer postgresDB.Close()

	if err := commands.CheckSchema(ctx, postgresDB); err != nil {
		return errors.Wrap(err, "checking schema")
	}

	// - redis
	var (
		cache   hrbackend.Cache
		redisDB *redis.Client
	)
	if cfg.Redis.Address != "" {
		redisDB, err = redisdb.New(ctx, redisdb.Config{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, log)
		if err != nil {
			return err
		}
		defer redisDB.Close()

		cache = redisdb.NewCache(redisDB, "manpower:hr:", cfg.Redis.CacheTTL)
	} else {
		log.Info("redis not configured, hr backend responses are not cached")
	}

	hr := hrbackend.NewClient(hrbackend.Config{
		BaseURL: cfg.HR.BaseURL,
		Timeout: cfg.HR.Timeout,
	}, cache, log)

	wecom := wecomapi.NewClient(wecomapi.Config{
		BaseURL: cfg.WeCom.APIURL,
		CorpID:  cfg.WeCom.CorpID,
		AgentID: cfg.WeCom.AgentID,
		Secret:  cfg.WeCom.Secret,
		Timeout: cfg.WeCom.Timeout,
	}, log)

	names, err := config.LoadDepartmentNames(cfg.Report.DepartmentNames)
	if err != nil {
		return err
	}
	log.Info("department names loaded", zap.Int("count", len(names)))

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	app := web.NewApp(log, middleware.RequestLogger(log))
	if err := router.NewRouter(app, postgresDB, hr, wecom, cfg, rollup.Names(names)).Init(); err != nil {
		return err
	}

	// - scan notifier
	var wg sync.WaitGroup
	if cfg.Notify.Enabled {
		notifier, err := newNotifier(cfg, redisDB, hr, wecom, log)
		if err != nil {
			return err
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			notifier.Run(ctx)
		}()
	}

	err = app.Serve(ctx, cfg.Web.Address, cfg.Web.ShutdownTimeout)
	stop()
	wg.Wait()

	return err
}

func newNotifier(cfg *config.Config, redisDB *redis.Client, hr *hrbackend.Client, wecom *wecomapi.Client, log *zap.Logger) (*notify.Service, error) {
	loc, err := time.LoadLocation(cfg.Notify.TimeZone)
	if err != nil {
		return nil, errors.Wrap(err, "loading notify time zone")
	}

	var store notify.Store
	if redisDB != nil {
		store = redisdb.NewCache(redisDB, "manpower:notify:", cfg.Notify.StateTTL)
	} else {
		log.Warn("redis not configured, scan notification state is kept in memory")
		store = notify.NewMemoryStore()
	}

	return notify.NewService(hr, wecom, store, notify.Config{
		Interval: cfg.Notify.Interval,
		Location: loc,
	}, log), nil
}
