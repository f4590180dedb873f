package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	"go.uber.org/zap"
)

type Config struct {
	User       string
	Password   string
	Host       string
	Port       int
	Name       string
	DisableTLS bool
	Timeout    time.Duration
	Debug      bool
}

// Database is embedded by every postgres repository.
type Database struct {
	*bun.DB
	log *zap.Logger
}

func New(cfg Config, log *zap.Logger) (*Database, error) {
	opts := []pgdriver.Option{
		pgdriver.WithAddr(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		pgdriver.WithUser(cfg.User),
		pgdriver.WithPassword(cfg.Password),
		pgdriver.WithDatabase(cfg.Name),
		pgdriver.WithApplicationName("manpower-backend"),
		pgdriver.WithInsecure(cfg.DisableTLS),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, pgdriver.WithTimeout(cfg.Timeout))
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(opts...))
	db := bun.NewDB(sqldb, pgdialect.New())

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	database := &Database{DB: db, log: log}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := database.StatusCheck(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "connecting to postgres")
	}

	log.Info("connected to postgres",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Name))

	return database, nil
}

func (d *Database) StatusCheck(ctx context.Context) error {
	var ok int
	return d.QueryRowContext(ctx, "SELECT 1").Scan(&ok)
}

func (d *Database) Log() *zap.Logger {
	return d.log
}
