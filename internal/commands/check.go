package commands

import (
	"context"
	"strings"

	"manpower/backend/internal/pkg/repository/postgresql"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Scheme struct {
	Index       int
	Description string
	Query       string
}

// scheme lists the relations the service reads. Each query yields the
// relation name, or NULL when it does not exist.
var scheme = []Scheme{
	{
		Index:       1,
		Description: "View: vw_manpower",
		Query:       `SELECT to_regclass('public.vw_manpower')::text`,
	},
	{
		Index:       2,
		Description: "View: vw_manpower_detail",
		Query:       `SELECT to_regclass('public.vw_manpower_detail')::text`,
	},
}

type lookupFunc func(ctx context.Context, query string) (*string, error)

// CheckSchema verifies that every relation the service reads exists.
func CheckSchema(ctx context.Context, db *postgresql.Database) error {
	lookup := func(ctx context.Context, query string) (*string, error) {
		var name *string
		err := db.QueryRowContext(ctx, query).Scan(&name)
		return name, err
	}

	return checkScheme(ctx, scheme, lookup, db.Log())
}

func checkScheme(ctx context.Context, schemes []Scheme, lookup lookupFunc, log *zap.Logger) error {
	var missing []string

	for _, s := range schemes {
		name, err := lookup(ctx, s.Query)
		if err != nil {
			return errors.Wrapf(err, "checking %d %s", s.Index, s.Description)
		}
		if name == nil || *name == "" {
			log.Error("schema check failed", zap.Int("index", s.Index), zap.String("description", s.Description))
			missing = append(missing, s.Description)
			continue
		}
		log.Debug("schema check passed", zap.Int("index", s.Index), zap.String("relation", *name))
	}

	if len(missing) > 0 {
		return errors.Errorf("missing relations: %s", strings.Join(missing, ", "))
	}

	return nil
}
