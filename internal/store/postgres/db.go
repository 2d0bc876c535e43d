package postgres

import (
	"context"

	"tvcatalog/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

func MustOpen(ctx context.Context, cfg config.DBCfg) *pgxpool.Pool {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db config parse fail")
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect fail")
	}
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("db ping fail")
	}
	return pool
}
