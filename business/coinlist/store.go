// Package coinlist provides the counter-currency allow/deny lists
// consulted before aggregation.
package coinlist

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/protsenkopavel/CryptoBridge/internal/apperror"
)

// Store reads the whitelist and blacklist of counter-currency symbols.
type Store interface {
	ListWhitelist(ctx context.Context) (map[string]struct{}, error)
	ListBlacklist(ctx context.Context) (map[string]struct{}, error)
}

// PostgresStore reads the lists from a relational store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) ListWhitelist(ctx context.Context) (map[string]struct{}, error) {
	return s.listSymbols(ctx, `SELECT symbol FROM coin_whitelist`)
}

func (s *PostgresStore) ListBlacklist(ctx context.Context) (map[string]struct{}, error) {
	return s.listSymbols(ctx, `SELECT symbol FROM coin_blacklist`)
}

func (s *PostgresStore) listSymbols(ctx context.Context, query string) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, apperror.External(apperror.CodeCoinListQueryFailed, query, err)
	}
	defer rows.Close()

	symbols := make(map[string]struct{})
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, apperror.External(apperror.CodeCoinListQueryFailed, query, err)
		}
		symbols[strings.ToUpper(symbol)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.External(apperror.CodeCoinListQueryFailed, query, err)
	}

	return symbols, nil
}

// StaticStore serves fixed lists. Used when no database is configured
// and in tests.
type StaticStore struct {
	Whitelist map[string]struct{}
	Blacklist map[string]struct{}
}

func (s *StaticStore) ListWhitelist(context.Context) (map[string]struct{}, error) {
	return s.Whitelist, nil
}

func (s *StaticStore) ListBlacklist(context.Context) (map[string]struct{}, error) {
	return s.Blacklist, nil
}
