package base

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotConnected пул ещё не открыт вызовом Acquire
var ErrNotConnected = errors.New("database not connected")

// Connector лениво открывает пул соединений; Acquire идемпотентен
type Connector struct {
	dsn  string
	mu   sync.Mutex
	pool *pgxpool.Pool
}

// NewConnector создаёт коннектор для dsn
func NewConnector(dsn string) *Connector {
	return &Connector{dsn: dsn}
}

// Acquire открывает пул при первом вызове и проверяет соединение.
// После неудачи следующий вызов пробует снова.
func (c *Connector) Acquire(ctx context.Context) (*pgxpool.Pool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pool != nil {
		return c.pool, nil
	}

	pool, err := pgxpool.New(ctx, c.dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	c.pool = pool
	return pool, nil
}

// Pool возвращает пул соединений или ErrNotConnected
func (c *Connector) Pool() (*pgxpool.Pool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pool == nil {
		return nil, ErrNotConnected
	}
	return c.pool, nil
}

// Close закрывает пул, если он был открыт
func (c *Connector) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
}

// IsNotFound проверяет является ли ошибка "строка не найдена"
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
