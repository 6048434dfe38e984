package db

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
)

// Postgres is a Backend over a single pgx connection. Calls are
// serialized since a pgx.Conn serves one query at a time.
type Postgres struct {
	mu         sync.Mutex
	conn       *pgx.Conn
	connString string
	host       string
	port       string
	user       string
	database   string
	timeout    time.Duration
}

var _ Backend = (*Postgres)(nil)

// Connect establishes a PostgreSQL connection with a 10-second timeout.
func Connect(ctx context.Context, host, port, user, password, database string) (*Postgres, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=prefer",
		url.QueryEscape(user), url.QueryEscape(password), host, port, database)
	return dial(ctx, connStr, host, port, user, database)
}

// ConnectURI establishes a PostgreSQL connection from a raw URI string.
func ConnectURI(ctx context.Context, uri string) (*Postgres, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid URI: %w", err)
	}
	port := parsed.Port()
	if port == "" {
		port = "5432"
	}
	q := parsed.Query()
	if q.Get("sslmode") == "" {
		q.Set("sslmode", "prefer")
		parsed.RawQuery = q.Encode()
	}
	return dial(ctx, parsed.String(), parsed.Hostname(), port,
		parsed.User.Username(), strings.TrimPrefix(parsed.Path, "/"))
}

func dial(ctx context.Context, connStr, host, port, user, database string) (*Postgres, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, err
	}
	return &Postgres{
		conn:       conn,
		connString: connStr,
		host:       host,
		port:       port,
		user:       user,
		database:   database,
		timeout:    30 * time.Second,
	}, nil
}

// Reconnect closes the existing connection and re-establishes it using the
// original connection string.
func (d *Postgres) Reconnect(ctx context.Context) error {
	d.Close()
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, d.connString)
	if err != nil {
		return err
	}
	d.conn = conn
	return nil
}

// Close closes the database connection.
func (d *Postgres) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	d.conn.Close(ctx)
	d.conn = nil
}

// IsConnected checks if the connection is alive.
func (d *Postgres) IsConnected(ctx context.Context) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return d.conn.Ping(ctx) == nil
}

// Database returns the current database name.
func (d *Postgres) Database() string { return d.database }

// Name returns a display-safe connection string (no password).
func (d *Postgres) Name() string {
	return fmt.Sprintf("postgres://%s@%s:%s/%s", d.user, d.host, d.port, d.database)
}

func (d *Postgres) Placeholder(n int) string { return "$" + strconv.Itoa(n) }
