package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kailas-cloud/idxadvisor/internal/db"
	"github.com/kailas-cloud/idxadvisor/internal/metrics"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for a MongoDB store.
type Config struct {
	URI                    string
	Database               string
	AppName                string
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
}

// Store implements db.Store via the official MongoDB driver.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	admin  *mongo.Database
}

// NewStore connects a MongoDB client. The driver connects lazily; use WaitForReady to block.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("uri is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("database is required")
	}

	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.AppName != "" {
		opts.SetAppName(cfg.AppName)
	}
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
	}
	if cfg.ServerSelectionTimeout > 0 {
		opts.SetServerSelectionTimeout(cfg.ServerSelectionTimeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return newStore(client, cfg.Database), nil
}

func newStore(client *mongo.Client, database string) *Store {
	return &Store{
		client: client,
		db:     client.Database(database),
		admin:  client.Database("admin"),
	}
}

// Ping checks connectivity against the primary.
func (s *Store) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.client.Ping(ctx, readpref.Primary())
	observe(db.OpPing, start, err)
	if err != nil {
		return wrapErr(db.OpPing, err)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.client.Disconnect(ctx)
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func observe(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.StoreCommandDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
}

// wrapErr attaches the op and server code; timeouts and network failures also match db.ErrUnavailable.
func wrapErr(op string, err error) error {
	e := &db.Error{Op: op, Code: serverCode(err), Err: err}
	if isUnavailable(err) {
		return fmt.Errorf("%w: %w", db.ErrUnavailable, e)
	}
	if e.Code == db.CodeNamespaceNotFound {
		return fmt.Errorf("%w: %w", db.ErrNamespaceNotFound, e)
	}
	return e
}

func serverCode(err error) int32 {
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		return ce.Code
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		if we.WriteConcernError != nil {
			return int32(we.WriteConcernError.Code)
		}
		if len(we.WriteErrors) > 0 {
			return int32(we.WriteErrors[0].Code)
		}
	}
	return 0
}

func isUnavailable(err error) bool {
	return mongo.IsTimeout(err) ||
		mongo.IsNetworkError(err) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, mongo.ErrClientDisconnected)
}

// classifyCreateErr maps createIndexes failures: server codes first, message text last.
func classifyCreateErr(err error) error {
	e := &db.Error{Op: db.OpCreateIndexes, Code: serverCode(err), Err: err}
	switch e.Code {
	case db.CodeIndexAlreadyExists:
		return fmt.Errorf("%w: %w", db.ErrIndexExists, e)
	case db.CodeDuplicateKey:
		return fmt.Errorf("%w: %w", db.ErrDuplicateKey, e)
	case db.CodeIndexOptionsConflict, db.CodeIndexKeySpecsConflict:
		return fmt.Errorf("%w: %w", db.ErrIndexConflict, e)
	}
	if isUnavailable(err) {
		return fmt.Errorf("%w: %w", db.ErrUnavailable, e)
	}
	if strings.Contains(strings.ToLower(err.Error()), "already exists") {
		return fmt.Errorf("%w: %w", db.ErrIndexExists, e)
	}
	return e
}
