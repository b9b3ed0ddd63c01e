package mongo

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"note-sage/internal/config"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const connectTimeout = 10 * time.Second

var (
	client  *mongo.Client
	db      *mongo.Database
	initErr error
	mu      sync.Mutex

	initOnce     sync.Once
	shutdownOnce sync.Once

	// drv is swapped out in tests
	drv driver = mongoDriver{}
)

// ErrNotInitialized is returned by Shutdown when Init never succeeded.
var ErrNotInitialized = errors.New("mongo client not initialized")

// ErrShutdown is returned by Shutdown after the first shutdown completed.
var ErrShutdown = errors.New("mongo client already shut down")

// Init initializes the MongoDB connection (first call wins, thread-safe).
// On failure both returned handles are nil and the error is cached for
// subsequent callers.
func Init(ctx context.Context, cfg config.Config, log *slog.Logger) (*mongo.Client, *mongo.Database, error) {
	initOnce.Do(func() {
		opts := options.Client().
			ApplyURI(cfg.MongoURI).
			SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
			SetConnectTimeout(connectTimeout).
			SetAppName("note-sage")

		cctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()

		cli, err := drv.Connect(cctx, opts)
		if err != nil {
			log.Error("failed to connect to mongo", "err", err)
			initErr = err
			return
		}

		if err := drv.Ping(cctx, cli); err != nil {
			log.Error("failed to ping mongo", "err", err)
			_ = drv.Disconnect(cctx, cli)
			initErr = err
			return
		}

		mu.Lock()
		client = cli
		db = cli.Database(cfg.MongoDBName)
		mu.Unlock()

		log.Info("successfully connected to mongo", "db", cfg.MongoDBName)
	})

	mu.Lock()
	defer mu.Unlock()
	return client, db, initErr
}

// Client returns the singleton MongoDB client instance.
func Client() *mongo.Client {
	mu.Lock()
	defer mu.Unlock()
	return client
}

// DB returns the singleton MongoDB database instance.
func DB() *mongo.Database {
	mu.Lock()
	defer mu.Unlock()
	return db
}

// Shutdown gracefully shuts down the MongoDB connection.
// The first call disconnects (or reports ErrNotInitialized when nothing
// was ever connected); every later call reports ErrShutdown.
func Shutdown(ctx context.Context) error {
	var err error
	first := false

	shutdownOnce.Do(func() {
		first = true

		mu.Lock()
		defer mu.Unlock()

		if client == nil {
			err = ErrNotInitialized
			return
		}

		dctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		err = drv.Disconnect(dctx, client)

		client = nil
		db = nil
		initErr = nil
	})

	if !first {
		return ErrShutdown
	}
	return err
}
