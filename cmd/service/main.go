package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gitlab.com/dirk.krummacker/favorite-contacts/internal/api"
	"gitlab.com/dirk.krummacker/favorite-contacts/internal/config"
	"gitlab.com/dirk.krummacker/favorite-contacts/internal/identity"
	"gitlab.com/dirk.krummacker/favorite-contacts/internal/logger"
	"gitlab.com/dirk.krummacker/favorite-contacts/internal/service"
	"gitlab.com/dirk.krummacker/favorite-contacts/internal/store"
	"gitlab.com/dirk.krummacker/favorite-contacts/internal/store/filestore"
	"gitlab.com/dirk.krummacker/favorite-contacts/internal/store/mongostore"
	"gitlab.com/dirk.krummacker/favorite-contacts/internal/store/sqlstore"
)

// Usage example on the command line:
// > PORT=8080 STORAGE_BACKEND=file CONTACTS_FILE=contacts.json GIN_MODE=release GIN_LOGGING=OFF go run main.go
// > PORT=8080 STORAGE_BACKEND=mysql DBUSER=dirk DBPWD=bullo92 go run main.go
func main() {
	// Variables from a .env file never override the real environment.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	log := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	contacts, ids, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Error("could not open contact store", "backend", cfg.Backend, "err", err)
		os.Exit(1)
	}
	defer closeStore()
	log.Info("contact store opened", "backend", cfg.Backend)

	if !cfg.RequestLogging {
		log.Info("turning off HTTP request logging")
	}
	gin.DefaultWriter = slog.NewLogLogger(log.Handler(), slog.LevelDebug).Writer()
	router := api.SetupHttpRouter(service.New(contacts, ids), api.Options{
		Logger:         log,
		RequestLogging: cfg.RequestLogging,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelError),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("could not shutdown the server", "err", err)
		}
	}()

	log.Info("listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Error("failed to listen and serve", "err", err)
		os.Exit(1)
	}
	log.Info("server closed")
}

// openStore opens the configured backend together with its identifier policy. The returned
// function releases the backend.
func openStore(ctx context.Context, cfg config.Config) (store.Store, identity.Policy, func(), error) {
	switch cfg.Backend {
	case config.BackendMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		s, err := mongostore.Connect(connectCtx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, identity.ObjectID{}, func() { _ = s.Close(context.Background()) }, nil

	case config.BackendMySQL:
		sqlDB, err := sqlstore.Open(sqlstore.Config(cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBName))
		if err != nil {
			return nil, nil, nil, err
		}
		s, err := sqlstore.New(sqlDB)
		if err != nil {
			sqlDB.Close()
			return nil, nil, nil, err
		}
		return s, identity.Generated{}, func() { _ = s.Close() }, nil

	default:
		s, err := filestore.New(cfg.ContactsFile)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, identity.Generated{}, func() {}, nil
	}
}
