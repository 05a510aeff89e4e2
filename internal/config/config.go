// Package config reads the service configuration from environment variables.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Storage backends.
const (
	BackendFile  = "file"
	BackendMongo = "mongo"
	BackendMySQL = "mysql"
)

// Config is the complete service configuration.
type Config struct {
	Host              string
	Port              int
	ReadHeaderTimeout time.Duration
	RequestLogging    bool

	Backend string

	ContactsFile string

	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	DBUser     string
	DBPassword string
	DBHost     string
	DBName     string

	LogLevel  string
	LogFormat string
	LogFile   string
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Load builds the configuration from getenv, usually os.Getenv. Unset variables take their
// defaults.
//
// Usage example:
//
//	> PORT=8080 STORAGE_BACKEND=mongo MONGO_URI=mongodb://localhost:27017 GIN_LOGGING=off go run main.go
func Load(getenv func(string) string) (Config, error) {
	env := func(key, fallback string) string {
		if value := getenv(key); value != "" {
			return value
		}
		return fallback
	}

	c := Config{
		Host:            getenv("HOST"),
		RequestLogging:  !strings.EqualFold(getenv("GIN_LOGGING"), "off"),
		Backend:         strings.ToLower(env("STORAGE_BACKEND", BackendFile)),
		ContactsFile:    env("CONTACTS_FILE", "contacts.json"),
		MongoURI:        env("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   env("MONGO_DB", "contacts"),
		MongoCollection: env("MONGO_COLLECTION", "contacts"),
		DBUser:          env("DBUSER", "-"),
		DBPassword:      getenv("DBPWD"),
		DBHost:          env("DBHOST", "localhost:3306"),
		DBName:          env("DBNAME", "contacts"),
		LogLevel:        getenv("LOG_LEVEL"),
		LogFormat:       env("LOG_FORMAT", "text"),
		LogFile:         getenv("LOG_FILE"),
	}

	port, err := strconv.Atoi(env("PORT", "8080"))
	if err != nil || port < 1 || port > 65535 {
		return Config{}, fmt.Errorf("could not parse PORT env variable %q", getenv("PORT"))
	}
	c.Port = port

	c.ReadHeaderTimeout, err = time.ParseDuration(env("READ_HEADER_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("could not parse READ_HEADER_TIMEOUT env variable: %w", err)
	}

	switch c.Backend {
	case BackendFile, BackendMongo, BackendMySQL:
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_BACKEND %q, expected %s, %s or %s",
			c.Backend, BackendFile, BackendMongo, BackendMySQL)
	}
	return c, nil
}
