// Package config provides functionality for managing configuration options
// for the application using command-line flags, environment variables and
// an optional JSON config file.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/tcordeiro/pediatria/internal/models"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr defines the listening address (ip:port) of the local API.
	Addr string

	// DataFile is the path of the JSON data file backing the record store.
	DataFile string

	// QuotaBytes caps the data file size; zero means the default quota.
	QuotaBytes int

	// LogLevel selects the zap log level.
	LogLevel string

	// Users overrides the deployment credential table. Empty means the
	// built-in defaults.
	Users []models.User

	// Config is the path to the Config file.
	Config string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Addr, "a", "localhost:8080", "run on ip:port")
	flag.StringVar(&options.DataFile, "f", "pediatria.json", "path to the data file")
	flag.IntVar(&options.QuotaBytes, "q", 0, "data file quota in bytes (0 = default)")
	flag.StringVar(&options.LogLevel, "l", "info", "log level")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct
// containing the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Addr = serverAddress
	}
	if dataFile := os.Getenv("DATA_FILE"); dataFile != "" {
		options.DataFile = dataFile
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		options.LogLevel = logLevel
	}

	return options
}
