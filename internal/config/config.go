package config

import (
	"fmt"
	"time"
)

const defaultMinMessageInterval = 500 * time.Millisecond

type Config struct {
	ServerAddr         string
	DatabaseDSN        string
	StaticDir          string
	AllowedOrigins     []string
	MinMessageInterval time.Duration
}

func NewConfig(serverAddr, databaseDSN, staticDir string, allowedOrigins []string) (*Config, error) {
	if serverAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if databaseDSN == "" {
		return nil, fmt.Errorf("database DSN cannot be empty")
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	return &Config{
		ServerAddr:         serverAddr,
		DatabaseDSN:        databaseDSN,
		StaticDir:          staticDir,
		AllowedOrigins:     allowedOrigins,
		MinMessageInterval: defaultMinMessageInterval,
	}, nil
}
