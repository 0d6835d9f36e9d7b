package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	var (
		addr = "localhost:3000"
		dsn  = "host=localhost user=postgres password=postgres dbname=retrochat sslmode=disable"
	)

	tcases := []struct {
		name string
		addr string
		dsn  string
		err  bool
	}{
		{
			name: "valid config",
			addr: addr,
			dsn:  dsn,
			err:  false,
		},
		{
			name: "empty address",
			addr: "",
			dsn:  dsn,
			err:  true,
		},
		{
			name: "empty DSN",
			addr: addr,
			dsn:  "",
			err:  true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.addr, tc.dsn, "", nil)
			if tc.err {
				assert.Error(t, err, "expected error for invalid config")
				assert.Nil(t, cfg, "expected nil config on error")
				return
			}

			assert.NoError(t, err, "expected no error for valid config")
			assert.Equal(t, tc.addr, cfg.ServerAddr, "expected server address to match")
			assert.Equal(t, tc.dsn, cfg.DatabaseDSN, "expected DSN to match")
			assert.Equal(t, []string{"*"}, cfg.AllowedOrigins, "expected wildcard origins by default")
			assert.Equal(t, 500*time.Millisecond, cfg.MinMessageInterval, "expected default message interval")
		})
	}
}
