package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"BOOKLOOP_APP_NAME":                        os.Getenv("BOOKLOOP_APP_NAME"),
		"BOOKLOOP_APP_ENV":                         os.Getenv("BOOKLOOP_APP_ENV"),
		"BOOKLOOP_APP_PORT":                        os.Getenv("BOOKLOOP_APP_PORT"),
		"BOOKLOOP_DATABASE_HOST":                   os.Getenv("BOOKLOOP_DATABASE_HOST"),
		"BOOKLOOP_DATABASE_PORT":                   os.Getenv("BOOKLOOP_DATABASE_PORT"),
		"BOOKLOOP_DATABASE_USER":                   os.Getenv("BOOKLOOP_DATABASE_USER"),
		"BOOKLOOP_DATABASE_PASSWORD":               os.Getenv("BOOKLOOP_DATABASE_PASSWORD"),
		"BOOKLOOP_DATABASE_DBNAME":                 os.Getenv("BOOKLOOP_DATABASE_DBNAME"),
		"BOOKLOOP_DATABASE_SSLMODE":                os.Getenv("BOOKLOOP_DATABASE_SSLMODE"),
		"BOOKLOOP_SETTLEMENT_LATE_PENALTY_PER_DAY": os.Getenv("BOOKLOOP_SETTLEMENT_LATE_PENALTY_PER_DAY"),
		"BOOKLOOP_SETTLEMENT_OWNER_REWARD":         os.Getenv("BOOKLOOP_SETTLEMENT_OWNER_REWARD"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "bookloop-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "bookloop", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)

		assert.Equal(t, 0.05, cfg.Settlement.LatePenaltyPerDay)
		assert.Equal(t, 0.50, cfg.Settlement.DamagePenaltyRate)
		assert.Equal(t, int64(10), cfg.Settlement.OwnerReward)
		assert.Equal(t, int64(2), cfg.Settlement.BorrowerReward)
	})

	t.Run("loads values from environment variables with BOOKLOOP prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("BOOKLOOP_APP_NAME", "test-app")
		os.Setenv("BOOKLOOP_APP_PORT", "9000")
		os.Setenv("BOOKLOOP_DATABASE_HOST", "testdb.local")
		os.Setenv("BOOKLOOP_DATABASE_PORT", "5433")
		os.Setenv("BOOKLOOP_SETTLEMENT_OWNER_REWARD", "25")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, int64(25), cfg.Settlement.OwnerReward)
	})

	t.Run("rejects an out of range penalty rate", func(t *testing.T) {
		clearEnv()
		os.Setenv("BOOKLOOP_SETTLEMENT_LATE_PENALTY_PER_DAY", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "late_penalty_per_day")
	})

	t.Run("production requires a database password", func(t *testing.T) {
		clearEnv()
		os.Setenv("BOOKLOOP_APP_ENV", "production")
		os.Setenv("BOOKLOOP_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.example.com",
		Port:     5432,
		User:     "bookloop",
		Password: "p@ss/word",
		DBName:   "bookloop",
		SSLMode:  "require",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.example.com:5432")
	assert.Contains(t, dsn, "sslmode=require")
	// Special characters in the password must be escaped.
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "cache.local", Port: 6380}
	assert.Equal(t, "cache.local:6380", cfg.Addr())
}
