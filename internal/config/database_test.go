package config

import (
	"context"
	"testing"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN(DatabaseConfig{
		Host:     "db.internal",
		Port:     "3307",
		User:     "assets",
		Password: "p@ss:word/1",
		DBName:   "it_asset_management",
	})

	parsed, err := gomysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "assets", parsed.User)
	assert.Equal(t, "p@ss:word/1", parsed.Passwd)
	assert.Equal(t, "db.internal:3307", parsed.Addr)
	assert.Equal(t, "it_asset_management", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, "utf8mb4", parsed.Params["charset"])
}

func TestHealthCheck_NotInitialized(t *testing.T) {
	saved := DB
	DB = nil
	defer func() { DB = saved }()

	assert.Error(t, HealthCheck(context.Background()))
	assert.NoError(t, CloseDatabase())
}
