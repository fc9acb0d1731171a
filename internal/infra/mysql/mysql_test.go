package mysql

import (
	"context"
	"testing"

	driver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"

	"shopify-reconciler/internal/config"
)

func TestDSN(t *testing.T) {
	t.Parallel()

	dsn, err := DSN(config.MysqlConfig{Host: "erp.local", Username: "sync", Password: "p@ss", Database: "erp"})
	require.NoError(t, err)

	parsed, err := driver.ParseDSN(dsn)
	require.NoError(t, err)
	require.Equal(t, "sync", parsed.User)
	require.Equal(t, "p@ss", parsed.Passwd)
	require.Equal(t, "tcp", parsed.Net)
	require.Equal(t, "erp.local:3306", parsed.Addr)
	require.Equal(t, "erp", parsed.DBName)
}

func TestDSNRequiresFields(t *testing.T) {
	t.Parallel()

	_, err := DSN(config.MysqlConfig{Host: "erp.local"})
	require.Error(t, err)

	_, err = New(context.Background(), config.MysqlConfig{})
	require.Error(t, err)
}
