package db

import (
	"testing"

	"github.com/smallbiznis/voltshop/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDSNQuotesValues(t *testing.T) {
	dsn := postgresDSN(config.Config{
		DBHost:     "db.internal",
		DBPort:     "5432",
		DBUser:     "shop",
		DBPassword: "it's secret",
		DBName:     "voltshop",
		DBSSLMode:  "require",
	})
	assert.Equal(t, `host=db.internal port=5432 user=shop password='it\'s secret' dbname=voltshop sslmode=require TimeZone=UTC`, dsn)
}

func TestMySQLDSN(t *testing.T) {
	dsn := mysqlDSN(config.Config{DBHost: "mysql", DBPort: "3306", DBUser: "shop", DBPassword: "pw", DBName: "voltshop"})
	assert.Contains(t, dsn, "shop:pw@tcp(mysql:3306)/voltshop?")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestDialect(t *testing.T) {
	for _, typ := range []string{"postgres", "mysql", "sqlite", ""} {
		d, err := Dialect(config.Config{DBType: typ, DBName: "voltshop"})
		require.NoError(t, err, typ)
		assert.NotNil(t, d)
	}
	_, err := Dialect(config.Config{DBType: "oracle"})
	assert.Error(t, err)
	assert.Equal(t, "voltshop.db", sqlitePath(" voltshop "))
	assert.Equal(t, ":memory:", sqlitePath(":memory:"))
}
