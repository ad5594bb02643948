package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dbConfig struct {
	url      string
	min, max int
}

func (c dbConfig) GetDatabaseURL() string   { return c.url }
func (c dbConfig) GetDatabaseMaxConns() int { return c.max }
func (c dbConfig) GetDatabaseMinConns() int { return c.min }

func TestPoolConfigAppliesSizing(t *testing.T) {
	pc, err := poolConfig(dbConfig{url: "postgres://u:p@localhost:5432/leads", min: 3, max: 12})
	require.NoError(t, err)

	assert.Equal(t, int32(12), pc.MaxConns)
	assert.Equal(t, int32(3), pc.MinConns)
	assert.Equal(t, time.Hour, pc.MaxConnLifetime)
	assert.Equal(t, applicationName, pc.ConnConfig.RuntimeParams["application_name"])
}

func TestPoolConfigKeepsExplicitApplicationName(t *testing.T) {
	pc, err := poolConfig(dbConfig{url: "postgres://u:p@localhost:5432/leads?application_name=worker", max: 5})
	require.NoError(t, err)

	assert.Equal(t, "worker", pc.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, int32(5), pc.MaxConns)
}

func TestPoolConfigCapsMinAtMax(t *testing.T) {
	pc, err := poolConfig(dbConfig{url: "postgres://u:p@localhost:5432/leads", min: 10, max: 4})
	require.NoError(t, err)

	assert.Equal(t, int32(4), pc.MinConns)
}

func TestPoolConfigRejectsBadURL(t *testing.T) {
	_, err := poolConfig(dbConfig{url: "postgres://localhost:notaport/leads"})
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestClampConns(t *testing.T) {
	assert.Equal(t, int32(7), clampConns(0, 7))
	assert.Equal(t, int32(7), clampConns(-1, 7))
	assert.Equal(t, int32(9), clampConns(9, 7))
}
