package database

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterPoolMetrics(t *testing.T) {
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, RegisterPoolMetrics(reg, db, "kbgen"))
	require.NoError(t, RegisterPoolMetrics(reg, db, "kbgen"), "second registration is ignored")

	n, err := testutil.GatherAndCount(reg, "go_sql_max_open_connections")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
