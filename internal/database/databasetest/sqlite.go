// Package databasetest opens throwaway sqlite databases for tests.
package databasetest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Ayash-Bera/vbm-explorer/internal/database"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// NewManager returns a migrated in-memory sqlite manager private to the test.
func NewManager(t testing.TB) *database.Manager {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	m, err := database.NewManager(&database.Config{
		Driver:      database.DriverSQLite,
		DatabaseURL: fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	}, logger)
	require.NoError(t, err)
	require.NoError(t, m.Migrate())
	t.Cleanup(func() { m.Close() })
	return m
}
