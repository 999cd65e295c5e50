package clickhouse_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"ufc-data-lab/internal/domain"
	"ufc-data-lab/internal/storage"
	"ufc-data-lab/internal/storage/clickhouse"
	"ufc-data-lab/internal/storage/migrations"
)

// setupTestDB starts a ClickHouse container and applies the embedded
// migrations. Returns a cleanup function that must be called when done.
func setupTestDB(t *testing.T) (*clickhouse.Conn, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "clickhouse/clickhouse-server:24.1-alpine",
		ExposedPorts: []string{"9000/tcp", "8123/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForLog("Application: Ready for connections").
				WithStartupTimeout(60*time.Second),
			wait.ForListeningPort("9000/tcp"),
		),
		Env: map[string]string{
			"CLICKHOUSE_USER":     "default",
			"CLICKHOUSE_PASSWORD": "",
		},
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "9000")
	require.NoError(t, err)

	dsn := fmt.Sprintf("clickhouse://%s:%s/ufc_test", host, port.Port())

	// Creates ufc_test and the feature table
	conn, err := migrations.RunClickhouseMigrations(ctx, dsn)
	require.NoError(t, err)

	cleanup := func() {
		_ = conn.Close()
		_ = container.Terminate(ctx)
	}
	return conn, cleanup
}

func ptr[T any](v T) *T {
	return &v
}

func TestFeatureStore_InsertBulkAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := clickhouse.NewFeatureStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, nil))

	d1 := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)
	points := []*domain.FighterFeaturePoint{
		{FightID: "f2", FighterID: "A", Side: domain.SideA, FightDate: d2, Stat: "takedowns_landed", Window: 3, Value: ptr(1.5), PriorFights: 1},
		{FightID: "f2", FighterID: "A", Side: domain.SideA, FightDate: d2, Stat: "strikes_landed", Window: 3, Value: ptr(10.0), PriorFights: 1},
		{FightID: "f1", FighterID: "A", Side: domain.SideB, FightDate: d1, Stat: "strikes_landed", Window: 3, PriorFights: 0},
		{FightID: "f1", FighterID: "B", Side: domain.SideA, FightDate: d1, Stat: "strikes_landed", Window: 3, PriorFights: 0},
	}
	require.NoError(t, store.InsertBulk(ctx, points))

	got, err := store.GetByFighter(ctx, "A")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "f1", got[0].FightID)
	assert.Equal(t, domain.SideB, got[0].Side)
	assert.True(t, got[0].FightDate.Equal(d1))
	assert.Nil(t, got[0].Value)

	assert.Equal(t, "strikes_landed", got[1].Stat)
	require.NotNil(t, got[1].Value)
	assert.Equal(t, 10.0, *got[1].Value)
	assert.Equal(t, 3, got[1].Window)
	assert.Equal(t, 1, got[1].PriorFights)
	assert.Equal(t, "takedowns_landed", got[2].Stat)
}

func TestFeatureStore_ReinsertCollapses(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := clickhouse.NewFeatureStore(conn)
	ctx := context.Background()

	p := &domain.FighterFeaturePoint{
		FightID: "f1", FighterID: "A", Side: domain.SideA,
		FightDate: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		Stat:      "strikes_landed", Window: 2, Value: ptr(1.0), PriorFights: 1,
	}
	require.NoError(t, store.InsertBulk(ctx, []*domain.FighterFeaturePoint{p}))
	require.NoError(t, store.InsertBulk(ctx, []*domain.FighterFeaturePoint{p}))

	got, err := store.GetByFighter(ctx, "A")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFeatureStore_InvalidInput(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := clickhouse.NewFeatureStore(conn)
	err := store.InsertBulk(context.Background(), []*domain.FighterFeaturePoint{{FightID: "f1"}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
