package main

import (
	"context"
	"testing"

	"github.com/MacJediWizard/licenze/internal/config"
	"github.com/MacJediWizard/licenze/internal/models"
	"github.com/MacJediWizard/licenze/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	cfg, err := parseLocation("sqlite:/tmp/licenze.db")
	require.NoError(t, err)
	assert.Equal(t, config.BackendSQLite, cfg.StoreBackend)
	assert.Equal(t, "/tmp/licenze.db", cfg.SQLitePath)

	cfg, err = parseLocation("postgres:postgres://u:p@db/licenze")
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db/licenze", cfg.DatabaseURL)

	_, err = parseLocation("licenze.json")
	assert.Error(t, err)

	_, err = parseLocation("mongo:mongodb://x")
	assert.Error(t, err)
}

func TestCopyDocument(t *testing.T) {
	ctx := context.Background()
	doc := models.SeedDocument()

	dst := store.NewMemoryStore()
	require.NoError(t, copyDocument(ctx, doc, dst, false))

	loaded, err := dst.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded.Licenses, 2)

	err = copyDocument(ctx, doc, dst, false)
	assert.Error(t, err, "existing destination must not be overwritten without force")

	assert.NoError(t, copyDocument(ctx, doc, dst, true))
}

func TestWriteDestinationRejectsSnapshot(t *testing.T) {
	err := writeDestination(context.Background(), "snapshot:out.json.gz", models.SeedDocument(), true, zerolog.Nop())
	assert.Error(t, err)
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "postgres:postgres://***@db/licenze", redact("postgres:postgres://u:secret@db/licenze"))
	assert.Equal(t, "file:licenze.json", redact("file:licenze.json"))
}
