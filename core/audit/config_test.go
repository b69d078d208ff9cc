package audit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewStore(ctx, Config{Path: filepath.Join(dir, "a.jsonl")})
	require.NoError(t, err)
	assert.IsType(t, &JSONLStore{}, s)

	s, err = NewStore(ctx, Config{Path: filepath.Join(dir, "b.jsonl"), MaxSizeMB: 10})
	require.NoError(t, err)
	assert.IsType(t, &RotatingJSONLStore{}, s)
	_ = s.Close()

	s, err = NewStore(ctx, Config{Backend: BackendSQLite, Path: filepath.Join(dir, "c.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	_ = s.Close()

	s, err = NewStore(ctx, Config{Backend: BackendNone})
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, Config{Backend: "mongo"}.Validate())
	assert.Error(t, Config{Backend: BackendPostgres}.Validate())
	assert.Error(t, Config{Backend: BackendJSONL}.Validate())
	assert.NoError(t, Config{Backend: BackendPostgres, DSN: "postgres://localhost/db"}.Validate())

	var c Config
	c.SetDefaults()
	assert.Equal(t, BackendJSONL, c.Backend)
	assert.Equal(t, "predictions.jsonl", c.Path)
	assert.Equal(t, 256, c.Buffer)
	assert.NoError(t, c.Validate())
}
