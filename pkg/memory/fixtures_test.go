package memory_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	records "github.com/goliatone/go-records"
	"github.com/goliatone/go-records/pkg/memory"
)

func TestLoadStorageFile(t *testing.T) {
	storage, err := memory.LoadStorageFile(filepath.Join("testdata", "items.yaml"))
	require.NoError(t, err)
	require.Len(t, storage["items"], 3)
	require.Len(t, storage["users"], 1)
	assert.Equal(t, []any{"math", "engines"}, storage["users"][0]["tags"])

	model := newModel(t, storage)
	got, err := model.FilterBy(records.Property{"foo": "bar"}).All(context.Background())
	assert.Equal(t, []int64{1, 3}, ids(t, got, err))

	created, err := model.Create(context.Background(), records.Record{"foo": "new"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), created.ID())
}

func TestLoadStorageErrors(t *testing.T) {
	_, err := memory.LoadStorageFile(filepath.Join("testdata", "missing.yaml"))
	assert.Error(t, err)

	_, err = memory.LoadStorage(strings.NewReader("items: [1, 2"))
	assert.ErrorContains(t, err, "memory: decode fixtures")

	storage, err := memory.LoadStorage(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, storage)
}
