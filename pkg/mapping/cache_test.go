package mapping

import (
	"context"
	"testing"

	"github.com/Import-AF/pipedream-libs/pkg/monday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTags(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        []string
	}{
		{"no tags", "just a description", []string{}},
		{"single braces", "Client {client_id} info", []string{"client_id"}},
		{"double braces", "{{invoice_total}}", []string{"invoice_total"}},
		{"triple braces", "{{{due_date}}}", []string{"due_date"}},
		{"multiple tags mixed depth", "Client {{{client_id}}} info {email}", []string{"client_id", "email"}},
		{"empty description", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTags(tt.description))
		})
	}
}

func TestBuildSchemaMap(t *testing.T) {
	columns := []monday.Column{
		{ID: "col1", Type: monday.ColumnTypeText, Description: "Client {{{client_id}}} info {email}"},
		{ID: "col2", Type: monday.ColumnTypeNumbers, Description: "{total}"},
	}

	schema := BuildSchemaMap(columns)
	require.Len(t, schema, 3)
	assert.Equal(t, "col1", schema["client_id"].ID)
	assert.Equal(t, "col1", schema["email"].ID)
	assert.Equal(t, "col2", schema["total"].ID)
}

func TestBuildSchemaMapLastColumnWinsOnCollision(t *testing.T) {
	columns := []monday.Column{
		{ID: "col1", Description: "{client_id}"},
		{ID: "col2", Description: "{client_id}"},
	}

	schema := BuildSchemaMap(columns)
	assert.Equal(t, "col2", schema["client_id"].ID)
}

func TestSchemaCacheFetchesOncePerBoard(t *testing.T) {
	gw := &fakeGateway{columns: []monday.Column{
		{ID: "col1", Type: monday.ColumnTypeText, Description: "{client_id}"},
	}}
	cache := NewSchemaCache(gw)

	first, err := cache.Get(context.Background(), "board-1")
	require.NoError(t, err)
	second, err := cache.Get(context.Background(), "board-1")
	require.NoError(t, err)

	assert.Equal(t, 1, gw.fetchCount)
	assert.Equal(t, first, second)
}

func TestSchemaCacheInvalidateForcesRefetch(t *testing.T) {
	gw := &fakeGateway{}
	cache := NewSchemaCache(gw)

	_, err := cache.Get(context.Background(), "board-1")
	require.NoError(t, err)
	cache.Invalidate("board-1")
	_, err = cache.Get(context.Background(), "board-1")
	require.NoError(t, err)

	assert.Equal(t, 2, gw.fetchCount)
}

func TestSchemaCacheInvalidateAll(t *testing.T) {
	gw := &fakeGateway{}
	cache := NewSchemaCache(gw)

	_, err := cache.Get(context.Background(), "board-1")
	require.NoError(t, err)
	_, err = cache.Get(context.Background(), "board-2")
	require.NoError(t, err)
	cache.InvalidateAll()
	_, err = cache.Get(context.Background(), "board-1")
	require.NoError(t, err)

	assert.Equal(t, 3, gw.fetchCount)
}

func TestSchemaCachePropagatesGatewayError(t *testing.T) {
	gw := &fakeGateway{columnsErr: assert.AnError}
	cache := NewSchemaCache(gw)

	_, err := cache.Get(context.Background(), "board-1")
	assert.ErrorIs(t, err, assert.AnError)
}
