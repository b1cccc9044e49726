package mapping

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/Import-AF/pipedream-libs/pkg/monday"
)

// tagPattern matches brace-delimited tags in column descriptions. One, two
// or three brace pairs all denote the same tag.
var tagPattern = regexp.MustCompile(`\{+[^{}]+\}+`)

// ExtractTags returns every tag embedded in a column description, with the
// surrounding brace runs stripped, in order of appearance.
func ExtractTags(description string) []string {
	matches := tagPattern.FindAllString(description, -1)
	tags := make([]string, 0, len(matches))
	for _, match := range matches {
		tags = append(tags, strings.Trim(match, "{}"))
	}
	return tags
}

// SchemaCache memoizes per-board schema maps (tag -> column) for the process
// lifetime. The first Get for a board fetches its columns through the
// gateway; later Gets are served from memory until the entry is invalidated.
//
// Two concurrent first-references to the same board each fetch independently;
// the last write wins, which is benign duplicate work rather than corruption.
type SchemaCache struct {
	gateway Gateway
	mu      sync.RWMutex
	boards  map[string]map[string]monday.Column
}

// NewSchemaCache creates an empty cache backed by the given gateway.
func NewSchemaCache(gateway Gateway) *SchemaCache {
	return &SchemaCache{
		gateway: gateway,
		boards:  make(map[string]map[string]monday.Column),
	}
}

// Get returns the schema map for a board, fetching it on first reference.
func (c *SchemaCache) Get(ctx context.Context, boardID string) (map[string]monday.Column, error) {
	c.mu.RLock()
	schema, ok := c.boards[boardID]
	c.mu.RUnlock()
	if ok {
		return schema, nil
	}

	columns, err := c.gateway.GetBoardColumns(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema for board %s: %w", boardID, err)
	}

	schema = BuildSchemaMap(columns)

	c.mu.Lock()
	c.boards[boardID] = schema
	c.mu.Unlock()

	return schema, nil
}

// Invalidate drops the cached schema for one board, forcing the next Get to
// re-fetch.
func (c *SchemaCache) Invalidate(boardID string) {
	c.mu.Lock()
	delete(c.boards, boardID)
	c.mu.Unlock()
}

// InvalidateAll drops every cached schema.
func (c *SchemaCache) InvalidateAll() {
	c.mu.Lock()
	c.boards = make(map[string]map[string]monday.Column)
	c.mu.Unlock()
}

// BuildSchemaMap associates every tag found in the column descriptions with
// its column. When two columns declare the same tag the later column wins;
// boards are expected to keep tags unique.
func BuildSchemaMap(columns []monday.Column) map[string]monday.Column {
	schema := make(map[string]monday.Column)
	for _, column := range columns {
		for _, tag := range ExtractTags(column.Description) {
			schema[tag] = column
		}
	}
	return schema
}
