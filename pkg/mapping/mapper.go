package mapping

import (
	"context"
	"fmt"

	"github.com/Import-AF/pipedream-libs/pkg/logger"
	"github.com/Import-AF/pipedream-libs/pkg/monday"
	"github.com/Import-AF/pipedream-libs/pkg/sanitize"
)

// Gateway is the slice of the Monday.com API the mapper needs. *monday.Client
// satisfies it; tests substitute a recording fake.
type Gateway interface {
	GetBoardColumns(ctx context.Context, boardID string) ([]monday.Column, error)
	CreateItem(ctx context.Context, boardID, itemName string, columnValues map[string]interface{}, createLabelsIfMissing bool) (*monday.ItemResult, error)
	UpdateItem(ctx context.Context, itemID, boardID string, columnValues map[string]interface{}) (*monday.ItemResult, error)
}

// Mapper turns external data into Monday.com column value payloads by
// matching mapping-configuration keys against tags embedded in board column
// descriptions. Each mapper owns its schema cache; there is no package-level
// state.
type Mapper struct {
	gateway Gateway
	cache   *SchemaCache
	log     *logger.Logger
}

// NewMapper creates a mapper with a fresh schema cache.
func NewMapper(gateway Gateway, log *logger.Logger) *Mapper {
	return &Mapper{
		gateway: gateway,
		cache:   NewSchemaCache(gateway),
		log:     log,
	}
}

// InvalidateSchema drops the cached schema for a board.
func (m *Mapper) InvalidateSchema(boardID string) {
	m.cache.Invalidate(boardID)
}

// ProcessMapping populates the configuration from the external data, resolves
// the board schema and builds the column value payload. Rules without a
// matching tag on the board and rules disabled for Monday are skipped
// silently; partial or evolving board schemas are not an error.
func (m *Mapper) ProcessMapping(ctx context.Context, config Config, data map[string]interface{}, boardID string) (map[string]interface{}, error) {
	populated := Populate(config, data)

	schema, err := m.cache.Get(ctx, boardID)
	if err != nil {
		return nil, err
	}

	payload := make(map[string]interface{})
	for key, rule := range populated {
		if !rule.MondayEnabled() {
			continue
		}

		column, ok := schema[key]
		if !ok {
			m.log.Debugf("No column tagged {%s} on board %s, skipping", key, boardID)
			continue
		}

		sanitized := sanitize.ForColumnType(rule.Value, column.Type)
		if sanitized == nil {
			continue
		}
		payload[column.ID] = sanitized
	}

	return payload, nil
}

// CreateOrUpdateItem builds the payload and submits it as an update when
// itemID is set, otherwise as a create. Idempotency is whatever the remote
// side provides; concurrent calls for the same logical record may race there.
func (m *Mapper) CreateOrUpdateItem(ctx context.Context, boardID string, config Config, data map[string]interface{}, itemName, itemID string) (*monday.ItemResult, error) {
	payload, err := m.ProcessMapping(ctx, config, data, boardID)
	if err != nil {
		return nil, err
	}

	if itemID != "" {
		m.log.Infof("Updating item %s on board %s with %d column values", itemID, boardID, len(payload))
		result, err := m.gateway.UpdateItem(ctx, itemID, boardID, payload)
		if err != nil {
			return nil, fmt.Errorf("failed to update item %s: %w", itemID, err)
		}
		return result, nil
	}

	m.log.Infof("Creating item %q on board %s with %d column values", itemName, boardID, len(payload))
	result, err := m.gateway.CreateItem(ctx, boardID, itemName, payload, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create item %q: %w", itemName, err)
	}
	return result, nil
}
