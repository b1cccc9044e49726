package mapping

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/Import-AF/pipedream-libs/pkg/monday"
	"github.com/Import-AF/pipedream-libs/pkg/sanitize"
)

// ErrorRecord is one workflow failure to be written to an error-tracking
// board. The field set is fixed; no tag lookup is involved.
type ErrorRecord struct {
	Client      string
	Description string
	Error       string
	Payload     interface{}
	Workflow    string
	Project     string
	ErrorType   string
}

// ErrorColumn names the board column an error-record field is written to. A
// zero ID disables the field.
type ErrorColumn struct {
	ID   string
	Type monday.ColumnType
}

// ErrorColumns fixes the column layout of the error-tracking board.
type ErrorColumns struct {
	Client      ErrorColumn
	Description ErrorColumn
	Error       ErrorColumn
	Payload     ErrorColumn
	Workflow    ErrorColumn
	Project     ErrorColumn
	ErrorType   ErrorColumn
}

// ErrorResult reports where the record landed. A MondayID of 0 with a
// non-empty Error means the write itself failed and the record was dropped.
type ErrorResult struct {
	MondayID int64  `json:"monday_id"`
	Name     string `json:"name,omitempty"`
	Error    string `json:"error,omitempty"`
}

// LogError writes an error record to the given board. It never returns an
// error: when the gateway call fails, the returned result marks the record
// as not saved and carries the failure message as diagnostic text. Callers
// must inspect the result to detect degraded writes.
func (m *Mapper) LogError(ctx context.Context, boardID, itemName string, record ErrorRecord, columns ErrorColumns) ErrorResult {
	fields := []struct {
		value  interface{}
		column ErrorColumn
	}{
		{record.Client, columns.Client},
		{record.Description, columns.Description},
		{record.Error, columns.Error},
		{record.Payload, columns.Payload},
		{record.Workflow, columns.Workflow},
		{record.Project, columns.Project},
		{record.ErrorType, columns.ErrorType},
	}

	payload := make(map[string]interface{})
	for _, field := range fields {
		if field.column.ID == "" || field.column.Type == monday.ColumnTypeMirror {
			continue
		}
		if skipErrorValue(field.value) {
			continue
		}

		value := field.value
		switch value.(type) {
		case string, int, int64, float64, bool:
		default:
			// Structured payloads go out as their JSON text.
			if encoded, err := json.Marshal(value); err == nil {
				value = string(encoded)
			}
		}

		sanitized := sanitize.ForColumnType(value, field.column.Type)
		if sanitized == nil {
			continue
		}
		payload[field.column.ID] = sanitized
	}

	result, err := m.gateway.CreateItem(ctx, boardID, itemName, payload, true)
	if err != nil {
		m.log.Errorf("Failed to save error record to board %s: %v", boardID, err)
		return ErrorResult{
			MondayID: 0,
			Error:    "***ERROR SAVING TO MONDAY - " + err.Error(),
		}
	}

	id, _ := strconv.ParseInt(result.ID, 10, 64)
	return ErrorResult{MondayID: id, Name: result.Name}
}

// skipErrorValue drops falsy values except the number zero, which is a
// legitimate error-record value.
func skipErrorValue(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	default:
		return false
	}
}
