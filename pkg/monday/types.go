package monday

// ColumnType identifies the semantic type of a board column. The set below
// covers the types the sync pipeline knows how to sanitize values for; any
// other type is passed through untouched.
type ColumnType string

const (
	ColumnTypeText          ColumnType = "text"
	ColumnTypeLongText      ColumnType = "long_text"
	ColumnTypeEmail         ColumnType = "email"
	ColumnTypePhone         ColumnType = "phone"
	ColumnTypeNumbers       ColumnType = "numbers"
	ColumnTypeDate          ColumnType = "date"
	ColumnTypeStatus        ColumnType = "status"
	ColumnTypeDropdown      ColumnType = "dropdown"
	ColumnTypeCheckbox      ColumnType = "checkbox"
	ColumnTypeLocation      ColumnType = "location"
	ColumnTypeBoardRelation ColumnType = "board_relation"
	ColumnTypeMirror        ColumnType = "mirror"
)

// Column represents one column of a Monday.com board as returned by the
// boards query. SettingsStr is a type-specific JSON blob kept opaque here.
type Column struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Type        ColumnType `json:"type"`
	Description string     `json:"description"`
	SettingsStr string     `json:"settings_str"`
}

// ItemResult is the remote acknowledgement for an item mutation.
type ItemResult struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
