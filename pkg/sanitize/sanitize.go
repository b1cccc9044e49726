// Package sanitize converts arbitrary external values into the JSON shapes
// Monday.com column types expect. Every sanitizer is total: malformed input
// degrades to a neutral value for the column type, never an error. A nil
// result means "omit this column from the payload".
package sanitize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Import-AF/pipedream-libs/pkg/monday"
)

// Email is the value shape of an email column.
type Email struct {
	Email string `json:"email"`
	Text  string `json:"text"`
}

// Phone is the value shape of a phone column.
type Phone struct {
	Phone            string `json:"phone"`
	CountryShortName string `json:"countryShortName"`
}

// Date is the value shape of a date column. A nil Date field marks an
// unparsable or empty input.
type Date struct {
	Date *string `json:"date"`
}

// Status is the value shape of a status column.
type Status struct {
	Label string `json:"label"`
}

// Dropdown is the value shape of a dropdown column.
type Dropdown struct {
	Labels []string `json:"labels"`
}

// Checkbox is the value shape of a checkbox column.
type Checkbox struct {
	Checked bool `json:"checked"`
}

// Location is the value shape of a location column. Lat/Lng are omitted for
// address-only values.
type Location struct {
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	Address string   `json:"address"`
}

// BoardRelation is the value shape of a board relation (connect boards)
// column.
type BoardRelation struct {
	ItemIDs []string `json:"item_ids"`
}

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

var nonDigits = regexp.MustCompile(`[^0-9]`)

// ForColumnType sanitizes a value for the given column type. Unrecognized
// column types pass the value through unchanged.
func ForColumnType(value interface{}, columnType monday.ColumnType) interface{} {
	switch columnType {
	case monday.ColumnTypeText, monday.ColumnTypeLongText:
		return Text(value)
	case monday.ColumnTypeEmail:
		return EmailValue(value)
	case monday.ColumnTypePhone:
		return PhoneValue(value)
	case monday.ColumnTypeNumbers:
		return Number(value)
	case monday.ColumnTypeDate:
		return DateValue(value)
	case monday.ColumnTypeStatus:
		return StatusValue(value)
	case monday.ColumnTypeDropdown:
		return DropdownValue(value)
	case monday.ColumnTypeCheckbox:
		return CheckboxValue(value)
	case monday.ColumnTypeLocation:
		return LocationValue(value)
	case monday.ColumnTypeBoardRelation:
		return BoardRelationValue(value)
	default:
		return value
	}
}

// Text returns the trimmed string form of a value, or nil for missing and
// empty input.
func Text(value interface{}) interface{} {
	if value == nil {
		return nil
	}
	s := strings.TrimSpace(stringify(value))
	if s == "" {
		return nil
	}
	return s
}

// EmailValue lowercases and trims the input. Input that does not look like
// an email keeps its text but gets an empty email address.
func EmailValue(value interface{}) interface{} {
	if value == nil {
		return nil
	}
	s := stringify(value)
	if s == "" {
		return Email{}
	}
	cleaned := strings.ToLower(strings.TrimSpace(s))
	if emailPattern.MatchString(cleaned) {
		return Email{Email: cleaned, Text: cleaned}
	}
	return Email{Email: "", Text: cleaned}
}

// PhoneValue strips everything but digits. The country code is fixed to US.
func PhoneValue(value interface{}) interface{} {
	if value == nil {
		return nil
	}
	s := stringify(value)
	if s == "" {
		return Phone{Phone: "", CountryShortName: "US"}
	}
	return Phone{Phone: nonDigits.ReplaceAllString(s, ""), CountryShortName: "US"}
}

// Number extracts a signed numeric value from arbitrary input. Formatting
// characters are discarded, extra decimal points are collapsed into one, and
// nil is returned when nothing numeric remains.
func Number(value interface{}) interface{} {
	switch v := value.(type) {
	case nil:
		return nil
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return v
	case float32:
		return float64(v)
	case float64:
		return v
	case json.Number:
		return Number(v.String())
	case string:
		return numberFromString(v)
	case bool:
		return nil
	default:
		// Maps, slices and other structured values carry no single number.
		return nil
	}
}

func numberFromString(s string) interface{} {
	s = strings.TrimSpace(s)
	negative := strings.HasPrefix(s, "-")

	var cleaned strings.Builder
	dotSeen := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			cleaned.WriteRune(r)
		case r == '.' && !dotSeen:
			cleaned.WriteRune(r)
			dotSeen = true
		}
	}

	digits := cleaned.String()
	if strings.Trim(digits, ".") == "" {
		return nil
	}
	if negative {
		digits = "-" + digits
	}

	if !strings.Contains(digits, ".") {
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return nil
		}
		return n
	}

	f, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return nil
	}
	return f
}

// dateFormats are tried in order when parsing date input.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
}

// DateValue normalizes date input to the YYYY-MM-DD string Monday expects.
// Empty or unparsable input yields a Date with a nil date.
func DateValue(value interface{}) interface{} {
	if value == nil {
		return nil
	}

	if t, ok := value.(time.Time); ok {
		formatted := t.Format("2006-01-02")
		return Date{Date: &formatted}
	}

	s := strings.TrimSpace(stringify(value))
	if s == "" {
		return Date{}
	}

	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			formatted := t.Format("2006-01-02")
			return Date{Date: &formatted}
		}
	}
	return Date{}
}

// StatusValue produces a status label from the trimmed string form.
func StatusValue(value interface{}) interface{} {
	if value == nil {
		return nil
	}
	s := stringify(value)
	if s == "" {
		return Status{}
	}
	return Status{Label: strings.TrimSpace(s)}
}

// DropdownValue builds the label list for a dropdown column. Sequences are
// stringified element-wise, strings are split on commas, scalars become a
// single label. Empty labels are dropped.
func DropdownValue(value interface{}) interface{} {
	if value == nil {
		return nil
	}

	switch v := value.(type) {
	case []interface{}:
		return Dropdown{Labels: cleanLabels(stringifyAll(v))}
	case []string:
		return Dropdown{Labels: cleanLabels(v)}
	case string:
		if v == "" {
			return Dropdown{Labels: []string{}}
		}
		return Dropdown{Labels: cleanLabels(strings.Split(v, ","))}
	default:
		return Dropdown{Labels: cleanLabels([]string{stringify(v)})}
	}
}

func stringifyAll(values []interface{}) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = stringify(v)
	}
	return out
}

func cleanLabels(raw []string) []string {
	labels := make([]string, 0, len(raw))
	for _, label := range raw {
		trimmed := strings.TrimSpace(label)
		if trimmed != "" {
			labels = append(labels, trimmed)
		}
	}
	return labels
}

// CheckboxValue coerces any value to a checked flag.
func CheckboxValue(value interface{}) interface{} {
	if value == nil {
		return nil
	}
	return Checkbox{Checked: truthy(value)}
}

func truthy(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	default:
		return true
	}
}

// LocationValue accepts either a lat/lng object (lat/latitude, lng/longitude
// key spellings), a JSON string encoding one, or a plain address string.
// Anything else is omitted.
func LocationValue(value interface{}) interface{} {
	if value == nil {
		return nil
	}

	switch v := value.(type) {
	case map[string]interface{}:
		return locationFromMap(v)
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil
		}
		var decoded map[string]interface{}
		if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
			return locationFromMap(decoded)
		}
		return Location{Address: trimmed}
	default:
		return nil
	}
}

func locationFromMap(m map[string]interface{}) interface{} {
	lat, latOK := numericField(m, "lat", "latitude")
	lng, lngOK := numericField(m, "lng", "longitude")
	if !latOK || !lngOK {
		return nil
	}

	address, _ := m["address"].(string)
	return Location{Lat: &lat, Lng: &lng, Address: address}
}

func numericField(m map[string]interface{}, keys ...string) (float64, bool) {
	for _, key := range keys {
		raw, ok := m[key]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return f, true
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// BoardRelationValue links items by ID. Only input carrying an item_ids
// sequence is accepted; IDs are stringified.
func BoardRelationValue(value interface{}) interface{} {
	m, ok := value.(map[string]interface{})
	if !ok {
		return nil
	}
	rawIDs, ok := m["item_ids"].([]interface{})
	if !ok {
		return nil
	}

	ids := make([]string, len(rawIDs))
	for i, raw := range rawIDs {
		ids[i] = stringify(raw)
	}
	return BoardRelation{ItemIDs: ids}
}

// stringify renders a value the way JSON would, avoiding exponent notation
// for whole floats.
func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
