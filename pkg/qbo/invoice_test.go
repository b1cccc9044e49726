package qbo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInvoice = `{
	"Id": "239",
	"DocNumber": "1045",
	"TxnDate": "2024-03-01",
	"DueDate": "2024-03-31",
	"TotalAmt": 362.07,
	"Balance": 100.00,
	"CustomerRef": {"value": "42", "name": "Acme Corp"},
	"CustomerMemo": {"value": "Thank you for your business"},
	"BillEmail": {"Address": "billing@acme.example"},
	"PrivateNote": "rush order",
	"Line": [
		{
			"Id": "1",
			"LineNum": 1,
			"Description": "Consulting hours",
			"Amount": 300.00,
			"DetailType": "SalesItemLineDetail",
			"SalesItemLineDetail": {
				"ItemRef": {"value": "7", "name": "Consulting"},
				"Qty": 3,
				"UnitPrice": 100.00
			}
		},
		{
			"Id": "2",
			"Description": "Materials",
			"Amount": 62.07,
			"DetailType": "SalesItemLineDetail"
		},
		{
			"Amount": 362.07,
			"DetailType": "SubTotalLineDetail"
		}
	]
}`

func TestParseInvoice(t *testing.T) {
	invoice, err := ParseInvoice([]byte(sampleInvoice))
	require.NoError(t, err)

	assert.Equal(t, "239", invoice.ID)
	assert.Equal(t, "1045", invoice.DocNumber)
	assert.Equal(t, "42", invoice.CustomerRef.Value)
	assert.Equal(t, 362.07, invoice.TotalAmt)
	require.NotNil(t, invoice.BillEmail)
	assert.Equal(t, "billing@acme.example", invoice.BillEmail.Address)
	require.Len(t, invoice.Line, 3)
}

func TestParseInvoiceEnvelope(t *testing.T) {
	invoice, err := ParseInvoice([]byte(`{"Invoice": ` + sampleInvoice + `}`))
	require.NoError(t, err)
	assert.Equal(t, "239", invoice.ID)
}

func TestParseInvoiceRejectsNonInvoice(t *testing.T) {
	_, err := ParseInvoice([]byte(`{"hello": "world"}`))
	require.Error(t, err)

	_, err = ParseInvoice([]byte(`not json`))
	require.Error(t, err)
}

func TestToRecord(t *testing.T) {
	invoice, err := ParseInvoice([]byte(sampleInvoice))
	require.NoError(t, err)

	record := invoice.ToRecord()

	assert.Equal(t, "1045", record["DocNumber"])
	assert.Equal(t, "2024-03-01", record["TxnDate"])
	assert.Equal(t, 362.07, record["TotalAmt"])
	assert.Equal(t, "billing@acme.example", record["Email"])
	assert.Equal(t, "Thank you for your business", record["Memo"])
	assert.Equal(t, "rush order", record["PrivateNote"])

	customer, ok := record["Customer"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "42", customer["Id"])
	assert.Equal(t, "Acme Corp", customer["Name"])

	// Subtotal pseudo-lines are dropped from the flattened line list.
	assert.Equal(t, 2, record["LineCount"])
	assert.Equal(t, "Consulting hours, Materials", record["LineSummary"])

	lines, ok := record["Lines"].([]interface{})
	require.True(t, ok)
	first, ok := lines[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Consulting", first["Item"])
	assert.Equal(t, float64(3), first["Qty"])
}

func TestToRecordResolvesThroughMappingPaths(t *testing.T) {
	invoice := &Invoice{
		ID:          "1",
		DocNumber:   "100",
		CustomerRef: Ref{Value: "42", Name: "Acme"},
	}
	record := invoice.ToRecord()

	// Optional fields stay absent rather than empty.
	assert.NotContains(t, record, "Email")
	assert.NotContains(t, record, "Memo")
	assert.NotContains(t, record, "Lines")
}
