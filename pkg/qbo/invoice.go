// Package qbo models the QuickBooks Online invoice surface consumed by the
// sync and flattens it into the external data shape the mapping engine
// resolves remote keys against.
package qbo

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Ref is a QBO entity reference (id plus optional display name).
type Ref struct {
	Value string `json:"value"`
	Name  string `json:"name,omitempty"`
}

// Memo is a QBO memo wrapper.
type Memo struct {
	Value string `json:"value"`
}

// EmailAddress is a QBO email wrapper.
type EmailAddress struct {
	Address string `json:"Address"`
}

// SalesItemLineDetail carries the item-level detail of an invoice line.
type SalesItemLineDetail struct {
	ItemRef   Ref     `json:"ItemRef"`
	Qty       float64 `json:"Qty"`
	UnitPrice float64 `json:"UnitPrice"`
}

// Line is one invoice line.
type Line struct {
	ID                  string               `json:"Id"`
	LineNum             int                  `json:"LineNum"`
	Description         string               `json:"Description"`
	Amount              float64              `json:"Amount"`
	DetailType          string               `json:"DetailType"`
	SalesItemLineDetail *SalesItemLineDetail `json:"SalesItemLineDetail,omitempty"`
}

// Invoice is one QuickBooks Online invoice. Field names follow the QBO API
// JSON surface.
type Invoice struct {
	ID           string        `json:"Id"`
	DocNumber    string        `json:"DocNumber"`
	TxnDate      string        `json:"TxnDate"`
	DueDate      string        `json:"DueDate"`
	TotalAmt     float64       `json:"TotalAmt"`
	Balance      float64       `json:"Balance"`
	CustomerRef  Ref           `json:"CustomerRef"`
	CustomerMemo *Memo         `json:"CustomerMemo,omitempty"`
	BillEmail    *EmailAddress `json:"BillEmail,omitempty"`
	PrivateNote  string        `json:"PrivateNote,omitempty"`
	Line         []Line        `json:"Line,omitempty"`
}

// ParseInvoice decodes an invoice from JSON. Both the bare invoice object
// and the {"Invoice": {...}} envelope the QBO API wraps single reads in are
// accepted.
func ParseInvoice(data []byte) (*Invoice, error) {
	var envelope struct {
		Invoice *Invoice `json:"Invoice"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Invoice != nil {
		return envelope.Invoice, nil
	}

	var invoice Invoice
	if err := json.Unmarshal(data, &invoice); err != nil {
		return nil, fmt.Errorf("failed to parse invoice: %w", err)
	}
	if invoice.ID == "" && invoice.DocNumber == "" {
		return nil, fmt.Errorf("document does not look like a QBO invoice")
	}
	return &invoice, nil
}

// ToRecord flattens the invoice into the nested map the mapping engine
// resolves dotted remote keys against (e.g. "Customer.Id" or "TotalAmt").
func (inv *Invoice) ToRecord() map[string]interface{} {
	record := map[string]interface{}{
		"Id":        inv.ID,
		"DocNumber": inv.DocNumber,
		"TxnDate":   inv.TxnDate,
		"DueDate":   inv.DueDate,
		"TotalAmt":  inv.TotalAmt,
		"Balance":   inv.Balance,
		"Customer": map[string]interface{}{
			"Id":   inv.CustomerRef.Value,
			"Name": inv.CustomerRef.Name,
		},
	}

	if inv.BillEmail != nil {
		record["Email"] = inv.BillEmail.Address
	}
	if inv.CustomerMemo != nil {
		record["Memo"] = inv.CustomerMemo.Value
	}
	if inv.PrivateNote != "" {
		record["PrivateNote"] = inv.PrivateNote
	}

	if len(inv.Line) > 0 {
		lines := make([]interface{}, 0, len(inv.Line))
		descriptions := make([]string, 0, len(inv.Line))
		for _, line := range inv.Line {
			// QBO appends subtotal pseudo-lines with no detail type worth keeping.
			if line.DetailType != "" && line.DetailType != "SalesItemLineDetail" {
				continue
			}
			entry := map[string]interface{}{
				"Description": line.Description,
				"Amount":      line.Amount,
			}
			if line.SalesItemLineDetail != nil {
				entry["Item"] = line.SalesItemLineDetail.ItemRef.Name
				entry["Qty"] = line.SalesItemLineDetail.Qty
				entry["UnitPrice"] = line.SalesItemLineDetail.UnitPrice
			}
			lines = append(lines, entry)
			if line.Description != "" {
				descriptions = append(descriptions, line.Description)
			}
		}
		record["Lines"] = lines
		record["LineCount"] = len(lines)
		record["LineSummary"] = strings.Join(descriptions, ", ")
	}

	return record
}
