package po

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Item represents a single line item of a purchase order.
type Item struct {
	ItemCode    string  `json:"itemCode,omitempty" yaml:"itemCode,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Quantity    int     `json:"quantity" yaml:"quantity"`
	UnitPrice   float64 `json:"unitPrice" yaml:"unitPrice"`
	LineTotal   float64 `json:"lineTotal" yaml:"lineTotal"`
}

// PurchaseOrder represents a purchase order document. Field names mirror the
// wire payload; absent optional fields decode to zero values rather than an
// error. IsApproved and ApprovalReason are output fields written by the
// evaluator only, intake leaves them unset.
type PurchaseOrder struct {
	SupplierName         string  `json:"supplierName,omitempty" yaml:"supplierName,omitempty"`
	SupplierAddressLine1 string  `json:"supplierAddressLine1,omitempty" yaml:"supplierAddressLine1,omitempty"`
	SupplierAddressLine2 string  `json:"supplierAddressLine2,omitempty" yaml:"supplierAddressLine2,omitempty"`
	SupplierCity         string  `json:"supplierCity,omitempty" yaml:"supplierCity,omitempty"`
	SupplierState        string  `json:"supplierState,omitempty" yaml:"supplierState,omitempty"`
	SupplierPostalCode   string  `json:"supplierPostalCode,omitempty" yaml:"supplierPostalCode,omitempty"`
	SupplierCountry      string  `json:"supplierCountry,omitempty" yaml:"supplierCountry,omitempty"`
	Items                []Item  `json:"items" yaml:"items"`
	PONumber             string  `json:"poNumber,omitempty" yaml:"poNumber,omitempty"`
	CreatedBy            string  `json:"createdBy,omitempty" yaml:"createdBy,omitempty"`
	BuyerDepartment      string  `json:"buyerDepartment,omitempty" yaml:"buyerDepartment,omitempty"`
	Notes                string  `json:"notes,omitempty" yaml:"notes,omitempty"`
	TaxRate              float64 `json:"taxRate" yaml:"taxRate"`
	SubTotal             float64 `json:"subTotal" yaml:"subTotal"`
	Tax                  float64 `json:"tax" yaml:"tax"`
	GrandTotal           float64 `json:"grandTotal" yaml:"grandTotal"`
	IsApproved           bool    `json:"isApproved" yaml:"isApproved"`
	ApprovalReason       string  `json:"approvalReason,omitempty" yaml:"approvalReason,omitempty"`
}

// Envelope wraps a purchase order the way upstream clients submit it.
type Envelope struct {
	PurchaseOrder *PurchaseOrder `json:"purchaseOrder"`
}

// Approval represents an approval decision for a purchase order. It is
// produced exactly once per task and never mutated afterwards.
type Approval struct {
	PONumber       string `json:"poNumber,omitempty"`
	IsApproved     bool   `json:"isApproved"`
	ApprovalReason string `json:"approvalReason,omitempty"`
}

// Summary aggregates the headline figures of a purchase order.
type Summary struct {
	TotalItems    int     `json:"totalItems"`
	TotalQuantity int     `json:"totalQuantity"`
	SubTotal      float64 `json:"subTotal"`
	Tax           float64 `json:"tax"`
	GrandTotal    float64 `json:"grandTotal"`
	Supplier      string  `json:"supplier"`
	Department    string  `json:"department"`
	IsApproved    bool    `json:"isApproved"`
}

// Parse decodes a purchase order from JSON. Both the bare document and the
// {"purchaseOrder": {...}} envelope are accepted.
func Parse(data []byte) (*PurchaseOrder, error) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.PurchaseOrder != nil {
		return envelope.PurchaseOrder, nil
	}
	order := &PurchaseOrder{}
	if err := json.Unmarshal(data, order); err != nil {
		return nil, fmt.Errorf("failed to parse purchase order: %w", err)
	}
	return order, nil
}

// JSON returns the order serialised as indented JSON.
func (p *PurchaseOrder) JSON() (string, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Summary builds the aggregate view of the order.
func (p *PurchaseOrder) Summary() *Summary {
	totalQuantity := 0
	for i := range p.Items {
		totalQuantity += p.Items[i].Quantity
	}
	return &Summary{
		TotalItems:    len(p.Items),
		TotalQuantity: totalQuantity,
		SubTotal:      p.SubTotal,
		Tax:           p.Tax,
		GrandTotal:    p.GrandTotal,
		Supplier:      p.SupplierName,
		Department:    p.BuyerDepartment,
		IsApproved:    p.IsApproved,
	}
}

// Flatten renders the order as the fixed seven-field delimited record
// poNumber,subTotal,tax,grandTotal,supplierName,buyerDepartment,"notes".
// Notes are always quoted, with embedded quotes doubled CSV-style.
func (p *PurchaseOrder) Flatten() string {
	notes := strings.ReplaceAll(p.Notes, `"`, `""`)
	return fmt.Sprintf(`%s,%v,%v,%v,%s,%s,"%s"`,
		p.PONumber, p.SubTotal, p.Tax, p.GrandTotal,
		p.SupplierName, p.BuyerDepartment, notes)
}

// Clone returns a deep copy so callers can mutate the result without
// affecting the original document.
func (p *PurchaseOrder) Clone() *PurchaseOrder {
	if p == nil {
		return nil
	}
	clone := *p
	if p.Items != nil {
		clone.Items = append([]Item(nil), p.Items...)
	}
	return &clone
}
