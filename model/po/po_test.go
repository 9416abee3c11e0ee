package po

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func samplePurchaseOrder() *PurchaseOrder {
	return &PurchaseOrder{
		SupplierName:         "Marketing Masters Supplies",
		SupplierAddressLine1: "1234 Creative Avenue, Suite 567",
		SupplierCity:         "Imagination City",
		SupplierState:        "CA",
		SupplierPostalCode:   "90210",
		SupplierCountry:      "USA",
		Items: []Item{
			{ItemCode: "bk-2345", Description: "Marketing Strategy Guidebook", Quantity: 3, UnitPrice: 29.99, LineTotal: 89.97},
			{ItemCode: "Bk-1311", Description: "Promotional Materials Handbook", Quantity: 3, UnitPrice: 34.99, LineTotal: 104.97},
		},
		PONumber:        "MMS-80085",
		CreatedBy:       "J.J. Schmidt",
		BuyerDepartment: "Marketing",
		Notes:           "thanks for the order!",
		TaxRate:         0.07,
		SubTotal:        194.94,
		Tax:             13.65,
		GrandTotal:      208.59,
	}
}

func TestPurchaseOrder_RoundTrip(t *testing.T) {
	testCases := []struct {
		description string
		order       *PurchaseOrder
	}{
		{
			description: "fully populated order",
			order:       samplePurchaseOrder(),
		},
		{
			description: "empty item list",
			order: &PurchaseOrder{
				SupplierName:    "Acme",
				PONumber:        "PO-1",
				BuyerDepartment: "HR",
				Items:           []Item{},
				GrandTotal:      500.0,
			},
		},
		{
			description: "zero value order",
			order:       &PurchaseOrder{},
		},
	}
	for _, testCase := range testCases {
		data, err := json.Marshal(testCase.order)
		assert.Nil(t, err, testCase.description)
		actual := &PurchaseOrder{}
		err = json.Unmarshal(data, actual)
		assert.Nil(t, err, testCase.description)
		assert.EqualValues(t, testCase.order, actual, testCase.description)
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		description string
		input       string
		expectErr   bool
		supplier    string
	}{
		{
			description: "bare document",
			input:       `{"supplierName":"Acme","buyerDepartment":"IT"}`,
			supplier:    "Acme",
		},
		{
			description: "envelope wrapper",
			input:       `{"purchaseOrder":{"supplierName":"Tech Supply Co","grandTotal":2159.978}}`,
			supplier:    "Tech Supply Co",
		},
		{
			description: "missing optional fields default",
			input:       `{}`,
			supplier:    "",
		},
		{
			description: "malformed payload",
			input:       `not json`,
			expectErr:   true,
		},
	}
	for _, testCase := range testCases {
		order, err := Parse([]byte(testCase.input))
		if testCase.expectErr {
			assert.NotNil(t, err, testCase.description)
			continue
		}
		if !assert.Nil(t, err, testCase.description) {
			continue
		}
		assert.EqualValues(t, testCase.supplier, order.SupplierName, testCase.description)
	}
}

func TestParse_Defaults(t *testing.T) {
	order, err := Parse([]byte(`{"poNumber":"PO-9"}`))
	assert.Nil(t, err)
	assert.EqualValues(t, "PO-9", order.PONumber)
	assert.EqualValues(t, 0, order.GrandTotal)
	assert.False(t, order.IsApproved)
	assert.Empty(t, order.ApprovalReason)
	assert.Empty(t, order.Items)
}

func TestPurchaseOrder_Flatten(t *testing.T) {
	order := samplePurchaseOrder()
	actual := order.Flatten()
	expect := `MMS-80085,194.94,13.65,208.59,Marketing Masters Supplies,Marketing,"thanks for the order!"`
	assert.EqualValues(t, expect, actual)
}

func TestPurchaseOrder_FlattenEscapesQuotes(t *testing.T) {
	order := &PurchaseOrder{PONumber: "PO-2", Notes: `say "hi"`}
	actual := order.Flatten()
	assert.Contains(t, actual, `"say ""hi"""`)
}

func TestPurchaseOrder_Summary(t *testing.T) {
	summary := samplePurchaseOrder().Summary()
	assert.EqualValues(t, 2, summary.TotalItems)
	assert.EqualValues(t, 6, summary.TotalQuantity)
	assert.EqualValues(t, "Marketing Masters Supplies", summary.Supplier)
	assert.EqualValues(t, 208.59, summary.GrandTotal)
}

func TestPurchaseOrder_Clone(t *testing.T) {
	order := samplePurchaseOrder()
	clone := order.Clone()
	clone.Items[0].Quantity = 99
	clone.SupplierName = "changed"
	assert.EqualValues(t, 3, order.Items[0].Quantity)
	assert.EqualValues(t, "Marketing Masters Supplies", order.SupplierName)
}
