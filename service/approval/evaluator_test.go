package approval

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/poflow/poflow/model/po"
)

func TestEvaluate(t *testing.T) {
	testCases := []struct {
		description   string
		order         *po.PurchaseOrder
		expectApprove bool
		reasonPart    string
	}{
		{
			description: "grand total over the limit",
			order: &po.PurchaseOrder{
				SupplierName:    "Tech Supply Co",
				BuyerDepartment: "IT",
				GrandTotal:      2159.978,
			},
			reasonPart: "2159.978",
		},
		{
			description: "grand total exactly at the limit",
			order: &po.PurchaseOrder{
				SupplierName:    "Acme",
				BuyerDepartment: "IT",
				GrandTotal:      1000.0,
			},
			reasonPart: "1000",
		},
		{
			description: "missing supplier rejected regardless of other fields",
			order: &po.PurchaseOrder{
				BuyerDepartment: "Marketing",
				GrandTotal:      10.0,
			},
			reasonPart: "supplier",
		},
		{
			description: "whitespace-only supplier rejected",
			order: &po.PurchaseOrder{
				SupplierName:    "   ",
				BuyerDepartment: "HR",
				GrandTotal:      10.0,
			},
			reasonPart: "supplier",
		},
		{
			description: "unauthorized department",
			order: &po.PurchaseOrder{
				SupplierName:    "Acme",
				BuyerDepartment: "Engineering",
				GrandTotal:      10.0,
			},
			reasonPart: `"Engineering"`,
		},
		{
			description: "all rules pass",
			order: &po.PurchaseOrder{
				SupplierName:    "Acme",
				BuyerDepartment: "HR",
				GrandTotal:      500.0,
			},
			expectApprove: true,
			reasonPart:    ApprovedReason,
		},
	}
	for _, testCase := range testCases {
		decision := Evaluate(testCase.order)
		assert.EqualValues(t, testCase.expectApprove, decision.IsApproved, testCase.description)
		assert.Contains(t, decision.ApprovalReason, testCase.reasonPart, testCase.description)
	}
}

func TestEvaluate_RuleOrder(t *testing.T) {
	// every rule violated at once - the grand total rule wins
	order := &po.PurchaseOrder{GrandTotal: 5000.0, BuyerDepartment: "Engineering"}
	decision := Evaluate(order)
	assert.False(t, decision.IsApproved)
	assert.Contains(t, decision.ApprovalReason, "5000")
	assert.NotContains(t, decision.ApprovalReason, "supplier")
}

func TestEvaluate_Deterministic(t *testing.T) {
	order := &po.PurchaseOrder{SupplierName: "Acme", BuyerDepartment: "Travel", GrandTotal: 42.0}
	first := Evaluate(order)
	second := Evaluate(order)
	assert.EqualValues(t, first, second)
}

func TestEvaluate_DoesNotMutateOrder(t *testing.T) {
	order := &po.PurchaseOrder{SupplierName: "Acme", BuyerDepartment: "IT", GrandTotal: 9.0}
	_ = Evaluate(order)
	assert.False(t, order.IsApproved)
	assert.Empty(t, order.ApprovalReason)
}

func TestApply(t *testing.T) {
	order := &po.PurchaseOrder{PONumber: "PO-7", SupplierName: "Acme", BuyerDepartment: "IT", GrandTotal: 9.0}
	decision := Apply(order)
	assert.True(t, order.IsApproved)
	assert.EqualValues(t, ApprovedReason, order.ApprovalReason)
	assert.EqualValues(t, "PO-7", decision.PONumber)
}

func TestIsAuthorizedDepartment(t *testing.T) {
	for _, department := range AuthorizedDepartments {
		assert.True(t, IsAuthorizedDepartment(department), department)
	}
	for _, department := range []string{"", "it", "Finance", "travel "} {
		assert.False(t, IsAuthorizedDepartment(department), fmt.Sprintf("%q", department))
	}
}

func TestEvaluate_ThresholdProperty(t *testing.T) {
	for _, grandTotal := range []float64{1000.0, 1000.01, 2500, 99999.99} {
		order := &po.PurchaseOrder{SupplierName: "Acme", BuyerDepartment: "IT", GrandTotal: grandTotal}
		decision := Evaluate(order)
		assert.False(t, decision.IsApproved, fmt.Sprintf("grandTotal=%v", grandTotal))
		assert.Contains(t, decision.ApprovalReason, fmt.Sprintf("%v", grandTotal))
	}
	for _, grandTotal := range []float64{0, 1, 999.99} {
		order := &po.PurchaseOrder{SupplierName: "Acme", BuyerDepartment: "IT", GrandTotal: grandTotal}
		assert.True(t, Evaluate(order).IsApproved, fmt.Sprintf("grandTotal=%v", grandTotal))
	}
}
