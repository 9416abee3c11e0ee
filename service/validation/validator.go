package validation

import (
	"fmt"
	"math"

	"github.com/poflow/poflow/model/po"
)

const amountTolerance = 0.01

// Check inspects a purchase order for internal consistency and returns
// warnings. Warnings never fail a task - incomplete documents are still
// processed and left to the business rules to reject.
func Check(order *po.PurchaseOrder) []string {
	var warnings []string

	if order.PONumber == "" {
		warnings = append(warnings, "PO number is missing")
	}
	if order.CreatedBy == "" {
		warnings = append(warnings, "created by field is missing")
	}
	if len(order.Items) == 0 {
		warnings = append(warnings, "purchase order has no items")
	}

	for i := range order.Items {
		item := &order.Items[i]
		if item.Quantity < 0 {
			warnings = append(warnings, fmt.Sprintf("item %d has negative quantity", i+1))
		}
		expected := float64(item.Quantity) * item.UnitPrice
		if math.Abs(item.LineTotal-expected) > amountTolerance {
			warnings = append(warnings, fmt.Sprintf("item %d line total mismatch: expected %.2f, got %.2f", i+1, expected, item.LineTotal))
		}
	}

	if len(order.Items) > 0 {
		var subTotal float64
		for i := range order.Items {
			subTotal += order.Items[i].LineTotal
		}
		if math.Abs(order.SubTotal-subTotal) > amountTolerance {
			warnings = append(warnings, fmt.Sprintf("subtotal mismatch: expected %.2f, got %.2f", subTotal, order.SubTotal))
		}
	}
	if tax := order.SubTotal * order.TaxRate; math.Abs(order.Tax-tax) > amountTolerance {
		warnings = append(warnings, fmt.Sprintf("tax mismatch: expected %.2f, got %.2f", tax, order.Tax))
	}
	if grandTotal := order.SubTotal + order.Tax; math.Abs(order.GrandTotal-grandTotal) > amountTolerance {
		warnings = append(warnings, fmt.Sprintf("grand total mismatch: expected %.2f, got %.2f", grandTotal, order.GrandTotal))
	}
	if order.TaxRate < 0 || order.TaxRate > 0.2 {
		warnings = append(warnings, fmt.Sprintf("unusual tax rate: %v", order.TaxRate))
	}
	return warnings
}
