package delegate

import (
	"fmt"

	"github.com/poflow/poflow/model/po"
)

const narrativePrompt = `You are a specialized document processor that evaluates purchase orders for approval.

Analyze the purchase order data and check these business rules:
1. The Grand Total must be less than $1000
2. The Supplier Name must not be empty
3. The Buyer Department must be one of: "Travel", "Marketing", "IT", "HR"

Respond with JSON containing:
{
    "poNumber": "string",
    "isApproved": boolean,
    "approvalReason": "string explaining the decision"
}
`

const extractionPrompt = `You are a specialized document processor that flattens purchase orders.

Extract the following fields from the purchase order data and respond with a
single comma-delimited record, nothing else:
PONumber,Subtotal,Tax,GrandTotal,SupplierName,BuyerDepartment,Notes

Quote the Notes field and double any embedded quotes, CSV-style.
`

// SystemPrompt returns the instruction template for the configured mode.
func SystemPrompt(mode Mode) (string, error) {
	switch mode {
	case ModeNarrative:
		return narrativePrompt, nil
	case ModeExtraction:
		return extractionPrompt, nil
	}
	return "", fmt.Errorf("unsupported delegate mode: %s", mode)
}

// UserPayload renders the purchase order as the user message body.
func UserPayload(order *po.PurchaseOrder) (string, error) {
	return order.JSON()
}
