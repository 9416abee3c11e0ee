package approval

import (
	"fmt"
	"strings"

	"github.com/poflow/poflow/model/po"
)

// GrandTotalLimit is the approval threshold; orders at or above it are
// rejected. The value is currency-unit agnostic.
const GrandTotalLimit = 1000.0

// ApprovedReason is the fixed reason attached to every approved order.
const ApprovedReason = "Approved: grand total is below the limit, the supplier is provided, and the buyer department is authorized"

// AuthorizedDepartments lists the buyer departments allowed to purchase.
var AuthorizedDepartments = []string{"Travel", "Marketing", "IT", "HR"}

// Evaluate applies the fixed business rules to a purchase order and returns
// the approval decision. Rules are checked in order and short-circuit on the
// first violation:
//
//  1. grand total must be below GrandTotalLimit
//  2. supplier name must not be empty
//  3. buyer department must be one of AuthorizedDepartments
//
// The function is pure: it never fails and never mutates the order.
func Evaluate(order *po.PurchaseOrder) *po.Approval {
	decision := &po.Approval{PONumber: order.PONumber}
	switch {
	case order.GrandTotal >= GrandTotalLimit:
		decision.ApprovalReason = fmt.Sprintf("Rejected: grand total %v equals or exceeds the %v limit", order.GrandTotal, GrandTotalLimit)
	case strings.TrimSpace(order.SupplierName) == "":
		decision.ApprovalReason = "Rejected: supplier name is missing"
	case !IsAuthorizedDepartment(order.BuyerDepartment):
		decision.ApprovalReason = fmt.Sprintf("Rejected: buyer department %q is not authorized", order.BuyerDepartment)
	default:
		decision.IsApproved = true
		decision.ApprovalReason = ApprovedReason
	}
	return decision
}

// Apply evaluates the order and writes the decision into its approval output
// fields, returning the decision. The input fields are left untouched.
func Apply(order *po.PurchaseOrder) *po.Approval {
	decision := Evaluate(order)
	order.IsApproved = decision.IsApproved
	order.ApprovalReason = decision.ApprovalReason
	return decision
}

// IsAuthorizedDepartment reports whether the department is whitelisted.
// Matching is exact - the whitelist is a fixed constant of this engine.
func IsAuthorizedDepartment(department string) bool {
	for _, candidate := range AuthorizedDepartments {
		if department == candidate {
			return true
		}
	}
	return false
}
