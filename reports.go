package propguard

import "context"

// ============================================================================
// GUARDED OPERATIONS — FINANCIAL REPORTS
// ============================================================================

// FinancialSummary aggregates the caller-visible financial rows. The
// arithmetic is deliberately thin; the point is that it only ever consumes
// scoped reads, so the numbers can never leak past the caller's scope.
type FinancialSummary struct {
	VoucherCount   int     `json:"voucher_count"`
	PostedTotal    float64 `json:"posted_total"`
	InvoiceCount   int     `json:"invoice_count"`
	InvoicedTotal  float64 `json:"invoiced_total"`
	OutstandingDue float64 `json:"outstanding_due"`
}

// GetFinancialSummary builds a summary from the caller's scoped vouchers and
// invoices. Gated by the view_financial_reports action.
func (g *Guard) GetFinancialSummary(ctx context.Context, extra map[string]any) Response[*FinancialSummary] {
	uc, aerr := g.requireContext(ctx)
	if aerr != nil {
		return failErr[*FinancialSummary](aerr)
	}
	if dec := CanPerform(uc, ActionViewFinancialReports, "", g.log); !dec.Allowed {
		return failErr[*FinancialSummary](accessDenied(dec.Reason))
	}

	sum := &FinancialSummary{}

	vf := g.scope.Build(uc, CollectionVouchers)
	if !vf.YieldsNoRows() {
		vouchers, err := g.vouchers.ListVouchers(ctx, vf, extra)
		if err != nil {
			return failErr[*FinancialSummary](g.normalizeStorageError(ctx, err))
		}
		sum.VoucherCount = len(vouchers)
		for _, v := range vouchers {
			if v.Status == VoucherPosted {
				sum.PostedTotal += v.Amount
			}
		}
	}

	inf := g.scope.Build(uc, CollectionInvoices)
	if !inf.YieldsNoRows() {
		invoices, err := g.invoices.ListInvoices(ctx, inf, extra)
		if err != nil {
			return failErr[*FinancialSummary](g.normalizeStorageError(ctx, err))
		}
		sum.InvoiceCount = len(invoices)
		for _, inv := range invoices {
			sum.InvoicedTotal += inv.Amount
			if inv.Status != "paid" {
				sum.OutstandingDue += inv.Amount
			}
		}
	}

	return ok(sum)
}
