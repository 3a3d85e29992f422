package cli

import (
	"fmt"
	"strings"

	"github.com/rentledger/rentledger-backend/internal/application/accrual"
	"github.com/rentledger/rentledger-backend/internal/application/reconcile"
)

// PrintHeader prints the command header.
func PrintHeader(command string, dryRun bool) {
	if dryRun {
		fmt.Printf("rentledger: %s (dry run, no changes will be made)\n", command)
		return
	}
	fmt.Printf("rentledger: %s\n", command)
}

// PrintRunSummary prints a reconciliation batch summary.
func PrintRunSummary(report *reconcile.BatchReport) {
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Run %s\n", report.RunID)

	var posted, skipped, failed, errored int
	for _, tr := range report.Tenants {
		line := fmt.Sprintf("  %-20s", tr.TenantID)
		if tr.Err != nil {
			errored++
			fmt.Printf("%s ERROR: %v\n", line, tr.Err)
			continue
		}
		posted += tr.Result.Posted
		skipped += tr.Result.Skipped
		failed += tr.Result.Failed
		fmt.Printf("%s posted=%d skipped=%d failed=%d\n",
			line, tr.Result.Posted, tr.Result.Skipped, tr.Result.Failed)
	}

	fmt.Printf("Summary: Posted=%d Skipped=%d Failed=%d Errors=%d\n",
		posted, skipped, failed, errored)
}

// PrintTenantResult prints a single tenant's reconciliation outcome.
func PrintTenantResult(tenantID string, res *reconcile.Result) {
	fmt.Printf("%s: posted=%d skipped=%d failed=%d\n",
		tenantID, res.Posted, res.Skipped, res.Failed)
}

// PrintAccrualSummary prints an accrual pass summary.
func PrintAccrualSummary(outcomes []accrual.TenantOutcome) {
	fmt.Println(strings.Repeat("-", 60))
	for _, out := range outcomes {
		line := fmt.Sprintf("  %-20s", out.TenantID)
		switch {
		case out.Err != nil:
			fmt.Printf("%s ERROR: %v\n", line, out.Err)
		case out.Amount != nil:
			fmt.Printf("%s charged %s\n", line, *out.Amount)
		default:
			fmt.Printf("%s nothing due today\n", line)
		}
	}
}
