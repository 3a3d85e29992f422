package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rentledger/rentledger-backend/internal/adapters/tabular"
	"github.com/rentledger/rentledger-backend/internal/domain/money"
	"github.com/rentledger/rentledger-backend/internal/domain/tenant"
)

// refreshStatus rewrites the human-readable summary block above the header:
// current balance, last payment, next scheduled accrual. The summary is a
// tenant-visible side effect, not part of the balance-chain contract.
func (p *Poster) refreshStatus(cfg *tenant.Config, c *columns) error {
	balance, err := p.balanceAt(c, c.headerRow+1)
	if err != nil {
		return err
	}
	if err := p.setStatusValue(c, labelCurrentBalance, money.Format(balance)); err != nil {
		return err
	}

	lastPayment := "none"
	for r := c.headerRow + 1; r < c.table.RowCount(); r++ {
		txnCell, _ := c.table.Cell(r, c.txn)
		if txnCell == "" {
			continue
		}
		txn, err := money.Parse(txnCell)
		if err != nil || !txn.IsPositive() {
			continue
		}
		dateCell, _ := c.table.Cell(r, c.date)
		lastPayment = fmt.Sprintf("%s on %s", money.Format(txn), dateCell)
		break
	}
	if err := p.setStatusValue(c, labelLastPayment, lastPayment); err != nil {
		return err
	}

	return p.setStatusValue(c, labelNextScheduled, nextScheduled(cfg))
}

// setStatusValue writes the cell to the right of a status label. A missing
// label is tolerated: the summary block is optional decoration.
func (p *Poster) setStatusValue(c *columns, label, value string) error {
	row, err := c.table.FindRow(label)
	if err != nil {
		var matchErr *tabular.MatchError
		if errors.As(err, &matchErr) && matchErr.Count == 0 {
			return nil
		}
		return err
	}
	col, err := c.table.FindColumn(label)
	if err != nil {
		return err
	}
	return c.table.SetCell(row, col+1, value)
}

// nextScheduled describes the upcoming accrual for the status block.
func nextScheduled(cfg *tenant.Config) string {
	if cfg.Rent != nil {
		return fmt.Sprintf("%s due on day %d", money.Format(cfg.Rent.MonthlyAmount), cfg.Rent.DueDay)
	}
	if cfg.Loan != nil && !cfg.Loan.AnnualRate.IsZero() {
		pct := cfg.Loan.AnnualRate.Mul(decimal.NewFromInt(100))
		return fmt.Sprintf("interest at %s%% on day %d", pct.StringFixed(2), cfg.Loan.InterestDay)
	}
	return "no accrual"
}

// EnsureLedger creates a skeleton ledger table for a tenant if absent:
// status block, header row and a seed row. Used by registration setup.
func (p *Poster) EnsureLedger(cfg *tenant.Config, seed decimal.Decimal, today time.Time) error {
	if err := p.ValidateStructure(cfg); err == nil {
		return nil
	}

	table, err := p.store.FindTable(cfg.LedgerName)
	if err != nil {
		// Only create when the table is genuinely absent.
		var matchErr *tabular.MatchError
		if !errors.As(err, &matchErr) || matchErr.Count != 0 {
			return err
		}
		if table, err = p.store.CreateTable(cfg.LedgerName); err != nil {
			return err
		}
	}

	if table.RowCount() > 0 {
		return &StructuralError{Ledger: cfg.LedgerName, Reason: "table exists but is not a valid ledger"}
	}

	table.AppendRow([]string{labelCurrentBalance, money.Format(seed)})
	table.AppendRow([]string{labelLastPayment, "none"})
	table.AppendRow([]string{labelNextScheduled, nextScheduled(cfg)})
	table.AppendRow([]string{colDate, colDescription, colTransaction, colBalance})
	table.AppendRow([]string{today.Format(dateLayout), seedDescription, "", money.Format(seed)})
	return nil
}
