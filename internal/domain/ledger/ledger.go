// Package ledger appends validated rows to a tenant's running-balance
// ledger. Rows are kept most-recent-first under a header row; each row's
// balance equals the prior row's balance minus that row's transaction.
package ledger

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rentledger/rentledger-backend/internal/adapters/tabular"
	"github.com/rentledger/rentledger-backend/internal/domain/money"
	"github.com/rentledger/rentledger-backend/internal/domain/tenant"
)

// Ledger table layout. The status block sits above the header; new entry
// rows are inserted immediately below the header. The bottom row is the
// seed entry that anchors the balance chain.
const (
	colDate        = "Date"
	colDescription = "Description"
	colTransaction = "Transaction"
	colBalance     = "Balance"

	labelCurrentBalance = "Current balance"
	labelLastPayment    = "Last payment"
	labelNextScheduled  = "Next scheduled"

	seedDescription = "Opening balance"

	dateLayout = "2006-01-02"
)

// StructuralError indicates the ledger is missing required rows/columns
// or its seed balance is not numeric. Fatal for the tenant's current run;
// the balance chain is never touched on a structural failure.
type StructuralError struct {
	Ledger string
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("ledger %q structure invalid: %s", e.Ledger, e.Reason)
}

// Row is one ledger entry, newest first.
type Row struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Transaction decimal.Decimal `json:"transaction"`
	Balance     decimal.Decimal `json:"balance"`
}

// Poster appends rows and maintains the running-balance invariant.
type Poster struct {
	store  tabular.Store
	logger *slog.Logger
}

// NewPoster creates a poster over the given tabular store.
func NewPoster(store tabular.Store, logger *slog.Logger) *Poster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poster{store: store, logger: logger}
}

// columns caches the resolved layout of one ledger table.
type columns struct {
	table     tabular.Table
	headerRow int
	date      int
	desc      int
	txn       int
	balance   int
}

// resolve locates the ledger table and its required structure.
func (p *Poster) resolve(cfg *tenant.Config) (*columns, error) {
	table, err := p.store.FindTable(cfg.LedgerName)
	if err != nil {
		return nil, &StructuralError{Ledger: cfg.LedgerName, Reason: err.Error()}
	}

	c := &columns{table: table}
	if c.headerRow, err = table.FindRow(colDate); err != nil {
		return nil, &StructuralError{Ledger: cfg.LedgerName, Reason: "header row not found: " + err.Error()}
	}
	if c.date, err = table.FindColumn(colDate); err != nil {
		return nil, &StructuralError{Ledger: cfg.LedgerName, Reason: err.Error()}
	}
	if c.desc, err = table.FindColumn(colDescription); err != nil {
		return nil, &StructuralError{Ledger: cfg.LedgerName, Reason: err.Error()}
	}
	if c.txn, err = table.FindColumn(colTransaction); err != nil {
		return nil, &StructuralError{Ledger: cfg.LedgerName, Reason: err.Error()}
	}
	if c.balance, err = table.FindColumn(colBalance); err != nil {
		return nil, &StructuralError{Ledger: cfg.LedgerName, Reason: err.Error()}
	}

	if table.RowCount() <= c.headerRow+1 {
		return nil, &StructuralError{Ledger: cfg.LedgerName, Reason: "no seed row below header"}
	}
	// The newest existing row anchors the chain; its balance must parse.
	if _, err := p.balanceAt(c, c.headerRow+1); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *Poster) balanceAt(c *columns, row int) (decimal.Decimal, error) {
	cell, err := c.table.Cell(row, c.balance)
	if err != nil {
		return decimal.Zero, err
	}
	bal, err := money.Parse(cell)
	if err != nil {
		return decimal.Zero, &StructuralError{
			Ledger: c.table.Name(),
			Reason: fmt.Sprintf("balance in row %d is not numeric: %v", row, err),
		}
	}
	return bal, nil
}

// ValidateStructure checks the ledger without modifying it.
func (p *Poster) ValidateStructure(cfg *tenant.Config) error {
	_, err := p.resolve(cfg)
	return err
}

// AddPayment inserts a payment row. Payments are positive inflows that
// reduce the balance.
func (p *Poster) AddPayment(cfg *tenant.Config, amount decimal.Decimal, date time.Time) error {
	if !amount.IsPositive() {
		return fmt.Errorf("payment amount must be positive, got %s", amount)
	}
	desc := "Rent payment"
	if !cfg.IsRent() {
		desc = "Loan payment"
	}
	_, err := p.insertRow(cfg, date, desc, amount)
	return err
}

// PostAccrual applies the scheduled accrual for today, if any. At most one
// branch fires per day. Even when no row is inserted, the status summary
// is recomputed. Returns the inserted transaction amount, or nil.
func (p *Poster) PostAccrual(cfg *tenant.Config, today time.Time) (*decimal.Decimal, error) {
	switch {
	case cfg.Rent != nil && today.Day() == cfg.Rent.DueDay:
		txn := cfg.Rent.MonthlyAmount.Neg()
		if _, err := p.insertRow(cfg, today, "Rent due", txn); err != nil {
			return nil, err
		}
		return &txn, nil

	case cfg.Loan != nil && today.Day() == cfg.Loan.InterestDay && !cfg.Loan.AnnualRate.IsZero():
		c, err := p.resolve(cfg)
		if err != nil {
			return nil, err
		}
		prev, err := p.balanceAt(c, c.headerRow+1)
		if err != nil {
			return nil, err
		}
		// No interest is charged against a credit balance.
		txn := decimal.Zero
		if prev.Sign() >= 0 {
			txn = prev.Mul(cfg.Loan.AnnualRate).Div(decimal.NewFromInt(12)).Round(2).Neg()
		}
		if _, err := p.insertRow(cfg, today, "Interest", txn); err != nil {
			return nil, err
		}
		return &txn, nil

	default:
		c, err := p.resolve(cfg)
		if err != nil {
			return nil, err
		}
		return nil, p.refreshStatus(cfg, c)
	}
}

// insertRow appends one entry below the header and recomputes the balance.
func (p *Poster) insertRow(cfg *tenant.Config, date time.Time, desc string, txn decimal.Decimal) (decimal.Decimal, error) {
	c, err := p.resolve(cfg)
	if err != nil {
		return decimal.Zero, err
	}

	prev, err := p.balanceAt(c, c.headerRow+1)
	if err != nil {
		return decimal.Zero, err
	}
	newBalance := prev.Sub(txn)

	if err := c.table.InsertRowAfter(c.headerRow); err != nil {
		return decimal.Zero, err
	}
	row := c.headerRow + 1
	if err := c.table.SetCell(row, c.date, date.Format(dateLayout)); err != nil {
		return decimal.Zero, err
	}
	if err := c.table.SetCell(row, c.desc, desc); err != nil {
		return decimal.Zero, err
	}
	if err := c.table.SetCell(row, c.txn, money.Format(txn)); err != nil {
		return decimal.Zero, err
	}
	if err := c.table.SetCell(row, c.balance, money.Format(newBalance)); err != nil {
		return decimal.Zero, err
	}

	p.logger.Debug("posted ledger row",
		"ledger", cfg.LedgerName,
		"description", desc,
		"transaction", money.Format(txn),
		"balance", money.Format(newBalance),
	)

	return newBalance, p.refreshStatus(cfg, c)
}

// Entries returns the ledger rows, newest first, seed row included.
func (p *Poster) Entries(cfg *tenant.Config) ([]Row, error) {
	c, err := p.resolve(cfg)
	if err != nil {
		return nil, err
	}

	var rows []Row
	for r := c.headerRow + 1; r < c.table.RowCount(); r++ {
		dateCell, _ := c.table.Cell(r, c.date)
		descCell, _ := c.table.Cell(r, c.desc)
		txnCell, _ := c.table.Cell(r, c.txn)

		balance, err := p.balanceAt(c, r)
		if err != nil {
			return nil, err
		}
		txn := decimal.Zero
		if txnCell != "" {
			if txn, err = money.Parse(txnCell); err != nil {
				return nil, &StructuralError{Ledger: cfg.LedgerName, Reason: fmt.Sprintf("transaction in row %d is not numeric", r)}
			}
		}
		rows = append(rows, Row{
			Date:        dateCell,
			Description: descCell,
			Transaction: txn,
			Balance:     balance,
		})
	}
	return rows, nil
}

// Balance returns the current balance (newest row).
func (p *Poster) Balance(cfg *tenant.Config) (decimal.Decimal, error) {
	c, err := p.resolve(cfg)
	if err != nil {
		return decimal.Zero, err
	}
	return p.balanceAt(c, c.headerRow+1)
}
