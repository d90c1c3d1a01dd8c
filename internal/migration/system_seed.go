package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	pnldomain "github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"github.com/railzwaylabs/sitepnl/internal/pnl/repository"
)

type namedSeed struct {
	Code string
	Name string
}

var contractTypeSeeds = []namedSeed{
	{Code: string(pnldomain.ContractTypeFixedFee), Name: "Fixed Fee"},
	{Code: string(pnldomain.ContractTypePerOccupiedRoom), Name: "Per Occupied Room"},
	{Code: string(pnldomain.ContractTypePerLaborHour), Name: "Per Labor Hour"},
	{Code: string(pnldomain.ContractTypeRevenueShare), Name: "Revenue Share"},
	{Code: string(pnldomain.ContractTypeBillingAccount), Name: "Billing Account"},
	{Code: string(pnldomain.ContractTypeManagementAgreement), Name: "Management Agreement"},
}

var expenseCategorySeeds = []namedSeed{
	{Code: repository.ExpenseCategoryPayroll, Name: "Payroll"},
	{Code: repository.ExpenseCategoryBillable, Name: "Billable Expense"},
	{Code: repository.ExpenseCategoryOtherExpense, Name: "Other Expense"},
}

func seedReferenceData(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("reference seed requires database handle")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin reference seed transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := seedNamed(ctx, tx, "contract_types", contractTypeSeeds); err != nil {
		return err
	}
	if err := seedNamed(ctx, tx, "expense_categories", expenseCategorySeeds); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reference seed transaction: %w", err)
	}
	return nil
}

// seedNamed upserts code/name rows. table is always one of the constants above.
func seedNamed(ctx context.Context, tx *sql.Tx, table string, seeds []namedSeed) error {
	stmt := `
		INSERT INTO ` + table + ` (code, name)
		VALUES ($1, $2)
		ON CONFLICT (code) DO UPDATE
		SET name = EXCLUDED.name
	`

	for _, seed := range seeds {
		if _, err := tx.ExecContext(ctx, stmt, seed.Code, seed.Name); err != nil {
			return fmt.Errorf("seed %s %s: %w", table, seed.Code, err)
		}
	}
	return nil
}
