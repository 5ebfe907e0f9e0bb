// Package sqlite stores every company's books in one SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
	"github.com/tally-dev/tally/internal/tax"
)

// Store is a store.Store backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	dsn := path + "?_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; SQLite serializes anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) ListEmployees(ctx context.Context, companyID string) ([]model.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, email, pay_type, pay_rate,
		       social_security_rate, medicare_rate, federal_withholding_rate, state_withholding_rate, active
		FROM employees WHERE company_id = ? ORDER BY rowid`, companyID)
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	defer rows.Close()

	var out []model.Employee
	for rows.Next() {
		var (
			e                                  model.Employee
			payType, rate, ss, med, fed, state string
		)
		if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &payType, &rate, &ss, &med, &fed, &state, &e.Active); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		var d store.Decoder
		e.CompanyID = companyID
		e.PayType = model.PayType(payType)
		e.PayRate = d.Decimal("pay_rate", rate)
		e.TaxRates = tax.Rates{
			SocialSecurity:     d.Decimal("social_security_rate", ss),
			Medicare:           d.Decimal("medicare_rate", med),
			FederalWithholding: d.Decimal("federal_withholding_rate", fed),
			StateWithholding:   d.Decimal("state_withholding_rate", state),
		}
		if err := d.Err(); err != nil {
			return nil, fmt.Errorf("employee %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) ListContractors(ctx context.Context, companyID string) ([]model.Contractor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, business_name, bank_name, routing_number, account_last_four
		FROM contractors WHERE company_id = ? ORDER BY rowid`, companyID)
	if err != nil {
		return nil, fmt.Errorf("query contractors: %w", err)
	}
	defer rows.Close()

	var out []model.Contractor
	for rows.Next() {
		c := model.Contractor{CompanyID: companyID}
		if err := rows.Scan(&c.ID, &c.Name, &c.BusinessName, &c.Bank.BankName, &c.Bank.RoutingNumber, &c.Bank.AccountLastFour); err != nil {
			return nil, fmt.Errorf("scan contractor: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) ListPayrollRuns(ctx context.Context, companyID string) ([]model.PayrollRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, contractor_id, pay_period_end, pay_date,
		       hours_worked, overtime_hours, additional_pay, additional_pay_label,
		       gross_pay, net_pay,
		       social_security, medicare, federal_withholding, state_withholding, total_taxes,
		       payment_method, created_at
		FROM payroll_runs WHERE company_id = ? ORDER BY seq`, companyID)
	if err != nil {
		return nil, fmt.Errorf("query payroll runs: %w", err)
	}
	defer rows.Close()

	var out []model.PayrollRun
	for rows.Next() {
		var (
			id, periodEnd, payDate, hours, overtime, additional, label string
			gross, net, method, created                                string
			employeeID, contractorID                                   sql.NullString
			ss, med, fed, state, total                                 sql.NullString
		)
		if err := rows.Scan(&id, &employeeID, &contractorID, &periodEnd, &payDate,
			&hours, &overtime, &additional, &label, &gross, &net,
			&ss, &med, &fed, &state, &total, &method, &created); err != nil {
			return nil, fmt.Errorf("scan payroll run: %w", err)
		}
		payee, err := model.NewPayee(employeeID.String, contractorID.String)
		if err != nil {
			return nil, fmt.Errorf("payroll run %s: %w", id, err)
		}
		var d store.Decoder
		run := model.PayrollRun{
			ID:                 id,
			CompanyID:          companyID,
			Payee:              payee,
			PayPeriodEnd:       d.Day("pay_period_end", periodEnd),
			PayDate:            d.Day("pay_date", payDate),
			HoursWorked:        d.Decimal("hours_worked", hours),
			OvertimeHours:      d.Decimal("overtime_hours", overtime),
			AdditionalPay:      d.Decimal("additional_pay", additional),
			AdditionalPayLabel: label,
			GrossPay:           d.Decimal("gross_pay", gross),
			NetPay:             d.Decimal("net_pay", net),
			PaymentMethod:      model.PaymentMethod(method),
			CreatedAt:          d.Stamp("created_at", created),
		}
		if total.Valid {
			run.Taxes = &tax.Breakdown{
				SocialSecurity:     d.Decimal("social_security", ss.String),
				Medicare:           d.Decimal("medicare", med.String),
				FederalWithholding: d.Decimal("federal_withholding", fed.String),
				StateWithholding:   d.Decimal("state_withholding", state.String),
				Total:              d.Decimal("total_taxes", total.String),
			}
		}
		if err := d.Err(); err != nil {
			return nil, fmt.Errorf("payroll run %s: %w", id, err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (s *Store) ListTransactions(ctx context.Context, companyID string) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, amount, account_number, description, reference
		FROM transactions WHERE company_id = ? ORDER BY seq`, companyID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		var (
			t            model.Transaction
			date, amount string
		)
		if err := rows.Scan(&t.ID, &date, &amount, &t.AccountNumber, &t.Description, &t.Reference); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		var d store.Decoder
		t.CompanyID = companyID
		t.Date = d.Day("date", date)
		t.Amount = d.Decimal("amount", amount)
		if err := d.Err(); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) ListAccounts(ctx context.Context, companyID string) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT number, name, classification, contra, description
		FROM accounts WHERE company_id = ? ORDER BY number`, companyID)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		var (
			a     model.Account
			class string
		)
		if err := rows.Scan(&a.Number, &a.Name, &class, &a.Contra, &a.Description); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Classification = model.Classification(class)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) ListTasks(ctx context.Context, companyID string) ([]model.Task, error) {
	links, err := s.taskDocuments(ctx, companyID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, status, assignee, due_date, created_at
		FROM tasks WHERE company_id = ? ORDER BY position`, companyID)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var out []model.Task
	for rows.Next() {
		var (
			t                      model.Task
			status, due, createdAt string
		)
		if err := rows.Scan(&t.ID, &t.Title, &status, &t.Assignee, &due, &createdAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		var d store.Decoder
		t.CompanyID = companyID
		t.Status = model.TaskStatus(status)
		t.DueDate = d.Day("due_date", due)
		t.CreatedAt = d.Stamp("created_at", createdAt)
		t.DocumentIDs = links[t.ID]
		if err := d.Err(); err != nil {
			return nil, fmt.Errorf("task %s: %w", t.ID, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) taskDocuments(ctx context.Context, companyID string) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT task_id, document_id FROM task_documents
		WHERE company_id = ? ORDER BY task_id, position`, companyID)
	if err != nil {
		return nil, fmt.Errorf("query task documents: %w", err)
	}
	defer rows.Close()

	links := make(map[string][]string)
	for rows.Next() {
		var taskID, docID string
		if err := rows.Scan(&taskID, &docID); err != nil {
			return nil, fmt.Errorf("scan task document: %w", err)
		}
		links[taskID] = append(links[taskID], docID)
	}
	return links, rows.Err()
}

func (s *Store) ListDocuments(ctx context.Context, companyID string) ([]model.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, kind, status, updated_at
		FROM documents WHERE company_id = ? ORDER BY position`, companyID)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var out []model.Document
	for rows.Next() {
		var (
			doc               model.Document
			status, updatedAt string
		)
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.Kind, &status, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		var d store.Decoder
		doc.CompanyID = companyID
		doc.Status = model.DocumentStatus(status)
		doc.UpdatedAt = d.Stamp("updated_at", updatedAt)
		if err := d.Err(); err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.ID, err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *Store) SavePayrollRun(ctx context.Context, companyID string, run model.PayrollRun) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM payroll_runs WHERE company_id = ? AND id = ?`, companyID, run.ID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check payroll run: %w", err)
		}
		if exists > 0 {
			return store.ErrDuplicate
		}

		var ss, med, fed, state, total sql.NullString
		if t := run.Taxes; t != nil {
			ss = sql.NullString{String: t.SocialSecurity.String(), Valid: true}
			med = sql.NullString{String: t.Medicare.String(), Valid: true}
			fed = sql.NullString{String: t.FederalWithholding.String(), Valid: true}
			state = sql.NullString{String: t.StateWithholding.String(), Valid: true}
			total = sql.NullString{String: t.Total.String(), Valid: true}
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO payroll_runs (
				company_id, id, employee_id, contractor_id, pay_period_end, pay_date,
				hours_worked, overtime_hours, additional_pay, additional_pay_label,
				gross_pay, net_pay,
				social_security, medicare, federal_withholding, state_withholding, total_taxes,
				payment_method, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			companyID, run.ID, nullable(run.Payee.EmployeeID()), nullable(run.Payee.ContractorID()),
			store.FormatDay(run.PayPeriodEnd), store.FormatDay(run.PayDate),
			run.HoursWorked.String(), run.OvertimeHours.String(), run.AdditionalPay.String(), run.AdditionalPayLabel,
			run.GrossPay.String(), run.NetPay.String(),
			ss, med, fed, state, total,
			string(run.PaymentMethod), store.FormatStamp(run.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert payroll run: %w", err)
		}
		return nil
	})
}

func (s *Store) SaveEmployee(ctx context.Context, companyID string, e model.Employee) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (
			company_id, id, first_name, last_name, email, pay_type, pay_rate,
			social_security_rate, medicare_rate, federal_withholding_rate, state_withholding_rate, active
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (company_id, id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			email = excluded.email,
			pay_type = excluded.pay_type,
			pay_rate = excluded.pay_rate,
			social_security_rate = excluded.social_security_rate,
			medicare_rate = excluded.medicare_rate,
			federal_withholding_rate = excluded.federal_withholding_rate,
			state_withholding_rate = excluded.state_withholding_rate,
			active = excluded.active`,
		companyID, e.ID, e.FirstName, e.LastName, e.Email, string(e.PayType), e.PayRate.String(),
		e.TaxRates.SocialSecurity.String(), e.TaxRates.Medicare.String(),
		e.TaxRates.FederalWithholding.String(), e.TaxRates.StateWithholding.String(), e.Active,
	)
	if err != nil {
		return fmt.Errorf("save employee %s: %w", e.ID, err)
	}
	return nil
}

func (s *Store) SaveContractor(ctx context.Context, companyID string, c model.Contractor) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contractors (company_id, id, name, business_name, bank_name, routing_number, account_last_four)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (company_id, id) DO UPDATE SET
			name = excluded.name,
			business_name = excluded.business_name,
			bank_name = excluded.bank_name,
			routing_number = excluded.routing_number,
			account_last_four = excluded.account_last_four`,
		companyID, c.ID, c.Name, c.BusinessName, c.Bank.BankName, c.Bank.RoutingNumber, c.Bank.AccountLastFour,
	)
	if err != nil {
		return fmt.Errorf("save contractor %s: %w", c.ID, err)
	}
	return nil
}

func (s *Store) SaveTransactions(ctx context.Context, companyID string, txns []model.Transaction) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO transactions (company_id, id, date, amount, account_number, description, reference)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare transaction insert: %w", err)
		}
		defer stmt.Close()

		for _, t := range txns {
			if _, err := stmt.ExecContext(ctx, companyID, t.ID, store.FormatDay(t.Date), t.Amount.String(),
				t.AccountNumber, t.Description, t.Reference); err != nil {
				return fmt.Errorf("insert transaction %s: %w", t.ID, err)
			}
		}
		return nil
	})
}

func (s *Store) SaveAccounts(ctx context.Context, companyID string, accounts []model.Account) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE company_id = ?`, companyID); err != nil {
			return fmt.Errorf("clear accounts: %w", err)
		}
		for _, a := range accounts {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO accounts (company_id, number, name, classification, contra, description)
				VALUES (?, ?, ?, ?, ?, ?)`,
				companyID, a.Number, a.Name, string(a.Classification), a.Contra, a.Description); err != nil {
				return fmt.Errorf("insert account %d: %w", a.Number, err)
			}
		}
		return nil
	})
}

func (s *Store) SaveWork(ctx context.Context, companyID string, tasks []model.Task, docs []model.Document) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"task_documents", "tasks", "documents"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE company_id = ?`, companyID); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		for i, doc := range docs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO documents (company_id, id, position, name, kind, status, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				companyID, doc.ID, i, doc.Name, doc.Kind, string(doc.Status), store.FormatStamp(doc.UpdatedAt)); err != nil {
				return fmt.Errorf("insert document %s: %w", doc.ID, err)
			}
		}
		for i, t := range tasks {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO tasks (company_id, id, position, title, status, assignee, due_date, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				companyID, t.ID, i, t.Title, string(t.Status), t.Assignee,
				store.FormatDay(t.DueDate), store.FormatStamp(t.CreatedAt)); err != nil {
				return fmt.Errorf("insert task %s: %w", t.ID, err)
			}
			for j, docID := range t.DocumentIDs {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO task_documents (company_id, task_id, document_id, position)
					VALUES (?, ?, ?, ?)`, companyID, t.ID, docID, j); err != nil {
					return fmt.Errorf("link task %s to document %s: %w", t.ID, docID, err)
				}
			}
		}
		return nil
	})
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

var _ store.Store = (*Store)(nil)
