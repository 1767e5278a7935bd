package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jszwec/csvutil"
	"github.com/shopspring/decimal"

	"ledger-engine/internal/domain"
	"ledger-engine/internal/errors"
	"ledger-engine/internal/processor"
)

// Runner feeds a CSV stream of transactions through the processor and emits
// the final account balances as CSV. It owns the per-record containment
// policy: a rejected record is logged and the run continues, a storage
// failure aborts the batch.
type Runner struct {
	processor *processor.TransactionProcessor
	logger    *slog.Logger
}

func NewRunner(p *processor.TransactionProcessor, logger *slog.Logger) *Runner {
	return &Runner{
		processor: p,
		logger:    logger,
	}
}

// Run processes every record from input and writes the account snapshot to
// output. Malformed input rows are skipped; only a storage failure or an I/O
// error on the boundary itself returns an error.
func (r *Runner) Run(input io.Reader, output io.Writer) error {
	logger := r.logger.With("run_id", uuid.New().String())
	logger.Info("Starting transaction batch")

	reader := csv.NewReader(input)
	reader.FieldsPerRecord = -1 // dispute rows legitimately omit the amount column
	reader.TrimLeadingSpace = true

	columns, err := readHeader(reader)
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}

	var processed, skipped int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("Skipping unreadable record", "error", err)
			skipped++
			continue
		}

		tx, err := parseRecord(columns, record)
		if err != nil {
			logger.Warn("Skipping malformed record", "record", strings.Join(record, ","), "error", err)
			skipped++
			continue
		}

		if err := r.processor.Process(tx.ToStored()); err != nil {
			if errors.IsFatal(err) {
				logger.Error("Aborting batch on storage failure", "error", err)
				return err
			}
			logger.Warn("Transaction rejected", "transaction_id", tx.TX, "error", err)
		}
		processed++
	}

	logger.Info("Batch complete", "processed", processed, "skipped", skipped)
	return r.writeAccounts(output)
}

func (r *Runner) writeAccounts(output io.Writer) error {
	accounts, err := r.processor.Accounts()
	if err != nil {
		return err
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Client < accounts[j].Client
	})

	rows := make([]accountRow, 0, len(accounts))
	for _, account := range accounts {
		account.Rescale()
		rows = append(rows, accountRow{
			Client:    account.Client,
			Available: account.Available,
			Held:      account.Held,
			Total:     account.Total,
			Locked:    account.Locked,
		})
	}

	data, err := csvutil.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encoding accounts: %w", err)
	}
	_, err = output.Write(data)
	return err
}

type accountRow struct {
	Client    domain.ClientID `csv:"client"`
	Available decimal.Decimal `csv:"available"`
	Held      decimal.Decimal `csv:"held"`
	Total     decimal.Decimal `csv:"total"`
	Locked    bool            `csv:"locked"`
}

// columnIndexes maps the header's column names to positions so inputs may
// order columns freely.
type columnIndexes struct {
	typ    int
	client int
	tx     int
	amount int
}

func readHeader(reader *csv.Reader) (columnIndexes, error) {
	header, err := reader.Read()
	if err != nil {
		return columnIndexes{}, err
	}

	columns := columnIndexes{typ: -1, client: -1, tx: -1, amount: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "type":
			columns.typ = i
		case "client":
			columns.client = i
		case "tx":
			columns.tx = i
		case "amount":
			columns.amount = i
		}
	}
	if columns.typ < 0 || columns.client < 0 || columns.tx < 0 {
		return columnIndexes{}, fmt.Errorf("header is missing required columns: %v", header)
	}
	return columns, nil
}

func parseRecord(columns columnIndexes, record []string) (domain.Transaction, error) {
	field := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var tx domain.Transaction

	switch t := domain.TransactionType(strings.ToLower(field(columns.typ))); t {
	case domain.TypeDeposit, domain.TypeWithdrawal, domain.TypeDispute,
		domain.TypeResolve, domain.TypeChargeback:
		tx.Type = t
	default:
		return domain.Transaction{}, fmt.Errorf("unknown transaction type %q", field(columns.typ))
	}

	client, err := strconv.ParseUint(field(columns.client), 10, 16)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("parsing client id: %w", err)
	}
	tx.Client = domain.ClientID(client)

	id, err := strconv.ParseUint(field(columns.tx), 10, 32)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("parsing transaction id: %w", err)
	}
	tx.TX = domain.TransactionID(id)

	if raw := field(columns.amount); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.Transaction{}, fmt.Errorf("parsing amount: %w", err)
		}
		tx.Amount = &amount
	}

	return tx, nil
}
