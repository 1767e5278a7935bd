package processor

import (
	"log/slog"

	"ledger-engine/internal/domain"
	"ledger-engine/internal/errors"
)

// TransactionProcessor applies one transaction at a time against account
// state held in storage. It is stateless itself; callers that parallelize
// must serialize the read-modify-write per client.
type TransactionProcessor struct {
	store  domain.Storage
	logger *slog.Logger
}

func New(store domain.Storage, logger *slog.Logger) *TransactionProcessor {
	return &TransactionProcessor{
		store:  store,
		logger: logger,
	}
}

// Process validates and applies a single transaction. The returned error is
// scoped to this record; the caller decides whether to continue the run
// (errors carrying the StorageFailure code indicate a corrupted run and
// should abort it).
func (p *TransactionProcessor) Process(tx domain.StoredTransaction) error {
	if tx.IsInvalid() {
		p.logger.Error("Transaction is not valid", "transaction_id", tx.ID, "kind", tx.Kind)
		return errors.NewProcessingErrorf(errors.TransactionNotValid,
			"transaction %d is not valid", tx.ID)
	}

	p.logger.Debug("Processing transaction",
		"transaction_id", tx.ID, "client_id", tx.ClientID, "kind", tx.Kind)

	stored, err := p.store.InsertTransaction(tx)
	if err != nil {
		return err
	}

	account, err := p.store.GetAccount(stored.ClientID)
	if err != nil {
		return err
	}
	if account.Locked {
		p.logger.Error("Account is locked", "client_id", account.Client)
		return errors.NewProcessingErrorf(errors.AccountLocked,
			"account %d is locked", account.Client)
	}

	// A failed adjustment does not roll back the insertion above: the store
	// records what was requested, account state reflects what was applied.
	if err := p.adjustAccount(&account, stored); err != nil {
		return err
	}

	return p.store.UpsertAccount(account)
}

// Accounts returns a snapshot of every account in storage.
func (p *TransactionProcessor) Accounts() ([]domain.Account, error) {
	return p.store.GetAllAccounts()
}

func (p *TransactionProcessor) adjustAccount(account *domain.Account, tx domain.StoredTransaction) error {
	switch tx.Kind {
	case domain.TypeDeposit:
		account.Available = account.Available.Add(tx.Amount)
		account.Total = account.Total.Add(tx.Amount)
		return nil

	case domain.TypeWithdrawal:
		if account.Available.LessThan(tx.Amount) {
			p.logger.Error("Insufficient available funds", "client_id", account.Client)
			return errors.NewProcessingErrorf(errors.InsufficientAvailableFunds,
				"account %d has insufficient available funds", account.Client)
		}
		account.Available = account.Available.Sub(tx.Amount)
		account.Total = account.Total.Sub(tx.Amount)
		return nil

	case domain.TypeDispute:
		return p.dispute(account, tx.ID)

	case domain.TypeResolve:
		return p.resolve(account, tx.ID)

	case domain.TypeChargeback:
		return p.chargeback(account, tx.ID)
	}

	return errors.NewProcessingErrorf(errors.TransactionNotValid,
		"transaction %d has unknown kind %q", tx.ID, tx.Kind)
}

func (p *TransactionProcessor) dispute(account *domain.Account, id domain.TransactionID) error {
	deposit, found, err := p.lookupDeposit(account, id)
	if err != nil || !found {
		return err
	}
	if deposit.UnderDispute {
		p.logger.Error("Transaction already under dispute", "transaction_id", id)
		return errors.NewProcessingErrorf(errors.TransactionAlreadyUnderDispute,
			"transaction %d already under dispute", id)
	}
	if account.Available.LessThan(deposit.Amount) {
		p.logger.Error("Insufficient available funds", "client_id", account.Client)
		return errors.NewProcessingErrorf(errors.InsufficientAvailableFunds,
			"account %d has insufficient available funds", account.Client)
	}

	account.Available = account.Available.Sub(deposit.Amount)
	account.Held = account.Held.Add(deposit.Amount)
	return p.store.SetUnderDispute(id, true)
}

func (p *TransactionProcessor) resolve(account *domain.Account, id domain.TransactionID) error {
	deposit, found, err := p.lookupDeposit(account, id)
	if err != nil || !found {
		return err
	}
	if !deposit.UnderDispute {
		p.logger.Info("Ignoring resolve for transaction not under dispute", "transaction_id", id)
		return nil
	}
	if account.Held.LessThan(deposit.Amount) {
		p.logger.Error("Insufficient held funds", "client_id", account.Client)
		return errors.NewProcessingErrorf(errors.InsufficientHeldFunds,
			"account %d has insufficient held funds", account.Client)
	}

	account.Available = account.Available.Add(deposit.Amount)
	account.Held = account.Held.Sub(deposit.Amount)
	return p.store.SetUnderDispute(id, false)
}

func (p *TransactionProcessor) chargeback(account *domain.Account, id domain.TransactionID) error {
	deposit, found, err := p.lookupDeposit(account, id)
	if err != nil || !found {
		return err
	}
	if !deposit.UnderDispute {
		p.logger.Info("Ignoring chargeback for transaction not under dispute", "transaction_id", id)
		return nil
	}
	if account.Held.LessThan(deposit.Amount) {
		p.logger.Error("Insufficient held funds", "client_id", account.Client)
		return errors.NewProcessingErrorf(errors.InsufficientHeldFunds,
			"account %d has insufficient held funds", account.Client)
	}

	account.Held = account.Held.Sub(deposit.Amount)
	account.Total = account.Total.Sub(deposit.Amount)
	account.Locked = true
	return p.store.SetUnderDispute(id, false)
}

// lookupDeposit finds the deposit a dispute-family instruction refers to and
// authorizes the acting account against it. A missing transaction is not an
// error: disputes may reference transactions that never existed, and the
// instruction is ignored (found == false, nil error).
func (p *TransactionProcessor) lookupDeposit(account *domain.Account, id domain.TransactionID) (domain.StoredTransaction, bool, error) {
	tx, err := p.store.GetTransaction(id)
	if err != nil {
		if errors.CodeOf(err) == errors.TransactionNotFound {
			p.logger.Info("Ignoring instruction for non-existing transaction", "transaction_id", id)
			return domain.StoredTransaction{}, false, nil
		}
		return domain.StoredTransaction{}, false, err
	}

	if tx.Kind != domain.TypeDeposit {
		p.logger.Error("Transaction is not a deposit", "transaction_id", id)
		return domain.StoredTransaction{}, false, errors.NewProcessingErrorf(
			errors.TransactionNotDisputable, "transaction %d is not disputable", id)
	}
	if tx.ClientID != account.Client {
		p.logger.Error("Transaction can't be accessed by client",
			"transaction_id", id, "client_id", account.Client)
		return domain.StoredTransaction{}, false, errors.NewProcessingErrorf(
			errors.TransactionAccessDenied,
			"transaction %d can't be accessed by client %d", id, account.Client)
	}

	return tx, true, nil
}
