package domain

// Storage owns the authoritative maps of accounts and transactions. Each
// operation is individually atomic; multi-step sequences performed by callers
// are not transactional.
type Storage interface {
	// GetTransaction returns the stored transaction with the given id, or an
	// error with code TransactionNotFound.
	GetTransaction(id TransactionID) (StoredTransaction, error)

	// InsertTransaction persists a deposit or withdrawal, failing with
	// TransactionAlreadyExists on a duplicate id. Instruction kinds are
	// returned unchanged without being stored.
	InsertTransaction(tx StoredTransaction) (StoredTransaction, error)

	// SetUnderDispute updates the dispute flag on the identified deposit.
	// A missing transaction or a non-deposit is a silent no-op.
	SetUnderDispute(id TransactionID, underDispute bool) error

	// GetAccount returns the client's account, minting a zeroed one if the
	// client has never been seen.
	GetAccount(client ClientID) (Account, error)

	// UpsertAccount replaces the account record for account.Client wholesale.
	UpsertAccount(account Account) error

	// GetAllAccounts returns a snapshot of every account. Order is
	// unspecified.
	GetAllAccounts() ([]Account, error)
}
