package repository

import (
	"log/slog"
	"sync"

	"ledger-engine/internal/domain"
	"ledger-engine/internal/errors"
)

// Store is the in-memory implementation of domain.Storage for a single batch
// run. The account and transaction maps are guarded independently so that
// unrelated clients do not serialize on one global lock.
type Store struct {
	accountsMu     sync.RWMutex
	accounts       map[domain.ClientID]domain.Account
	transactionsMu sync.RWMutex
	transactions   map[domain.TransactionID]domain.StoredTransaction
	logger         *slog.Logger
}

// NewStore creates an empty Store.
func NewStore(logger *slog.Logger) *Store {
	return &Store{
		accounts:     make(map[domain.ClientID]domain.Account),
		transactions: make(map[domain.TransactionID]domain.StoredTransaction),
		logger:       logger,
	}
}

var _ domain.Storage = (*Store)(nil)

func (s *Store) GetTransaction(id domain.TransactionID) (domain.StoredTransaction, error) {
	s.transactionsMu.RLock()
	defer s.transactionsMu.RUnlock()

	tx, ok := s.transactions[id]
	if !ok {
		return domain.StoredTransaction{}, errors.NewProcessingErrorf(
			errors.TransactionNotFound, "transaction %d not found", id)
	}
	return tx, nil
}

func (s *Store) InsertTransaction(tx domain.StoredTransaction) (domain.StoredTransaction, error) {
	// Only deposits and withdrawals are durable ledger entries; the dispute
	// family acts purely as instructions and passes through unstored.
	if !tx.Persistable() {
		return tx, nil
	}

	s.transactionsMu.Lock()
	defer s.transactionsMu.Unlock()

	if _, ok := s.transactions[tx.ID]; ok {
		s.logger.Warn("Duplicate transaction insert attempt", "transaction_id", tx.ID)
		return domain.StoredTransaction{}, errors.NewProcessingErrorf(
			errors.TransactionAlreadyExists, "transaction %d already exists", tx.ID)
	}

	s.logger.Debug("Inserting transaction", "transaction_id", tx.ID, "kind", tx.Kind)
	s.transactions[tx.ID] = tx
	return tx, nil
}

func (s *Store) SetUnderDispute(id domain.TransactionID, underDispute bool) error {
	s.transactionsMu.Lock()
	defer s.transactionsMu.Unlock()

	tx, ok := s.transactions[id]
	if !ok || tx.Kind != domain.TypeDeposit {
		return nil
	}

	s.logger.Debug("Updating dispute flag", "transaction_id", id, "under_dispute", underDispute)
	tx.UnderDispute = underDispute
	s.transactions[id] = tx
	return nil
}

func (s *Store) GetAccount(client domain.ClientID) (domain.Account, error) {
	s.accountsMu.RLock()
	defer s.accountsMu.RUnlock()

	account, ok := s.accounts[client]
	if !ok {
		return domain.NewAccount(client), nil
	}
	return account, nil
}

func (s *Store) UpsertAccount(account domain.Account) error {
	s.accountsMu.Lock()
	defer s.accountsMu.Unlock()

	s.logger.Debug("Upserting account", "client_id", account.Client)
	s.accounts[account.Client] = account
	return nil
}

func (s *Store) GetAllAccounts() ([]domain.Account, error) {
	s.accountsMu.RLock()
	defer s.accountsMu.RUnlock()

	accounts := make([]domain.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		accounts = append(accounts, account)
	}
	return accounts, nil
}
