package batch

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"ledger-engine/internal/domain"
	"ledger-engine/internal/errors"
	"ledger-engine/internal/processor"
	"ledger-engine/internal/repository"
)

type RunnerTestSuite struct {
	suite.Suite
	runner *Runner
}

func (s *RunnerTestSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.NewStore(logger)
	s.runner = NewRunner(processor.New(store, logger), logger)
}

func (s *RunnerTestSuite) run(input string) string {
	var output bytes.Buffer
	err := s.runner.Run(strings.NewReader(input), &output)
	s.Require().NoError(err)
	return output.String()
}

func (s *RunnerTestSuite) TestDepositAndWithdrawal() {
	output := s.run(`type,client,tx,amount
deposit,1,1,5.0
withdrawal,1,2,3.0
`)

	s.Equal("client,available,held,total,locked\n1,2,0,2,false\n", output)
}

func (s *RunnerTestSuite) TestDisputeChargebackLocksAccount() {
	output := s.run(`type,client,tx,amount
deposit,2,10,10.0
dispute,2,10,
chargeback,2,10,
deposit,2,11,3.0
`)

	s.Equal("client,available,held,total,locked\n2,0,0,0,true\n", output)
}

func (s *RunnerTestSuite) TestRaggedDisputeRowsAreAccepted() {
	output := s.run(`type,client,tx,amount
deposit,1,1,5.0
dispute,1,1
resolve,1,1
`)

	s.Equal("client,available,held,total,locked\n1,5,0,5,false\n", output)
}

func (s *RunnerTestSuite) TestWhitespaceIsTrimmed() {
	output := s.run(`type, client, tx, amount
deposit, 1, 1, 5.0
withdrawal, 1, 2, 1.5
`)

	s.Equal("client,available,held,total,locked\n1,3.5,0,3.5,false\n", output)
}

func (s *RunnerTestSuite) TestMalformedRecordsAreSkipped() {
	output := s.run(`type,client,tx,amount
deposit,1,1,5.0
transfer,1,2,1.0
deposit,abc,3,1.0
deposit,1,4,not-a-number
deposit,70000,5,1.0
withdrawal,1,6,1.0
`)

	s.Equal("client,available,held,total,locked\n1,4,0,4,false\n", output)
}

func (s *RunnerTestSuite) TestUnknownDisputeReferenceCreatesZeroedAccount() {
	output := s.run(`type,client,tx,amount
dispute,3,999
`)

	s.Equal("client,available,held,total,locked\n3,0,0,0,false\n", output)
}

func (s *RunnerTestSuite) TestOutputSortedByClient() {
	output := s.run(`type,client,tx,amount
deposit,3,1,1.0
deposit,1,2,2.0
deposit,2,3,3.0
`)

	s.Equal(strings.Join([]string{
		"client,available,held,total,locked",
		"1,2,0,2,false",
		"2,3,0,3,false",
		"3,1,0,1,false",
		"",
	}, "\n"), output)
}

func (s *RunnerTestSuite) TestExcessPrecisionTruncated() {
	output := s.run(`type,client,tx,amount
deposit,1,1,1.234567
`)

	s.Equal("client,available,held,total,locked\n1,1.2345,0,1.2345,false\n", output)
}

func (s *RunnerTestSuite) TestColumnsMayBeReordered() {
	output := s.run(`amount,tx,client,type
5.0,1,1,deposit
2.0,2,1,withdrawal
`)

	s.Equal("client,available,held,total,locked\n1,3,0,3,false\n", output)
}

func (s *RunnerTestSuite) TestRejectedRecordsDoNotAbortTheRun() {
	output := s.run(`type,client,tx,amount
deposit,1,1,5.0
withdrawal,1,2,100.0
deposit,1,1,5.0
deposit,1,3,-2.0
deposit,1,4,1.0
`)

	s.Equal("client,available,held,total,locked\n1,6,0,6,false\n", output)
}

func TestRunnerTestSuite(t *testing.T) {
	suite.Run(t, new(RunnerTestSuite))
}

func TestRunFailsWithoutHeader(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.NewStore(logger)
	runner := NewRunner(processor.New(store, logger), logger)

	var output bytes.Buffer
	err := runner.Run(strings.NewReader(""), &output)
	assert.Error(t, err)

	err = runner.Run(strings.NewReader("foo,bar\n1,2\n"), &output)
	assert.Error(t, err)
}

// failingStorage simulates a corrupted store.
type failingStorage struct {
	domain.Storage
}

func (f failingStorage) GetAccount(domain.ClientID) (domain.Account, error) {
	return domain.Account{}, errors.NewProcessingError(errors.StorageFailure, "account map poisoned")
}

func TestStorageFailureAbortsBatch(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := failingStorage{Storage: repository.NewStore(logger)}
	runner := NewRunner(processor.New(store, logger), logger)

	var output bytes.Buffer
	err := runner.Run(strings.NewReader("type,client,tx,amount\ndeposit,1,1,5.0\n"), &output)

	require.Error(t, err)
	assert.Equal(t, errors.StorageFailure, errors.CodeOf(err))
	assert.Empty(t, output.String())
}
