// Package contract exposes the voting system's transaction surface. Methods
// are invoked by name with ordered string arguments; every numeric, boolean or
// date value crosses the boundary as a string and is parsed here. The gateway
// resolves the caller's identity and passes the student id number as the first
// business argument of every protected method.
package contract

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"campusvote/internal/ledger"
	"campusvote/internal/voting/store"
)

// VotingSystemContract orchestrates the domain stores to implement user
// registration, the KYC workflow, the poll lifecycle and vote casting. It
// holds no state of its own between invocations; every transaction re-reads
// what it needs from the ledger.
type VotingSystemContract struct {
	contractapi.Contract

	users     *store.UserStore
	kycApps   *store.KycApplicationStore
	polls     *store.PollStore
	options   *store.PollOptionStore
	questions *store.PollQuestionStore
	log       *slog.Logger
}

func NewVotingSystemContract(log *slog.Logger) *VotingSystemContract {
	if log == nil {
		log = slog.Default()
	}
	repo := ledger.NewRepository(log)
	return &VotingSystemContract{
		users:     store.NewUserStore(repo),
		kycApps:   store.NewKycApplicationStore(repo),
		polls:     store.NewPollStore(repo),
		options:   store.NewPollOptionStore(repo),
		questions: store.NewPollQuestionStore(repo),
		log:       log,
	}
}

func jsonResult(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(data), nil
}
