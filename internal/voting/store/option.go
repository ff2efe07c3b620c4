package store

import (
	"strconv"

	"github.com/hyperledger/fabric-chaincode-go/shim"

	"campusvote/internal/ledger"
	"campusvote/internal/voting/models"
)

// PollOptionStore persists poll options under sequence-assigned ids.
type PollOptionStore struct {
	repo *ledger.Repository
}

func NewPollOptionStore(repo *ledger.Repository) *PollOptionStore {
	return &PollOptionStore{repo: repo}
}

func (s *PollOptionStore) Create(stub shim.ChaincodeStubInterface, pollID, text string) (models.PollOption, error) {
	now, err := ledger.TxTime(stub)
	if err != nil {
		return models.PollOption{}, err
	}
	seq, err := s.repo.NextSequenceID(stub, models.KindPollOption)
	if err != nil {
		return models.PollOption{}, err
	}
	option := models.PollOption{
		ID:        strconv.FormatInt(seq, 10),
		PollID:    pollID,
		Text:      text,
		VoteCount: 0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Save(stub, models.KindPollOption, option.ID, option); err != nil {
		return models.PollOption{}, err
	}
	return option, nil
}

func (s *PollOptionStore) Get(stub shim.ChaincodeStubInterface, id string) (models.PollOption, error) {
	var option models.PollOption
	if err := s.repo.Get(stub, models.KindPollOption, id, &option); err != nil {
		return models.PollOption{}, err
	}
	return option, nil
}

func (s *PollOptionStore) Delete(stub shim.ChaincodeStubInterface, id string) error {
	return s.repo.Delete(stub, models.KindPollOption, id)
}

// IncrementVoteCount bumps the monotonic counter by one. The read-then-write
// is validated by the platform's conflict detection; two concurrent votes for
// the same option cannot both commit.
func (s *PollOptionStore) IncrementVoteCount(stub shim.ChaincodeStubInterface, id string) (models.PollOption, error) {
	option, err := s.Get(stub, id)
	if err != nil {
		return models.PollOption{}, err
	}
	now, err := ledger.TxTime(stub)
	if err != nil {
		return models.PollOption{}, err
	}
	var updated models.PollOption
	err = s.repo.Update(stub, models.KindPollOption, id, map[string]any{
		"voteCount": option.VoteCount + 1,
		"updatedAt": now,
	}, &updated)
	if err != nil {
		return models.PollOption{}, err
	}
	return updated, nil
}
