package store

import (
	"strconv"

	"github.com/hyperledger/fabric-chaincode-go/shim"

	"campusvote/internal/ledger"
	"campusvote/internal/voting/models"
)

// PollQuestionStore persists poll questions under sequence-assigned ids.
type PollQuestionStore struct {
	repo *ledger.Repository
}

func NewPollQuestionStore(repo *ledger.Repository) *PollQuestionStore {
	return &PollQuestionStore{repo: repo}
}

func (s *PollQuestionStore) Create(stub shim.ChaincodeStubInterface, pollID, text string) (models.PollQuestion, error) {
	now, err := ledger.TxTime(stub)
	if err != nil {
		return models.PollQuestion{}, err
	}
	seq, err := s.repo.NextSequenceID(stub, models.KindPollQuestion)
	if err != nil {
		return models.PollQuestion{}, err
	}
	question := models.PollQuestion{
		ID:        strconv.FormatInt(seq, 10),
		PollID:    pollID,
		Text:      text,
		VoteCount: 0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Save(stub, models.KindPollQuestion, question.ID, question); err != nil {
		return models.PollQuestion{}, err
	}
	return question, nil
}

func (s *PollQuestionStore) Get(stub shim.ChaincodeStubInterface, id string) (models.PollQuestion, error) {
	var question models.PollQuestion
	if err := s.repo.Get(stub, models.KindPollQuestion, id, &question); err != nil {
		return models.PollQuestion{}, err
	}
	return question, nil
}

func (s *PollQuestionStore) Delete(stub shim.ChaincodeStubInterface, id string) error {
	return s.repo.Delete(stub, models.KindPollQuestion, id)
}
