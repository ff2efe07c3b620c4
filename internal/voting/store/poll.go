package store

import (
	"strconv"

	"github.com/hyperledger/fabric-chaincode-go/shim"

	"campusvote/internal/ledger"
	"campusvote/internal/voting/models"
)

// PollStore persists polls under sequence-assigned ids.
type PollStore struct {
	repo *ledger.Repository
}

func NewPollStore(repo *ledger.Repository) *PollStore {
	return &PollStore{repo: repo}
}

// Create assigns the next sequence id, stamps the poll and writes it.
func (s *PollStore) Create(stub shim.ChaincodeStubInterface, poll models.Poll) (models.Poll, error) {
	now, err := ledger.TxTime(stub)
	if err != nil {
		return models.Poll{}, err
	}
	seq, err := s.repo.NextSequenceID(stub, models.KindPoll)
	if err != nil {
		return models.Poll{}, err
	}
	poll.ID = strconv.FormatInt(seq, 10)
	poll.CreatedAt = now
	poll.UpdatedAt = now
	if err := s.repo.Save(stub, models.KindPoll, poll.ID, poll); err != nil {
		return models.Poll{}, err
	}
	return poll, nil
}

func (s *PollStore) Get(stub shim.ChaincodeStubInterface, id string) (models.Poll, error) {
	var poll models.Poll
	if err := s.repo.Get(stub, models.KindPoll, id, &poll); err != nil {
		return models.Poll{}, err
	}
	return poll, nil
}

// Update applies patch to the stored poll, refreshes updatedAt and returns the
// merged record.
func (s *PollStore) Update(stub shim.ChaincodeStubInterface, id string, patch map[string]any) (models.Poll, error) {
	now, err := ledger.TxTime(stub)
	if err != nil {
		return models.Poll{}, err
	}
	merged := make(map[string]any, len(patch)+1)
	for k, v := range patch {
		merged[k] = v
	}
	merged["updatedAt"] = now

	var poll models.Poll
	if err := s.repo.Update(stub, models.KindPoll, id, merged, &poll); err != nil {
		return models.Poll{}, err
	}
	return poll, nil
}

// All returns every poll on the ledger in key order.
func (s *PollStore) All(stub shim.ChaincodeStubInterface) ([]models.Poll, error) {
	return s.polls(stub, func(models.Poll) bool { return true })
}

func (s *PollStore) ByStatus(stub shim.ChaincodeStubInterface, status models.PollStatus) ([]models.Poll, error) {
	return s.polls(stub, func(p models.Poll) bool { return p.Status == status })
}

func (s *PollStore) ByAuthor(stub shim.ChaincodeStubInterface, studentIDNumber string) ([]models.Poll, error) {
	return s.polls(stub, func(p models.Poll) bool { return p.AuthorStudentIDNumber == studentIDNumber })
}

func (s *PollStore) polls(stub shim.ChaincodeStubInterface, keep func(models.Poll) bool) ([]models.Poll, error) {
	cur, err := s.repo.Scan(stub, models.KindPoll)
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	polls := []models.Poll{}
	for {
		var poll models.Poll
		_, ok, err := cur.Next(&poll)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if keep(poll) {
			polls = append(polls, poll)
		}
	}
	return polls, nil
}
