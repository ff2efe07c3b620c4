package contract

import (
	"fmt"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"campusvote/internal/ledger"
	"campusvote/internal/voting/models"
	"campusvote/pkg/platform/sentinel"
)

// GiveVote casts the caller's single vote in an active poll. The option's
// counter and the poll's participant list are two separate writes; the
// transaction scope commits them together, and the platform's read-set
// validation on the poll key rejects the loser of two concurrent votes by the
// same student. The membership check here only provides the idempotency
// precondition that makes the committed ordering correct.
func (c *VotingSystemContract) GiveVote(ctx contractapi.TransactionContextInterface, studentIDNumber, pollID, optionID string) (string, error) {
	stub := ctx.GetStub()

	caller, err := c.protect(stub, studentIDNumber, kycApprovedStudent)
	if err != nil {
		return "", err
	}

	poll, err := c.loadCurrentPoll(stub, pollID)
	if err != nil {
		if ledger.IsNotFound(err) {
			return "", fmt.Errorf("poll %s does not exist: %w", pollID, sentinel.ErrNotFound)
		}
		return "", err
	}
	if poll.Status != models.PollStatusActive {
		return "", fmt.Errorf("poll %s is %s, votes can only be cast on an active poll: %w", pollID, poll.Status, sentinel.ErrInvalidState)
	}
	if poll.HasParticipant(caller.StudentIDNumber) {
		return "", fmt.Errorf("student %s already voted in poll %s: %w", caller.StudentIDNumber, pollID, sentinel.ErrConflict)
	}

	if !poll.HasOption(optionID) {
		return "", fmt.Errorf("option %s does not belong to poll %s: %w", optionID, pollID, sentinel.ErrNotFound)
	}
	option, err := c.options.Get(stub, optionID)
	if err != nil {
		if ledger.IsNotFound(err) {
			return "", fmt.Errorf("option %s does not exist: %w", optionID, sentinel.ErrNotFound)
		}
		return "", err
	}
	if option.PollID != poll.ID {
		return "", fmt.Errorf("option %s does not belong to poll %s: %w", optionID, pollID, sentinel.ErrNotFound)
	}

	option, err = c.options.IncrementVoteCount(stub, option.ID)
	if err != nil {
		return "", err
	}
	_, err = c.polls.Update(stub, poll.ID, map[string]any{
		"participantIds": append(poll.ParticipantIDs, caller.StudentIDNumber),
	})
	if err != nil {
		return "", err
	}

	c.log.Info("vote cast", "pollId", poll.ID, "optionId", option.ID)
	return jsonResult(option)
}
