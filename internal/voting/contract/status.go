package contract

import (
	"github.com/hyperledger/fabric-chaincode-go/shim"

	"campusvote/internal/ledger"
	"campusvote/internal/voting/models"
)

// ensureCurrentStatus is the lazy part of the poll state machine. Every read
// and mutation entry point calls it before acting, so a poll whose schedule
// has elapsed is advanced and persisted even on GET-like operations, and two
// sequential reads always observe the same advanced state.
//
// Start is applied before end within the one call: a poll whose both dates
// have already passed moves through ACTIVE straight to FINISHED.
func (c *VotingSystemContract) ensureCurrentStatus(stub shim.ChaincodeStubInterface, poll models.Poll) (models.Poll, error) {
	now, err := ledger.TxTime(stub)
	if err != nil {
		return models.Poll{}, err
	}

	status := poll.Status
	if status == models.PollStatusApprovedAndWaiting && dateElapsed(poll.PlannedStartDate, now) {
		status = models.PollStatusActive
	}
	if status == models.PollStatusActive && dateElapsed(poll.PlannedEndDate, now) {
		status = models.PollStatusFinished
	}
	if status == poll.Status {
		return poll, nil
	}

	c.log.Info("poll status advanced by schedule", "pollId", poll.ID, "from", poll.Status, "to", status)
	return c.polls.Update(stub, poll.ID, map[string]any{"status": status})
}

// loadCurrentPoll fetches a poll and runs the lazy recomputation on it.
func (c *VotingSystemContract) loadCurrentPoll(stub shim.ChaincodeStubInterface, pollID string) (models.Poll, error) {
	poll, err := c.polls.Get(stub, pollID)
	if err != nil {
		return models.Poll{}, err
	}
	return c.ensureCurrentStatus(stub, poll)
}

func dateElapsed(date *int64, now int64) bool {
	return date != nil && now >= *date
}
