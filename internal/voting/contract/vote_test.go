package contract

import (
	"encoding/json"

	"campusvote/internal/voting/models"
	"campusvote/pkg/platform/sentinel"
)

func (s *ContractSuite) activePollWithOption(author string) (models.Poll, models.PollOption) {
	poll := s.createPoll(author, "", "")
	option := s.addOption(author, poll.ID, "Yes")
	s.decidePoll(poll.ID, models.PollStatusApprovedAndWaiting)
	_, err := s.contract.StartPoll(s.ctx, author, poll.ID)
	s.Require().NoError(err)
	return poll, option
}

func (s *ContractSuite) getOption(id string) models.PollOption {
	option, err := s.contract.options.Get(s.stub, id)
	s.Require().NoError(err)
	return option
}

func (s *ContractSuite) TestGiveVote() {
	s.Run("first vote counts, second is rejected", func() {
		s.approvedStudent(studentID)
		s.approvedStudent(studentID2)
		poll, option := s.activePollWithOption(studentID)

		raw, err := s.contract.GiveVote(s.ctx, studentID2, poll.ID, option.ID)
		s.Require().NoError(err)
		var voted models.PollOption
		s.Require().NoError(json.Unmarshal([]byte(raw), &voted))
		s.Equal(int64(1), voted.VoteCount)

		got := s.getPoll(studentID2, poll.ID)
		s.Equal([]string{studentID2}, got.ParticipantIDs)

		_, err = s.contract.GiveVote(s.ctx, studentID2, poll.ID, option.ID)
		s.Require().ErrorIs(err, sentinel.ErrConflict)
		s.Contains(err.Error(), "already voted")
		s.Equal(int64(1), s.getOption(option.ID).VoteCount)
	})

	s.Run("an option of another poll is rejected with no writes", func() {
		s.approvedStudent(studentID)
		s.approvedStudent(studentID2)
		poll, _ := s.activePollWithOption(studentID)
		otherPoll, otherOption := s.activePollWithOption(studentID)
		_ = otherPoll

		_, err := s.contract.GiveVote(s.ctx, studentID2, poll.ID, otherOption.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
		s.Equal(int64(0), s.getOption(otherOption.ID).VoteCount)
		s.Empty(s.getPoll(studentID2, poll.ID).ParticipantIDs)
	})

	s.Run("voting needs an active poll", func() {
		s.approvedStudent(studentID)
		poll := s.createPoll(studentID, "", "")
		option := s.addOption(studentID, poll.ID, "Early")

		_, err := s.contract.GiveVote(s.ctx, studentID, poll.ID, option.ID)
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)
	})

	s.Run("a poll past its end date rejects votes even before anyone stopped it", func() {
		s.approvedStudent(studentID)
		now := s.stub.TxTime
		poll := s.createPoll(studentID, "", epoch(now+50))
		option := s.addOption(studentID, poll.ID, "Late")
		s.decidePoll(poll.ID, models.PollStatusApprovedAndWaiting)
		_, err := s.contract.StartPoll(s.ctx, studentID, poll.ID)
		s.Require().NoError(err)

		s.stub.SetTxTime(now + 100)
		_, err = s.contract.GiveVote(s.ctx, studentID, poll.ID, option.ID)
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)
	})

	s.Run("admins have no vote", func() {
		s.approvedStudent(studentID)
		_, option := s.activePollWithOption(studentID)

		_, err := s.contract.GiveVote(s.ctx, adminID, "1", option.ID)
		s.Require().ErrorIs(err, sentinel.ErrForbidden)
	})

	s.Run("unverified students have no vote", func() {
		s.approvedStudent(studentID)
		s.register(studentID2)
		poll, option := s.activePollWithOption(studentID)

		_, err := s.contract.GiveVote(s.ctx, studentID2, poll.ID, option.ID)
		s.Require().ErrorIs(err, sentinel.ErrForbidden)
	})
}

// TestFullLifecycle walks the whole workflow end to end: registration, KYC
// approval, poll creation, review, the option-change re-review loop, manual
// start, a vote, manual stop and the terminal vote rejection.
func (s *ContractSuite) TestFullLifecycle() {
	s.register(studentID)
	s.approveKyc(studentID)

	poll := s.createPoll(studentID, "", "")
	s.Equal(models.PollStatusReview, poll.Status)

	s.decidePoll(poll.ID, models.PollStatusApprovedAndWaiting)

	option := s.addOption(studentID, poll.ID, "Option one")
	s.Equal(models.PollStatusReview, s.getPoll(studentID, poll.ID).Status)

	s.decidePoll(poll.ID, models.PollStatusApprovedAndWaiting)

	_, err := s.contract.StartPoll(s.ctx, studentID, poll.ID)
	s.Require().NoError(err)
	s.Equal(models.PollStatusActive, s.getPoll(studentID, poll.ID).Status)

	s.approvedStudent(studentID2)
	_, err = s.contract.GiveVote(s.ctx, studentID2, poll.ID, option.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), s.getOption(option.ID).VoteCount)

	_, err = s.contract.StopPoll(s.ctx, studentID, poll.ID)
	s.Require().NoError(err)
	s.Equal(models.PollStatusFinished, s.getPoll(studentID, poll.ID).Status)

	_, err = s.contract.GiveVote(s.ctx, studentID, poll.ID, option.ID)
	s.Require().ErrorIs(err, sentinel.ErrInvalidState)

	raw, err := s.contract.GetFinishedPolls(s.ctx, studentID)
	s.Require().NoError(err)
	var finished []models.Poll
	s.Require().NoError(json.Unmarshal([]byte(raw), &finished))
	s.Require().Len(finished, 1)
	s.Equal(poll.ID, finished[0].ID)
}
