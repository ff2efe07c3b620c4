package contract

import (
	"encoding/json"
	"strconv"

	"campusvote/internal/voting/models"
	"campusvote/pkg/platform/sentinel"
)

func (s *ContractSuite) approvedStudent(id string) {
	s.register(id)
	s.approveKyc(id)
}

func (s *ContractSuite) createPoll(author, start, end string) models.Poll {
	raw, err := s.contract.CreatePoll(s.ctx, author, "Refectory menu", "Pick the next menu", start, end)
	s.Require().NoError(err)
	var poll models.Poll
	s.Require().NoError(json.Unmarshal([]byte(raw), &poll))
	return poll
}

func (s *ContractSuite) getPoll(caller, pollID string) models.Poll {
	raw, err := s.contract.GetPollById(s.ctx, caller, pollID)
	s.Require().NoError(err)
	var poll models.Poll
	s.Require().NoError(json.Unmarshal([]byte(raw), &poll))
	return poll
}

func (s *ContractSuite) decidePoll(pollID string, status models.PollStatus) models.Poll {
	raw, err := s.contract.UpdatePollReviewStatus(s.ctx, adminID, pollID, string(status))
	s.Require().NoError(err)
	var poll models.Poll
	s.Require().NoError(json.Unmarshal([]byte(raw), &poll))
	return poll
}

func (s *ContractSuite) addOption(author, pollID, text string) models.PollOption {
	raw, err := s.contract.AddPollOption(s.ctx, author, pollID, text)
	s.Require().NoError(err)
	var option models.PollOption
	s.Require().NoError(json.Unmarshal([]byte(raw), &option))
	return option
}

func epoch(sec int64) string {
	return strconv.FormatInt(sec, 10)
}

func (s *ContractSuite) TestCreatePoll() {
	s.Run("starts in REVIEW with empty lists", func() {
		s.approvedStudent(studentID)
		poll := s.createPoll(studentID, "", "")

		s.Equal(models.PollStatusReview, poll.Status)
		s.Equal(studentID, poll.AuthorStudentIDNumber)
		s.Empty(poll.OptionIDs)
		s.Empty(poll.ParticipantIDs)
		s.Nil(poll.PlannedStartDate)
		s.Nil(poll.PlannedEndDate)
	})

	s.Run("null sentinel and empty string both mean no date", func() {
		s.approvedStudent(studentID)
		poll := s.createPoll(studentID, "null", "null")
		s.Nil(poll.PlannedStartDate)
		s.Nil(poll.PlannedEndDate)
	})

	s.Run("malformed date is rejected", func() {
		s.approvedStudent(studentID)
		_, err := s.contract.CreatePoll(s.ctx, studentID, "T", "D", "tomorrow", "")
		s.Require().ErrorIs(err, sentinel.ErrInvalidArgument)
	})

	s.Run("end before start is rejected", func() {
		s.approvedStudent(studentID)
		now := s.stub.TxTime
		_, err := s.contract.CreatePoll(s.ctx, studentID, "T", "D", epoch(now+100), epoch(now+50))
		s.Require().ErrorIs(err, sentinel.ErrInvalidArgument)
	})
}

func (s *ContractSuite) TestUpdatePollReviewStatus() {
	s.Run("only APPROVED_AND_WAITING and DECLINED are valid targets", func() {
		s.approvedStudent(studentID)
		poll := s.createPoll(studentID, "", "")

		_, err := s.contract.UpdatePollReviewStatus(s.ctx, adminID, poll.ID, string(models.PollStatusActive))
		s.Require().ErrorIs(err, sentinel.ErrInvalidArgument)

		decided := s.decidePoll(poll.ID, models.PollStatusDeclined)
		s.Equal(models.PollStatusDeclined, decided.Status)
	})

	s.Run("a decided poll cannot be decided again", func() {
		s.approvedStudent(studentID)
		poll := s.createPoll(studentID, "", "")
		s.decidePoll(poll.ID, models.PollStatusApprovedAndWaiting)

		_, err := s.contract.UpdatePollReviewStatus(s.ctx, adminID, poll.ID, string(models.PollStatusDeclined))
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)
	})

	s.Run("approving a poll whose start already passed activates it at once", func() {
		s.approvedStudent(studentID)
		now := s.stub.TxTime
		poll := s.createPoll(studentID, epoch(now-10), "")

		approved := s.decidePoll(poll.ID, models.PollStatusApprovedAndWaiting)
		s.Equal(models.PollStatusActive, approved.Status)
	})

	s.Run("review listing shows REVIEW polls only", func() {
		s.approvedStudent(studentID)
		inReview := s.createPoll(studentID, "", "")
		decided := s.createPoll(studentID, "", "")
		s.decidePoll(decided.ID, models.PollStatusDeclined)

		raw, err := s.contract.GetPollsListInReviewStatus(s.ctx, adminID)
		s.Require().NoError(err)
		var polls []models.Poll
		s.Require().NoError(json.Unmarshal([]byte(raw), &polls))
		s.Require().Len(polls, 1)
		s.Equal(inReview.ID, polls[0].ID)
	})
}

func (s *ContractSuite) TestLazyStatusRecomputation() {
	s.Run("an approved poll past its start date reads as ACTIVE and the write sticks", func() {
		s.approvedStudent(studentID)
		now := s.stub.TxTime
		poll := s.createPoll(studentID, epoch(now+100), "")
		s.decidePoll(poll.ID, models.PollStatusApprovedAndWaiting)

		s.stub.SetTxTime(now + 100)
		got := s.getPoll(studentID, poll.ID)
		s.Equal(models.PollStatusActive, got.Status)

		// Persisted, not just returned: the raw record carries ACTIVE.
		var stored models.Poll
		s.Require().NoError(json.Unmarshal(s.stub.State["poll:"+poll.ID], &stored))
		s.Equal(models.PollStatusActive, stored.Status)
	})

	s.Run("both dates elapsed falls straight through to FINISHED", func() {
		s.approvedStudent(studentID)
		now := s.stub.TxTime
		poll := s.createPoll(studentID, epoch(now+10), epoch(now+20))
		s.decidePoll(poll.ID, models.PollStatusApprovedAndWaiting)

		s.stub.SetTxTime(now + 1000)
		got := s.getPoll(studentID, poll.ID)
		s.Equal(models.PollStatusFinished, got.Status)
	})

	s.Run("listings apply the same recomputation", func() {
		s.approvedStudent(studentID)
		now := s.stub.TxTime
		poll := s.createPoll(studentID, epoch(now+10), "")
		s.decidePoll(poll.ID, models.PollStatusApprovedAndWaiting)

		s.stub.SetTxTime(now + 11)
		raw, err := s.contract.GetActivePolls(s.ctx, studentID)
		s.Require().NoError(err)
		var active []models.Poll
		s.Require().NoError(json.Unmarshal([]byte(raw), &active))
		s.Require().Len(active, 1)
		s.Equal(poll.ID, active[0].ID)
	})
}

func (s *ContractSuite) TestPollOptions() {
	s.Run("changing the option set sends an approved poll back to REVIEW", func() {
		s.approvedStudent(studentID)
		poll := s.createPoll(studentID, "", "")
		s.decidePoll(poll.ID, models.PollStatusApprovedAndWaiting)

		option := s.addOption(studentID, poll.ID, "Pizza")
		s.Equal(poll.ID, option.PollID)

		got := s.getPoll(studentID, poll.ID)
		s.Equal(models.PollStatusReview, got.Status)
		s.Equal([]string{option.ID}, got.OptionIDs)
	})

	s.Run("deleting an option works only for options of this poll", func() {
		s.approvedStudent(studentID)
		poll := s.createPoll(studentID, "", "")
		other := s.createPoll(studentID, "", "")
		foreign := s.addOption(studentID, other.ID, "Elsewhere")
		option := s.addOption(studentID, poll.ID, "Pasta")

		err := s.contract.DeletePollOption(s.ctx, studentID, poll.ID, foreign.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)

		s.Require().NoError(s.contract.DeletePollOption(s.ctx, studentID, poll.ID, option.ID))
		s.Empty(s.getPoll(studentID, poll.ID).OptionIDs)
	})

	s.Run("only the author edits options", func() {
		s.approvedStudent(studentID)
		s.approvedStudent(studentID2)
		poll := s.createPoll(studentID, "", "")

		_, err := s.contract.AddPollOption(s.ctx, studentID2, poll.ID, "Sneaky")
		s.Require().ErrorIs(err, sentinel.ErrForbidden)
	})

	s.Run("an active poll's options are frozen", func() {
		s.approvedStudent(studentID)
		poll := s.createPoll(studentID, "", "")
		s.decidePoll(poll.ID, models.PollStatusApprovedAndWaiting)
		_, err := s.contract.StartPoll(s.ctx, studentID, poll.ID)
		s.Require().NoError(err)

		_, err = s.contract.AddPollOption(s.ctx, studentID, poll.ID, "Too late")
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)
	})

	s.Run("options list keeps authored order", func() {
		s.approvedStudent(studentID)
		poll := s.createPoll(studentID, "", "")
		first := s.addOption(studentID, poll.ID, "First")
		second := s.addOption(studentID, poll.ID, "Second")

		raw, err := s.contract.GetPollOptionsByPollId(s.ctx, studentID, poll.ID)
		s.Require().NoError(err)
		var options []models.PollOption
		s.Require().NoError(json.Unmarshal([]byte(raw), &options))
		s.Require().Len(options, 2)
		s.Equal(first.ID, options[0].ID)
		s.Equal(second.ID, options[1].ID)
	})
}

func (s *ContractSuite) TestPollQuestions() {
	s.Run("questions reset an approved poll to REVIEW like options do", func() {
		s.approvedStudent(studentID)
		poll := s.createPoll(studentID, "", "")
		s.decidePoll(poll.ID, models.PollStatusApprovedAndWaiting)

		raw, err := s.contract.AddPollQuestion(s.ctx, studentID, poll.ID, "Why this menu?")
		s.Require().NoError(err)
		var question models.PollQuestion
		s.Require().NoError(json.Unmarshal([]byte(raw), &question))

		got := s.getPoll(studentID, poll.ID)
		s.Equal(models.PollStatusReview, got.Status)
		s.Equal([]string{question.ID}, got.QuestionIDs)

		s.Require().NoError(s.contract.DeletePollQuestion(s.ctx, studentID, poll.ID, question.ID))
		s.Empty(s.getPoll(studentID, poll.ID).QuestionIDs)
	})
}

func (s *ContractSuite) TestUpdatePoll() {
	s.Run("empty string leaves fields unchanged, null clears a date", func() {
		s.approvedStudent(studentID)
		now := s.stub.TxTime
		poll := s.createPoll(studentID, epoch(now+50), epoch(now+100))
		s.decidePoll(poll.ID, models.PollStatusApprovedAndWaiting)

		raw, err := s.contract.UpdatePoll(s.ctx, studentID, poll.ID, "", "null", "", "")
		s.Require().NoError(err)
		var updated models.Poll
		s.Require().NoError(json.Unmarshal([]byte(raw), &updated))

		s.Equal(poll.Title, updated.Title)
		s.Require().NotNil(updated.PlannedStartDate)
		s.Equal(now+50, *updated.PlannedStartDate)
		s.Nil(updated.PlannedEndDate)
		s.Equal(models.PollStatusReview, updated.Status)
	})

	s.Run("a no-op update does not reset the review decision", func() {
		s.approvedStudent(studentID)
		poll := s.createPoll(studentID, "", "")
		s.decidePoll(poll.ID, models.PollStatusApprovedAndWaiting)

		raw, err := s.contract.UpdatePoll(s.ctx, studentID, poll.ID, "", "", "", "")
		s.Require().NoError(err)
		var updated models.Poll
		s.Require().NoError(json.Unmarshal([]byte(raw), &updated))
		s.Equal(models.PollStatusApprovedAndWaiting, updated.Status)
	})

	s.Run("an active poll cannot be edited", func() {
		s.approvedStudent(studentID)
		poll := s.createPoll(studentID, "", "")
		s.decidePoll(poll.ID, models.PollStatusApprovedAndWaiting)
		_, err := s.contract.StartPoll(s.ctx, studentID, poll.ID)
		s.Require().NoError(err)

		_, err = s.contract.UpdatePoll(s.ctx, studentID, poll.ID, "", "", "New title", "")
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)
	})
}

func (s *ContractSuite) TestStartStopPoll() {
	s.Run("manual start works for an approved poll without a schedule", func() {
		s.approvedStudent(studentID)
		poll := s.createPoll(studentID, "", "")
		s.decidePoll(poll.ID, models.PollStatusApprovedAndWaiting)

		raw, err := s.contract.StartPoll(s.ctx, studentID, poll.ID)
		s.Require().NoError(err)
		var started models.Poll
		s.Require().NoError(json.Unmarshal([]byte(raw), &started))
		s.Equal(models.PollStatusActive, started.Status)
	})

	s.Run("manual start before the planned start date is rejected", func() {
		s.approvedStudent(studentID)
		now := s.stub.TxTime
		poll := s.createPoll(studentID, epoch(now+500), "")
		s.decidePoll(poll.ID, models.PollStatusApprovedAndWaiting)

		_, err := s.contract.StartPoll(s.ctx, studentID, poll.ID)
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)
	})

	s.Run("manual start after the end date passed is rejected", func() {
		s.approvedStudent(studentID)
		now := s.stub.TxTime
		poll := s.createPoll(studentID, "", epoch(now+10))
		s.decidePoll(poll.ID, models.PollStatusApprovedAndWaiting)

		s.stub.SetTxTime(now + 1000)
		_, err := s.contract.StartPoll(s.ctx, studentID, poll.ID)
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)
		s.Contains(err.Error(), "end date already passed")
	})

	s.Run("redundant start after lazy activation names the automatic transition", func() {
		s.approvedStudent(studentID)
		now := s.stub.TxTime
		poll := s.createPoll(studentID, epoch(now+10), "")
		s.decidePoll(poll.ID, models.PollStatusApprovedAndWaiting)

		s.stub.SetTxTime(now + 20)
		_, err := s.contract.StartPoll(s.ctx, studentID, poll.ID)
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)
		s.Contains(err.Error(), "automatically")
	})

	s.Run("manual stop works only without a pending end date", func() {
		s.approvedStudent(studentID)
		poll := s.createPoll(studentID, "", "")
		s.decidePoll(poll.ID, models.PollStatusApprovedAndWaiting)
		_, err := s.contract.StartPoll(s.ctx, studentID, poll.ID)
		s.Require().NoError(err)

		raw, err := s.contract.StopPoll(s.ctx, studentID, poll.ID)
		s.Require().NoError(err)
		var stopped models.Poll
		s.Require().NoError(json.Unmarshal([]byte(raw), &stopped))
		s.Equal(models.PollStatusFinished, stopped.Status)
	})

	s.Run("premature manual stop is rejected", func() {
		s.approvedStudent(studentID)
		now := s.stub.TxTime
		poll := s.createPoll(studentID, "", epoch(now+500))
		s.decidePoll(poll.ID, models.PollStatusApprovedAndWaiting)
		_, err := s.contract.StartPoll(s.ctx, studentID, poll.ID)
		s.Require().NoError(err)

		_, err = s.contract.StopPoll(s.ctx, studentID, poll.ID)
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)
	})

	s.Run("redundant stop after lazy finish names the automatic transition", func() {
		s.approvedStudent(studentID)
		now := s.stub.TxTime
		poll := s.createPoll(studentID, "", epoch(now+10))
		s.decidePoll(poll.ID, models.PollStatusApprovedAndWaiting)
		_, err := s.contract.StartPoll(s.ctx, studentID, poll.ID)
		s.Require().NoError(err)

		s.stub.SetTxTime(now + 100)
		_, err = s.contract.StopPoll(s.ctx, studentID, poll.ID)
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)
		s.Contains(err.Error(), "automatically")
	})

	s.Run("only the author may start or stop", func() {
		s.approvedStudent(studentID)
		s.approvedStudent(studentID2)
		poll := s.createPoll(studentID, "", "")
		s.decidePoll(poll.ID, models.PollStatusApprovedAndWaiting)

		_, err := s.contract.StartPoll(s.ctx, studentID2, poll.ID)
		s.Require().ErrorIs(err, sentinel.ErrForbidden)
	})
}

func (s *ContractSuite) TestGetMyPendingPolls() {
	s.Run("returns only the caller's not-yet-active polls", func() {
		s.approvedStudent(studentID)
		s.approvedStudent(studentID2)

		mine := s.createPoll(studentID, "", "")
		declined := s.createPoll(studentID, "", "")
		s.decidePoll(declined.ID, models.PollStatusDeclined)
		running := s.createPoll(studentID, "", "")
		s.decidePoll(running.ID, models.PollStatusApprovedAndWaiting)
		_, err := s.contract.StartPoll(s.ctx, studentID, running.ID)
		s.Require().NoError(err)
		s.createPoll(studentID2, "", "")

		raw, err := s.contract.GetMyPendingPolls(s.ctx, studentID)
		s.Require().NoError(err)
		var pending []models.Poll
		s.Require().NoError(json.Unmarshal([]byte(raw), &pending))

		ids := make([]string, 0, len(pending))
		for _, p := range pending {
			ids = append(ids, p.ID)
		}
		s.ElementsMatch([]string{mine.ID, declined.ID}, ids)
	})
}
