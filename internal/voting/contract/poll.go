package contract

import (
	"fmt"
	"strconv"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"campusvote/internal/ledger"
	"campusvote/internal/voting/models"
	"campusvote/pkg/platform/sentinel"
)

// dateArg is the parsed form of an optional date argument. The string ABI
// uses three shapes: empty string (leave unchanged), the literal "null"
// (clear the date) and a decimal epoch-seconds value.
type dateArg struct {
	set   bool
	value *int64
}

func parseDateArg(raw string) (dateArg, error) {
	switch raw {
	case "":
		return dateArg{}, nil
	case "null":
		return dateArg{set: true}, nil
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return dateArg{}, fmt.Errorf("invalid date %q, want epoch seconds or \"null\": %w", raw, sentinel.ErrInvalidArgument)
	}
	return dateArg{set: true, value: &secs}, nil
}

// CreatePoll creates a poll in REVIEW with empty option, question and
// participant lists. Requires a KYC-approved student; the caller becomes the
// immutable author. Optional dates accept epoch seconds or "null"/empty.
func (c *VotingSystemContract) CreatePoll(ctx contractapi.TransactionContextInterface, studentIDNumber, title, description, plannedStartDate, plannedEndDate string) (string, error) {
	stub := ctx.GetStub()

	caller, err := c.protect(stub, studentIDNumber, kycApprovedStudent)
	if err != nil {
		return "", err
	}

	start, err := parseDateArg(plannedStartDate)
	if err != nil {
		return "", err
	}
	end, err := parseDateArg(plannedEndDate)
	if err != nil {
		return "", err
	}
	if start.value != nil && end.value != nil && *end.value <= *start.value {
		return "", fmt.Errorf("planned end date must be after planned start date: %w", sentinel.ErrInvalidArgument)
	}

	poll := models.Poll{
		Title:                 title,
		Description:           description,
		AuthorStudentIDNumber: caller.StudentIDNumber,
		OptionIDs:             []string{},
		QuestionIDs:           []string{},
		ParticipantIDs:        []string{},
		PlannedStartDate:      start.value,
		PlannedEndDate:        end.value,
		Status:                models.PollStatusReview,
	}
	poll, err = c.polls.Create(stub, poll)
	if err != nil {
		return "", err
	}

	c.log.Info("poll created", "pollId", poll.ID, "author", caller.StudentIDNumber)
	return jsonResult(poll)
}

// loadOwnEditablePoll runs the shared preamble of every author-side mutation:
// lazy status recompute, author check, and the editable-status check.
func (c *VotingSystemContract) loadOwnEditablePoll(stub shim.ChaincodeStubInterface, caller models.User, pollID string) (models.Poll, error) {
	poll, err := c.loadCurrentPoll(stub, pollID)
	if err != nil {
		if ledger.IsNotFound(err) {
			return models.Poll{}, fmt.Errorf("poll %s does not exist: %w", pollID, sentinel.ErrNotFound)
		}
		return models.Poll{}, err
	}
	if poll.AuthorStudentIDNumber != caller.StudentIDNumber {
		return models.Poll{}, fmt.Errorf("only the poll author may modify poll %s: %w", pollID, sentinel.ErrForbidden)
	}
	if !poll.Status.Editable() {
		return models.Poll{}, fmt.Errorf("poll %s is %s and can no longer be edited: %w", pollID, poll.Status, sentinel.ErrInvalidState)
	}
	return poll, nil
}

// AddPollOption appends a new option to an editable poll. Changing the option
// set sends the poll back to REVIEW for re-approval.
func (c *VotingSystemContract) AddPollOption(ctx contractapi.TransactionContextInterface, studentIDNumber, pollID, text string) (string, error) {
	stub := ctx.GetStub()

	caller, err := c.protect(stub, studentIDNumber, kycApprovedStudent)
	if err != nil {
		return "", err
	}
	poll, err := c.loadOwnEditablePoll(stub, caller, pollID)
	if err != nil {
		return "", err
	}

	option, err := c.options.Create(stub, poll.ID, text)
	if err != nil {
		return "", err
	}
	_, err = c.polls.Update(stub, poll.ID, map[string]any{
		"optionIds": append(poll.OptionIDs, option.ID),
		"status":    models.PollStatusReview,
	})
	if err != nil {
		return "", err
	}
	return jsonResult(option)
}

// DeletePollOption removes an option from an editable poll and sends the poll
// back to REVIEW.
func (c *VotingSystemContract) DeletePollOption(ctx contractapi.TransactionContextInterface, studentIDNumber, pollID, optionID string) error {
	stub := ctx.GetStub()

	caller, err := c.protect(stub, studentIDNumber, kycApprovedStudent)
	if err != nil {
		return err
	}
	poll, err := c.loadOwnEditablePoll(stub, caller, pollID)
	if err != nil {
		return err
	}
	if !poll.HasOption(optionID) {
		return fmt.Errorf("option %s does not belong to poll %s: %w", optionID, pollID, sentinel.ErrNotFound)
	}

	if err := c.options.Delete(stub, optionID); err != nil {
		return err
	}
	_, err = c.polls.Update(stub, poll.ID, map[string]any{
		"optionIds": removeID(poll.OptionIDs, optionID),
		"status":    models.PollStatusReview,
	})
	return err
}

// AddPollQuestion appends an open question to an editable poll; like option
// changes, it resets the poll to REVIEW.
func (c *VotingSystemContract) AddPollQuestion(ctx contractapi.TransactionContextInterface, studentIDNumber, pollID, text string) (string, error) {
	stub := ctx.GetStub()

	caller, err := c.protect(stub, studentIDNumber, kycApprovedStudent)
	if err != nil {
		return "", err
	}
	poll, err := c.loadOwnEditablePoll(stub, caller, pollID)
	if err != nil {
		return "", err
	}

	question, err := c.questions.Create(stub, poll.ID, text)
	if err != nil {
		return "", err
	}
	_, err = c.polls.Update(stub, poll.ID, map[string]any{
		"questionIds": append(poll.QuestionIDs, question.ID),
		"status":      models.PollStatusReview,
	})
	if err != nil {
		return "", err
	}
	return jsonResult(question)
}

// DeletePollQuestion removes a question from an editable poll and resets the
// poll to REVIEW.
func (c *VotingSystemContract) DeletePollQuestion(ctx contractapi.TransactionContextInterface, studentIDNumber, pollID, questionID string) error {
	stub := ctx.GetStub()

	caller, err := c.protect(stub, studentIDNumber, kycApprovedStudent)
	if err != nil {
		return err
	}
	poll, err := c.loadOwnEditablePoll(stub, caller, pollID)
	if err != nil {
		return err
	}
	if !poll.HasQuestion(questionID) {
		return fmt.Errorf("question %s does not belong to poll %s: %w", questionID, pollID, sentinel.ErrNotFound)
	}

	if err := c.questions.Delete(stub, questionID); err != nil {
		return err
	}
	_, err = c.polls.Update(stub, poll.ID, map[string]any{
		"questionIds": removeID(poll.QuestionIDs, questionID),
		"status":      models.PollStatusReview,
	})
	return err
}

// GetPollsListInReviewStatus lists every poll awaiting review. No lazy
// recomputation applies: a poll under review has no activated schedule yet.
func (c *VotingSystemContract) GetPollsListInReviewStatus(ctx contractapi.TransactionContextInterface, studentIDNumber string) (string, error) {
	stub := ctx.GetStub()

	if _, err := c.protect(stub, studentIDNumber, adminOnly); err != nil {
		return "", err
	}
	polls, err := c.polls.ByStatus(stub, models.PollStatusReview)
	if err != nil {
		return "", err
	}
	return jsonResult(polls)
}

// UpdatePollReviewStatus decides a REVIEW poll: APPROVED_AND_WAITING or
// DECLINED, nothing else. After approval the lazy recomputation runs once
// more, so a poll whose planned start date already passed activates
// immediately.
func (c *VotingSystemContract) UpdatePollReviewStatus(ctx contractapi.TransactionContextInterface, studentIDNumber, pollID, status string) (string, error) {
	stub := ctx.GetStub()

	if _, err := c.protect(stub, studentIDNumber, adminOnly); err != nil {
		return "", err
	}

	target := models.PollStatus(status)
	if target != models.PollStatusApprovedAndWaiting && target != models.PollStatusDeclined {
		return "", fmt.Errorf("a reviewed poll may only become %s or %s, got %q: %w",
			models.PollStatusApprovedAndWaiting, models.PollStatusDeclined, status, sentinel.ErrInvalidArgument)
	}

	poll, err := c.polls.Get(stub, pollID)
	if err != nil {
		if ledger.IsNotFound(err) {
			return "", fmt.Errorf("poll %s does not exist: %w", pollID, sentinel.ErrNotFound)
		}
		return "", err
	}
	if poll.Status != models.PollStatusReview {
		return "", fmt.Errorf("poll %s is %s, only a %s poll can be decided: %w", pollID, poll.Status, models.PollStatusReview, sentinel.ErrInvalidState)
	}

	poll, err = c.polls.Update(stub, poll.ID, map[string]any{"status": target})
	if err != nil {
		return "", err
	}
	if target == models.PollStatusApprovedAndWaiting {
		poll, err = c.ensureCurrentStatus(stub, poll)
		if err != nil {
			return "", err
		}
	}

	c.log.Info("poll review decided", "pollId", poll.ID, "status", poll.Status)
	return jsonResult(poll)
}

// UpdatePoll edits title, description and planned dates of a not-yet-active
// poll. Empty string leaves a field unchanged and "null" clears a date. Any
// effective change sends the poll back to REVIEW.
func (c *VotingSystemContract) UpdatePoll(ctx contractapi.TransactionContextInterface, studentIDNumber, pollID, plannedStartDate, plannedEndDate, title, description string) (string, error) {
	stub := ctx.GetStub()

	caller, err := c.protect(stub, studentIDNumber, kycApprovedStudent)
	if err != nil {
		return "", err
	}
	poll, err := c.loadOwnEditablePoll(stub, caller, pollID)
	if err != nil {
		return "", err
	}

	start, err := parseDateArg(plannedStartDate)
	if err != nil {
		return "", err
	}
	end, err := parseDateArg(plannedEndDate)
	if err != nil {
		return "", err
	}

	patch := map[string]any{}
	if title != "" && title != poll.Title {
		patch["title"] = title
	}
	if description != "" && description != poll.Description {
		patch["description"] = description
	}
	if start.set && !sameDate(start.value, poll.PlannedStartDate) {
		patch["plannedStartDate"] = start.value
	}
	if end.set && !sameDate(end.value, poll.PlannedEndDate) {
		patch["plannedEndDate"] = end.value
	}
	if len(patch) == 0 {
		return jsonResult(poll)
	}

	patch["status"] = models.PollStatusReview
	poll, err = c.polls.Update(stub, poll.ID, patch)
	if err != nil {
		return "", err
	}
	return jsonResult(poll)
}

// StartPoll is the author's manual APPROVED_AND_WAITING to ACTIVE transition.
// A scheduled poll starts by itself; manual start exists for polls without a
// planned start date, and is rejected when the schedule already ran out.
func (c *VotingSystemContract) StartPoll(ctx contractapi.TransactionContextInterface, studentIDNumber, pollID string) (string, error) {
	stub := ctx.GetStub()

	caller, err := c.protect(stub, studentIDNumber, studentOnly)
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
	if poll.AuthorStudentIDNumber != caller.StudentIDNumber {
		return "", fmt.Errorf("only the poll author may start poll %s: %w", pollID, sentinel.ErrForbidden)
	}

	now, err := ledger.TxTime(stub)
	if err != nil {
		return "", err
	}

	switch poll.Status {
	case models.PollStatusActive:
		if dateElapsed(poll.PlannedStartDate, now) {
			return "", fmt.Errorf("poll %s already became active automatically at its planned start date: %w", pollID, sentinel.ErrInvalidState)
		}
		return "", fmt.Errorf("poll %s is already active: %w", pollID, sentinel.ErrInvalidState)
	case models.PollStatusFinished:
		return "", fmt.Errorf("poll %s is already finished: %w", pollID, sentinel.ErrInvalidState)
	case models.PollStatusApprovedAndWaiting:
		// fall through to the schedule checks
	default:
		return "", fmt.Errorf("poll %s is %s, only an approved poll can be started: %w", pollID, poll.Status, sentinel.ErrInvalidState)
	}

	if dateElapsed(poll.PlannedEndDate, now) {
		return "", fmt.Errorf("poll %s cannot start, its planned end date already passed: %w", pollID, sentinel.ErrInvalidState)
	}
	if poll.PlannedStartDate != nil && now < *poll.PlannedStartDate {
		return "", fmt.Errorf("poll %s cannot start before its planned start date: %w", pollID, sentinel.ErrInvalidState)
	}

	poll, err = c.polls.Update(stub, poll.ID, map[string]any{"status": models.PollStatusActive})
	if err != nil {
		return "", err
	}
	c.log.Info("poll started manually", "pollId", poll.ID)
	return jsonResult(poll)
}

// StopPoll is the author's manual ACTIVE to FINISHED transition. A poll with
// a planned end date finishes by itself; stopping it earlier is rejected.
func (c *VotingSystemContract) StopPoll(ctx contractapi.TransactionContextInterface, studentIDNumber, pollID string) (string, error) {
	stub := ctx.GetStub()

	caller, err := c.protect(stub, studentIDNumber, studentOnly)
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
	if poll.AuthorStudentIDNumber != caller.StudentIDNumber {
		return "", fmt.Errorf("only the poll author may stop poll %s: %w", pollID, sentinel.ErrForbidden)
	}

	now, err := ledger.TxTime(stub)
	if err != nil {
		return "", err
	}

	switch poll.Status {
	case models.PollStatusFinished:
		if dateElapsed(poll.PlannedEndDate, now) {
			return "", fmt.Errorf("poll %s already finished automatically at its planned end date: %w", pollID, sentinel.ErrInvalidState)
		}
		return "", fmt.Errorf("poll %s is already finished: %w", pollID, sentinel.ErrInvalidState)
	case models.PollStatusActive:
		// fall through to the schedule check
	default:
		return "", fmt.Errorf("poll %s is %s, only an active poll can be stopped: %w", pollID, poll.Status, sentinel.ErrInvalidState)
	}

	if poll.PlannedEndDate != nil && now < *poll.PlannedEndDate {
		return "", fmt.Errorf("poll %s cannot stop before its planned end date: %w", pollID, sentinel.ErrInvalidState)
	}

	poll, err = c.polls.Update(stub, poll.ID, map[string]any{"status": models.PollStatusFinished})
	if err != nil {
		return "", err
	}
	c.log.Info("poll stopped manually", "pollId", poll.ID)
	return jsonResult(poll)
}

// GetPollById returns one poll after the lazy status recomputation, so a
// stale ACTIVE poll whose end date passed is never observed.
func (c *VotingSystemContract) GetPollById(ctx contractapi.TransactionContextInterface, studentIDNumber, pollID string) (string, error) {
	stub := ctx.GetStub()

	if _, err := c.protect(stub, studentIDNumber, anyRegistered); err != nil {
		return "", err
	}
	poll, err := c.loadCurrentPoll(stub, pollID)
	if err != nil {
		if ledger.IsNotFound(err) {
			return "", fmt.Errorf("poll %s does not exist: %w", pollID, sentinel.ErrNotFound)
		}
		return "", err
	}
	return jsonResult(poll)
}

// GetPollOptionsByPollId returns the poll's options in their authored order.
// Dangling option ids are skipped; referential integrity of the id list is
// not enforced at write time.
func (c *VotingSystemContract) GetPollOptionsByPollId(ctx contractapi.TransactionContextInterface, studentIDNumber, pollID string) (string, error) {
	stub := ctx.GetStub()

	if _, err := c.protect(stub, studentIDNumber, anyRegistered); err != nil {
		return "", err
	}
	poll, err := c.loadCurrentPoll(stub, pollID)
	if err != nil {
		if ledger.IsNotFound(err) {
			return "", fmt.Errorf("poll %s does not exist: %w", pollID, sentinel.ErrNotFound)
		}
		return "", err
	}

	options := []models.PollOption{}
	for _, id := range poll.OptionIDs {
		option, err := c.options.Get(stub, id)
		if err != nil {
			if ledger.IsNotFound(err) {
				c.log.Warn("poll references missing option", "pollId", poll.ID, "optionId", id)
				continue
			}
			return "", err
		}
		options = append(options, option)
	}
	return jsonResult(options)
}

// GetActivePolls lists every poll that is ACTIVE after recomputation.
func (c *VotingSystemContract) GetActivePolls(ctx contractapi.TransactionContextInterface, studentIDNumber string) (string, error) {
	return c.pollsInStatus(ctx, studentIDNumber, models.PollStatusActive)
}

// GetFinishedPolls lists every poll that is FINISHED after recomputation.
func (c *VotingSystemContract) GetFinishedPolls(ctx contractapi.TransactionContextInterface, studentIDNumber string) (string, error) {
	return c.pollsInStatus(ctx, studentIDNumber, models.PollStatusFinished)
}

func (c *VotingSystemContract) pollsInStatus(ctx contractapi.TransactionContextInterface, studentIDNumber string, status models.PollStatus) (string, error) {
	stub := ctx.GetStub()

	if _, err := c.protect(stub, studentIDNumber, anyRegistered); err != nil {
		return "", err
	}
	all, err := c.polls.All(stub)
	if err != nil {
		return "", err
	}

	matched := []models.Poll{}
	for _, poll := range all {
		poll, err := c.ensureCurrentStatus(stub, poll)
		if err != nil {
			return "", err
		}
		if poll.Status == status {
			matched = append(matched, poll)
		}
	}
	return jsonResult(matched)
}

// GetMyPendingPolls lists the caller's own polls that have not started yet:
// REVIEW, APPROVED_AND_WAITING or DECLINED after recomputation.
func (c *VotingSystemContract) GetMyPendingPolls(ctx contractapi.TransactionContextInterface, studentIDNumber string) (string, error) {
	stub := ctx.GetStub()

	caller, err := c.protect(stub, studentIDNumber, studentOnly)
	if err != nil {
		return "", err
	}
	mine, err := c.polls.ByAuthor(stub, caller.StudentIDNumber)
	if err != nil {
		return "", err
	}

	pending := []models.Poll{}
	for _, poll := range mine {
		poll, err := c.ensureCurrentStatus(stub, poll)
		if err != nil {
			return "", err
		}
		if poll.Status.Editable() {
			pending = append(pending, poll)
		}
	}
	return jsonResult(pending)
}

func sameDate(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
