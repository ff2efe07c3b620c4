// Package models defines the ledger entities of the voting system.
//
// Every entity is persisted as a JSON document under the composite key
// "{kind}:{id}". Field names are part of the wire format shared with the
// browser client and must not change.
package models

// Storage key prefixes, one per entity kind. A parallel "{kind}-seq" record
// holds the sequence counter for kinds with generated ids.
const (
	KindUser           = "user"
	KindKycApplication = "kyc-application"
	KindPoll           = "poll"
	KindPollOption     = "poll-option"
	KindPollQuestion   = "poll-question"
)

type KycStatus string

const (
	KycStatusPending  KycStatus = "PENDING"
	KycStatusApproved KycStatus = "APPROVED"
	KycStatusRejected KycStatus = "REJECTED"
)

// Valid reports whether s is one of the known KYC statuses. Statuses arrive
// from the wire as free-form strings, so every entry point validates first.
func (s KycStatus) Valid() bool {
	switch s {
	case KycStatusPending, KycStatusApproved, KycStatusRejected:
		return true
	}
	return false
}

type UserRole string

const (
	RoleStudent UserRole = "STUDENT"
	RoleAdmin   UserRole = "ADMIN"
)

type PollStatus string

const (
	PollStatusReview             PollStatus = "REVIEW"
	PollStatusDeclined           PollStatus = "DECLINED"
	PollStatusApprovedAndWaiting PollStatus = "APPROVED_AND_WAITING"
	PollStatusActive             PollStatus = "ACTIVE"
	PollStatusFinished           PollStatus = "FINISHED"
)

// Editable reports whether a poll in this status still accepts changes to its
// title, description, dates, options or questions. ACTIVE and FINISHED are
// terminal for editing.
func (s PollStatus) Editable() bool {
	switch s {
	case PollStatusReview, PollStatusApprovedAndWaiting, PollStatusDeclined:
		return true
	}
	return false
}

// User is keyed by its natural key, the student id number. Password and
// secret key hashes are produced by the caller; the contract never sees
// plaintext credentials.
type User struct {
	StudentIDNumber string    `json:"studentIdNumber"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	PasswordHash    string    `json:"passwordHash"`
	SecretKeyHash   string    `json:"secretKeyHash"`
	KycStatus       KycStatus `json:"kycStatus"`
	Role            UserRole  `json:"role"`
	CreatedAt       int64     `json:"createdAt"`
	UpdatedAt       int64     `json:"updatedAt"`
}

// KYCApplication is created PENDING alongside each new user. Its status is
// admin-driven and mirrored onto the linked user's kycStatus on every change.
type KYCApplication struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Status    KycStatus `json:"status"`
	CreatedAt int64     `json:"createdAt"`
	UpdatedAt int64     `json:"updatedAt"`
}

// Poll carries its own workflow state. Planned dates are optional epoch
// seconds; nil means the corresponding transition is manual only.
type Poll struct {
	ID                    string     `json:"id"`
	Title                 string     `json:"title"`
	Description           string     `json:"description"`
	AuthorStudentIDNumber string     `json:"authorStudentIdNumber"`
	OptionIDs             []string   `json:"optionIds"`
	QuestionIDs           []string   `json:"questionIds"`
	ParticipantIDs        []string   `json:"participantIds"`
	PlannedStartDate      *int64     `json:"plannedStartDate"`
	PlannedEndDate        *int64     `json:"plannedEndDate"`
	Status                PollStatus `json:"status"`
	CreatedAt             int64      `json:"createdAt"`
	UpdatedAt             int64      `json:"updatedAt"`
}

// HasParticipant reports whether the student already voted in this poll.
func (p *Poll) HasParticipant(studentIDNumber string) bool {
	for _, id := range p.ParticipantIDs {
		if id == studentIDNumber {
			return true
		}
	}
	return false
}

// HasOption reports whether the option id belongs to this poll's option set.
func (p *Poll) HasOption(optionID string) bool {
	for _, id := range p.OptionIDs {
		if id == optionID {
			return true
		}
	}
	return false
}

// HasQuestion reports whether the question id belongs to this poll.
func (p *Poll) HasQuestion(questionID string) bool {
	for _, id := range p.QuestionIDs {
		if id == questionID {
			return true
		}
	}
	return false
}

type PollOption struct {
	ID        string `json:"id"`
	PollID    string `json:"pollId"`
	Text      string `json:"text"`
	VoteCount int64  `json:"voteCount"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// PollQuestion is an open prompt attached to a poll. It shares the option
// shape so the client renders both lists uniformly.
type PollQuestion struct {
	ID        string `json:"id"`
	PollID    string `json:"pollId"`
	Text      string `json:"text"`
	VoteCount int64  `json:"voteCount"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}
