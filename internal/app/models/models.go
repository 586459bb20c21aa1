package models

// Role is the single role a user holds for the lifetime of the account.
type Role string

const (
	RoleStudent     Role = "student"
	RoleCoordinator Role = "coordinator"
	RoleAdmin       Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleCoordinator, RoleAdmin:
		return true
	}
	return false
}

// EventStatus is the review state of an event.
type EventStatus string

const (
	EventStatusPending  EventStatus = "pending"
	EventStatusApproved EventStatus = "approved"
	EventStatusRejected EventStatus = "rejected"
)

// Valid reports whether s is a known event status.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusPending, EventStatusApproved, EventStatusRejected:
		return true
	}
	return false
}

// RequestKind distinguishes join from leave membership requests.
type RequestKind string

const (
	RequestKindJoin  RequestKind = "join"
	RequestKindLeave RequestKind = "leave"
)

// Valid reports whether k is a known request kind.
func (k RequestKind) Valid() bool {
	return k == RequestKindJoin || k == RequestKindLeave
}

// RequestStatus is the processing state of a membership request.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected:
		return true
	}
	return false
}

// PollScope decides who can see and vote on a poll.
type PollScope string

const (
	PollScopeClub         PollScope = "club"
	PollScopeCoordinators PollScope = "coordinators"
	PollScopeAll          PollScope = "all"
)

// Valid reports whether s is a known scope.
func (s PollScope) Valid() bool {
	switch s {
	case PollScopeClub, PollScopeCoordinators, PollScopeAll:
		return true
	}
	return false
}

// PollStatus is open or closed for voting.
type PollStatus string

const (
	PollStatusActive PollStatus = "active"
	PollStatusClosed PollStatus = "closed"
)

func (s PollStatus) Valid() bool {
	return s == PollStatusActive || s == PollStatusClosed
}

// FeedbackType categorises a feedback item.
type FeedbackType string

const (
	FeedbackGeneral      FeedbackType = "general"
	FeedbackSuggestion   FeedbackType = "suggestion"
	FeedbackComplaint    FeedbackType = "complaint"
	FeedbackAppreciation FeedbackType = "appreciation"
	FeedbackIssue        FeedbackType = "issue"
	FeedbackRequest      FeedbackType = "request"
)

// FeedbackStatus is the handling state of a feedback item.
type FeedbackStatus string

const (
	FeedbackStatusPending      FeedbackStatus = "pending"
	FeedbackStatusResolved     FeedbackStatus = "resolved"
	FeedbackStatusSolved       FeedbackStatus = "solved"
	FeedbackStatusEscalated    FeedbackStatus = "escalated"
	FeedbackStatusForwardAdmin FeedbackStatus = "forward_admin"
)

// Valid reports whether s is a known feedback status.
func (s FeedbackStatus) Valid() bool {
	switch s {
	case FeedbackStatusPending, FeedbackStatusResolved, FeedbackStatusSolved,
		FeedbackStatusEscalated, FeedbackStatusForwardAdmin:
		return true
	}
	return false
}
