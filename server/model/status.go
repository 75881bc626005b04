package model

// RequestStatus is shared by ProjectApplication, OrganizationJoinRequest and
// PartnershipApplication.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// Terminal reports whether no further decision may be applied.
func (s RequestStatus) Terminal() bool {
	return s == RequestApproved || s == RequestRejected
}

// Decision is what an owner or admin decides on a pending request.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

func (d Decision) Valid() bool {
	return d == DecisionApproved || d == DecisionRejected
}

// RequestStatus returns the request status a decision moves a pending row to.
func (d Decision) RequestStatus() RequestStatus {
	if d == DecisionApproved {
		return RequestApproved
	}
	return RequestRejected
}

var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestPending: {RequestApproved, RequestRejected},
}

var projectTransitions = map[ProjectStatus][]ProjectStatus{
	ProjectDraft:          {ProjectPendingPublish, ProjectPublished},
	ProjectPendingPublish: {ProjectPublished, ProjectDraft},
	ProjectPublished:      {ProjectInProgress, ProjectCompleted},
	ProjectInProgress:     {ProjectCompleted},
}

var organizationTransitions = map[OrganizationStatus][]OrganizationStatus{
	OrganizationPendingApproval: {OrganizationActive, OrganizationRejected},
}

func CanTransitionRequest(from, to RequestStatus) bool {
	return allowed(requestTransitions, from, to)
}

func CanTransitionProject(from, to ProjectStatus) bool {
	return allowed(projectTransitions, from, to)
}

func CanTransitionOrganization(from, to OrganizationStatus) bool {
	return allowed(organizationTransitions, from, to)
}

func allowed[S comparable](table map[S][]S, from, to S) bool {
	for _, s := range table[from] {
		if s == to {
			return true
		}
	}
	return false
}
