package domain

// TransitionPolicy selects how strictly the registry validates a requested
// transition. Permissive allows any non-terminal status to move to any other
// defined status, which is what the admin back office relies on for manual
// corrections. Strict enforces the declared phase graph.
type TransitionPolicy int

const (
	PolicyPermissive TransitionPolicy = iota
	PolicyStrict
)

// sessionStatuses lists every status defined for session-formation
// reservations, in phase order.
var sessionStatuses = []ReservationStatus{
	StatusSubmitted,
	StatusUnderReview,
	StatusAwaitingDocuments,
	StatusDocumentsPending,
	StatusDocumentsRejected,
	StatusAwaitingPrerequisites,
	StatusAwaitingFunding,
	StatusFundingApproved,
	StatusAwaitingPayment,
	StatusPaymentPending,
	StatusConfirmed,
	StatusAwaitingStart,
	StatusInProgress,
	StatusAttendanceIssues,
	StatusSuspended,
	StatusCompleted,
	StatusFailed,
	StatusCancelled,
	StatusRefunded,
}

// rentalStatuses is the subset of the workflow used by vehicle rentals.
var rentalStatuses = []ReservationStatus{
	StatusSubmitted,
	StatusUnderReview,
	StatusAwaitingDocuments,
	StatusDocumentsPending,
	StatusDocumentsRejected,
	StatusAwaitingPayment,
	StatusPaymentPending,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
	StatusRefunded,
}

// terminalStatuses have no outgoing transitions.
var terminalStatuses = map[ReservationStatus]bool{
	StatusCompleted: true,
	StatusCancelled: true,
	StatusRefunded:  true,
	StatusFailed:    true,
}

// strictTransitions is the declared phase graph. It is data, not the default
// enforcement: the back office historically allowed administrators to jump
// between any non-terminal statuses, so PolicyPermissive remains the default
// and this graph only applies under PolicyStrict.
var strictTransitions = map[ReservationStatus][]ReservationStatus{
	StatusSubmitted:             {StatusUnderReview, StatusCancelled},
	StatusUnderReview:           {StatusAwaitingDocuments, StatusAwaitingFunding, StatusConfirmed, StatusCancelled},
	StatusAwaitingDocuments:     {StatusDocumentsPending, StatusCancelled},
	StatusDocumentsPending:      {StatusDocumentsRejected, StatusAwaitingFunding, StatusConfirmed},
	StatusDocumentsRejected:     {StatusAwaitingDocuments, StatusCancelled},
	StatusAwaitingPrerequisites: {StatusConfirmed, StatusCancelled},
	StatusAwaitingFunding:       {StatusFundingApproved, StatusAwaitingPayment, StatusCancelled},
	StatusFundingApproved:       {StatusConfirmed, StatusAwaitingStart},
	StatusAwaitingPayment:       {StatusPaymentPending, StatusCancelled},
	StatusPaymentPending:        {StatusConfirmed, StatusCancelled},
	StatusConfirmed:             {StatusAwaitingStart, StatusCancelled},
	StatusAwaitingStart:         {StatusInProgress, StatusCancelled},
	StatusInProgress:            {StatusAttendanceIssues, StatusSuspended, StatusCompleted, StatusFailed},
	StatusAttendanceIssues:      {StatusInProgress, StatusSuspended, StatusFailed},
	StatusSuspended:             {StatusInProgress, StatusCancelled},
	StatusFailed:                {},
	StatusCancelled:             {},
	StatusCompleted:             {},
	StatusRefunded:              {},
}

// statusLabels are the French display labels the admin UI renders.
var statusLabels = map[ReservationStatus]string{
	StatusSubmitted:             "Demande soumise",
	StatusUnderReview:           "En cours d'examen",
	StatusAwaitingDocuments:     "En attente de documents",
	StatusDocumentsPending:      "Documents en cours de validation",
	StatusDocumentsRejected:     "Documents refusés",
	StatusAwaitingPrerequisites: "En attente de prérequis",
	StatusAwaitingFunding:       "En attente de financement",
	StatusFundingApproved:       "Financement approuvé",
	StatusAwaitingPayment:       "En attente de paiement",
	StatusPaymentPending:        "Paiement en cours",
	StatusConfirmed:             "Inscription confirmée",
	StatusAwaitingStart:         "En attente du début",
	StatusInProgress:            "Formation en cours",
	StatusAttendanceIssues:      "Problèmes d'assiduité",
	StatusSuspended:             "Inscription suspendue",
	StatusCompleted:             "Formation terminée",
	StatusFailed:                "Échec de formation",
	StatusCancelled:             "Inscription annulée",
	StatusRefunded:              "Remboursement effectué",
}

// statusPhases group statuses for the UI status menu.
var statusPhases = map[ReservationStatus]string{
	StatusSubmitted:             "Demande Initiale",
	StatusUnderReview:           "Demande Initiale",
	StatusAwaitingDocuments:     "Vérifications Administratives",
	StatusDocumentsPending:      "Vérifications Administratives",
	StatusDocumentsRejected:     "Vérifications Administratives",
	StatusAwaitingPrerequisites: "Vérifications Administratives",
	StatusAwaitingFunding:       "Validation Financière",
	StatusFundingApproved:       "Validation Financière",
	StatusAwaitingPayment:       "Validation Financière",
	StatusPaymentPending:        "Validation Financière",
	StatusConfirmed:             "Confirmation",
	StatusAwaitingStart:         "Confirmation",
	StatusInProgress:            "Formation en Cours",
	StatusAttendanceIssues:      "Formation en Cours",
	StatusSuspended:             "Formation en Cours",
	StatusCompleted:             "Finalisation",
	StatusFailed:                "Finalisation",
	StatusCancelled:             "Finalisation",
	StatusRefunded:              "Finalisation",
}

// statusColors map each status to its badge color in the admin UI.
var statusColors = map[ReservationStatus]string{
	StatusSubmitted:             "blue",
	StatusUnderReview:           "blue",
	StatusAwaitingDocuments:     "orange",
	StatusDocumentsPending:      "orange",
	StatusDocumentsRejected:     "red",
	StatusAwaitingPrerequisites: "orange",
	StatusAwaitingFunding:       "yellow",
	StatusFundingApproved:       "yellow",
	StatusAwaitingPayment:       "yellow",
	StatusPaymentPending:        "yellow",
	StatusConfirmed:             "green",
	StatusAwaitingStart:         "green",
	StatusInProgress:            "indigo",
	StatusAttendanceIssues:      "red",
	StatusSuspended:             "red",
	StatusCompleted:             "green",
	StatusFailed:                "red",
	StatusCancelled:             "red",
	StatusRefunded:              "gray",
}

// adminNotifiedStatuses additionally fan out to ROLE_ADMIN on entry.
// Every status entry notifies the owning student/client.
var adminNotifiedStatuses = map[ReservationStatus]bool{
	StatusSubmitted: true,
	StatusCancelled: true,
}

// StatusesFor returns the closed, phase-ordered status set for a kind.
func StatusesFor(kind ReservationKind) []ReservationStatus {
	if kind == KindVehicleRental {
		return rentalStatuses
	}
	return sessionStatuses
}

// IsValidStatus reports whether status belongs to the defined set for kind.
func IsValidStatus(kind ReservationKind, status ReservationStatus) bool {
	for _, s := range StatusesFor(kind) {
		if s == status {
			return true
		}
	}
	return false
}

// IsTerminal reports whether status has no outgoing transitions.
func (s ReservationStatus) IsTerminal() bool {
	return terminalStatuses[s]
}

// Label returns the display label for a status, falling back to the raw value.
func (s ReservationStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Phase returns the workflow phase a status belongs to.
func (s ReservationStatus) Phase() string {
	return statusPhases[s]
}

// Color returns the UI badge color for a status.
func (s ReservationStatus) Color() string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return "gray"
}

// NotifiedRoles returns the roles notified when a reservation enters status.
func NotifiedRoles(status ReservationStatus) []string {
	if adminNotifiedStatuses[status] {
		return []string{RoleStudent, RoleAdmin}
	}
	return []string{RoleStudent}
}

// AllowedTransitions returns the statuses reachable from current under the
// given policy. Terminal statuses always return an empty set.
func AllowedTransitions(kind ReservationKind, current ReservationStatus, policy TransitionPolicy) []ReservationStatus {
	if !IsValidStatus(kind, current) || current.IsTerminal() {
		return nil
	}
	if policy == PolicyStrict {
		var out []ReservationStatus
		for _, s := range strictTransitions[current] {
			if IsValidStatus(kind, s) {
				out = append(out, s)
			}
		}
		return out
	}
	out := make([]ReservationStatus, 0, len(StatusesFor(kind))-1)
	for _, s := range StatusesFor(kind) {
		if s != current {
			out = append(out, s)
		}
	}
	return out
}

// ValidateTransition decides whether current → target is legal for kind
// under policy. It returns nil on acceptance or one of the typed sentinel
// errors on rejection.
func ValidateTransition(kind ReservationKind, current, target ReservationStatus, policy TransitionPolicy) error {
	if !IsValidStatus(kind, target) {
		return ErrInvalidTargetState
	}
	if current.IsTerminal() {
		return ErrTerminalState
	}
	if current == target {
		return ErrNoOpTransition
	}
	if policy == PolicyStrict {
		for _, s := range strictTransitions[current] {
			if s == target {
				return nil
			}
		}
		return ErrTransitionNotAllowed
	}
	return nil
}
