package pipeline

// State is a step of a pipeline run.
type State string

const (
	StateReceived        State = "received"
	StateAuthenticated   State = "authenticated"
	StateMetadataFetched State = "metadata_fetched"
	StateCategorized     State = "categorized"
	StateProfileSelected State = "profile_selected"
	StateApplied         State = "applied"
	StateDryRunLogged    State = "dry_run_logged"
	StateApproved        State = "approved"
	StatePendingApproval State = "pending_approval"
	StateError           State = "error"
	StateIgnored         State = "ignored"
	StateDuplicate       State = "duplicate"
)

// Terminal reports whether a run ends in s.
func (s State) Terminal() bool {
	switch s {
	case StateDryRunLogged, StateApproved, StatePendingApproval, StateError, StateIgnored, StateDuplicate:
		return true
	}
	return false
}

func (s State) String() string {
	return string(s)
}
