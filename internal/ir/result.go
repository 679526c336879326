package ir

// Outcome is the terminal result of reconciling one resource.
type Outcome string

const (
	OutcomeCreated       Outcome = "Created"
	OutcomeAlreadyExists Outcome = "AlreadyExists"
	OutcomeDeleted       Outcome = "Deleted"
	OutcomeNotFound      Outcome = "NotFound"
	OutcomeFailed        Outcome = "Failed"

	// OutcomeBlocked means the resource was never attempted because a
	// dependency failed.
	OutcomeBlocked Outcome = "Blocked"
)

// ReconciliationResult records the terminal outcome for one resource.
// Exactly one of Spec or Ref is set, depending on whether the run was
// driven by desired state (create) or live enumeration (delete).
type ReconciliationResult struct {
	Spec    *ResourceSpec
	Ref     *ResourceRef
	Outcome Outcome
	Outputs map[string]any
	Err     error
}

// Address returns the address of whichever resource identity is set.
func (r *ReconciliationResult) Address() string {
	if r.Spec != nil {
		return r.Spec.Address()
	}
	if r.Ref != nil {
		return r.Ref.Address()
	}
	return ""
}

// Succeeded reports whether the outcome is a non-error terminal state.
func (r *ReconciliationResult) Succeeded() bool {
	return r.Outcome != OutcomeFailed && r.Outcome != OutcomeBlocked
}
