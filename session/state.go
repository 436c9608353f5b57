package session

// State is the read-only snapshot of the authentication state handed to
// consumers. Session is nil whenever Authenticated is false.
type State struct {
	Session       *Session
	Authenticated bool
	// Loading is true while hydration, login or registration is in flight.
	Loading bool
	// Ready turns true once the initial hydration from durable storage has
	// finished, whatever its outcome.
	Ready bool
}

// Clone returns a deep copy of st.
func (st State) Clone() State {
	st.Session = st.Session.Clone()
	return st
}
