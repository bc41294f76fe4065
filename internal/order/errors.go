package order

// The workflow error taxonomy. Every error is terminal for the attempt but
// recoverable: it lands in Session.LastError and the form stays usable.

// ValidationError is a missing required input, caught before any network call.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// AuthError is a rejected token or a malformed authentication response.
type AuthError struct {
	Msg string
	Err error
}

func (e *AuthError) Error() string { return e.Msg }
func (e *AuthError) Unwrap() error { return e.Err }

// LookupError is a phone search that matched no contact.
type LookupError struct {
	Msg string
}

func (e *LookupError) Error() string { return e.Msg }

// LoadError is an aggregate reference-data failure. Individual catalog
// fetch failures degrade to empty lists instead and never produce it; in
// practice it only fires when the load as a whole is cancelled.
type LoadError struct {
	Msg string
	Err error
}

func (e *LoadError) Error() string { return e.Msg }
func (e *LoadError) Unwrap() error { return e.Err }

// SubmissionError is a sales document the server refused to create.
type SubmissionError struct {
	Msg string
	Err error
}

func (e *SubmissionError) Error() string { return e.Msg }
func (e *SubmissionError) Unwrap() error { return e.Err }
