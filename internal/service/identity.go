package service

// Identity is the authenticated-user slice the notification and
// pairing services care about: who, how to reach them, what to call
// them. Handlers build it from JWT claims and the user profile.
type Identity struct {
	ID      string
	Contact string // email
	Name    string
}
