package session

import "github.com/foxzi/leadboard/internal/models"

// Status is the authentication status of a browser session
type Status int

const (
	StatusLoading Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// State is the status plus the signed-in user, if any
type State struct {
	Status Status
	User   *models.User
}

// Decision is what the route guard does with a protected page
type Decision int

const (
	DecisionPlaceholder Decision = iota
	DecisionRedirectLogin
	DecisionRender
)

// Decide maps a session state to the guard's action
func Decide(st State) Decision {
	switch st.Status {
	case StatusAuthenticated:
		return DecisionRender
	case StatusUnauthenticated:
		return DecisionRedirectLogin
	default:
		return DecisionPlaceholder
	}
}
