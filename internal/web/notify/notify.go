// Package notify surfaces one-shot messages to the user of a page.
package notify

import (
	"net/http"
	"sync"

	"github.com/foxzi/leadboard/internal/session"
)

// Message kinds, matching the CSS classes of the flash area
const (
	KindSuccess = "success"
	KindError   = "error"
	KindInfo    = "info"
	KindWarning = "warning"
)

// Notifier shows messages on the next rendered page
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
	Warning(msg string)
}

// Factory returns the notifier of a request
type Factory func(r *http.Request) Notifier

// FromSession queues messages as session flashes. Requests without a
// session get a notifier that drops messages.
func FromSession(r *http.Request) Notifier {
	s := session.FromContext(r.Context())
	if s == nil {
		return discard{}
	}
	return sessionNotifier{s: s}
}

type sessionNotifier struct {
	s *session.Session
}

func (n sessionNotifier) Success(msg string) { n.add(KindSuccess, msg) }
func (n sessionNotifier) Error(msg string)   { n.add(KindError, msg) }
func (n sessionNotifier) Info(msg string)    { n.add(KindInfo, msg) }
func (n sessionNotifier) Warning(msg string) { n.add(KindWarning, msg) }

func (n sessionNotifier) add(kind, msg string) {
	n.s.AddFlash(session.Flash{Kind: kind, Message: msg})
}

type discard struct{}

func (discard) Success(string) {}
func (discard) Error(string)   {}
func (discard) Info(string)    {}
func (discard) Warning(string) {}

// Recorder keeps messages in memory. It is used by tests and by code that
// reports to the terminal instead of a browser.
type Recorder struct {
	mu       sync.Mutex
	Messages []session.Flash
}

func (r *Recorder) Success(msg string) { r.add(KindSuccess, msg) }
func (r *Recorder) Error(msg string)   { r.add(KindError, msg) }
func (r *Recorder) Info(msg string)    { r.add(KindInfo, msg) }
func (r *Recorder) Warning(msg string) { r.add(KindWarning, msg) }

func (r *Recorder) add(kind, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, session.Flash{Kind: kind, Message: msg})
}

// Last returns the most recent message
func (r *Recorder) Last() (session.Flash, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Messages) == 0 {
		return session.Flash{}, false
	}
	return r.Messages[len(r.Messages)-1], true
}

// Factory returns a Factory that always yields r
func (r *Recorder) Factory() Factory {
	return func(*http.Request) Notifier { return r }
}
