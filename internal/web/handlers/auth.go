package handlers

import (
	"net/http"
	"strings"

	"github.com/foxzi/leadboard/internal/apiclient"
	"github.com/foxzi/leadboard/internal/audit"
	"github.com/foxzi/leadboard/internal/backend"
	"github.com/foxzi/leadboard/internal/session"
	"github.com/foxzi/leadboard/internal/web/middleware"
)

const minPasswordLength = 6

// LoginPage renders the login page
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if h.signedIn(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, r.URL.Query().Get("next"), "", "")
}

// Login handles login form submission
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, "", "", "Invalid form data")
		return
	}

	s := session.FromContext(r.Context())
	if s == nil {
		h.error(w, http.StatusInternalServerError, "Session unavailable")
		return
	}

	next := r.PostForm.Get("next")
	email := strings.TrimSpace(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")
	if email == "" || password == "" {
		h.renderLogin(w, r, http.StatusUnprocessableEntity, next, email, "Please enter your email and password")
		return
	}

	user, err := s.Login(r.Context(), backend.Credentials{Email: email, Password: password})
	if err != nil {
		h.logger.Warn("login failed", "email", email, "ip", middleware.ClientIP(r), "error", err)
		h.renderLogin(w, r, http.StatusUnauthorized, next, email, apiclient.Message(err, "Login failed"))
		return
	}

	h.logger.Info("user logged in", "email", user.Email)
	h.record(r, audit.ActionLogin, "user", user.Email, nil)
	h.notifier(r).Success("Logged in successfully")

	if next == "" || !middleware.SafeRedirect(next) {
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// SignupPage renders the registration form
func (h *Handlers) SignupPage(w http.ResponseWriter, r *http.Request) {
	if h.signedIn(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderSignup(w, r, http.StatusOK, "", "", "")
}

// Signup creates an account and signs it in
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderSignup(w, r, http.StatusBadRequest, "", "", "Invalid form data")
		return
	}

	s := session.FromContext(r.Context())
	if s == nil {
		h.error(w, http.StatusInternalServerError, "Session unavailable")
		return
	}

	req := backend.RegisterRequest{
		Name:     strings.TrimSpace(r.PostForm.Get("name")),
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
	}
	confirm := r.PostForm.Get("confirm")

	var problem string
	switch {
	case req.Name == "" || req.Email == "" || req.Password == "":
		problem = "Name, email and password are required"
	case len(req.Password) < minPasswordLength:
		problem = "Password must be at least 6 characters"
	case req.Password != confirm:
		problem = "Passwords do not match"
	}
	if problem != "" {
		h.renderSignup(w, r, http.StatusUnprocessableEntity, req.Name, req.Email, problem)
		return
	}

	user, err := s.Register(r.Context(), req)
	if err != nil {
		h.logger.Warn("signup failed", "email", req.Email, "error", err)
		h.renderSignup(w, r, http.StatusUnprocessableEntity, req.Name, req.Email, apiclient.Message(err, "Registration failed"))
		return
	}

	h.logger.Info("user registered", "email", user.Email)
	h.record(r, audit.ActionSignup, "user", user.Email, nil)
	h.notifier(r).Success("Account created")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout ends the session. Local state is cleared even when the backend call fails.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if s := session.FromContext(r.Context()); s != nil {
		h.record(r, audit.ActionLogout, "user", emailOf(s), nil)
		s.Logout(r.Context())
		h.notifier(r).Success("Logged out")
	}
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

func (h *Handlers) signedIn(r *http.Request) bool {
	s := session.FromContext(r.Context())
	return s != nil && s.State().Status == session.StatusAuthenticated
}

func (h *Handlers) renderLogin(w http.ResponseWriter, r *http.Request, status int, next, email, errMsg string) {
	data := h.page(r, "Login", "")
	data["Next"] = next
	data["Email"] = email
	data["Error"] = errMsg
	h.renderStatus(w, r, status, "login", data)
}

func (h *Handlers) renderSignup(w http.ResponseWriter, r *http.Request, status int, name, email, errMsg string) {
	data := h.page(r, "Sign up", "")
	data["Name"] = name
	data["Email"] = email
	data["Error"] = errMsg
	h.renderStatus(w, r, status, "signup", data)
}

func emailOf(s *session.Session) string {
	if u := s.User(); u != nil {
		return u.Email
	}
	return ""
}
