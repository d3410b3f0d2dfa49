// Package mailbox verifies sales-team mailbox settings against the
// member's SMTP submission server and the sending domain's DMARC policy.
package mailbox

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/emersion/go-msgauth/dmarc"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"github.com/foxzi/leadboard/internal/metrics"
)

// DefaultPort is used when the server setting has no port
const DefaultPort = "587"

// Check statuses
const (
	StatusOK       = "ok"
	StatusWarning  = "warning"
	StatusNotFound = "not_found"
	StatusError    = "error"
)

// Result describes one SMTP login probe
type Result struct {
	Address       string
	TLS           bool
	Authenticated bool
	Status        string
	Message       string
}

// DMARCResult describes the DMARC policy of a sending domain
type DMARCResult struct {
	Domain  string
	Policy  string
	Status  string
	Message string
}

// Checker probes mailboxes
type Checker struct {
	helloName string
	timeout   time.Duration
	tlsConfig *tls.Config
	lookupTXT func(domain string) ([]string, error)
	logger    *slog.Logger
}

// Option configures a Checker
type Option func(*Checker)

// WithTLSConfig overrides the STARTTLS configuration. ServerName is filled per probe when empty.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *Checker) { c.tlsConfig = cfg }
}

// WithTXTLookup replaces the DNS TXT resolver used for DMARC lookups
func WithTXTLookup(fn func(domain string) ([]string, error)) Option {
	return func(c *Checker) { c.lookupTXT = fn }
}

// NewChecker creates a Checker that greets servers as helloName
func NewChecker(helloName string, timeout time.Duration, logger *slog.Logger, opts ...Option) *Checker {
	c := &Checker{
		helloName: helloName,
		timeout:   timeout,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Probe connects to server, upgrades with STARTTLS when offered and
// authenticates with PLAIN. A failed login is reported in the result, not as an error;
// err is returned only when the server cannot be reached or spoken to.
func (c *Checker) Probe(ctx context.Context, server, username, password string) (*Result, error) {
	addr, host, err := normalizeAddr(server)
	if err != nil {
		metrics.IncMailboxCheck(StatusError)
		return nil, err
	}

	res, err := c.probe(ctx, addr, host, username, password)
	if err != nil {
		metrics.IncMailboxCheck(StatusError)
		c.logger.Warn("mailbox probe failed", "server", addr, "error", err)
		return nil, err
	}

	metrics.IncMailboxCheck(res.Status)
	c.logger.Info("mailbox probe finished",
		"server", addr,
		"status", res.Status,
		"tls", res.TLS,
	)
	return res, nil
}

func (c *Checker) probe(ctx context.Context, addr, host, username, password string) (*Result, error) {
	res := &Result{Address: addr}

	client, err := c.open(ctx, addr)
	if err != nil {
		return nil, err
	}
	if err := client.Hello(c.helloName); err != nil {
		client.Close()
		return nil, fmt.Errorf("EHLO: %w", err)
	}

	// STARTTLS needs a fresh connection: go-smtp only upgrades while
	// setting up a client.
	if ok, _ := client.Extension("STARTTLS"); ok {
		client.Quit()
		client.Close()

		client, err = c.openStartTLS(ctx, addr, host)
		if err != nil {
			return nil, err
		}
		if err := client.Hello(c.helloName); err != nil {
			client.Close()
			return nil, fmt.Errorf("EHLO after STARTTLS: %w", err)
		}
		_, res.TLS = client.TLSConnectionState()
	}
	defer client.Close()

	if ok, _ := client.Extension("AUTH"); !ok {
		res.Status = StatusWarning
		res.Message = "Server does not offer authentication"
		client.Quit()
		return res, nil
	}

	if err := client.Auth(sasl.NewPlainClient("", username, password)); err != nil {
		var smtpErr *smtp.SMTPError
		if errors.As(err, &smtpErr) {
			res.Status = StatusError
			res.Message = fmt.Sprintf("Login rejected: %s", smtpErr.Message)
			return res, nil
		}
		return nil, fmt.Errorf("AUTH: %w", err)
	}

	res.Authenticated = true
	res.Status = StatusOK
	res.Message = "Login succeeded"
	if !res.TLS {
		res.Status = StatusWarning
		res.Message = "Login succeeded without TLS"
	}
	client.Quit()
	return res, nil
}

func (c *Checker) dial(ctx context.Context, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connection failed to %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	} else {
		conn.SetDeadline(time.Now().Add(c.timeout))
	}
	return conn, nil
}

func (c *Checker) open(ctx context.Context, addr string) (*smtp.Client, error) {
	conn, err := c.dial(ctx, addr)
	if err != nil {
		return nil, err
	}
	return smtp.NewClient(conn), nil
}

func (c *Checker) openStartTLS(ctx context.Context, addr, host string) (*smtp.Client, error) {
	conn, err := c.dial(ctx, addr)
	if err != nil {
		return nil, err
	}
	client, err := smtp.NewClientStartTLS(conn, c.tlsFor(host))
	if err != nil {
		return nil, fmt.Errorf("STARTTLS: %w", err)
	}
	return client, nil
}

func (c *Checker) tlsFor(host string) *tls.Config {
	if c.tlsConfig == nil {
		return &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
	}
	cfg := c.tlsConfig.Clone()
	if cfg.ServerName == "" {
		cfg.ServerName = host
	}
	return cfg
}

// normalizeAddr returns host:port and the bare host
func normalizeAddr(server string) (string, string, error) {
	server = strings.TrimSpace(server)
	if server == "" {
		return "", "", errors.New("mailbox server is not set")
	}
	host, port, err := net.SplitHostPort(server)
	if err != nil {
		host, port = server, DefaultPort
	}
	if host == "" {
		return "", "", fmt.Errorf("invalid mailbox server %q", server)
	}
	return net.JoinHostPort(host, port), host, nil
}

// DMARC looks up the DMARC policy of the domain of email
func (c *Checker) DMARC(email string) DMARCResult {
	domain := email
	if i := strings.LastIndex(email, "@"); i >= 0 {
		domain = email[i+1:]
	}
	domain = strings.ToLower(strings.TrimSpace(domain))

	result := DMARCResult{Domain: domain}
	if domain == "" {
		result.Status = StatusError
		result.Message = "No domain to check"
		return result
	}

	var opts *dmarc.LookupOptions
	if c.lookupTXT != nil {
		opts = &dmarc.LookupOptions{LookupTXT: c.lookupTXT}
	}

	rec, err := dmarc.LookupWithOptions(domain, opts)
	switch {
	case errors.Is(err, dmarc.ErrNoPolicy):
		result.Status = StatusNotFound
		result.Message = "No DMARC record found (recommended to add)"
		return result
	case err != nil:
		result.Status = StatusError
		result.Message = fmt.Sprintf("Lookup failed: %v", err)
		return result
	}

	result.Policy = string(rec.Policy)
	switch rec.Policy {
	case dmarc.PolicyReject:
		result.Status = StatusOK
		result.Message = "DMARC configured with reject policy"
	case dmarc.PolicyQuarantine:
		result.Status = StatusOK
		result.Message = "DMARC configured with quarantine policy"
	default:
		result.Status = StatusWarning
		result.Message = "DMARC configured with none policy (monitoring only)"
	}
	return result
}
