package soap

import (
	"strings"

	"github.com/juju/loggo/v2"
)

var logger = loggo.GetLogger("soda.soap")

// Call is the decoded request: the DCOP application, object and method to
// invoke plus the marshalled arguments.
type Call struct {
	Application string
	Object      string
	Method      string
	Params      []Param
	// Data is every Param's encoding concatenated in declaration order.
	Data []byte
}

// Signature renders the DCOP function signature, e.g. "setVolume(int, bool)".
func (c *Call) Signature() string {
	return c.Method + "(" + strings.Join(c.Tokens(), ", ") + ")"
}

// Tokens returns the signature type tokens in declaration order.
func (c *Call) Tokens() []string {
	tokens := make([]string, len(c.Params))
	for i, p := range c.Params {
		tokens[i] = p.Token
	}
	return tokens
}

// Option adjusts the policy of a Session.
type Option func(*Session)

// WithUnauthenticated lets envelopes that never present a valid
// dcop:Authorization header reach Body processing.
func WithUnauthenticated() Option {
	return func(s *Session) { s.allowUnauthenticated = true }
}

// WithStrictNumbers rejects int, decimal, float and double values that do
// not parse instead of encoding them as zero.
func WithStrictNumbers() Option {
	return func(s *Session) { s.strictNumbers = true }
}

// WithLogger replaces the package logger for one session.
func WithLogger(l loggo.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Session holds the state of validating one envelope. It is not safe for
// concurrent use and must not be reused; create one per envelope.
type Session struct {
	secret               []byte
	allowUnauthenticated bool
	strictNumbers        bool
	logger               loggo.Logger

	used       bool
	fault      *Fault
	namespace  string
	haveHeader bool
	haveBody   bool
	authorized bool
	call       Call
}

// NewSession prepares a session that authorizes against secret. The secret
// is only read.
func NewSession(secret []byte, opts ...Option) *Session {
	s := &Session{
		secret: secret,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate checks envelope and extracts the call it carries. On failure the
// error is always a *Fault and the returned Call is nil.
func (s *Session) Validate(envelope *Element) (*Call, error) {
	if s.used {
		return nil, newFault(Server, "Session already used")
	}
	s.used = true

	if envelope == nil {
		s.fail(newFault(Client, faultNotEnvelope))
	} else if f := s.parseEnvelope(envelope); f != nil {
		s.fail(f)
	}
	if s.fault != nil {
		return nil, s.fault
	}
	call := s.call
	return &call, nil
}

// Fault returns the fault recorded by Validate, or nil.
func (s *Session) Fault() *Fault {
	return s.fault
}

// Authorized reports whether a dcop:Authorization header matched the secret.
func (s *Session) Authorized() bool {
	return s.authorized
}

// fail records the first fault only; later calls are ignored.
func (s *Session) fail(f *Fault) {
	if s.fault != nil || f == nil {
		return
	}
	s.fault = f
	s.logger.Debugf("rejecting envelope: %v", f)
}

// Validate runs a fresh Session over envelope.
func Validate(envelope *Element, secret []byte, opts ...Option) (*Call, error) {
	return NewSession(secret, opts...).Validate(envelope)
}
