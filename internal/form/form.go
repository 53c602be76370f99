// Package form models the donation form as the donor edits it. State values are
// immutable: every edit or validation pass returns a new State, so an error map is
// never partially updated.
package form

import (
	"context"
	"errors"
	"strings"

	"github.com/groundsforsupport/donate/internal/donation"
)

const (
	MsgAmount    = "Please enter a valid amount greater than 0."
	MsgAmountMax = "Please enter an amount no greater than 999999."
	MsgEmail     = "Please enter a valid email address."
)

// MaxAmount is the largest whole amount the form accepts.
const MaxAmount = donation.MaxAmountMinorUnits / 100

// ErrInvalid is returned by Submit when the form did not pass validation.
var ErrInvalid = errors.New("form: invalid input")

// Payload is what a valid form sends onward.
type Payload struct {
	Amount int64
	Email  string
}

// Submitter receives a valid payload and returns the gateway client secret.
type Submitter interface {
	Submit(ctx context.Context, p Payload) (string, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, p Payload) (string, error)

// Submit implements Submitter.
func (f SubmitterFunc) Submit(ctx context.Context, p Payload) (string, error) {
	return f(ctx, p)
}

// State is a snapshot of the form.
type State struct {
	amount    int64
	hasAmount bool
	email     string
	errs      map[donation.Field]string
}

// New returns an empty form.
func New() State {
	return State{}
}

// Amount returns the parsed amount and whether one is present.
func (s State) Amount() (int64, bool) { return s.amount, s.hasAmount }

// Email returns the raw email text.
func (s State) Email() string { return s.email }

// Error returns the message for field, or "".
func (s State) Error(field donation.Field) string { return s.errs[field] }

// Errors returns a copy of the current error map.
func (s State) Errors() map[donation.Field]string {
	out := make(map[donation.Field]string, len(s.errs))
	for k, v := range s.errs {
		out[k] = v
	}
	return out
}

// Valid reports whether the last validation pass found no errors.
func (s State) Valid() bool { return len(s.errs) == 0 }

// SetAmount parses raw the way a number input reports it: the leading integer is
// kept and anything else collapses to no value. The amount error is cleared.
func (s State) SetAmount(raw string) State {
	next := s.without(donation.FieldAmount)
	next.amount, next.hasAmount = parseLeadingInt(raw)
	return next
}

// SetEmail stores raw verbatim and clears the email error.
func (s State) SetEmail(raw string) State {
	next := s.without(donation.FieldEmail)
	next.email = raw
	return next
}

// Validate checks every field and returns the resulting state together with the
// field that should receive focus. The amount field takes priority; focus is ""
// when the form is valid.
func (s State) Validate() (State, donation.Field) {
	errs := map[donation.Field]string{}
	switch {
	case !s.hasAmount || s.amount <= 0:
		errs[donation.FieldAmount] = MsgAmount
	case s.amount > MaxAmount:
		errs[donation.FieldAmount] = MsgAmountMax
	}
	if strings.TrimSpace(s.email) != "" && !donation.ValidEmail(s.email) {
		errs[donation.FieldEmail] = MsgEmail
	}

	next := s
	next.errs = errs

	var focus donation.Field
	switch {
	case errs[donation.FieldAmount] != "":
		focus = donation.FieldAmount
	case errs[donation.FieldEmail] != "":
		focus = donation.FieldEmail
	}
	return next, focus
}

// Submission is the outcome of Submit.
type Submission struct {
	State        State
	Focus        donation.Field
	ClientSecret string
}

// Submit validates the form and, only when valid, hands the payload to sub once.
// An invalid form returns ErrInvalid without contacting sub.
func (s State) Submit(ctx context.Context, sub Submitter) (Submission, error) {
	validated, focus := s.Validate()
	out := Submission{State: validated, Focus: focus}
	if !validated.Valid() {
		return out, ErrInvalid
	}
	secret, err := sub.Submit(ctx, Payload{Amount: validated.amount, Email: validated.email})
	if err != nil {
		return out, err
	}
	out.ClientSecret = secret
	return out, nil
}

func (s State) without(field donation.Field) State {
	next := s
	if _, ok := s.errs[field]; !ok {
		return next
	}
	next.errs = make(map[donation.Field]string, len(s.errs))
	for k, v := range s.errs {
		if k != field {
			next.errs[k] = v
		}
	}
	return next
}

// parseLeadingInt accepts optional leading whitespace, an optional sign and at
// least one digit. Trailing characters after the digits are ignored.
func parseLeadingInt(raw string) (int64, bool) {
	s := strings.TrimLeft(raw, " \t\n\r\f\v")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	var n int64
	digits := 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		d := int64(s[digits] - '0')
		if n > (1<<63-1-d)/10 {
			return 0, false
		}
		n = n*10 + d
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
