// Package donation holds the acceptance rules for a donation: a positive amount and
// an optional, syntactically valid email address.
package donation

import (
	"errors"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Field identifies an input field that can carry validation errors.
type Field string

const (
	FieldAmount Field = "amount"
	FieldEmail  Field = "email"
)

const (
	MsgInvalidAmount  = "Amount must be greater than zero"
	MsgAmountTooLarge = "Amount must not exceed 999999.99"
	MsgInvalidEmail   = "Email is not valid"
)

// MaxAmountMinorUnits is the largest donation accepted, in cents.
const MaxAmountMinorUnits int64 = 99_999_999

const (
	// maxIntegerDigits is the digit count of the integer part of the maximum amount.
	maxIntegerDigits = 6
	// maxScale bounds the number of fractional digits an amount may carry.
	maxScale = 32
)

// ErrAmountOutOfRange is returned by MinorUnits for amounts that fail ValidAmount.
var ErrAmountOutOfRange = errors.New("donation: amount out of range")

var validate = validator.New()

var (
	hundred   = decimal.NewFromInt(100)
	oneCent   = decimal.New(1, -2)
	maxAmount = decimal.New(MaxAmountMinorUnits, -2)
)

// Input is a donation as received from a client.
type Input struct {
	Amount decimal.Decimal `json:"amount"`
	Email  *string         `json:"email"`
}

// Errors maps a field to its messages. An empty map means the input is valid.
type Errors map[Field][]string

// Add appends a message for the field.
func (e Errors) Add(field Field, msg string) {
	e[field] = append(e[field], msg)
}

// Has reports whether the field has at least one message.
func (e Errors) Has(field Field) bool {
	return len(e[field]) > 0
}

// ValidAmount reports whether amount is at least one cent and no more than the
// maximum donation.
func ValidAmount(amount decimal.Decimal) bool {
	return amountMessage(amount) == ""
}

// amountMessage returns the rule an amount breaks, or "". The exponent is checked
// before any comparison: comparing rescales to the smaller exponent, which for
// inputs such as 1e30000000 would allocate an enormous integer.
func amountMessage(amount decimal.Decimal) string {
	if !amount.IsPositive() {
		return MsgInvalidAmount
	}
	exp := int64(amount.Exponent())
	if exp > 0 && int64(amount.NumDigits())+exp > maxIntegerDigits {
		return MsgAmountTooLarge
	}
	if exp < -maxScale {
		return MsgInvalidAmount
	}
	if amount.LessThan(oneCent) {
		return MsgInvalidAmount
	}
	if amount.GreaterThan(maxAmount) {
		return MsgAmountTooLarge
	}
	return ""
}

// ValidEmail reports whether email is acceptable. Blank values are always accepted
// because the field is optional.
func ValidEmail(email string) bool {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return true
	}
	return validate.Var(trimmed, "email") == nil
}

// Validate runs every rule and reports all failures together.
func (in Input) Validate() Errors {
	errs := Errors{}
	if msg := amountMessage(in.Amount); msg != "" {
		errs.Add(FieldAmount, msg)
	}
	if in.Email != nil && !ValidEmail(*in.Email) {
		errs.Add(FieldEmail, MsgInvalidEmail)
	}
	return errs
}

// MinorUnits converts the amount to an integer count of cents, truncating any
// fraction of a cent. Amounts that fail ValidAmount return ErrAmountOutOfRange.
func (in Input) MinorUnits() (int64, error) {
	if !ValidAmount(in.Amount) {
		return 0, ErrAmountOutOfRange
	}
	return in.Amount.Mul(hundred).IntPart(), nil
}

// ReceiptEmail returns the trimmed email, or "" when none was given.
func (in Input) ReceiptEmail() string {
	if in.Email == nil {
		return ""
	}
	return strings.TrimSpace(*in.Email)
}
