package checkout

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Skotchmaster/pharmacy_shop/internal/apperr"
	"github.com/Skotchmaster/pharmacy_shop/internal/validate"
)

const (
	PaymentCredit = "credit"
	PaymentPayPal = "paypal"
)

var (
	cardRe   = regexp.MustCompile(`^\d{16}$`)
	expiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvRe    = regexp.MustCompile(`^\d{3,4}$`)
)

// Form is the shipping and payment form. Card fields are checked only for credit payments.
type Form struct {
	FirstName     string `json:"firstName"     validate:"notblank"`
	LastName      string `json:"lastName"      validate:"notblank"`
	Email         string `json:"email"         validate:"omitempty,email"`
	Address       string `json:"address"       validate:"notblank"`
	City          string `json:"city"          validate:"notblank"`
	ZipCode       string `json:"zipCode"       validate:"zipcode"`
	PaymentMethod string `json:"paymentMethod" validate:"oneof=credit paypal"`
	CardNumber    string `json:"cardNumber"`
	ExpiryDate    string `json:"expiryDate"`
	CVV           string `json:"cvv"`
}

func (f Form) ShippingAddress() string {
	return fmt.Sprintf("%s, %s, %s", f.Address, f.City, f.ZipCode)
}

func creditCardRules(sl validator.StructLevel) {
	f := sl.Current().Interface().(Form)
	if f.PaymentMethod != PaymentCredit {
		return
	}
	if !cardRe.MatchString(strings.Join(strings.Fields(f.CardNumber), "")) {
		sl.ReportError(f.CardNumber, "cardNumber", "CardNumber", "card", "")
	}
	if !expiryRe.MatchString(f.ExpiryDate) {
		sl.ReportError(f.ExpiryDate, "expiryDate", "ExpiryDate", "expiry", "")
	}
	if !cvvRe.MatchString(f.CVV) {
		sl.ReportError(f.CVV, "cvv", "CVV", "cvv", "")
	}
}

// NewValidator returns a validator that knows the credit card rules.
func NewValidator() *validate.Validator {
	v := validate.New()
	v.RegisterStructValidation(creditCardRules, Form{})
	return v
}

var fieldMessages = map[string]string{
	"zipCode":       "Invalid ZIP",
	"paymentMethod": "Invalid payment method",
	"email":         "Invalid email",
	"cardNumber":    "Invalid card",
	"expiryDate":    "MM/YY required",
	"cvv":           "Invalid CVV",
}

// ValidationError holds one message per failing form field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "checkout form invalid: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return apperr.ErrValidation
}

func fieldErrors(tags map[string]string) *ValidationError {
	out := make(map[string]string, len(tags))
	for field, tag := range tags {
		switch {
		case tag == "notblank" || tag == "required":
			out[field] = "Required"
		case fieldMessages[field] != "":
			out[field] = fieldMessages[field]
		default:
			out[field] = "Invalid"
		}
	}
	return &ValidationError{Fields: out}
}

// Validate checks the form and returns nil or a *ValidationError.
func Validate(v *validate.Validator, f Form) error {
	tags, err := v.Struct(f)
	if err != nil {
		return apperr.Wrap(apperr.ErrInternal, "validate checkout form", err)
	}
	if len(tags) == 0 {
		return nil
	}
	return fieldErrors(tags)
}
