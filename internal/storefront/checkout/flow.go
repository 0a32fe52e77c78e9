// Package checkout drives an order from the filled-in form to a receipt:
// Editing, Validating, Processing, Completed.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Skotchmaster/pharmacy_shop/internal/apperr"
	"github.com/Skotchmaster/pharmacy_shop/internal/storefront/cart"
	"github.com/Skotchmaster/pharmacy_shop/internal/storefront/session"
	"github.com/Skotchmaster/pharmacy_shop/internal/validate"
	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
)

const DefaultDelay = 1500 * time.Millisecond

type State int

const (
	Editing State = iota
	Validating
	Processing
	Completed
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Validating:
		return "validating"
	case Processing:
		return "processing"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrEmptyCart  = apperr.New(apperr.ErrValidation, "Your cart is empty")
	ErrInProgress = errors.New("checkout: already processing")
)

type SessionGuard interface {
	Require(ctx context.Context) (*session.Session, error)
}

// Receipt lives only in memory; nothing about the order is persisted.
type Receipt struct {
	OrderID       string      `json:"orderId"`
	Items         []cart.Line `json:"items"`
	Totals        Totals      `json:"totals"`
	Address       string      `json:"address"`
	PaymentMethod string      `json:"paymentMethod"`
	Customer      string      `json:"customer,omitempty"`
	PlacedAt      time.Time   `json:"placedAt"`
}

type Flow struct {
	Cart      *cart.Cart
	Session   SessionGuard
	Validator *validate.Validator
	Delay     time.Duration
	Now       func() time.Time

	// OnState, if set, observes every transition.
	OnState func(State)

	mu    sync.Mutex
	state State
}

func NewFlow(c *cart.Cart, guard SessionGuard, delay time.Duration) *Flow {
	return &Flow{
		Cart:      c,
		Session:   guard,
		Validator: NewValidator(),
		Delay:     delay,
		Now:       time.Now,
	}
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
	if f.OnState != nil {
		f.OnState(s)
	}
}

func (f *Flow) begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Validating || f.state == Processing {
		return ErrInProgress
	}
	f.state = Validating
	return nil
}

func (f *Flow) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// Submit validates the form and, on success, simulates payment, clears the
// cart and returns the receipt. Any failure leaves the flow in Editing with
// the cart untouched.
func (f *Flow) Submit(ctx context.Context, form Form) (*Receipt, error) {
	l := logging.FromContext(ctx).With("svc", "checkout")

	if err := f.begin(); err != nil {
		return nil, err
	}
	if f.OnState != nil {
		f.OnState(Validating)
	}

	var customer string
	if f.Session != nil {
		s, err := f.Session.Require(ctx)
		if err != nil {
			l.Warn("checkout_rejected", "reason", "no session")
			f.setState(Editing)
			return nil, err
		}
		customer = s.User.Username
	}

	if f.Cart.IsEmpty() {
		f.setState(Editing)
		return nil, ErrEmptyCart
	}

	if err := Validate(f.Validator, form); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			l.Info("checkout_invalid", "fields", verr.Fields)
		}
		f.setState(Editing)
		return nil, err
	}

	items := f.Cart.Lines()
	totals := Quote(items)
	f.setState(Processing)

	timer := time.NewTimer(f.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		l.Warn("checkout_canceled", "error", ctx.Err())
		f.setState(Editing)
		return nil, fmt.Errorf("checkout: payment interrupted: %w", ctx.Err())
	case <-timer.C:
	}

	placed := f.now().UTC()
	receipt := &Receipt{
		OrderID:       fmt.Sprintf("ORD-%d", placed.UnixMilli()),
		Items:         items,
		Totals:        totals,
		Address:       form.ShippingAddress(),
		PaymentMethod: form.PaymentMethod,
		Customer:      customer,
		PlacedAt:      placed,
	}

	if err := f.Cart.Clear(ctx); err != nil {
		l.Error("checkout_clear_cart_failed", "order_id", receipt.OrderID, "error", err)
	}
	f.setState(Completed)
	l.Info("checkout_completed", "order_id", receipt.OrderID, "items", len(items), "total", totals.Total)
	return receipt, nil
}
