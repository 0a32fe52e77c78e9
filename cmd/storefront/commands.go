package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Skotchmaster/pharmacy_shop/internal/apperr"
	"github.com/Skotchmaster/pharmacy_shop/internal/storefront/apiclient"
	"github.com/Skotchmaster/pharmacy_shop/internal/storefront/catalog"
	"github.com/Skotchmaster/pharmacy_shop/internal/storefront/checkout"
	"github.com/Skotchmaster/pharmacy_shop/internal/storefront/session"
	"github.com/Skotchmaster/pharmacy_shop/internal/transport"
	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
)

var errUsage = errors.New("invalid usage")

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return errUsage
	}

	cmds := map[string]func(context.Context, []string) error{
		"register":   a.register,
		"login":      a.login,
		"logout":     a.logout,
		"products":   a.products,
		"categories": a.categories,
		"add":        a.add,
		"update":     a.update,
		"remove":     a.remove,
		"cart":       a.showCart,
		"clear":      a.clear,
		"checkout":   a.checkout,
	}
	cmd, ok := cmds[args[0]]
	if !ok {
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
	return cmd(ctx, args[1:])
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	username := fs.String("username", "", "username")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password, at least 6 characters")
	role := fs.String("role", "", "user or admin")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resp, err := a.api.Register(ctx, transport.RegisterRequest{
		Username: *username, Email: *email, Password: *password, Role: *role,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (%s, role %s)\n", resp.Message, resp.User.Username, resp.User.Role)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resp, err := a.api.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	if err := a.sessions.Save(ctx, session.Session{Token: resp.Token, User: resp.User}); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s. Welcome, %s!\n", resp.Message, resp.User.Username)
	return nil
}

func (a *app) logout(ctx context.Context, _ []string) error {
	s, err := a.sessions.Load(ctx)
	if err != nil {
		return err
	}
	if s == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	if err := a.api.Logout(ctx, s.Token); err != nil && !apiclient.IsAuthError(err) {
		logging.FromContext(ctx).Warn("logout_request_failed", "error", err)
	}
	if err := a.sessions.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *app) products(ctx context.Context, args []string) error {
	fs := a.flags("products")
	search := fs.String("search", "", "match brand, generic name or type")
	category := fs.String("category", catalog.CategoryAll, "product type, or all")
	price := fs.String("price", string(catalog.PriceAll), "all, under50, 50to100 or over100")
	if err := fs.Parse(args); err != nil {
		return err
	}
	bucket, err := catalog.ParsePriceBucket(*price)
	if err != nil {
		return err
	}

	all, err := a.api.Products(ctx)
	if err != nil {
		return err
	}
	found := catalog.Filter{Search: *search, Category: *category, Price: bucket}.Apply(all)
	if len(found) == 0 {
		fmt.Fprintln(a.out, "No products match your filters")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBRAND\tGENERIC\tTYPE\tPRICE\tRX")
	for _, p := range found {
		rx := ""
		if p.RequiresPrescription {
			rx = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f\t%s\n", p.ID, p.Brand, p.Generic, p.Type, p.Price, rx)
	}
	return tw.Flush()
}

func (a *app) categories(ctx context.Context, _ []string) error {
	all, err := a.api.Products(ctx)
	if err != nil {
		return err
	}
	for _, c := range catalog.Categories(all) {
		fmt.Fprintln(a.out, c)
	}
	return nil
}

func (a *app) idFlags(name string, args []string, withQty bool) (id, qty int, err error) {
	fs := a.flags(name)
	fs.IntVar(&id, "id", 0, "product id")
	if withQty {
		fs.IntVar(&qty, "qty", 1, "quantity")
	}
	if err := fs.Parse(args); err != nil {
		return 0, 0, err
	}
	if id <= 0 {
		return 0, 0, apperr.New(apperr.ErrValidation, "Product id is required (-id)")
	}
	return id, qty, nil
}

func (a *app) add(ctx context.Context, args []string) error {
	id, qty, err := a.idFlags("add", args, true)
	if err != nil {
		return err
	}
	p, err := a.api.Product(ctx, id)
	if err != nil {
		return err
	}
	if err := a.cart.AddToCart(ctx, *p, qty); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s to cart (%d items)\n", p.Brand, a.cart.Count())
	return nil
}

func (a *app) update(ctx context.Context, args []string) error {
	id, qty, err := a.idFlags("update", args, true)
	if err != nil {
		return err
	}
	if err := a.cart.UpdateQuantity(ctx, id, qty); err != nil {
		return err
	}
	return a.showCart(ctx, nil)
}

func (a *app) remove(ctx context.Context, args []string) error {
	id, _, err := a.idFlags("remove", args, false)
	if err != nil {
		return err
	}
	if err := a.cart.RemoveFromCart(ctx, id); err != nil {
		return err
	}
	return a.showCart(ctx, nil)
}

func (a *app) clear(ctx context.Context, _ []string) error {
	if err := a.cart.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Cart cleared")
	return nil
}

func (a *app) showCart(_ context.Context, _ []string) error {
	if a.cart.IsEmpty() {
		fmt.Fprintln(a.out, "Your cart is empty")
		return nil
	}
	lines := a.cart.Lines()

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBRAND\tQTY\tPRICE\tSUBTOTAL")
	for _, l := range lines {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.2f\t%.2f\n", l.ID, l.Brand, l.Quantity, l.Price, l.Subtotal())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	printTotals(a.out, a.cart.Count(), checkout.Quote(lines))
	return nil
}

func printTotals(w io.Writer, count int, t checkout.Totals) {
	fmt.Fprintf(w, "Items:    %d\n", count)
	fmt.Fprintf(w, "Subtotal: %.2f\n", t.Subtotal)
	fmt.Fprintf(w, "Shipping: %.2f\n", t.Shipping)
	fmt.Fprintf(w, "Tax:      %.2f\n", t.Tax)
	fmt.Fprintf(w, "Total:    %.2f\n", t.Total)
}

func (a *app) checkout(ctx context.Context, args []string) error {
	var f checkout.Form
	fs := a.flags("checkout")
	fs.StringVar(&f.FirstName, "first", "", "first name")
	fs.StringVar(&f.LastName, "last", "", "last name")
	fs.StringVar(&f.Email, "email", "", "email for the receipt")
	fs.StringVar(&f.Address, "address", "", "street address")
	fs.StringVar(&f.City, "city", "", "city")
	fs.StringVar(&f.ZipCode, "zip", "", "ZIP code (12345 or 12345-6789)")
	fs.StringVar(&f.PaymentMethod, "payment", checkout.PaymentCredit, "credit or paypal")
	fs.StringVar(&f.CardNumber, "card", "", "16 digit card number")
	fs.StringVar(&f.ExpiryDate, "expiry", "", "card expiry, MM/YY")
	fs.StringVar(&f.CVV, "cvv", "", "card security code")
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Processing payment...")
	receipt, err := a.flow.Submit(ctx, f)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Order %s confirmed\n", receipt.OrderID)
	fmt.Fprintf(a.out, "Ship to: %s\n", receipt.Address)
	count := 0
	for _, l := range receipt.Items {
		fmt.Fprintf(a.out, "  %d x %s\n", l.Quantity, l.Brand)
		count += l.Quantity
	}
	printTotals(a.out, count, receipt.Totals)
	return nil
}
