package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/angelmondragon/craftbazaar/internal/catalog"
	"github.com/angelmondragon/craftbazaar/internal/clientstate"
	"github.com/angelmondragon/craftbazaar/pkg/enums"
	"github.com/angelmondragon/craftbazaar/pkg/logger"
	"github.com/angelmondragon/craftbazaar/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const prompt = "craftbazaar> "

type shellParams struct {
	Store       *clientstate.Store
	Catalog     catalog.Source
	Out         io.Writer
	Logger      *logger.Logger
	Gatherer    prometheus.Gatherer
	RemoteLimit int
	PageSize    int
	Quiet       bool
}

// shell is the line-oriented shopper front end.
type shell struct {
	store       *clientstate.Store
	catalog     catalog.Source
	out         io.Writer
	logg        *logger.Logger
	gatherer    prometheus.Gatherer
	remoteLimit int
	pageSize    int
	quiet       bool
	rupees      *message.Printer
	commands    map[string]command
}

type command struct {
	usage string
	run   func(ctx context.Context, args []string) error
}

// usageError is printed verbatim; everything else the store already reported.
type usageError string

func (e usageError) Error() string { return string(e) }

// reportedError marks errors the store has already shown to the shopper.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err: err}
}

var errQuit = errors.New("quit")

func newShell(params shellParams) *shell {
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	s := &shell{
		store:       params.Store,
		catalog:     params.Catalog,
		out:         params.Out,
		logg:        logg,
		gatherer:    params.Gatherer,
		remoteLimit: params.RemoteLimit,
		pageSize:    params.PageSize,
		quiet:       params.Quiet,
		rupees:      message.NewPrinter(language.MustParse("en-IN")),
	}
	s.commands = map[string]command{
		"products": {"products [--q term] [--filter f] [--sort s] [--page n]", s.products},
		"product":  {"product <id>", s.product},
		"add":      {"add <id> [qty]", s.add},
		"qty":      {"qty <id> <n>", s.qty},
		"rm":       {"rm <id>", s.remove},
		"clear":    {"clear", s.clear},
		"cart":     {"cart", s.cart},
		"wish":     {"wish <id>", s.wish},
		"unwish":   {"unwish <id>", s.unwish},
		"wishlist": {"wishlist", s.wishlist},
		"signin":   {"signin <email> <password>", s.signIn},
		"signup":   {"signup <email> <password> <name>", s.signUp},
		"signout":  {"signout", s.signOut},
		"admin":    {"admin <email> <password> | admin off", s.admin},
		"whoami":   {"whoami", s.whoami},
		"recent":   {"recent [--clear]", s.recent},
		"contact":  {"contact [--name n --email e --phone p --address a --city c --postal z]", s.contact},
		"stats":    {"stats", s.stats},
		"help":     {"help", s.help},
	}
	return s
}

// Run reads commands from in until EOF, quit or ctx is cancelled.
func (s *shell) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		s.prompt()
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if err := s.Exec(ctx, line); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				s.report(ctx, err)
			}
		}
	}
}

// Exec runs a single command line.
func (s *shell) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]
	if name == "quit" || name == "exit" {
		return errQuit
	}
	cmd, ok := s.commands[name]
	if !ok {
		return usageError(fmt.Sprintf("unknown command %q, try help", name))
	}
	return cmd.run(ctx, args)
}

func (s *shell) report(ctx context.Context, err error) {
	var usage usageError
	var seen reportedError
	switch {
	case errors.As(err, &usage):
		fmt.Fprintln(s.out, usage.Error())
	case errors.As(err, &seen):
		s.logg.Debug(s.logg.WithError(ctx, err), "command failed")
	default:
		fmt.Fprintf(s.out, "error: %v\n", err)
	}
}

func (s *shell) prompt() {
	if !s.quiet {
		fmt.Fprint(s.out, prompt)
	}
}

func (s *shell) products(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("products", pflag.ContinueOnError)
	fs.SetOutput(s.out)
	term := fs.String("q", "", "search term")
	filter := fs.String("filter", "all", "all|premium|new|sale|in-stock|<category>")
	sortKey := fs.String("sort", "featured", "featured|price-asc|price-desc|rating|newest|name")
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return usageError(s.commands["products"].usage)
	}
	query := *term
	if query == "" && fs.NArg() > 0 {
		query = strings.Join(fs.Args(), " ")
	}

	all, err := s.catalog.Products(ctx, types.ProductFilter{Limit: s.remoteLimit})
	if err != nil {
		return err
	}
	if strings.TrimSpace(query) != "" {
		_, _ = s.store.RecordSearch(ctx, query)
	}

	result := catalog.Query(all, types.QuerySpec{
		Term:   query,
		Filter: parseFilter(*filter),
		Sort:   parseSort(*sortKey),
	})
	if len(result) == 0 {
		fmt.Fprintln(s.out, "no products found")
		return nil
	}
	items, meta := catalog.Page(result, *page, s.pageSize)

	tw := tabwriter.NewWriter(s.out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tRATING\tNOTES")
	for _, p := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f (%d)\t%s\n", p.ID, p.Name, s.price(p), p.Rating, p.Reviews, s.badges(p))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "page %d of %d, %d products\n", meta.Page, meta.TotalPages, meta.Total)
	return nil
}

func (s *shell) product(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError(s.commands["product"].usage)
	}
	p, err := s.catalog.Product(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "%s (%s)\n", p.Name, p.Category)
	fmt.Fprintf(s.out, "  price: %s\n", s.price(p))
	fmt.Fprintf(s.out, "  rating: %.1f from %d reviews\n", p.Rating, p.Reviews)
	if notes := s.badges(p); notes != "" {
		fmt.Fprintf(s.out, "  %s\n", notes)
	}
	if p.Description != "" {
		fmt.Fprintf(s.out, "  %s\n", p.Description)
	}
	for _, feature := range p.Features {
		fmt.Fprintf(s.out, "  - %s\n", feature)
	}
	keys := make([]string, 0, len(p.Specifications))
	for k := range p.Specifications {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(s.out, "  %s: %s\n", k, p.Specifications[k])
	}

	all, err := s.catalog.Products(ctx, types.ProductFilter{Category: p.Category, Limit: s.remoteLimit})
	if err != nil {
		s.logg.Warn(s.logg.WithProductID(ctx, p.ID), "related products unavailable")
		return nil
	}
	related := catalog.Related(all, p, catalog.DefaultRelatedLimit)
	if len(related) > 0 {
		names := make([]string, 0, len(related))
		for _, r := range related {
			names = append(names, r.ID)
		}
		fmt.Fprintf(s.out, "  you may also like: %s\n", strings.Join(names, ", "))
	}
	return nil
}

func (s *shell) add(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usageError(s.commands["add"].usage)
	}
	qty := 1
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			return usageError("quantity must be a positive number")
		}
		qty = n
	}
	p, err := s.catalog.Product(ctx, args[0])
	if err != nil {
		return err
	}
	if !p.InStock {
		return usageError(fmt.Sprintf("%s is out of stock", p.Name))
	}
	return reported(s.store.AddToCart(ctx, types.NewCartLine(p, qty)))
}

func (s *shell) qty(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError(s.commands["qty"].usage)
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return usageError("quantity must be a number")
	}
	return reported(s.store.UpdateCartQuantity(ctx, args[0], n))
}

func (s *shell) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError(s.commands["rm"].usage)
	}
	return reported(s.store.RemoveFromCart(ctx, args[0]))
}

func (s *shell) clear(ctx context.Context, _ []string) error {
	return reported(s.store.ClearCart(ctx))
}

func (s *shell) cart(context.Context, []string) error {
	lines := s.store.Cart()
	if len(lines) == 0 {
		fmt.Fprintln(s.out, "your cart is empty")
		return nil
	}
	tw := tabwriter.NewWriter(s.out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tTOTAL")
	for _, line := range lines {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", line.ProductID, line.Name, line.Quantity, s.rupees.Sprintf("₹%d", line.LineTotal().IntPart()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%d items, subtotal %s\n", s.store.TotalCartItems(), s.rupees.Sprintf("₹%d", s.store.CartSubtotal().IntPart()))
	return nil
}

func (s *shell) wish(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError(s.commands["wish"].usage)
	}
	p, err := s.catalog.Product(ctx, args[0])
	if err != nil {
		return err
	}
	return reported(s.store.AddToWishlist(ctx, types.NewWishlistEntry(p)))
}

func (s *shell) unwish(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError(s.commands["unwish"].usage)
	}
	return reported(s.store.RemoveFromWishlist(ctx, args[0]))
}

func (s *shell) wishlist(context.Context, []string) error {
	entries := s.store.Wishlist()
	if len(entries) == 0 {
		fmt.Fprintln(s.out, "your wishlist is empty")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(s.out, "%s  %s  %s\n", e.ProductID, e.Name, s.rupees.Sprintf("₹%d", e.Price))
	}
	return nil
}

func (s *shell) signIn(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError(s.commands["signin"].usage)
	}
	return reported(s.store.SignIn(ctx, args[0], args[1]))
}

func (s *shell) signUp(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return usageError(s.commands["signup"].usage)
	}
	return reported(s.store.SignUp(ctx, args[0], args[1], strings.Join(args[2:], " ")))
}

func (s *shell) signOut(ctx context.Context, _ []string) error {
	s.store.SignOut(ctx)
	return nil
}

func (s *shell) admin(ctx context.Context, args []string) error {
	if len(args) == 1 && strings.EqualFold(args[0], "off") {
		return reported(s.store.AdminSignOut(ctx))
	}
	if len(args) != 2 {
		return usageError(s.commands["admin"].usage)
	}
	return reported(s.store.AdminSignIn(ctx, args[0], args[1]))
}

func (s *shell) whoami(ctx context.Context, _ []string) error {
	identity, ok := s.store.Identity()
	if !ok {
		fmt.Fprintln(s.out, "guest")
	} else {
		fmt.Fprintf(s.out, "%s <%s>\n", identity.Name, identity.Email)
		if identity.ExpiresAt != nil {
			fmt.Fprintf(s.out, "session expires %s\n", identity.ExpiresAt.Local().Format("2006-01-02 15:04"))
		}
	}
	if s.store.IsAdmin(ctx) {
		fmt.Fprintln(s.out, "admin mode on")
	}
	return nil
}

func (s *shell) recent(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("recent", pflag.ContinueOnError)
	fs.SetOutput(s.out)
	clearAll := fs.Bool("clear", false, "forget recent searches")
	if err := fs.Parse(args); err != nil {
		return usageError(s.commands["recent"].usage)
	}
	if *clearAll {
		return reported(s.store.ClearRecentSearches(ctx))
	}
	searches := s.store.RecentSearches(ctx)
	if len(searches) == 0 {
		fmt.Fprintln(s.out, "no recent searches")
		return nil
	}
	for i, term := range searches {
		fmt.Fprintf(s.out, "%d. %s\n", i+1, term)
	}
	return nil
}

func (s *shell) contact(ctx context.Context, args []string) error {
	if len(args) == 0 {
		info, ok := s.store.ContactInfo(ctx)
		if !ok {
			fmt.Fprintln(s.out, "no saved contact details")
			return nil
		}
		fmt.Fprintf(s.out, "%s <%s> %s\n", info.Name, info.Email, info.Phone)
		if info.Address != "" || info.City != "" {
			fmt.Fprintf(s.out, "%s, %s %s\n", info.Address, info.City, info.PostalCode)
		}
		return nil
	}

	fs := pflag.NewFlagSet("contact", pflag.ContinueOnError)
	fs.SetOutput(s.out)
	var info types.ContactInfo
	fs.StringVar(&info.Name, "name", "", "full name")
	fs.StringVar(&info.Email, "email", "", "email address")
	fs.StringVar(&info.Phone, "phone", "", "phone number")
	fs.StringVar(&info.Address, "address", "", "street address")
	fs.StringVar(&info.City, "city", "", "city")
	fs.StringVar(&info.PostalCode, "postal", "", "6 digit PIN code")
	if err := fs.Parse(args); err != nil {
		return usageError(s.commands["contact"].usage)
	}
	if err := s.store.SaveContactInfo(ctx, info); err != nil {
		return reported(err)
	}
	fmt.Fprintln(s.out, "contact details saved")
	return nil
}

func (s *shell) stats(context.Context, []string) error {
	if s.gatherer == nil {
		fmt.Fprintln(s.out, "metrics are disabled")
		return nil
	}
	families, err := s.gatherer.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "storefront_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			value := m.GetCounter().GetValue()
			if h := m.GetHistogram(); h != nil {
				value = float64(h.GetSampleCount())
			}
			fmt.Fprintf(s.out, "%s{%s} %g\n", mf.GetName(), strings.Join(labels, ","), value)
		}
	}
	return nil
}

func (s *shell) help(context.Context, []string) error {
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(s.out, "  %s\n", s.commands[name].usage)
	}
	fmt.Fprintln(s.out, "  quit")
	return nil
}

func (s *shell) price(p types.Product) string {
	out := s.rupees.Sprintf("₹%d", p.Price)
	if p.HasDiscount() {
		out += s.rupees.Sprintf(" (was ₹%d, %d%% off)", *p.OriginalPrice, p.DiscountPercent())
	}
	return out
}

func (s *shell) badges(p types.Product) string {
	var notes []string
	if p.IsPremium {
		notes = append(notes, "premium")
	}
	if p.IsNew {
		notes = append(notes, "new")
	}
	switch {
	case !p.InStock:
		notes = append(notes, "out of stock")
	case p.IsLowStock():
		notes = append(notes, fmt.Sprintf("only %d left", *p.StockCount))
	}
	if s.store.IsInWishlist(p.ID) {
		notes = append(notes, "saved")
	}
	return strings.Join(notes, ", ")
}

// parseFilter keeps unknown tokens so the query treats them as "all".
func parseFilter(raw string) enums.CatalogFilter {
	filter, err := enums.ParseCatalogFilter(raw)
	if err != nil {
		return enums.CatalogFilter(strings.ToLower(strings.TrimSpace(raw)))
	}
	return filter
}

func parseSort(raw string) enums.CatalogSort {
	key, err := enums.ParseCatalogSort(raw)
	if err != nil {
		return enums.CatalogSort(strings.ToLower(strings.TrimSpace(raw)))
	}
	return key
}
