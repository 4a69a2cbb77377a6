// Package apitest provides an in-process storefront backend for tests and
// local demos. It keeps all state in memory and supports fault injection per
// operation.
package apitest

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/craftbazaar/pkg/auth"
	"github.com/angelmondragon/craftbazaar/pkg/logger"
	"github.com/angelmondragon/craftbazaar/pkg/security"
	"github.com/angelmondragon/craftbazaar/pkg/types"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// SessionCookie carries the session token for cookie-only clients.
const SessionCookie = "cb_session"

type Options struct {
	Products []types.Product
	Token    auth.TokenConfig
	Logger   *logger.Logger
	// CookieOnly omits the token from sign-in responses and relies on the
	// session cookie alone.
	CookieOnly bool
}

type account struct {
	user         types.User
	passwordHash string
	admin        bool
}

type fault struct {
	status    int
	message   string
	remaining int
}

type gate struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

// Server is a fake storefront backend.
type Server struct {
	router chi.Router
	logg   *logger.Logger
	token  auth.TokenConfig
	cookie bool

	mu        sync.Mutex
	accounts  map[string]*account
	products  []types.Product
	carts     map[string][]types.CartLine
	wishlists map[string][]types.WishlistEntry
	calls     map[string]int
	faults    map[string]*fault
	gates     map[string]*gate
}

func New(opts Options) *Server {
	tokenCfg := opts.Token
	if tokenCfg.Secret == "" {
		tokenCfg.Secret = "apitest-secret"
	}
	if tokenCfg.Issuer == "" {
		tokenCfg.Issuer = "craftbazaar-apitest"
	}
	if tokenCfg.TTL <= 0 {
		tokenCfg.TTL = time.Hour
	}
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}

	s := &Server{
		logg:      logg,
		token:     tokenCfg,
		cookie:    opts.CookieOnly,
		accounts:  map[string]*account{},
		products:  append([]types.Product(nil), opts.Products...),
		carts:     map[string][]types.CartLine{},
		wishlists: map[string][]types.WishlistEntry{},
		calls:     map[string]int{},
		faults:    map[string]*fault{},
		gates:     map[string]*gate{},
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// AddUser registers an account directly, bypassing sign-up validation.
func (s *Server) AddUser(email, password, name string, admin bool) types.User {
	hash, err := security.HashPassword(password, security.DefaultHashParams())
	if err != nil {
		panic(err)
	}
	user := types.User{ID: uuid.NewString(), Email: normalizeEmail(email), Name: name}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[user.Email] = &account{user: user, passwordHash: hash, admin: admin}
	return user
}

// Fail makes the next times calls of op answer with status and message.
func (s *Server) Fail(op string, status int, message string, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = &fault{status: status, message: message, remaining: times}
}

// Hold parks every call of op until release is called. entered is closed
// once the first call arrives.
func (s *Server) Hold(op string) (entered <-chan struct{}, release func()) {
	g := &gate{entered: make(chan struct{}), release: make(chan struct{})}
	s.mu.Lock()
	s.gates[op] = g
	s.mu.Unlock()

	var once sync.Once
	return g.entered, func() {
		once.Do(func() {
			s.mu.Lock()
			if s.gates[op] == g {
				delete(s.gates, op)
			}
			s.mu.Unlock()
			close(g.release)
		})
	}
}

// Calls reports how many requests reached op.
func (s *Server) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *Server) Cart(userID string) []types.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.CloneCart(s.carts[userID])
}

func (s *Server) Wishlist(userID string) []types.WishlistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.CloneWishlist(s.wishlists[userID])
}

func (s *Server) SeedCart(userID string, lines []types.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[userID] = types.CloneCart(lines)
}

func (s *Server) SeedWishlist(userID string, entries []types.WishlistEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wishlists[userID] = types.CloneWishlist(entries)
}

// enter counts the call, applies any gate and returns a pending fault.
func (s *Server) enter(op string) *fault {
	s.mu.Lock()
	s.calls[op]++
	g := s.gates[op]
	var hit *fault
	if f, ok := s.faults[op]; ok && f.remaining > 0 {
		f.remaining--
		hit = &fault{status: f.status, message: f.message}
	}
	s.mu.Unlock()

	if g != nil {
		g.once.Do(func() { close(g.entered) })
		<-g.release
	}
	return hit
}

func (s *Server) product(id string) (types.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return types.Product{}, false
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
