package apitest

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/craftbazaar/pkg/auth"
	"github.com/angelmondragon/craftbazaar/pkg/enums"
	pkgerrors "github.com/angelmondragon/craftbazaar/pkg/errors"
	"github.com/angelmondragon/craftbazaar/pkg/security"
	"github.com/angelmondragon/craftbazaar/pkg/storefrontapi"
	"github.com/angelmondragon/craftbazaar/pkg/types"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.recoverer)

	r.Route("/auth", func(r chi.Router) {
		r.With(s.operation(storefrontapi.OpSignIn)).Post("/signin", s.handleSignIn(false))
		r.With(s.operation(storefrontapi.OpAdminSignIn)).Post("/admin/signin", s.handleSignIn(true))
		r.With(s.operation(storefrontapi.OpSignUp)).Post("/signup", s.handleSignUp)
	})

	r.With(s.operation(storefrontapi.OpGetProducts)).Get("/products", s.handleGetProducts)
	r.With(s.operation(storefrontapi.OpGetProduct)).Get("/products/{productId}", s.handleGetProduct)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)

		r.With(s.operation(storefrontapi.OpGetCart)).Get("/cart", s.handleGetCart)
		r.With(s.operation(storefrontapi.OpAddToCart)).Post("/cart", s.handleAddToCart)
		r.With(s.operation(storefrontapi.OpClearCart)).Delete("/cart", s.handleClearCart)
		r.With(s.operation(storefrontapi.OpUpdateCartItem)).Put("/cart/{productId}", s.handleUpdateCartItem)

		r.With(s.operation(storefrontapi.OpGetWishlist)).Get("/wishlist", s.handleGetWishlist)
		r.With(s.operation(storefrontapi.OpAddToWishlist)).Post("/wishlist", s.handleAddToWishlist)
		r.With(s.operation(storefrontapi.OpRemoveFromWishlist)).Delete("/wishlist/{productId}", s.handleRemoveFromWishlist)
	})

	return r
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type signUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required,max=120"`
}

type cartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1,lte=99"`
}

type cartQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0,lte=99"`
}

type wishlistItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

func (s *Server) handleSignIn(admin bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signInRequest
		if err := decodeJSONBody(r, &req); err != nil {
			writeError(r.Context(), s.logg, w, err)
			return
		}

		s.mu.Lock()
		acct, ok := s.accounts[normalizeEmail(req.Email)]
		s.mu.Unlock()
		if !ok {
			writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid email or password"))
			return
		}
		match, err := security.VerifyPassword(req.Password, acct.passwordHash)
		if err != nil || !match {
			writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid email or password"))
			return
		}
		if admin && !acct.admin {
			writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "Admin access required"))
			return
		}

		token, err := auth.MintSessionToken(s.token, time.Now(), auth.SessionPayload{
			UserID: acct.user.ID,
			Email:  acct.user.Email,
			Name:   acct.user.Name,
			Admin:  acct.admin,
		})
		if err != nil {
			writeError(r.Context(), s.logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session token"))
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			Expires:  time.Now().Add(s.token.TTL),
		})

		payload := types.SignInPayload{User: acct.user}
		if !s.cookie {
			payload.Token = token
		}
		writeSuccess(w, http.StatusOK, payload)
	}
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	if err := security.CheckPasswordStrength(req.Password); err != nil {
		writeError(r.Context(), s.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error()))
		return
	}

	hash, err := security.HashPassword(req.Password, security.DefaultHashParams())
	if err != nil {
		writeError(r.Context(), s.logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password"))
		return
	}

	email := normalizeEmail(req.Email)
	s.mu.Lock()
	if _, exists := s.accounts[email]; exists {
		s.mu.Unlock()
		writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeConflict, "An account with this email already exists"))
		return
	}
	user := types.User{ID: uuid.NewString(), Email: email, Name: strings.TrimSpace(req.Name)}
	s.accounts[email] = &account{user: user, passwordHash: hash}
	s.mu.Unlock()

	writeSuccess(w, http.StatusCreated, map[string]any{"user": user})
}

func (s *Server) handleGetProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var category enums.ProductCategory
	if raw := query.Get("category"); raw != "" {
		parsed, err := enums.ParseProductCategory(raw)
		if err != nil {
			writeError(r.Context(), s.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown category"))
			return
		}
		category = parsed
	}
	limit := 0
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	s.mu.Lock()
	out := make([]types.Product, 0, len(s.products))
	for _, p := range s.products {
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	s.mu.Unlock()

	writeSuccess(w, http.StatusOK, types.ProductsPayload{Products: out})
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "productId"))
	s.mu.Lock()
	p, ok := s.product(id)
	s.mu.Unlock()
	if !ok {
		writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found"))
		return
	}
	writeSuccess(w, http.StatusOK, types.ProductPayload{Product: p})
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	userID := sessionFrom(r.Context()).Subject
	var payload types.CartPayload
	payload.Cart.Items = s.Cart(userID)
	writeSuccess(w, http.StatusOK, payload)
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	userID := sessionFrom(r.Context()).Subject

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.product(req.ProductID)
	if !ok {
		writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found"))
		return
	}
	if !p.InStock {
		writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeConflict, "Product is out of stock"))
		return
	}

	lines := s.carts[userID]
	for i := range lines {
		if lines[i].ProductID == p.ID {
			lines[i].Quantity += req.Quantity
			writeSuccess(w, http.StatusOK, nil)
			return
		}
	}
	s.carts[userID] = append(lines, types.NewCartLine(p, req.Quantity))
	writeSuccess(w, http.StatusOK, nil)
}

func (s *Server) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartQuantityRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	productID := strings.TrimSpace(chi.URLParam(r, "productId"))
	userID := sessionFrom(r.Context()).Subject

	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[userID]
	for i := range lines {
		if lines[i].ProductID != productID {
			continue
		}
		if req.Quantity == 0 {
			s.carts[userID] = append(lines[:i:i], lines[i+1:]...)
		} else {
			lines[i].Quantity = req.Quantity
		}
		writeSuccess(w, http.StatusOK, nil)
		return
	}
	writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "Item not in cart"))
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	userID := sessionFrom(r.Context()).Subject
	s.mu.Lock()
	delete(s.carts, userID)
	s.mu.Unlock()
	writeSuccess(w, http.StatusOK, nil)
}

func (s *Server) handleGetWishlist(w http.ResponseWriter, r *http.Request) {
	userID := sessionFrom(r.Context()).Subject
	var payload types.WishlistPayload
	payload.Wishlist.Items = s.Wishlist(userID)
	writeSuccess(w, http.StatusOK, payload)
}

func (s *Server) handleAddToWishlist(w http.ResponseWriter, r *http.Request) {
	var req wishlistItemRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	userID := sessionFrom(r.Context()).Subject

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.product(req.ProductID)
	if !ok {
		writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found"))
		return
	}
	for _, entry := range s.wishlists[userID] {
		if entry.ProductID == p.ID {
			writeSuccess(w, http.StatusOK, nil)
			return
		}
	}
	s.wishlists[userID] = append(s.wishlists[userID], types.NewWishlistEntry(p))
	writeSuccess(w, http.StatusOK, nil)
}

func (s *Server) handleRemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	productID := strings.TrimSpace(chi.URLParam(r, "productId"))
	userID := sessionFrom(r.Context()).Subject

	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.wishlists[userID]
	kept := entries[:0:0]
	for _, entry := range entries {
		if entry.ProductID != productID {
			kept = append(kept, entry)
		}
	}
	s.wishlists[userID] = kept
	writeSuccess(w, http.StatusOK, nil)
}
