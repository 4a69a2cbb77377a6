package clientstate

import (
	"context"
	"strings"

	pkgerrors "github.com/angelmondragon/craftbazaar/pkg/errors"
	"github.com/angelmondragon/craftbazaar/pkg/types"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RecordSearch remembers a search term locally and returns the updated history.
func (s *Store) RecordSearch(ctx context.Context, term string) ([]string, error) {
	if strings.TrimSpace(term) == "" {
		return s.local.RecentSearches(ctx), nil
	}
	searches, err := s.local.RecordSearch(ctx, term)
	if err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "failed to save recent search")
		return searches, err
	}
	return searches, nil
}

// RecentSearches lists remembered search terms, newest first.
func (s *Store) RecentSearches(ctx context.Context) []string {
	return s.local.RecentSearches(ctx)
}

func (s *Store) ClearRecentSearches(ctx context.Context) error {
	if err := s.local.ClearRecentSearches(ctx); err != nil {
		return s.fail(ctx, "clear recent searches", err)
	}
	return nil
}

// SaveContactInfo validates and caches checkout contact details.
func (s *Store) SaveContactInfo(ctx context.Context, info types.ContactInfo) error {
	info.Name = strings.TrimSpace(info.Name)
	info.Email = strings.TrimSpace(info.Email)
	info.Phone = strings.TrimSpace(info.Phone)
	info.PostalCode = strings.TrimSpace(info.PostalCode)

	if err := validate.Struct(info); err != nil {
		return s.fail(ctx, "save contact details", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid contact details"))
	}
	if err := s.local.SaveContactInfo(ctx, info); err != nil {
		return s.fail(ctx, "save contact details", err)
	}
	return nil
}

func (s *Store) ContactInfo(ctx context.Context) (types.ContactInfo, bool) {
	return s.local.ContactInfo(ctx)
}
