package metadata

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/pairroom/internal/common"
)

// Session is the signed-in account as recorded in the shared slot.
type Session struct {
	UserID string
	Token  string
}

func (s Session) Empty() bool { return s.UserID == "" }

// LoadSession reads the session keys in one statement, so a concurrent
// SaveSession or ClearSession is seen whole or not at all. A device that
// never signed in gets an empty Session and no error.
func LoadSession(ctx context.Context, r Repository) (Session, error) {
	kv, err := r.ListPrefix(ctx, common.MetaSessionPrefix)
	if err != nil {
		return Session{}, err
	}
	return Session{UserID: string(kv[common.MetaSessionUserID]), Token: string(kv[common.MetaSessionToken])}, nil
}

// SaveSession writes the user id last so that a reader seeing it also sees
// the token.
func SaveSession(ctx context.Context, r Repository, s Session) error {
	if err := r.Set(ctx, common.MetaSessionToken, []byte(s.Token)); err != nil {
		return err
	}
	return r.Set(ctx, common.MetaSessionUserID, []byte(s.UserID))
}

// ClearSession drops every session key and leaves device settings alone.
func ClearSession(ctx context.Context, r Repository) error {
	return r.DeletePrefix(ctx, common.MetaSessionPrefix)
}

// EnrichmentEnabled defaults to true when the key was never written.
func EnrichmentEnabled(ctx context.Context, r Repository) (bool, error) {
	v, err := r.Get(ctx, common.MetaEnrichmentEnabled)
	if err != nil || v == nil {
		return true, err
	}
	b, err := strconv.ParseBool(string(v))
	if err != nil {
		return true, fmt.Errorf("metadata[%s]: %w", common.MetaEnrichmentEnabled, err)
	}
	return b, nil
}

func SetEnrichmentEnabled(ctx context.Context, r Repository, enabled bool) error {
	return r.Set(ctx, common.MetaEnrichmentEnabled, []byte(strconv.FormatBool(enabled)))
}
