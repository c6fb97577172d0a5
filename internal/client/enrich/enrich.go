// Package enrich attaches cached sender data to an inbound push payload.
// It only reads the local cache and never exceeds its time budget; any
// failure yields the payload unchanged.
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/pairroom/internal/client/models"
	"github.com/dmitrijs2005/pairroom/internal/client/repositories/friends"
	"github.com/dmitrijs2005/pairroom/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pairroom/internal/common"
	"github.com/dmitrijs2005/pairroom/internal/logging"
)

const (
	DefaultBudget = 2 * time.Second

	// Placeholder is shown when neither the cache nor the payload names the
	// sender.
	Placeholder = "Someone"
)

// Payload is the push notification as delivered to the extension.
type Payload struct {
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name,omitempty"`
	Title      string `json:"title,omitempty"`
	Body       string `json:"body,omitempty"`
	RoomID     string `json:"room_id,omitempty"`
}

// Result is the payload plus whatever the cache could add. Avatar is
// encoded as base64 in JSON.
type Result struct {
	Payload
	DisplayName string `json:"display_name"`
	Avatar      []byte `json:"avatar,omitempty"`
	Enriched    bool   `json:"enriched"`
	Degraded    bool   `json:"degraded"`
}

type Enricher struct {
	friends friends.Repository
	meta    metadata.Repository
	budget  time.Duration
	logger  logging.Logger
}

// New returns an Enricher reading from the given repositories. A
// non-positive budget selects DefaultBudget.
func New(friendsRepo friends.Repository, meta metadata.Repository, budget time.Duration, logger logging.Logger) *Enricher {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Enricher{
		friends: friendsRepo,
		meta:    meta,
		budget:  budget,
		logger:  logger.With("module", "enrich"),
	}
}

type lookupResult struct {
	row *models.Friend
	err error
}

// Enrich never returns an error. A cache hit owned by the signed-in account
// fills DisplayName and Avatar; a miss keeps the payload and names the
// sender from the payload or Placeholder. A timeout or a cache failure does
// the same and sets Degraded.
func (e *Enricher) Enrich(ctx context.Context, p Payload) Result {
	res := fallback(p)

	ctx, cancel := context.WithTimeout(ctx, e.budget)
	defer cancel()

	// The lookup runs aside so that a driver ignoring ctx cannot hold the
	// caller past the budget.
	done := make(chan lookupResult, 1)
	go func() {
		row, err := e.lookup(ctx, p.SenderID)
		done <- lookupResult{row: row, err: err}
	}()

	select {
	case <-ctx.Done():
		res.Degraded = true
		e.logger.Warn(ctx, "enrichment abandoned", "sender", p.SenderID, "error", fmt.Errorf("%w: %v", common.ErrEnrichmentTimeout, ctx.Err()))
		return res
	case out := <-done:
		if out.err != nil {
			res.Degraded = true
			if errors.Is(out.err, context.DeadlineExceeded) {
				out.err = fmt.Errorf("%w: %v", common.ErrEnrichmentTimeout, out.err)
			}
			e.logger.Warn(ctx, "enrichment failed", "sender", p.SenderID, "error", out.err)
			return res
		}
		if out.row == nil {
			return res
		}
		res.DisplayName = out.row.DisplayName()
		res.Avatar = out.row.ProfileImageData
		res.Enriched = true
		return res
	}
}

// lookup returns the cached row of sender owned by the session account, or
// (nil, nil) when there is none or enrichment is switched off.
func (e *Enricher) lookup(ctx context.Context, sender string) (*models.Friend, error) {
	if sender == "" {
		return nil, nil
	}

	enabled, err := metadata.EnrichmentEnabled(ctx, e.meta)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, nil
	}

	s, err := metadata.LoadSession(ctx, e.meta)
	if err != nil {
		return nil, err
	}
	if s.Empty() {
		return nil, nil
	}

	row, err := e.friends.FetchOne(ctx, sender)
	if err != nil {
		return nil, fmt.Errorf("fetch sender: %w", err)
	}
	if row == nil || row.UserID != s.UserID {
		return nil, nil
	}
	return row, nil
}

func fallback(p Payload) Result {
	name := p.SenderName
	if name == "" {
		name = Placeholder
	}
	return Result{Payload: p, DisplayName: name}
}

// Process decodes one Payload from r and writes its Result to w. A nil
// Enricher stands for an unusable cache and yields a degraded fallback.
// Only a payload that cannot be decoded or written is an error.
func Process(ctx context.Context, r io.Reader, w io.Writer, e *Enricher) error {
	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	var res Result
	if e == nil {
		res = fallback(p)
		res.Degraded = true
	} else {
		res = e.Enrich(ctx, p)
	}
	return json.NewEncoder(w).Encode(res)
}
