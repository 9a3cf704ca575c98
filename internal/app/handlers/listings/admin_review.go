package listings

import (
	"context"
	"time"

	"gramstay/internal/app/dto"
	"gramstay/internal/app/outbox"
	"gramstay/internal/app/queries"
	"gramstay/internal/app/uow"
	domainauth "gramstay/internal/domain/auth"
	domainlistings "gramstay/internal/domain/listings"
)

const (
	approveListingKey = "listings.approve"
	rejectListingKey  = "listings.reject"
	suspendListingKey = "listings.suspend"
	reviewQueueKey    = "listings.review_queue"
)

type ApproveListingCommand struct {
	Session   *domainauth.Session
	ListingID string
}

func (c ApproveListingCommand) Key() string { return approveListingKey }

type RejectListingCommand struct {
	Session   *domainauth.Session
	ListingID string
	Reason    string
}

func (c RejectListingCommand) Key() string { return rejectListingKey }

type SuspendListingCommand struct {
	Session   *domainauth.Session
	ListingID string
	Reason    string
}

func (c SuspendListingCommand) Key() string { return suspendListingKey }

// ReviewListingHandler runs the admin moderation actions. One handler for
// the three verbs keeps the shared load/save plumbing in one place.
type ReviewListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *ReviewListingHandler) HandleApprove(ctx context.Context, cmd ApproveListingCommand) (*dto.ListingView, error) {
	return h.review(ctx, cmd.Session, cmd.ListingID, func(l *domainlistings.Listing, now time.Time) error {
		return l.Approve(now)
	})
}

func (h *ReviewListingHandler) HandleReject(ctx context.Context, cmd RejectListingCommand) (*dto.ListingView, error) {
	return h.review(ctx, cmd.Session, cmd.ListingID, func(l *domainlistings.Listing, now time.Time) error {
		return l.Reject(cmd.Reason, now)
	})
}

func (h *ReviewListingHandler) HandleSuspend(ctx context.Context, cmd SuspendListingCommand) (*dto.ListingView, error) {
	return h.review(ctx, cmd.Session, cmd.ListingID, func(l *domainlistings.Listing, now time.Time) error {
		return l.Suspend(cmd.Reason, now)
	})
}

func (h *ReviewListingHandler) review(ctx context.Context, session *domainauth.Session, id string, apply func(*domainlistings.Listing, time.Time) error) (*dto.ListingView, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}

	unit, ctx, managed, err := beginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	committed := false
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(id))
	if err != nil {
		return nil, err
	}
	if err := apply(listing, nowOrDefault(h.Now)); err != nil {
		return nil, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := drainListing(ctx, h.Outbox, encoderOrDefault(h.Encoder), listing); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	view := dto.MapListingView(listing, nil)
	return &view, nil
}

type ReviewQueueQuery struct {
	Session *domainauth.Session
	Page    int
	Limit   int
}

func (q ReviewQueueQuery) Key() string { return reviewQueueKey }

// ReviewQueueHandler lists listings waiting for moderation, oldest first.
type ReviewQueueHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ReviewQueueHandler) Handle(ctx context.Context, q ReviewQueueQuery) (dto.ListingPage, error) {
	if err := requireAdmin(q.Session); err != nil {
		return dto.ListingPage{}, err
	}

	unit, ctx, managed, err := beginUnit(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return dto.ListingPage{}, err
	}
	if managed {
		defer func() { _ = unit.Rollback(ctx) }()
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	params := domainlistings.SearchParams{
		States: []domainlistings.ListingState{domainlistings.ListingPendingReview},
		Limit:  q.Limit,
	}.Normalized()
	params.Offset = (page - 1) * params.Limit

	result, err := unit.Listings().Search(ctx, params)
	if err != nil {
		return dto.ListingPage{}, err
	}
	return mapListingPage(result, page, params.Limit), nil
}

func mapListingPage(result domainlistings.SearchResult, page, limit int) dto.ListingPage {
	out := dto.ListingPage{
		Items:      make([]dto.ListingSummary, 0, len(result.Items)),
		Page:       page,
		Limit:      limit,
		TotalCount: result.Total,
	}
	if limit > 0 {
		out.TotalPages = (result.Total + limit - 1) / limit
	}
	for _, l := range result.Items {
		out.Items = append(out.Items, dto.MapListingSummary(l))
	}
	return out
}

var _ queries.Handler[ReviewQueueQuery, dto.ListingPage] = (*ReviewQueueHandler)(nil)
