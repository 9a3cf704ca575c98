package listings

import (
	"context"
	"errors"
	"time"

	"gramstay/internal/app/commands"
	"gramstay/internal/app/dto"
	"gramstay/internal/app/outbox"
	"gramstay/internal/app/uow"
	domainauth "gramstay/internal/domain/auth"
	domainlistings "gramstay/internal/domain/listings"
	"gramstay/internal/domain/shared/money"
	domainuser "gramstay/internal/domain/user"
)

var ErrPhotoURLRequired = errors.New("listings: photo url required")

const (
	createListingKey = "listings.create"
	updateListingKey = "listings.update"
	submitListingKey = "listings.submit"
	addPhotoKey      = "listings.add_photo"
)

type CreateListingCommand struct {
	CommandID    string
	Session      *domainauth.Session
	Title        string
	Description  string
	PropertyType string
	Location     domainlistings.Location
	Amenities    []string
	NightlyRate  money.Money
	MaxGuests    int
}

func (c CreateListingCommand) Key() string { return createListingKey }

// CreateListingHandler opens a new draft for the calling host. The draft is
// invisible to tourists until an admin approves it.
type CreateListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *CreateListingHandler) Handle(ctx context.Context, cmd CreateListingCommand) (*dto.ListingView, error) {
	if cmd.Session == nil || !cmd.Session.HasRole(domainuser.RoleHost) {
		return nil, ErrHostRoleRequired
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

	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:           domainlistings.ListingID(cmd.CommandID),
		Host:         domainlistings.HostID(cmd.Session.UserID),
		Title:        cmd.Title,
		Description:  cmd.Description,
		PropertyType: domainlistings.PropertyType(cmd.PropertyType),
		Location:     cmd.Location,
		Amenities:    cmd.Amenities,
		NightlyRate:  cmd.NightlyRate,
		MaxGuests:    cmd.MaxGuests,
		Now:          nowOrDefault(h.Now),
	})
	if err != nil {
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
	view := dto.MapListingView(listing, map[string]bool{})
	return &view, nil
}

type UpdateListingCommand struct {
	Session      *domainauth.Session
	ListingID    string
	Title        string
	Description  string
	PropertyType string
	Location     domainlistings.Location
	Amenities    []string
	NightlyRate  money.Money
	MaxGuests    int
	Photos       []string
}

func (c UpdateListingCommand) Key() string { return updateListingKey }

type UpdateListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *UpdateListingHandler) Handle(ctx context.Context, cmd UpdateListingCommand) (*dto.ListingView, error) {
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

	listing, err := ownListing(ctx, unit, cmd.Session, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	if err := listing.Update(domainlistings.UpdateParams{
		Title:        cmd.Title,
		Description:  cmd.Description,
		PropertyType: domainlistings.PropertyType(cmd.PropertyType),
		Location:     cmd.Location,
		Amenities:    cmd.Amenities,
		NightlyRate:  cmd.NightlyRate,
		MaxGuests:    cmd.MaxGuests,
		Photos:       cmd.Photos,
		Now:          nowOrDefault(h.Now),
	}); err != nil {
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

type SubmitListingCommand struct {
	Session   *domainauth.Session
	ListingID string
}

func (c SubmitListingCommand) Key() string { return submitListingKey }

type SubmitListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *SubmitListingHandler) Handle(ctx context.Context, cmd SubmitListingCommand) (*dto.ListingView, error) {
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

	listing, err := ownListing(ctx, unit, cmd.Session, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	if err := listing.SubmitForReview(nowOrDefault(h.Now)); err != nil {
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

type AddPhotoCommand struct {
	Session   *domainauth.Session
	ListingID string
	URL       string
}

func (c AddPhotoCommand) Key() string { return addPhotoKey }

// AddPhotoHandler attaches an already-uploaded photo URL to a listing. The
// upload itself goes through the media store, not through this handler.
type AddPhotoHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *AddPhotoHandler) Handle(ctx context.Context, cmd AddPhotoCommand) (*dto.ListingView, error) {
	if cmd.URL == "" {
		return nil, ErrPhotoURLRequired
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

	listing, err := ownListing(ctx, unit, cmd.Session, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	listing.AddPhoto(cmd.URL, nowOrDefault(h.Now))
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

var (
	_ commands.Handler[CreateListingCommand, *dto.ListingView] = (*CreateListingHandler)(nil)
	_ commands.Handler[UpdateListingCommand, *dto.ListingView] = (*UpdateListingHandler)(nil)
	_ commands.Handler[SubmitListingCommand, *dto.ListingView] = (*SubmitListingHandler)(nil)
	_ commands.Handler[AddPhotoCommand, *dto.ListingView]      = (*AddPhotoHandler)(nil)
)
