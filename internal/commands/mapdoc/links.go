package mapdoccmd

import (
	"context"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-mapsync/internal/commands"
	"github.com/goliatone/go-mapsync/internal/mapdoc"
	"github.com/goliatone/go-mapsync/pkg/interfaces"
	"github.com/google/uuid"
)

const (
	linkProductsMessageType     = "mapsync.links.add"
	unlinkProductsMessageType   = "mapsync.links.remove"
	syncProductLinksMessageType = "mapsync.links.sync"
)

// LinkProductsCommand attaches products to a saved element.
type LinkProductsCommand struct {
	StoreID    uuid.UUID `json:"store_id"`
	Ref        string    `json:"ref"`
	ProductIDs []int64   `json:"product_ids"`
}

// Type implements command.Message.
func (LinkProductsCommand) Type() string { return linkProductsMessageType }

// Validate checks the message before it reaches the handler.
func (m LinkProductsCommand) Validate() error {
	return validateLinkMessage("mapsync.links.add", m.StoreID, m.Ref, m.ProductIDs, true)
}

// LinkProductsHandler runs the idempotent link operation through the document service.
type LinkProductsHandler struct {
	inner *commands.Handler[LinkProductsCommand]
}

// NewLinkProductsHandler constructs a handler wired to the document service.
func NewLinkProductsHandler(service mapdoc.Service, logger interfaces.Logger, opts ...commands.HandlerOption[LinkProductsCommand]) *LinkProductsHandler {
	exec := func(ctx context.Context, msg LinkProductsCommand) error {
		_, err := service.LinkProducts(ctx, mapdoc.LinkRequest{
			StoreID:    msg.StoreID,
			Ref:        msg.Ref,
			ProductIDs: msg.ProductIDs,
		})
		return translateUnresolved(err, "element has no saved row yet; save the map before linking products")
	}

	handlerOpts := []commands.HandlerOption[LinkProductsCommand]{
		commands.WithLogger[LinkProductsCommand](logger),
		commands.WithOperation[LinkProductsCommand]("links.add"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &LinkProductsHandler{
		inner: commands.NewHandler[LinkProductsCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[LinkProductsCommand].Execute.
func (h *LinkProductsHandler) Execute(ctx context.Context, msg LinkProductsCommand) error {
	return h.inner.Execute(ctx, msg)
}

// UnlinkProductsCommand detaches products from a saved element.
type UnlinkProductsCommand struct {
	StoreID    uuid.UUID `json:"store_id"`
	Ref        string    `json:"ref"`
	ProductIDs []int64   `json:"product_ids"`
}

// Type implements command.Message.
func (UnlinkProductsCommand) Type() string { return unlinkProductsMessageType }

// Validate checks the message before it reaches the handler.
func (m UnlinkProductsCommand) Validate() error {
	return validateLinkMessage("mapsync.links.remove", m.StoreID, m.Ref, m.ProductIDs, true)
}

// UnlinkProductsHandler runs the unlink operation through the document service.
type UnlinkProductsHandler struct {
	inner *commands.Handler[UnlinkProductsCommand]
}

// NewUnlinkProductsHandler constructs a handler wired to the document service.
func NewUnlinkProductsHandler(service mapdoc.Service, logger interfaces.Logger, opts ...commands.HandlerOption[UnlinkProductsCommand]) *UnlinkProductsHandler {
	exec := func(ctx context.Context, msg UnlinkProductsCommand) error {
		_, err := service.UnlinkProducts(ctx, mapdoc.LinkRequest{
			StoreID:    msg.StoreID,
			Ref:        msg.Ref,
			ProductIDs: msg.ProductIDs,
		})
		return translateUnresolved(err, "element has no saved row yet; save the map before unlinking products")
	}

	handlerOpts := []commands.HandlerOption[UnlinkProductsCommand]{
		commands.WithLogger[UnlinkProductsCommand](logger),
		commands.WithOperation[UnlinkProductsCommand]("links.remove"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &UnlinkProductsHandler{
		inner: commands.NewHandler[UnlinkProductsCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[UnlinkProductsCommand].Execute.
func (h *UnlinkProductsHandler) Execute(ctx context.Context, msg UnlinkProductsCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SyncProductLinksCommand replaces an element's link set wholesale. An empty
// ProductIDs list clears every link.
type SyncProductLinksCommand struct {
	StoreID    uuid.UUID `json:"store_id"`
	Ref        string    `json:"ref"`
	ProductIDs []int64   `json:"product_ids"`
}

// Type implements command.Message.
func (SyncProductLinksCommand) Type() string { return syncProductLinksMessageType }

// Validate checks the message before it reaches the handler.
func (m SyncProductLinksCommand) Validate() error {
	return validateLinkMessage("mapsync.links.sync", m.StoreID, m.Ref, m.ProductIDs, false)
}

// SyncProductLinksHandler runs the replace-links operation through the document service.
type SyncProductLinksHandler struct {
	inner *commands.Handler[SyncProductLinksCommand]
}

// NewSyncProductLinksHandler constructs a handler wired to the document service.
func NewSyncProductLinksHandler(service mapdoc.Service, logger interfaces.Logger, opts ...commands.HandlerOption[SyncProductLinksCommand]) *SyncProductLinksHandler {
	exec := func(ctx context.Context, msg SyncProductLinksCommand) error {
		_, err := service.SyncProductLinks(ctx, mapdoc.LinkRequest{
			StoreID:    msg.StoreID,
			Ref:        msg.Ref,
			ProductIDs: msg.ProductIDs,
		})
		return translateUnresolved(err, "element has no saved row yet; save the map before syncing products")
	}

	handlerOpts := []commands.HandlerOption[SyncProductLinksCommand]{
		commands.WithLogger[SyncProductLinksCommand](logger),
		commands.WithOperation[SyncProductLinksCommand]("links.sync"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SyncProductLinksHandler{
		inner: commands.NewHandler[SyncProductLinksCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[SyncProductLinksCommand].Execute.
func (h *SyncProductLinksHandler) Execute(ctx context.Context, msg SyncProductLinksCommand) error {
	return h.inner.Execute(ctx, msg)
}

func validateLinkMessage(prefix string, storeID uuid.UUID, ref string, productIDs []int64, requireProducts bool) error {
	errs := validation.Errors{}
	if storeID == uuid.Nil {
		errs["store_id"] = validation.NewError(prefix+".store_id_required", "store_id is required")
	}
	if strings.TrimSpace(ref) == "" {
		errs["ref"] = validation.NewError(prefix+".ref_required", "element reference is required")
	}
	if requireProducts && len(productIDs) == 0 {
		errs["product_ids"] = validation.NewError(prefix+".product_ids_required", "at least one product id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// translateUnresolved rewrites the resolver's miss into a message the editor
// can surface directly: a token with no row means the document was never saved.
func translateUnresolved(err error, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mapdoc.ErrElementUnresolved) {
		return goerrors.Wrap(err, goerrors.CategoryValidation, message).
			WithTextCode("MAP_ELEMENT_UNRESOLVED")
	}
	return err
}
