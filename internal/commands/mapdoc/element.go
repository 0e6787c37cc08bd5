package mapdoccmd

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-mapsync/internal/commands"
	"github.com/goliatone/go-mapsync/internal/mapdoc"
	"github.com/goliatone/go-mapsync/pkg/interfaces"
	"github.com/google/uuid"
)

const (
	createElementMessageType = "mapsync.element.create"
	updateElementMessageType = "mapsync.element.update"
	deleteElementMessageType = "mapsync.element.delete"
)

// CreateElementCommand inserts a single element outside of a full-document
// save. The new row starts unpublished and marks the store dirty.
type CreateElementCommand struct {
	StoreID uuid.UUID           `json:"store_id"`
	Element mapdoc.ElementInput `json:"element"`
}

// Type implements command.Message.
func (CreateElementCommand) Type() string { return createElementMessageType }

// Validate checks the message before it reaches the handler.
func (m CreateElementCommand) Validate() error {
	errs := validation.Errors{}
	if m.StoreID == uuid.Nil {
		errs["store_id"] = validation.NewError("mapsync.element.create.store_id_required", "store_id is required")
	}
	if strings.TrimSpace(m.Element.Kind) == "" {
		errs["element.type"] = validation.NewError("mapsync.element.create.type_required", "element type is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CreateElementHandler runs the single-element create through the document service.
type CreateElementHandler struct {
	inner *commands.Handler[CreateElementCommand]
}

// NewCreateElementHandler constructs a handler wired to the document service.
func NewCreateElementHandler(service mapdoc.Service, logger interfaces.Logger, opts ...commands.HandlerOption[CreateElementCommand]) *CreateElementHandler {
	exec := func(ctx context.Context, msg CreateElementCommand) error {
		_, err := service.CreateElement(ctx, mapdoc.CreateElementRequest{
			StoreID: msg.StoreID,
			Element: msg.Element,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[CreateElementCommand]{
		commands.WithLogger[CreateElementCommand](logger),
		commands.WithOperation[CreateElementCommand]("element.create"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CreateElementHandler{
		inner: commands.NewHandler[CreateElementCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[CreateElementCommand].Execute.
func (h *CreateElementHandler) Execute(ctx context.Context, msg CreateElementCommand) error {
	return h.inner.Execute(ctx, msg)
}

// UpdateElementCommand patches a single element. Ref accepts a persisted row
// id or the client-generated token. Nil fields keep their stored values.
type UpdateElementCommand struct {
	StoreID  uuid.UUID               `json:"store_id"`
	Ref      string                  `json:"ref"`
	Kind     *string                 `json:"type,omitempty"`
	X        *float64                `json:"x,omitempty"`
	Y        *float64                `json:"y,omitempty"`
	Width    *float64                `json:"width,omitempty"`
	Height   *float64                `json:"height,omitempty"`
	ZIndex   *int                    `json:"zIndex,omitempty"`
	Color    *string                 `json:"color,omitempty"`
	Metadata *mapdoc.ElementMetadata `json:"metadata,omitempty"`
}

// Type implements command.Message.
func (UpdateElementCommand) Type() string { return updateElementMessageType }

// Validate checks the message before it reaches the handler.
func (m UpdateElementCommand) Validate() error {
	errs := validation.Errors{}
	if m.StoreID == uuid.Nil {
		errs["store_id"] = validation.NewError("mapsync.element.update.store_id_required", "store_id is required")
	}
	if strings.TrimSpace(m.Ref) == "" {
		errs["ref"] = validation.NewError("mapsync.element.update.ref_required", "element reference is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateElementHandler runs the auto-save patch through the document service.
type UpdateElementHandler struct {
	inner *commands.Handler[UpdateElementCommand]
}

// NewUpdateElementHandler constructs a handler wired to the document service.
func NewUpdateElementHandler(service mapdoc.Service, logger interfaces.Logger, opts ...commands.HandlerOption[UpdateElementCommand]) *UpdateElementHandler {
	exec := func(ctx context.Context, msg UpdateElementCommand) error {
		_, err := service.UpdateElement(ctx, mapdoc.UpdateElementRequest{
			StoreID:  msg.StoreID,
			Ref:      msg.Ref,
			Kind:     msg.Kind,
			X:        msg.X,
			Y:        msg.Y,
			Width:    msg.Width,
			Height:   msg.Height,
			ZIndex:   msg.ZIndex,
			Color:    msg.Color,
			Metadata: msg.Metadata,
		})
		return translateUnresolved(err, "element has no saved row yet; save the map before editing it")
	}

	handlerOpts := []commands.HandlerOption[UpdateElementCommand]{
		commands.WithLogger[UpdateElementCommand](logger),
		commands.WithOperation[UpdateElementCommand]("element.update"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &UpdateElementHandler{
		inner: commands.NewHandler[UpdateElementCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[UpdateElementCommand].Execute.
func (h *UpdateElementHandler) Execute(ctx context.Context, msg UpdateElementCommand) error {
	return h.inner.Execute(ctx, msg)
}

// DeleteElementCommand removes one element and its product links.
type DeleteElementCommand struct {
	StoreID uuid.UUID `json:"store_id"`
	Ref     string    `json:"ref"`
}

// Type implements command.Message.
func (DeleteElementCommand) Type() string { return deleteElementMessageType }

// Validate checks the message before it reaches the handler.
func (m DeleteElementCommand) Validate() error {
	errs := validation.Errors{}
	if m.StoreID == uuid.Nil {
		errs["store_id"] = validation.NewError("mapsync.element.delete.store_id_required", "store_id is required")
	}
	if strings.TrimSpace(m.Ref) == "" {
		errs["ref"] = validation.NewError("mapsync.element.delete.ref_required", "element reference is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DeleteElementHandler runs the single-element delete through the document service.
type DeleteElementHandler struct {
	inner *commands.Handler[DeleteElementCommand]
}

// NewDeleteElementHandler constructs a handler wired to the document service.
func NewDeleteElementHandler(service mapdoc.Service, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteElementCommand]) *DeleteElementHandler {
	exec := func(ctx context.Context, msg DeleteElementCommand) error {
		err := service.DeleteElement(ctx, mapdoc.DeleteElementRequest{
			StoreID: msg.StoreID,
			Ref:     msg.Ref,
		})
		return translateUnresolved(err, "element has no saved row yet; nothing to delete")
	}

	handlerOpts := []commands.HandlerOption[DeleteElementCommand]{
		commands.WithLogger[DeleteElementCommand](logger),
		commands.WithOperation[DeleteElementCommand]("element.delete"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &DeleteElementHandler{
		inner: commands.NewHandler[DeleteElementCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[DeleteElementCommand].Execute.
func (h *DeleteElementHandler) Execute(ctx context.Context, msg DeleteElementCommand) error {
	return h.inner.Execute(ctx, msg)
}
