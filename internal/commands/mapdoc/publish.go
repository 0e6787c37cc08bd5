package mapdoccmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-mapsync/internal/commands"
	"github.com/goliatone/go-mapsync/internal/mapdoc"
	"github.com/goliatone/go-mapsync/pkg/interfaces"
	"github.com/google/uuid"
)

const publishMapMessageType = "mapsync.document.publish"

// PublishMapCommand promotes the current draft to the consumer snapshot.
type PublishMapCommand struct {
	StoreID uuid.UUID `json:"store_id"`
}

// Type implements command.Message.
func (PublishMapCommand) Type() string { return publishMapMessageType }

// Validate checks the message before it reaches the handler.
func (m PublishMapCommand) Validate() error {
	if m.StoreID == uuid.Nil {
		return validation.Errors{
			"store_id": validation.NewError("mapsync.document.publish.store_id_required", "store_id is required"),
		}
	}
	return nil
}

// PublishMapHandler runs the publish snapshot through the document service.
type PublishMapHandler struct {
	inner *commands.Handler[PublishMapCommand]
}

// NewPublishMapHandler constructs a handler wired to the document service.
func NewPublishMapHandler(service mapdoc.Service, logger interfaces.Logger, opts ...commands.HandlerOption[PublishMapCommand]) *PublishMapHandler {
	exec := func(ctx context.Context, msg PublishMapCommand) error {
		_, err := service.Publish(ctx, msg.StoreID)
		return err
	}

	handlerOpts := []commands.HandlerOption[PublishMapCommand]{
		commands.WithLogger[PublishMapCommand](logger),
		commands.WithOperation[PublishMapCommand]("document.publish"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PublishMapHandler{
		inner: commands.NewHandler[PublishMapCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[PublishMapCommand].Execute.
func (h *PublishMapHandler) Execute(ctx context.Context, msg PublishMapCommand) error {
	return h.inner.Execute(ctx, msg)
}
