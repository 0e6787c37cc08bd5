package mapdoccmd

import (
	"context"
	"encoding/json"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-mapsync/internal/commands"
	"github.com/goliatone/go-mapsync/internal/mapdoc"
	"github.com/goliatone/go-mapsync/pkg/interfaces"
	"github.com/google/uuid"
)

const saveDocumentMessageType = "mapsync.document.save"

// SaveDocumentCommand carries a full-document replace-save. Document is the
// raw editor payload; it is schema-validated before any row is touched.
type SaveDocumentCommand struct {
	StoreID  uuid.UUID       `json:"store_id"`
	Document json.RawMessage `json:"document"`
}

// Type implements command.Message.
func (SaveDocumentCommand) Type() string { return saveDocumentMessageType }

// Validate ensures the message carries the required fields before reaching handlers.
func (m SaveDocumentCommand) Validate() error {
	errs := validation.Errors{}
	if m.StoreID == uuid.Nil {
		errs["store_id"] = validation.NewError("mapsync.document.save.store_id_required", "store_id is required")
	}
	if len(m.Document) == 0 {
		errs["document"] = validation.NewError("mapsync.document.save.document_required", "document payload is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type documentPayload struct {
	Elements []mapdoc.ElementInput `json:"elements"`
}

// SaveDocumentHandler validates and decodes the editor payload, then runs
// the bulk reconciler through the document service.
type SaveDocumentHandler struct {
	inner *commands.Handler[SaveDocumentCommand]
}

// NewSaveDocumentHandler constructs a handler wired to the provided document service.
func NewSaveDocumentHandler(service mapdoc.Service, logger interfaces.Logger, opts ...commands.HandlerOption[SaveDocumentCommand]) *SaveDocumentHandler {
	exec := func(ctx context.Context, msg SaveDocumentCommand) error {
		if err := mapdoc.ValidateDocumentPayload(msg.Document); err != nil {
			var invalid *mapdoc.ValidationError
			if errors.As(err, &invalid) {
				return goerrors.Wrap(err, goerrors.CategoryValidation, "document payload failed schema validation").
					WithTextCode("MAP_DOCUMENT_INVALID")
			}
			return err
		}

		payload := documentPayload{}
		if err := json.Unmarshal(msg.Document, &payload); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryValidation, "document payload could not be decoded").
				WithTextCode("MAP_DOCUMENT_INVALID")
		}

		_, err := service.SaveDocument(ctx, mapdoc.SaveDocumentRequest{
			StoreID:  msg.StoreID,
			Elements: payload.Elements,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[SaveDocumentCommand]{
		commands.WithLogger[SaveDocumentCommand](logger),
		commands.WithOperation[SaveDocumentCommand]("document.save"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SaveDocumentHandler{
		inner: commands.NewHandler[SaveDocumentCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[SaveDocumentCommand].Execute.
func (h *SaveDocumentHandler) Execute(ctx context.Context, msg SaveDocumentCommand) error {
	return h.inner.Execute(ctx, msg)
}
