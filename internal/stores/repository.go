package stores

import (
	"github.com/goliatone/go-mapsync/internal/mapdoc"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func NewStoreRepository(db *bun.DB) repository.Repository[*mapdoc.Store] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*mapdoc.Store]{
		NewRecord: func() *mapdoc.Store { return &mapdoc.Store{} },
		GetID: func(s *mapdoc.Store) uuid.UUID {
			return s.ID
		},
		SetID: func(s *mapdoc.Store, id uuid.UUID) {
			s.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(s *mapdoc.Store) string {
			return s.Slug
		},
	})
}
