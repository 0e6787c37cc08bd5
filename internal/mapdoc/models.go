package mapdoc

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Store scopes a map document. The draft flag caches whether any element is
// still unpublished; per-element flags stay authoritative.
type Store struct {
	bun.BaseModel `bun:"table:stores,alias:s"`

	ID           uuid.UUID  `bun:",pk,type:uuid"                json:"id"`
	Name         string     `bun:"name,notnull"                 json:"name"`
	Slug         string     `bun:"slug,notnull"                 json:"slug"`
	DraftChanges bool       `bun:"draft_changes,notnull,default:false" json:"draft_changes"`
	PublishedAt  *time.Time `bun:"published_at,nullzero"        json:"published_at,omitempty"`
	CreatedAt    time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Element is one visual object on a store map (shape, pin, label). The row id
// is a surrogate key that changes on every full-document save; the token
// inside the metadata blob is the identity that survives those rewrites.
type Element struct {
	bun.BaseModel `bun:"table:map_elements,alias:el"`

	ID          int64           `bun:"id,pk,autoincrement"            json:"id"`
	StoreID     uuid.UUID       `bun:"store_id,notnull,type:uuid"     json:"store_id"`
	Kind        string          `bun:"type,notnull"                   json:"type"`
	X           float64         `bun:"x,notnull"                      json:"x"`
	Y           float64         `bun:"y,notnull"                      json:"y"`
	Width       float64         `bun:"width,notnull"                  json:"width"`
	Height      float64         `bun:"height,notnull"                 json:"height"`
	ZIndex      int             `bun:"z_index,notnull,default:0"      json:"z_index"`
	Color       *string         `bun:"color"                          json:"color,omitempty"`
	Metadata    ElementMetadata `bun:"metadata,type:jsonb"            json:"metadata"`
	Published   bool            `bun:"published,notnull,default:false" json:"published"`
	PublishedAt *time.Time      `bun:"published_at,nullzero"          json:"published_at,omitempty"`
	CreatedAt   time.Time       `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time       `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Token returns the reconciliation identity carried in the metadata blob.
func (e *Element) Token() string {
	if e == nil {
		return ""
	}
	return e.Metadata.Token
}

// ProductLink associates a product with a map element inside one store.
type ProductLink struct {
	bun.BaseModel `bun:"table:product_links,alias:pl"`

	ID        uuid.UUID `bun:",pk,type:uuid"              json:"id"`
	StoreID   uuid.UUID `bun:"store_id,notnull,type:uuid,unique:product_links_pair" json:"store_id"`
	ProductID int64     `bun:"product_id,notnull,unique:product_links_pair"         json:"product_id"`
	ElementID int64     `bun:"element_id,notnull,unique:product_links_pair"         json:"element_id"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Product is the externally owned catalog record; only the location fields
// are consumed here, for the rollup cached on pin elements.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID    int64   `bun:"id,pk,autoincrement" json:"id"`
	Name  string  `bun:"name,notnull"        json:"name"`
	Aisle *string `bun:"aisle"               json:"aisle,omitempty"`
	Shelf *string `bun:"shelf"               json:"shelf,omitempty"`
}
