package mapdoc

import (
	"encoding/json"
	"sort"
)

// Metadata keys with documented semantics. Everything else in the blob is a
// freeform style property and round-trips through Extra untouched.
const (
	metadataKeyToken         = "token"
	metadataKeyAisles        = "aisles"
	metadataKeyShelves       = "shelves"
	metadataKeyPrimaryAisle  = "primaryAisle"
	metadataKeyPrimaryShelf  = "primaryShelf"
	metadataKeyLocationCount = "locationCount"
)

// ElementMetadata is the typed view over the element's single JSON column.
// Token is the client-generated identity that survives full-document saves;
// Location is the denormalized product-location rollup maintained by the
// link synchronizer. Extra carries freeform style properties verbatim.
type ElementMetadata struct {
	Token    string
	Location *LocationRollup
	Extra    map[string]any
}

// LocationRollup aggregates the locations of every product linked to a pin.
// Aisles and Shelves are parallel arrays over the distinct (aisle, shelf)
// pairs sorted by aisle then shelf; the primary fields mirror the first pair.
type LocationRollup struct {
	Aisles        []string `json:"aisles"`
	Shelves       []string `json:"shelves"`
	PrimaryAisle  *string  `json:"primaryAisle"`
	PrimaryShelf  *string  `json:"primaryShelf"`
	LocationCount int      `json:"locationCount"`
}

// MarshalJSON flattens the known fields and the freeform properties into one
// object, the layout consumer map readers document against.
func (m ElementMetadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+6)
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.Token != "" {
		out[metadataKeyToken] = m.Token
	} else {
		delete(out, metadataKeyToken)
	}
	if m.Location != nil {
		out[metadataKeyAisles] = m.Location.Aisles
		out[metadataKeyShelves] = m.Location.Shelves
		out[metadataKeyPrimaryAisle] = m.Location.PrimaryAisle
		out[metadataKeyPrimaryShelf] = m.Location.PrimaryShelf
		out[metadataKeyLocationCount] = m.Location.LocationCount
	} else {
		for _, key := range []string{metadataKeyAisles, metadataKeyShelves, metadataKeyPrimaryAisle, metadataKeyPrimaryShelf, metadataKeyLocationCount} {
			delete(out, key)
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON pulls the documented keys into typed fields and keeps the
// remainder in Extra.
func (m *ElementMetadata) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = ElementMetadata{}

	if tok, ok := raw[metadataKeyToken]; ok {
		if err := json.Unmarshal(tok, &m.Token); err != nil {
			return err
		}
		delete(raw, metadataKeyToken)
	}

	if _, ok := raw[metadataKeyAisles]; ok {
		rollup := &LocationRollup{}
		if err := json.Unmarshal(raw[metadataKeyAisles], &rollup.Aisles); err != nil {
			return err
		}
		if v, ok := raw[metadataKeyShelves]; ok {
			if err := json.Unmarshal(v, &rollup.Shelves); err != nil {
				return err
			}
		}
		if v, ok := raw[metadataKeyPrimaryAisle]; ok {
			if err := json.Unmarshal(v, &rollup.PrimaryAisle); err != nil {
				return err
			}
		}
		if v, ok := raw[metadataKeyPrimaryShelf]; ok {
			if err := json.Unmarshal(v, &rollup.PrimaryShelf); err != nil {
				return err
			}
		}
		if v, ok := raw[metadataKeyLocationCount]; ok {
			if err := json.Unmarshal(v, &rollup.LocationCount); err != nil {
				return err
			}
		}
		m.Location = rollup
	}
	for _, key := range []string{metadataKeyAisles, metadataKeyShelves, metadataKeyPrimaryAisle, metadataKeyPrimaryShelf, metadataKeyLocationCount} {
		delete(raw, key)
	}

	if len(raw) > 0 {
		m.Extra = make(map[string]any, len(raw))
		for k, v := range raw {
			var decoded any
			if err := json.Unmarshal(v, &decoded); err != nil {
				return err
			}
			m.Extra[k] = decoded
		}
	}
	return nil
}

// Merge overlays the incoming metadata onto the receiver. Keys present in
// the incoming payload overwrite; keys the payload does not carry keep their
// previous value, so an auto-save caller that models only part of the blob
// cannot destroy the rest.
func (m ElementMetadata) Merge(incoming ElementMetadata) ElementMetadata {
	merged := m.Clone()
	if incoming.Token != "" {
		merged.Token = incoming.Token
	}
	if incoming.Location != nil {
		merged.Location = incoming.Location.Clone()
	}
	if len(incoming.Extra) > 0 {
		if merged.Extra == nil {
			merged.Extra = make(map[string]any, len(incoming.Extra))
		}
		for k, v := range incoming.Extra {
			merged.Extra[k] = v
		}
	}
	return merged
}

// Clone returns a deep copy safe to mutate independently.
func (m ElementMetadata) Clone() ElementMetadata {
	out := ElementMetadata{Token: m.Token}
	if m.Location != nil {
		out.Location = m.Location.Clone()
	}
	if m.Extra != nil {
		out.Extra = make(map[string]any, len(m.Extra))
		for k, v := range m.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// Clone returns a deep copy of the rollup.
func (r *LocationRollup) Clone() *LocationRollup {
	if r == nil {
		return nil
	}
	copied := *r
	copied.Aisles = append([]string(nil), r.Aisles...)
	copied.Shelves = append([]string(nil), r.Shelves...)
	if r.PrimaryAisle != nil {
		v := *r.PrimaryAisle
		copied.PrimaryAisle = &v
	}
	if r.PrimaryShelf != nil {
		v := *r.PrimaryShelf
		copied.PrimaryShelf = &v
	}
	return &copied
}

// BuildLocationRollup computes the rollup over the supplied products:
// distinct (aisle, shelf) pairs with a non-null aisle, sorted by aisle then
// shelf. Returns nil when no linked product carries a location.
func BuildLocationRollup(products []*Product) *LocationRollup {
	type pair struct {
		aisle string
		shelf string
	}
	seen := map[pair]struct{}{}
	pairs := []pair{}
	for _, p := range products {
		if p == nil || p.Aisle == nil {
			continue
		}
		entry := pair{aisle: *p.Aisle}
		if p.Shelf != nil {
			entry.shelf = *p.Shelf
		}
		if _, ok := seen[entry]; ok {
			continue
		}
		seen[entry] = struct{}{}
		pairs = append(pairs, entry)
	}
	if len(pairs) == 0 {
		return nil
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].aisle != pairs[j].aisle {
			return pairs[i].aisle < pairs[j].aisle
		}
		return pairs[i].shelf < pairs[j].shelf
	})

	rollup := &LocationRollup{
		Aisles:        make([]string, len(pairs)),
		Shelves:       make([]string, len(pairs)),
		LocationCount: len(pairs),
	}
	for i, p := range pairs {
		rollup.Aisles[i] = p.aisle
		rollup.Shelves[i] = p.shelf
	}
	rollup.PrimaryAisle = &rollup.Aisles[0]
	if rollup.Shelves[0] != "" {
		rollup.PrimaryShelf = &rollup.Shelves[0]
	}
	return rollup
}
