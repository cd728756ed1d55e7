// Resolves stable property IDs against the current database schema.

package notion

// SchemaIndex maps Notion's stable property IDs to the current names and
// types of a database's properties.
//
// Forms store property IDs because names are human-editable, but the API
// addresses properties by name on both the read and write path. Callers build
// an index from a freshly fetched schema before every write; a property ID
// missing from the index means the property was renamed out from under the
// form or deleted, which is a skip, not an abort.
type SchemaIndex struct {
	byID map[string]*DBProperty
}

// NewSchemaIndex builds an index over a database's current schema.
func NewSchemaIndex(db *Database) *SchemaIndex {
	idx := &SchemaIndex{byID: make(map[string]*DBProperty, len(db.Properties))}
	for name := range db.Properties {
		prop := db.Properties[name]
		if prop.Name == "" {
			prop.Name = name
		}
		idx.byID[prop.ID] = &prop
	}
	return idx
}

// Name returns the current name of the property with the given ID.
func (s *SchemaIndex) Name(propertyID string) (string, bool) {
	prop, ok := s.byID[propertyID]
	if !ok {
		return "", false
	}
	return prop.Name, true
}

// Type returns the current type of the property with the given ID.
func (s *SchemaIndex) Type(propertyID string) (PropertyType, bool) {
	prop, ok := s.byID[propertyID]
	if !ok {
		return "", false
	}
	return prop.Type, true
}

// Property returns the full definition of the property with the given ID.
func (s *SchemaIndex) Property(propertyID string) (*DBProperty, bool) {
	prop, ok := s.byID[propertyID]
	return prop, ok
}

// ValueByID looks up a page's property value by stable ID. Page responses key
// properties by name; this re-keys the lookup through the index.
func (s *SchemaIndex) ValueByID(page *Page, propertyID string) (*PropertyValue, bool) {
	name, ok := s.Name(propertyID)
	if !ok {
		return nil, false
	}
	pv, ok := page.Properties[name]
	if !ok {
		return nil, false
	}
	return &pv, true
}
