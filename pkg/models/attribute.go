package models

// AnnotatableType identifies what kind of entity an attribute is attached to.
type AnnotatableType string

const (
	AnnotatableTypeMedia       AnnotatableType = "media"
	AnnotatableTypeMediaObject AnnotatableType = "media_object"
)

// Attribute is a named value attached to exactly one Media or MediaObject.
//
// ID may be supplied by the caller to reuse one attribute identity across
// entities sharing the same name and owner type; otherwise the uploader
// assigns one per (name, annotatable type) group. AnnotatableID and
// AnnotatableType are filled in by the uploader once the owner has a server
// id.
type Attribute struct {
	ID              string
	Name            string
	Value           Value
	AnnotatableID   string
	AnnotatableType AnnotatableType
}

// NewAttribute builds an attribute without a caller-supplied id.
func NewAttribute(name string, value Value) *Attribute {
	return &Attribute{Name: name, Value: value}
}

// NewAttributeWithID builds an attribute carrying a caller-supplied id.
func NewAttributeWithID(id, name string, value Value) *Attribute {
	return &Attribute{ID: id, Name: name, Value: value}
}

// ToBulkCreate converts the attribute into its bulk-create wire item.
func (a *Attribute) ToBulkCreate() BulkAttributeCreate {
	return BulkAttributeCreate{
		ID:              a.ID,
		Name:            a.Name,
		Value:           a.Value,
		AnnotatableID:   a.AnnotatableID,
		AnnotatableType: a.AnnotatableType,
	}
}
