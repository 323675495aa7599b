package jsonapiengine

import (
	"fmt"
	"reflect"
)

// RelationContext carries per-request state into relationship fetch
// strategies. Resolvers themselves never store request state.
type RelationContext struct {
	Params *ViewParams
}

// MissingCapabilityError marks a relationship configured without a backing
// accessor or strategy for the requested operation. It is a configuration
// defect, not a client error, and is surfaced loudly.
type MissingCapabilityError struct {
	Relation   string
	Capability string
}

func (e *MissingCapabilityError) Error() string {
	return fmt.Sprintf("Relationship '%s' has no backing accessor and does not implement '%s'.", e.Relation, e.Capability)
}

// RelationshipResolver is the per-relationship policy object: cardinality,
// mutability, how related entities are fetched, linked, paginated and
// mutated. One resolver is built per relationship at model registration and
// shared immutably across requests. Default behavior reads and writes the
// tagged struct field; each operation can be replaced with a strategy
// function instead of subclassing.
type RelationshipResolver struct {
	Name string

	// Many selects to-many cardinality: linkage is an array and the
	// add/remove operations are available.
	Many bool

	// ReadOnly relationships reject set/add/remove with a domain error.
	ReadOnly bool

	// ShowData forces linkage data to be emitted even when the relationship
	// is not requested via the include parameter.
	ShowData bool

	ctrl         *Controller
	relatedModel reflect.Type
	fieldIndex   int

	GetRelatedFunc    func(entity interface{}, ctx *RelationContext) (interface{}, error)
	SetRelatedFunc    func(entity, related interface{}) error
	AddRelatedFunc    func(entity, related interface{}) error
	RemoveRelatedFunc func(entity, related interface{}) error

	// LinksFunc may amend or replace the reversed relationship links.
	LinksFunc func(entity interface{}, links Links) Links
}

func newDefaultResolver(c *Controller, name string, field reflect.StructField, index int) (*RelationshipResolver, error) {
	r := &RelationshipResolver{
		Name:       name,
		ctrl:       c,
		fieldIndex: index,
	}
	t := field.Type
	switch {
	case t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct:
		r.relatedModel = t.Elem()
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Ptr && t.Elem().Elem().Kind() == reflect.Struct:
		r.Many = true
		r.relatedModel = t.Elem().Elem()
	default:
		return nil, fmt.Errorf("Relationship field '%s' must be a pointer to struct or a slice of struct pointers.", field.Name)
	}
	return r, nil
}

// RelatedType resolves the related model's schema against the registry. The
// reference is held as a type descriptor and resolved at use, so related
// models may be registered after this resolver was built.
func (r *RelationshipResolver) RelatedType() (*ResourceType, error) {
	return r.ctrl.typeByReflect(r.relatedModel)
}

// Validate checks the shape of a relationship request payload: an array for
// to-many, a single resource identifier object or null for to-one.
func (r *RelationshipResolver) Validate(payload interface{}) (interface{}, error) {
	if r.Many {
		if _, ok := payload.([]interface{}); !ok {
			return nil, newParseError(`The top-level "data" element must be an array of resource identifiers or an empty array.`)
		}
		return payload, nil
	}
	if payload == nil {
		return nil, nil
	}
	if _, ok := payload.(map[string]interface{}); !ok {
		return nil, newParseError(`The top-level "data" element must be a single resource object or null`)
	}
	return payload, nil
}

// GetRelated fetches the related entity (to-one) or the full related set
// (to-many, never implicitly limited). Pagination is a separate, explicit
// step.
func (r *RelationshipResolver) GetRelated(entity interface{}, ctx *RelationContext) (interface{}, error) {
	if r.GetRelatedFunc != nil {
		return r.GetRelatedFunc(entity, ctx)
	}
	if r.fieldIndex < 0 {
		return nil, &MissingCapabilityError{Relation: r.Name, Capability: "GetRelated"}
	}
	v := reflect.Indirect(reflect.ValueOf(entity)).Field(r.fieldIndex)
	if !r.Many && v.IsNil() {
		return nil, nil
	}
	return v.Interface(), nil
}

// ApplyPagination slices the related set into the requested 1-indexed page.
// To-many only.
func (r *RelationshipResolver) ApplyPagination(related interface{}, pageSize, pageNumber int) (interface{}, *PageMeta, error) {
	if !r.Many {
		return nil, nil, fmt.Errorf("Cannot paginate the to-one relationship '%s'.", r.Name)
	}
	return PaginateCollection(related, pageSize, pageNumber)
}

// SetRelated replaces the related entity or set. For to-many the value may
// be a single entity or a slice.
func (r *RelationshipResolver) SetRelated(entity, related interface{}) error {
	if r.ReadOnly {
		return r.readOnlyError()
	}
	if r.SetRelatedFunc != nil {
		return r.SetRelatedFunc(entity, related)
	}
	if r.fieldIndex < 0 {
		return &MissingCapabilityError{Relation: r.Name, Capability: "SetRelated"}
	}
	field := reflect.Indirect(reflect.ValueOf(entity)).Field(r.fieldIndex)
	if r.Many {
		field.Set(r.buildSlice(field.Type(), normalizeRelated(related)))
		return nil
	}
	if related == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}
	field.Set(reflect.ValueOf(related))
	return nil
}

// AddRelated appends to a to-many relationship. Accepts a single entity or
// a slice.
func (r *RelationshipResolver) AddRelated(entity, related interface{}) error {
	if r.ReadOnly {
		return r.readOnlyError()
	}
	if r.AddRelatedFunc != nil {
		return r.AddRelatedFunc(entity, related)
	}
	if !r.Many {
		return fmt.Errorf("Cannot add to the to-one relationship '%s'.", r.Name)
	}
	if r.fieldIndex < 0 {
		return &MissingCapabilityError{Relation: r.Name, Capability: "AddRelated"}
	}
	field := reflect.Indirect(reflect.ValueOf(entity)).Field(r.fieldIndex)
	for _, item := range normalizeRelated(related) {
		field.Set(reflect.Append(field, reflect.ValueOf(item)))
	}
	return nil
}

// RemoveRelated removes entries from a to-many relationship, matched by
// primary value. Accepts a single entity or a slice.
func (r *RelationshipResolver) RemoveRelated(entity, related interface{}) error {
	if r.ReadOnly {
		return r.readOnlyError()
	}
	if r.RemoveRelatedFunc != nil {
		return r.RemoveRelatedFunc(entity, related)
	}
	if !r.Many {
		return fmt.Errorf("Cannot remove from the to-one relationship '%s'.", r.Name)
	}
	if r.fieldIndex < 0 {
		return &MissingCapabilityError{Relation: r.Name, Capability: "RemoveRelated"}
	}
	relatedType, err := r.RelatedType()
	if err != nil {
		return err
	}

	removed := make(map[string]struct{})
	for _, item := range normalizeRelated(related) {
		removed[relatedType.ID(item)] = struct{}{}
	}

	field := reflect.Indirect(reflect.ValueOf(entity)).Field(r.fieldIndex)
	kept := reflect.MakeSlice(field.Type(), 0, field.Len())
	for i := 0; i < field.Len(); i++ {
		item := field.Index(i)
		if _, ok := removed[relatedType.ID(item.Interface())]; ok {
			continue
		}
		kept = reflect.Append(kept, item)
	}
	field.Set(kept)
	return nil
}

// BuildRelationshipLinks reverses the relationship-manipulation and related
// URLs for the owning entity. A missing route is tolerated and its link
// omitted.
func (r *RelationshipResolver) BuildRelationshipLinks(entity interface{}, owner *ResourceType) Links {
	links := Links{}
	if r.ctrl != nil && r.ctrl.Routes != nil {
		id := owner.ID(entity)
		if url, err := r.ctrl.Routes.Reverse(relationshipRouteName(owner.Name, r.Name), id); err == nil {
			links["self"] = URLLink(url)
		}
		if url, err := r.ctrl.Routes.Reverse(relatedRouteName(owner.Name, r.Name), id); err == nil {
			links["related"] = URLLink(url)
		}
	}
	if r.LinksFunc != nil {
		links = r.LinksFunc(entity, links)
	}
	if len(links) == 0 {
		return nil
	}
	return links
}

func (r *RelationshipResolver) readOnlyError() error {
	return newDomainErrorPointer(
		fmt.Sprintf("%s is a read-only relationship", r.Name),
		"data/relationships/"+r.Name,
	)
}

func (r *RelationshipResolver) buildSlice(sliceType reflect.Type, items []interface{}) reflect.Value {
	out := reflect.MakeSlice(sliceType, 0, len(items))
	for _, item := range items {
		out = reflect.Append(out, reflect.ValueOf(item))
	}
	return out
}

// normalizeRelated converts a single entity or a slice into a flat list, so
// add/remove tolerate both shapes.
func normalizeRelated(related interface{}) []interface{} {
	if related == nil {
		return nil
	}
	v := reflect.ValueOf(related)
	if v.Kind() != reflect.Slice {
		return []interface{}{related}
	}
	out := make([]interface{}, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		out = append(out, v.Index(i).Interface())
	}
	return out
}
