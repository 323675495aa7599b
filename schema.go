package jsonapiengine

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

const (
	annotationJSONAPI  = "jsonapi"
	annotationPrimary  = "primary"
	annotationAttr     = "attr"
	annotationRelation = "relation"
	annotationHidden   = "hidden"

	defaultPageSize = 10
)

// Controller is the process-wide model registry. Model schemas are
// precomputed once from struct tags; after that the controller is treated as
// immutable and shared read-only across concurrent assembly calls.
type Controller struct {
	models      map[reflect.Type]*ResourceType
	collections map[string]*ResourceType

	// DefaultPageSize bounds to-many relationship pages when the request
	// does not carry an explicit size.
	DefaultPageSize int

	// APIURLBase prefixes every routed collection path, e.g. "/api".
	APIURLBase string

	// Routes reverses named routes into URLs for link construction. May be
	// nil, in which case no links are emitted.
	Routes URLResolver
}

func NewController() *Controller {
	return &Controller{
		models:          make(map[reflect.Type]*ResourceType),
		collections:     make(map[string]*ResourceType),
		DefaultPageSize: defaultPageSize,
	}
}

// PrecomputeModels parses the jsonapi struct tags of the provided models and
// registers their schemas. Relationship resolvers reference related models
// by type; the reference is resolved against this registry at first use, so
// mutually related models may be registered in any order.
func (c *Controller) PrecomputeModels(models ...interface{}) error {
	for _, model := range models {
		if err := c.precompute(model); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) precompute(model interface{}) error {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return errors.New("Invalid model provided. Model must be a struct or a pointer to struct.")
	}

	rt := &ResourceType{
		ctrl:          c,
		modelType:     t,
		idIndex:       -1,
		attrIndex:     make(map[string]*attribute),
		relationships: make(map[string]*RelationshipResolver),
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag, ok := field.Tag.Lookup(annotationJSONAPI)
		if !ok || tag == "-" {
			continue
		}
		parts := strings.Split(tag, ",")
		if len(parts) < 2 {
			return fmt.Errorf("Invalid jsonapi tag on field '%s.%s': '%s'.", t.Name(), field.Name, tag)
		}
		if hasOption(parts[2:], annotationHidden) {
			continue
		}
		name := parts[1]
		switch parts[0] {
		case annotationPrimary:
			rt.Name = name
			rt.idIndex = i
		case annotationAttr:
			attr := &attribute{name: name, index: i}
			rt.attrs = append(rt.attrs, attr)
			rt.attrIndex[name] = attr
		case annotationRelation:
			resolver, err := newDefaultResolver(c, name, field, i)
			if err != nil {
				return fmt.Errorf("Model '%s': %s", t.Name(), err)
			}
			rt.relationships[name] = resolver
			rt.relOrder = append(rt.relOrder, name)
		default:
			return fmt.Errorf("Unknown jsonapi annotation '%s' on field '%s.%s'.", parts[0], t.Name(), field.Name)
		}
	}

	if rt.idIndex < 0 {
		return fmt.Errorf("Model '%s' has no primary field.", t.Name())
	}
	c.models[t] = rt
	c.collections[rt.Name] = rt
	return nil
}

func hasOption(options []string, option string) bool {
	for _, o := range options {
		if o == option {
			return true
		}
	}
	return false
}

// MustType returns the precomputed schema for the given model, panicking
// when the model was never registered. Configuration-time helper.
func (c *Controller) MustType(model interface{}) *ResourceType {
	rt, err := c.typeOf(model)
	if err != nil {
		panic(err)
	}
	return rt
}

// TypeByModelType looks a schema up by the model's reflect type.
func (c *Controller) TypeByModelType(modelType reflect.Type) (*ResourceType, error) {
	return c.typeByReflect(modelType)
}

// TypeByCollection looks a schema up by its collection name.
func (c *Controller) TypeByCollection(name string) (*ResourceType, bool) {
	rt, ok := c.collections[name]
	return rt, ok
}

func (c *Controller) typeOf(model interface{}) (*ResourceType, error) {
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	return c.typeByReflect(t)
}

func (c *Controller) typeByReflect(t reflect.Type) (*ResourceType, error) {
	rt, ok := c.models[t]
	if !ok {
		return nil, fmt.Errorf("Model '%s' is not precomputed within the controller.", t.Name())
	}
	return rt, nil
}

type attribute struct {
	name  string
	index int
}

// ResourceType is the precomputed schema of one model: its collection name,
// primary field, declared attribute table and explicit relationship table.
type ResourceType struct {
	Name string

	ctrl      *Controller
	modelType reflect.Type
	idIndex   int
	attrs     []*attribute
	attrIndex map[string]*attribute

	relationships map[string]*RelationshipResolver
	relOrder      []string

	// MetaFunc and LinksFunc optionally enrich built resource objects.
	MetaFunc  func(entity interface{}) Meta
	LinksFunc func(entity interface{}, links Links) Links
}

// ModelType returns the underlying struct type.
func (rt *ResourceType) ModelType() reflect.Type {
	return rt.modelType
}

// New returns a pointer to a fresh zero model value.
func (rt *ResourceType) New() interface{} {
	return reflect.New(rt.modelType).Interface()
}

// NewSlice returns a pointer to an empty slice of model pointers, suitable
// for list fetches.
func (rt *ResourceType) NewSlice() interface{} {
	slice := reflect.MakeSlice(reflect.SliceOf(reflect.PtrTo(rt.modelType)), 0, 0)
	ptr := reflect.New(slice.Type())
	ptr.Elem().Set(slice)
	return ptr.Interface()
}

// Relationship returns the resolver for the named relationship, or nil when
// the relationship is not declared.
func (rt *ResourceType) Relationship(name string) *RelationshipResolver {
	return rt.relationships[name]
}

// RelationshipNames lists declared relationships in declaration order.
func (rt *ResourceType) RelationshipNames() []string {
	return rt.relOrder
}

// AttributeNames lists declared attributes in declaration order.
func (rt *ResourceType) AttributeNames() []string {
	names := make([]string, 0, len(rt.attrs))
	for _, attr := range rt.attrs {
		names = append(names, attr.name)
	}
	return names
}

// ID returns the entity's primary value as a string. A zero primary yields
// the empty string so that not-yet-persisted entities omit 'id'.
func (rt *ResourceType) ID(entity interface{}) string {
	v := reflect.Indirect(reflect.ValueOf(entity)).Field(rt.idIndex)
	if v.IsZero() {
		return ""
	}
	return valueToString(v)
}

// SetID writes the given wire id onto the entity's primary field.
func (rt *ResourceType) SetID(entity interface{}, id string) error {
	v := reflect.Indirect(reflect.ValueOf(entity)).Field(rt.idIndex)
	switch v.Kind() {
	case reflect.String:
		v.SetString(id)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return newParseError(fmt.Sprintf("Provided invalid 'id' value: '%s'.", id))
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			return newParseError(fmt.Sprintf("Provided invalid 'id' value: '%s'.", id))
		}
		v.SetUint(n)
	default:
		return fmt.Errorf("Unsupported primary field kind: '%s'.", v.Kind())
	}
	return nil
}

// Identifier builds the minimal {type, id} reference for the entity.
func (rt *ResourceType) Identifier(entity interface{}) ResourceIdentifier {
	return ResourceIdentifier{Type: rt.Name, ID: rt.ID(entity)}
}

// attributeMap extracts the declared attributes of the entity, before any
// sparse fieldset is applied.
func (rt *ResourceType) attributeMap(entity interface{}) map[string]interface{} {
	v := reflect.Indirect(reflect.ValueOf(entity))
	attrs := make(map[string]interface{}, len(rt.attrs))
	for _, attr := range rt.attrs {
		attrs[attr.name] = v.Field(attr.index).Interface()
	}
	return attrs
}

func valueToString(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	default:
		return fmt.Sprint(v.Interface())
	}
}
