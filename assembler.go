package jsonapiengine

import (
	"fmt"
	"reflect"
)

// Assemble converts a single entity into a compound document: primary data
// plus the transitive closure of the requested include paths, deduplicated
// by (type, id). Sparse fieldsets in the view parameters are validated
// against the set of resource types actually encountered during the walk.
func (c *Controller) Assemble(entity interface{}, params *ViewParams) (*Document, error) {
	if isNilEntity(entity) {
		return &Document{
			Data:    SingleData(nil),
			JSONAPI: Meta{"version": Version},
		}, nil
	}
	rt, err := c.typeOf(entity)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = NewViewParams()
	}
	tree, err := rt.BuildIncludeTree(params.Include)
	if err != nil {
		return nil, err
	}

	s := c.newScope(params)
	s.markSeen(rt.Identifier(entity))
	res, err := rt.buildResource(entity, tree, s)
	if err != nil {
		return nil, err
	}
	if err := params.Fields.validateTouched(s.touched); err != nil {
		return nil, err
	}

	doc := &Document{
		Data:    SingleData(res),
		JSONAPI: Meta{"version": Version},
	}
	if len(*s.included) > 0 {
		doc.Included = *s.included
	}
	return doc, nil
}

// AssembleCollection converts an entity slice into a compound document.
// Primary resources are marked seen up front, so an entity appearing both in
// the primary data and behind an include path is never duplicated into
// 'included'.
func (c *Controller) AssembleCollection(collection interface{}, params *ViewParams) (*Document, error) {
	v := reflect.ValueOf(collection)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice {
		return nil, fmt.Errorf("Cannot assemble a non-slice value of type '%T'.", collection)
	}

	var rt *ResourceType
	if v.Len() > 0 {
		var err error
		rt, err = c.typeOf(v.Index(0).Interface())
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		rt, err = c.typeByReflect(sliceElemType(v.Type()))
		if err != nil {
			return nil, err
		}
	}
	if params == nil {
		params = NewViewParams()
	}
	tree, err := rt.BuildIncludeTree(params.Include)
	if err != nil {
		return nil, err
	}

	s := c.newScope(params)
	s.touched[rt.Name] = struct{}{}
	for i := 0; i < v.Len(); i++ {
		s.markSeen(rt.Identifier(v.Index(i).Interface()))
	}

	list := make([]*ResourceObject, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		res, err := rt.buildResource(v.Index(i).Interface(), tree, s)
		if err != nil {
			return nil, err
		}
		list = append(list, res)
	}
	if err := params.Fields.validateTouched(s.touched); err != nil {
		return nil, err
	}

	doc := &Document{
		Data:    CollectionData(list),
		JSONAPI: Meta{"version": Version},
	}
	if len(*s.included) > 0 {
		doc.Included = *s.included
	}
	return doc, nil
}

// isNilEntity reports whether the entity is absent: an untyped nil or a
// typed nil pointer, both of which represent an empty to-one resource.
func isNilEntity(entity interface{}) bool {
	if entity == nil {
		return true
	}
	v := reflect.ValueOf(entity)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

func sliceElemType(t reflect.Type) reflect.Type {
	elem := t.Elem()
	for elem.Kind() == reflect.Ptr {
		elem = elem.Elem()
	}
	return elem
}
