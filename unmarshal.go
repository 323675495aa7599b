package jsonapiengine

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// applyAttributes writes the payload attributes onto the entity's tagged
// fields. Values are converted through a JSON round-trip, so any shape the
// field type can decode is accepted.
func (rt *ResourceType) applyAttributes(entity interface{}, attrs map[string]interface{}) error {
	v := reflect.Indirect(reflect.ValueOf(entity))
	for name, value := range attrs {
		attr, ok := rt.attrIndex[name]
		if !ok {
			return &ParseError{
				Detail: fmt.Sprintf("Invalid attribute '%s' for resource '%s'.", name, rt.Name),
				Source: &ErrorSource{Pointer: "/data/attributes/" + name},
			}
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		field := v.Field(attr.index)
		if err := json.Unmarshal(raw, field.Addr().Interface()); err != nil {
			return &ParseError{
				Detail: fmt.Sprintf("Invalid value for attribute '%s'.", name),
				Source: &ErrorSource{Pointer: "/data/attributes/" + name},
			}
		}
	}
	return nil
}

// entityFromIdentifier converts one resource identifier payload into a
// stub entity carrying only its primary value. The identifier's type member
// must name this resource's collection.
func (rt *ResourceType) entityFromIdentifier(value interface{}) (interface{}, error) {
	identifier, ok := value.(map[string]interface{})
	if !ok {
		return nil, newParseError("A resource identifier must be an object with `type` and `id` members.")
	}
	typeName, ok := identifier["type"].(string)
	if !ok || typeName == "" {
		return nil, newParseError("Missing `type` in resource object")
	}
	if typeName != rt.Name {
		return nil, newParseError(fmt.Sprintf("Invalid `type`: '%s' (Did you mean '%s'?)", typeName, rt.Name))
	}
	rawID, ok := identifier["id"]
	if !ok {
		return nil, newParseError("Missing `id` in resource object")
	}
	entity := rt.New()
	if err := rt.SetID(entity, fmt.Sprint(rawID)); err != nil {
		return nil, err
	}
	return entity, nil
}

// entitiesFromLinkage converts a validated relationship payload into stub
// entities: one for to-one (or nil for null linkage), a slice element each
// for to-many.
func (r *RelationshipResolver) entitiesFromLinkage(payload interface{}) (interface{}, error) {
	relatedType, err := r.RelatedType()
	if err != nil {
		return nil, err
	}
	if !r.Many {
		if payload == nil {
			return nil, nil
		}
		return relatedType.entityFromIdentifier(payload)
	}

	list := payload.([]interface{})
	entities := make([]interface{}, 0, len(list))
	for _, element := range list {
		entity, err := relatedType.entityFromIdentifier(element)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// applyResource fills the entity from a resource object payload: type check,
// optional client id, attributes, then relationships. Relationship linkage
// may only reference existing resources by identifier.
func (rt *ResourceType) applyResource(entity interface{}, value interface{}) error {
	resource, ok := value.(map[string]interface{})
	if !ok {
		return newParseError(`The top-level "data" element must be a single resource object or null`)
	}
	typeName, ok := resource["type"].(string)
	if !ok || typeName == "" {
		return newParseError("Missing `type` in resource object")
	}
	if typeName != rt.Name {
		return newParseError(fmt.Sprintf("Invalid `type`: '%s' (Did you mean '%s'?)", typeName, rt.Name))
	}

	if rawID, ok := resource["id"]; ok {
		if err := rt.SetID(entity, fmt.Sprint(rawID)); err != nil {
			return err
		}
	}

	if attrs, ok := resource["attributes"].(map[string]interface{}); ok {
		if err := rt.applyAttributes(entity, attrs); err != nil {
			return err
		}
	}

	relationships, ok := resource["relationships"].(map[string]interface{})
	if !ok {
		return nil
	}
	for name, value := range relationships {
		resolver := rt.Relationship(name)
		if resolver == nil {
			return &ParseError{
				Detail: fmt.Sprintf("Invalid relationship '%s' for resource '%s'.", name, rt.Name),
				Source: &ErrorSource{Pointer: "/data/relationships/" + name},
			}
		}
		relObject, ok := value.(map[string]interface{})
		if !ok {
			return &ParseError{
				Detail: fmt.Sprintf("The relationship '%s' must be an object with a `data` member.", name),
				Source: &ErrorSource{Pointer: "/data/relationships/" + name},
			}
		}
		payload, err := resolver.Validate(relObject["data"])
		if err != nil {
			return err
		}
		related, err := resolver.entitiesFromLinkage(payload)
		if err != nil {
			return err
		}
		if err := resolver.SetRelated(entity, related); err != nil {
			return err
		}
	}
	return nil
}
