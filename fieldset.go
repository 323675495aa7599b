package jsonapiengine

import (
	"fmt"
	"sort"
	"strings"
)

// Fieldsets maps a resource type name to the attribute subset the client
// requested for it. An absent entry means "all declared attributes".
type Fieldsets map[string][]string

// applyFieldset subtracts undeclared attributes from an extracted attribute
// map. Requested names are validated against the declared schema first; any
// unknown name fails the request.
func (rt *ResourceType) applyFieldset(attrs map[string]interface{}, fields []string) error {
	var invalid []string
	allowed := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if _, ok := rt.attrIndex[field]; !ok {
			invalid = append(invalid, field)
			continue
		}
		allowed[field] = struct{}{}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return newParseErrorParam(
			fmt.Sprintf("Invalid field(s) for fields[%s]: %s", rt.Name, strings.Join(invalid, ",")),
			fmt.Sprintf("fields[%s]", rt.Name),
		)
	}
	for name := range attrs {
		if _, ok := allowed[name]; !ok {
			delete(attrs, name)
		}
	}
	return nil
}

// validateTouched checks, after a full assembly walk, that every type named
// in the fieldsets was actually encountered. Included types are only known
// once the recursion completes, which is why this runs after assembly.
func (f Fieldsets) validateTouched(touched map[string]struct{}) error {
	var unknown []string
	for typeName := range f {
		if _, ok := touched[typeName]; !ok {
			unknown = append(unknown, typeName)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return newParseErrorParam(
			fmt.Sprintf("Invalid resource type(s) for fields: %s", strings.Join(unknown, ", ")),
			"fields",
		)
	}
	return nil
}
