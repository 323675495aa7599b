package jsonapiengine

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Permissive on purpose: route reversal emits absolute paths without a
// scheme, and those are legal link values.
var urlPattern = regexp.MustCompile(`(?i)^(?:[a-z][a-z0-9+.-]*://(?:\S+(?::\S*)?@)?[^\s/?#]+(?::\d{2,5})?(?:[/?#]\S*)?|/\S*)$`)

// StructuralValidator checks a document against the structural rules of the
// wire format: top-level membership, resource object shape, linkage shape,
// links and error objects, and member-name character rules. It validates
// structure only and knows nothing about any registered model schema.
//
// A validator is stateless between calls; Validate returns all violations
// found in one pass, in deterministic order.
type StructuralValidator struct{}

func NewStructuralValidator() *StructuralValidator {
	return &StructuralValidator{}
}

// IsValid reports whether the document has no structural violations.
func (v *StructuralValidator) IsValid(doc interface{}) bool {
	return len(v.Validate(doc)) == 0
}

// Validate normalizes the document to its generic JSON form and returns
// every structural violation found. Accepts a *Document, a raw JSON byte
// slice or an already-decoded map.
func (v *StructuralValidator) Validate(doc interface{}) []string {
	data, err := normalizeDocument(doc)
	if err != nil {
		return []string{"A document MUST be a JSON object at its top level"}
	}
	violations := v.validateMemberNames(data)
	violations = append(violations, v.validateTopLevel(data)...)
	return violations
}

func normalizeDocument(doc interface{}) (map[string]interface{}, error) {
	var raw []byte
	switch d := doc.(type) {
	case map[string]interface{}:
		return d, nil
	case []byte:
		raw = d
	case json.RawMessage:
		raw = d
	default:
		var err error
		raw, err = json.Marshal(doc)
		if err != nil {
			return nil, err
		}
	}
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// memberRule binds a member name to the sub-validator applied to its value.
// An empty validator means presence is checked but the value is free-form.
type memberRule struct {
	name      string
	validator string
}

type sectionRules struct {
	entityName         string
	mustContain        []memberRule
	mustContainOne     []memberRule
	mayContain         []memberRule
	mustNotContainBoth [][2]string
	mustNotContain     []string
}

// validateSection is the shared rule engine: required members, one-of
// groups, closed member lists, mutually exclusive pairs and prohibited
// members, then sub-validators for every recognized member present.
func (v *StructuralValidator) validateSection(rules sectionRules, value interface{}) []string {
	data, ok := value.(map[string]interface{})
	if !ok {
		return []string{fmt.Sprintf("Object of type '%s' MUST be an object", rules.entityName)}
	}

	var violations []string
	for _, rule := range rules.mustContain {
		if _, ok := data[rule.name]; !ok {
			violations = append(violations, fmt.Sprintf(
				"Object of type '%s' MUST contain element of type '%s'", rules.entityName, rule.name))
		}
	}

	if len(rules.mustContainOne) > 0 {
		found := false
		for _, rule := range rules.mustContainOne {
			if _, ok := data[rule.name]; ok {
				found = true
				break
			}
		}
		if !found {
			names := make([]string, 0, len(rules.mustContainOne))
			for _, rule := range rules.mustContainOne {
				names = append(names, fmt.Sprintf("'%s'", rule.name))
			}
			violations = append(violations, fmt.Sprintf(
				"Object of type '%s' MUST contain one of (%s)", rules.entityName, strings.Join(names, ", ")))
		}
	}

	if len(rules.mayContain) > 0 {
		recognized := make(map[string]struct{})
		for _, rule := range rules.mustContain {
			recognized[rule.name] = struct{}{}
		}
		for _, rule := range rules.mustContainOne {
			recognized[rule.name] = struct{}{}
		}
		for _, rule := range rules.mayContain {
			recognized[rule.name] = struct{}{}
		}
		var extras []string
		for name := range data {
			if _, ok := recognized[name]; !ok {
				extras = append(extras, name)
			}
		}
		sort.Strings(extras)
		for _, name := range extras {
			violations = append(violations, fmt.Sprintf(
				"Object of type '%s' MUST NOT contain element of type '%s'", rules.entityName, name))
		}
	}

	for _, pair := range rules.mustNotContainBoth {
		_, hasOne := data[pair[0]]
		_, hasTwo := data[pair[1]]
		if hasOne && hasTwo {
			violations = append(violations, fmt.Sprintf(
				"Object of type '%s' MUST NOT contain both of ('%s', '%s')", rules.entityName, pair[0], pair[1]))
		}
	}

	for _, name := range rules.mustNotContain {
		if _, ok := data[name]; ok {
			violations = append(violations, fmt.Sprintf(
				"Object of type '%s' MUST NOT contain element of type '%s'", rules.entityName, name))
		}
	}

	for _, group := range [][]memberRule{rules.mustContain, rules.mustContainOne, rules.mayContain} {
		for _, rule := range group {
			if rule.validator == "" {
				continue
			}
			if member, ok := data[rule.name]; ok {
				violations = append(violations, v.dispatch(rule.validator, member)...)
			}
		}
	}
	return violations
}

func (v *StructuralValidator) dispatch(validator string, value interface{}) []string {
	switch validator {
	case "primaryData":
		return v.validatePrimaryData(value)
	case "errorsObject":
		return v.validateErrorsObject(value)
	case "jsonapiObject":
		return v.validateJSONAPIObject(value)
	case "topLevelLinksObject":
		return v.validateTopLevelLinksObject(value)
	case "resourceObjects":
		return v.validateResourceObjects(value)
	case "attributesObject":
		return v.validateAttributesObject(value)
	case "relationshipsObject":
		return v.validateRelationshipsObject(value)
	case "linksObject":
		return v.validateLinksObject(value)
	case "linkObject":
		return v.validateLinkObject(value)
	case "resourceLinkage":
		return v.validateResourceLinkage(value)
	case "meta":
		return nil
	case "url":
		return v.validateURL(value)
	default:
		return nil
	}
}

func (v *StructuralValidator) validateTopLevel(data map[string]interface{}) []string {
	return v.validateSection(sectionRules{
		entityName: "Top-Level Object",
		mustContainOne: []memberRule{
			{"data", "primaryData"},
			{"errors", "errorsObject"},
			{"meta", ""},
		},
		mayContain: []memberRule{
			{"jsonapi", "jsonapiObject"},
			{"links", "topLevelLinksObject"},
			{"included", "resourceObjects"},
		},
		mustNotContainBoth: [][2]string{{"data", "errors"}},
	}, data)
}

// validatePrimaryData accepts null, an empty array, a resource object or
// identifier, or an array of either. When object-shaped data satisfies
// neither interpretation the resource-object violations are reported, so the
// caller sees which member broke the rules; the general message is reserved
// for data that is not object-shaped at all.
func (v *StructuralValidator) validatePrimaryData(value interface{}) []string {
	if value == nil {
		return nil
	}
	if list, ok := value.([]interface{}); ok && len(list) == 0 {
		return nil
	}
	for _, element := range listify(value) {
		if _, ok := element.(map[string]interface{}); !ok {
			return []string{
				"Primary data MUST be either: " +
					"a single resource object, " +
					"a single resource identifier object, " +
					"or null, for requests that target single resources, " +
					"an array of resource objects, " +
					"an array of resource identifier objects, " +
					"or an empty array ([]), for requests that target resource collections",
			}
		}
	}
	violations := v.validateResourceObjects(value)
	if len(violations) == 0 {
		return nil
	}
	if len(v.validateResourceIdentifierObjects(value)) == 0 {
		return nil
	}
	return violations
}

func (v *StructuralValidator) validateTopLevelLinksObject(value interface{}) []string {
	return v.validateSection(sectionRules{
		entityName: "Top-Level Links Object",
		mayContain: []memberRule{
			{"self", "linkObject"},
			{"related", "linksObject"},
			{"first", "linkObject"},
			{"next", "linkObject"},
			{"prev", "linkObject"},
			{"last", "linkObject"},
		},
	}, value)
}

func (v *StructuralValidator) validateResourceObjects(value interface{}) []string {
	var violations []string
	for _, element := range listify(value) {
		violations = append(violations, v.validateResourceObject(element)...)
	}
	return violations
}

func (v *StructuralValidator) validateResourceObject(value interface{}) []string {
	return v.validateSection(sectionRules{
		entityName: "Resource Object",
		mustContain: []memberRule{
			{"id", ""},
			{"type", ""},
		},
		mayContain: []memberRule{
			{"attributes", "attributesObject"},
			{"relationships", "relationshipsObject"},
			{"links", "linksObject"},
			{"meta", "meta"},
		},
	}, value)
}

func (v *StructuralValidator) validateAttributesObject(value interface{}) []string {
	data, ok := value.(map[string]interface{})
	if !ok || len(data) == 0 {
		return []string{"Object of type 'Attributes Object' must not be empty"}
	}
	return v.validateSection(sectionRules{
		entityName:     "Attributes Object",
		mustNotContain: []string{"relationships", "links"},
	}, data)
}

func (v *StructuralValidator) validateRelationshipsObject(value interface{}) []string {
	data, ok := value.(map[string]interface{})
	if !ok {
		return []string{"Object of type 'Relationships Object' MUST be an object"}
	}
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	var violations []string
	for _, name := range names {
		for _, element := range listify(data[name]) {
			violations = append(violations, v.validateRelationshipObject(element)...)
		}
	}
	return violations
}

func (v *StructuralValidator) validateRelationshipObject(value interface{}) []string {
	return v.validateSection(sectionRules{
		entityName: "Resource Object Relationship",
		mustContainOne: []memberRule{
			{"links", "linksObject"},
			{"self", "linkObject"},
			{"related", "url"},
			{"data", "resourceLinkage"},
			{"meta", "meta"},
		},
	}, value)
}

// validateResourceLinkage accepts null, an empty array, a single identifier
// or an array of identifiers.
func (v *StructuralValidator) validateResourceLinkage(value interface{}) []string {
	if value == nil {
		return nil
	}
	if list, ok := value.([]interface{}); ok && len(list) == 0 {
		return nil
	}
	return v.validateResourceIdentifierObjects(value)
}

func (v *StructuralValidator) validateResourceIdentifierObjects(value interface{}) []string {
	for _, element := range listify(value) {
		if violations := v.validateResourceIdentifierObject(element); len(violations) > 0 {
			return violations
		}
	}
	return nil
}

func (v *StructuralValidator) validateResourceIdentifierObject(value interface{}) []string {
	return v.validateSection(sectionRules{
		entityName: "Resource Identifier Object",
		mustContain: []memberRule{
			{"type", ""},
			{"id", ""},
		},
		mayContain: []memberRule{
			{"meta", "meta"},
		},
	}, value)
}

func (v *StructuralValidator) validateLinksObject(value interface{}) []string {
	return v.validateSection(sectionRules{
		entityName: "Links Object",
		mustContainOne: []memberRule{
			{"self", "url"},
			{"related", "linkObject"},
		},
	}, value)
}

// validateLinkObject accepts both wire forms of a link: a bare URL string or
// an object with 'href' and 'meta'.
func (v *StructuralValidator) validateLinkObject(value interface{}) []string {
	if _, ok := value.(map[string]interface{}); ok {
		return v.validateSection(sectionRules{
			entityName: "Link Object",
			mayContain: []memberRule{
				{"href", "url"},
				{"meta", "meta"},
			},
		}, value)
	}
	return v.validateURL(value)
}

func (v *StructuralValidator) validateURL(value interface{}) []string {
	if value == nil {
		return nil
	}
	url, ok := value.(string)
	if !ok {
		return []string{fmt.Sprintf("%v is not a valid URL", value)}
	}
	if !urlPattern.MatchString(url) {
		return []string{fmt.Sprintf("%s is not a valid URL", url)}
	}
	return nil
}

func (v *StructuralValidator) validateJSONAPIObject(value interface{}) []string {
	return v.validateSection(sectionRules{
		entityName: "JSONAPI Object",
		mayContain: []memberRule{
			{"version", ""},
			{"meta", "meta"},
		},
	}, value)
}

func (v *StructuralValidator) validateErrorsObject(value interface{}) []string {
	list, ok := value.([]interface{})
	if !ok {
		return []string{"'Errors' object MUST be an array"}
	}
	var violations []string
	for _, element := range list {
		violations = append(violations, v.validateErrorObject(element)...)
	}
	return violations
}

func (v *StructuralValidator) validateErrorObject(value interface{}) []string {
	return v.validateSection(sectionRules{
		entityName: "Error Object",
		mayContain: []memberRule{
			{"id", ""},
			{"links", "linksObject"},
			{"about", ""},
			{"status", ""},
			{"code", ""},
			{"title", ""},
			{"detail", ""},
			{"source", ""},
			{"meta", ""},
		},
	}, value)
}

var disallowedBoundaryRunes = map[rune]struct{}{
	'-': {},
	'_': {},
	' ': {},
}

var disallowedMemberRunes = buildDisallowedMemberRunes()

func buildDisallowedMemberRunes() map[rune]struct{} {
	disallowed := make(map[rune]struct{})
	for _, r := range `+,.[]!"#$%&'()*/:;<=>?@\^` + "`{|}~" {
		disallowed[r] = struct{}{}
	}
	for r := rune(0x0000); r <= 0x001F; r++ {
		disallowed[r] = struct{}{}
	}
	disallowed[0x007F] = struct{}{}
	return disallowed
}

// validateMemberNames walks every object in the document and checks each
// member name for the character rules: non-empty, no reserved characters,
// and '-', '_' and space allowed only in the interior.
func (v *StructuralValidator) validateMemberNames(data map[string]interface{}) []string {
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	var violations []string
	for _, name := range names {
		if name == "" {
			violations = append(violations, "<empty_string> is not a valid Member Name")
		} else {
			runes := []rune(name)
			for _, r := range boundaryRunes(runes) {
				if _, ok := disallowedBoundaryRunes[r]; ok {
					violations = append(violations, fmt.Sprintf(
						"'%c' is not a valid boundary character in a Member Name", r))
				}
			}
			for _, r := range runes {
				if _, ok := disallowedMemberRunes[r]; ok {
					violations = append(violations, fmt.Sprintf(
						"'%c' is not a valid character in a Member Name", r))
				}
			}
		}
		if nested, ok := data[name].(map[string]interface{}); ok {
			violations = append(violations, v.validateMemberNames(nested)...)
		}
		if list, ok := data[name].([]interface{}); ok {
			for _, element := range list {
				if nested, ok := element.(map[string]interface{}); ok {
					violations = append(violations, v.validateMemberNames(nested)...)
				}
			}
		}
	}
	return violations
}

func boundaryRunes(runes []rune) []rune {
	if len(runes) == 1 {
		return runes[:1]
	}
	return []rune{runes[0], runes[len(runes)-1]}
}

// listify wraps a non-array value into a single-element list, so object-or-
// array members validate uniformly.
func listify(value interface{}) []interface{} {
	if list, ok := value.([]interface{}); ok {
		return list
	}
	return []interface{}{value}
}
