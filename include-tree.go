package jsonapiengine

import (
	"fmt"
	"sort"
	"strings"
)

// IncludeTree is the per-request expansion plan for include paths, keyed by
// root relationship name. Values hold the carry-forward dotted remainders
// passed to the recursive build of that branch.
type IncludeTree map[string][]string

// Branch returns the carry-forward paths for a root relationship.
func (t IncludeTree) Branch(relation string) []string {
	return t[relation]
}

// Contains reports whether the relationship is requested at this level.
func (t IncludeTree) Contains(relation string) bool {
	_, ok := t[relation]
	return ok
}

// BuildIncludeTree groups raw dotted include paths by their first segment
// and validates every root against the type's declared relationships. Empty
// entries are dropped, so trailing commas in client input are tolerated.
// All invalid names are reported in a single error.
func (rt *ResourceType) BuildIncludeTree(paths []string) (IncludeTree, error) {
	tree := IncludeTree{}
	for _, path := range paths {
		if path == "" {
			continue
		}
		parts := strings.Split(path, ".")
		root := parts[0]
		if _, ok := tree[root]; !ok {
			tree[root] = nil
		}
		if branch := strings.Join(parts[1:], "."); branch != "" {
			tree[root] = append(tree[root], branch)
		}
	}

	var invalid []string
	for root := range tree {
		if _, ok := rt.relationships[root]; !ok {
			invalid = append(invalid, root)
		}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return nil, newParseErrorParam(
			fmt.Sprintf("Invalid relationship(s): %s", strings.Join(invalid, ", ")),
			"include",
		)
	}
	return tree, nil
}
