package jsonapiengine

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

type sortKey struct {
	attr       string
	descending bool
}

// Sort orders a collection by the comma-separated sort expression. Each key
// names a declared attribute or "id", prefixed with '-' for descending.
// Returns a sorted copy, leaving the input collection untouched.
func (rt *ResourceType) Sort(sortExpr string, collection interface{}) (interface{}, error) {
	keys, err := rt.parseSortKeys(sortExpr)
	if err != nil {
		return nil, err
	}

	v := reflect.ValueOf(collection)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice {
		return nil, fmt.Errorf("Cannot sort a non-slice value of type '%T'.", collection)
	}

	sorted := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
	reflect.Copy(sorted, v)
	if len(keys) == 0 {
		return sorted.Interface(), nil
	}

	items := sorted.Interface()
	sort.SliceStable(items, func(i, j int) bool {
		a := sorted.Index(i).Interface()
		b := sorted.Index(j).Interface()
		for _, key := range keys {
			cmp := rt.compareByKey(a, b, key.attr)
			if cmp == 0 {
				continue
			}
			if key.descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return items, nil
}

func (rt *ResourceType) parseSortKeys(sortExpr string) ([]sortKey, error) {
	var keys []sortKey
	var invalid []string
	for _, raw := range strings.Split(sortExpr, ",") {
		if raw == "" {
			continue
		}
		key := sortKey{attr: raw}
		if strings.HasPrefix(raw, "-") {
			key.attr = raw[1:]
			key.descending = true
		}
		if key.attr != "id" {
			if _, ok := rt.attrIndex[key.attr]; !ok {
				invalid = append(invalid, key.attr)
				continue
			}
		}
		keys = append(keys, key)
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return nil, newParseErrorParam(
			fmt.Sprintf("Invalid field(s) for sort: %s", strings.Join(invalid, ",")),
			"sort",
		)
	}
	return keys, nil
}

func (rt *ResourceType) compareByKey(a, b interface{}, attr string) int {
	if attr == "id" {
		return compareValues(
			reflect.Indirect(reflect.ValueOf(a)).Field(rt.idIndex),
			reflect.Indirect(reflect.ValueOf(b)).Field(rt.idIndex),
		)
	}
	index := rt.attrIndex[attr].index
	return compareValues(
		reflect.Indirect(reflect.ValueOf(a)).Field(index),
		reflect.Indirect(reflect.ValueOf(b)).Field(index),
	)
}

func compareValues(a, b reflect.Value) int {
	switch a.Kind() {
	case reflect.String:
		return strings.Compare(a.String(), b.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch {
		case a.Int() < b.Int():
			return -1
		case a.Int() > b.Int():
			return 1
		}
		return 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		switch {
		case a.Uint() < b.Uint():
			return -1
		case a.Uint() > b.Uint():
			return 1
		}
		return 0
	case reflect.Float32, reflect.Float64:
		switch {
		case a.Float() < b.Float():
			return -1
		case a.Float() > b.Float():
			return 1
		}
		return 0
	case reflect.Bool:
		switch {
		case !a.Bool() && b.Bool():
			return -1
		case a.Bool() && !b.Bool():
			return 1
		}
		return 0
	default:
		return strings.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
	}
}
