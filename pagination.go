package jsonapiengine

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// PageMeta reports the pagination state of a sliced collection.
type PageMeta struct {
	Count       int  `json:"count"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
	PageSize    int  `json:"page_size"`
	Page        int  `json:"page"`
	NumPages    int  `json:"num_pages"`
}

// Meta converts the page state into a document meta object.
func (m *PageMeta) Meta() Meta {
	return Meta{
		"count":        m.Count,
		"has_next":     m.HasNext,
		"has_previous": m.HasPrevious,
		"page_size":    m.PageSize,
		"page":         m.Page,
		"num_pages":    m.NumPages,
	}
}

// PaginateCollection slices a collection into the requested 1-indexed page.
// A page past the end yields an empty slice with has_next=false; requesting
// exactly one page past the last still reports has_previous=true, so that
// round-trip 'prev' links keep pointing at real data.
func PaginateCollection(collection interface{}, pageSize, pageNumber int) (interface{}, *PageMeta, error) {
	v := reflect.ValueOf(collection)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice {
		return nil, nil, fmt.Errorf("Cannot paginate a non-slice value of type '%T'.", collection)
	}
	page, meta := paginate(v, pageSize, pageNumber)
	return page.Interface(), meta, nil
}

func paginate(v reflect.Value, pageSize, pageNumber int) (reflect.Value, *PageMeta) {
	if pageSize < 1 {
		pageSize = 1
	}
	if pageNumber < 1 {
		pageNumber = 1
	}
	count := v.Len()
	numPages := (count + pageSize - 1) / pageSize
	if numPages < 1 {
		numPages = 1
	}

	meta := &PageMeta{
		Count:    count,
		PageSize: pageSize,
		Page:     pageNumber,
		NumPages: numPages,
	}

	if pageNumber > numPages {
		meta.HasPrevious = pageNumber == numPages+1
		return v.Slice(0, 0), meta
	}

	start := (pageNumber - 1) * pageSize
	end := start + pageSize
	if end > count {
		end = count
	}
	meta.HasNext = pageNumber < numPages
	meta.HasPrevious = pageNumber > 1
	return v.Slice(start, end), meta
}

// PaginationLinks builds the top-level first/next/prev/last links for a
// paginated collection response. Absent next/prev marshal as explicit nulls.
func PaginationLinks(path string, query url.Values, meta *PageMeta) Links {
	links := Links{}

	withPage := func(number int) *Link {
		q := url.Values{}
		for key, values := range query {
			q[key] = append([]string(nil), values...)
		}
		q.Set("page[number]", strconv.Itoa(number))
		return URLLink(path + "?" + encodeQuery(q))
	}

	links["first"] = withPage(1)

	links["next"] = nil
	if meta.HasNext {
		links["next"] = withPage(meta.Page + 1)
	}

	links["prev"] = nil
	if meta.HasPrevious {
		links["prev"] = withPage(meta.Page - 1)
	}

	links["last"] = withPage(meta.NumPages)
	return links
}

// encodeQuery encodes query values keeping the fields[]/page[] brackets
// literal for readability of the emitted links.
func encodeQuery(q url.Values) string {
	keys := make([]string, 0, len(q))
	for key := range q {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	replacer := strings.NewReplacer("%5B", "[", "%5D", "]")
	var sb strings.Builder
	for _, key := range keys {
		for _, value := range q[key] {
			if sb.Len() > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(replacer.Replace(url.QueryEscape(key)))
			sb.WriteByte('=')
			sb.WriteString(replacer.Replace(url.QueryEscape(value)))
		}
	}
	return sb.String()
}
