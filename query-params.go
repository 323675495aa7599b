package jsonapiengine

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	fieldsParamPattern   = regexp.MustCompile(`^fields\[([^\]]+)\]$`)
	relationPagePattern  = regexp.MustCompile(`^page\[([^\]]+)\]\[(size|number)\]$`)
	topLevelPageSize     = "page[size]"
	topLevelPageNumber   = "page[number]"
	includeParam         = "include"
	sortParam            = "sort"
)

// PageParams is a requested page, either top-level or scoped to a single
// relationship. Zero values mean "not requested".
type PageParams struct {
	Size   int
	Number int
}

func (p PageParams) requested() bool {
	return p.Size != 0 || p.Number != 0
}

// ViewParams are the already-parsed client view parameters consumed by the
// assembly walk: sparse fieldsets, include paths, sort and pagination. They
// are built fresh per request and never shared.
type ViewParams struct {
	Include       []string
	Fields        Fieldsets
	Sort          string
	Page          PageParams
	RelationPages map[string]PageParams
}

// NewViewParams returns empty view parameters, meaning "all attributes, no
// includes, no paging".
func NewViewParams() *ViewParams {
	return &ViewParams{
		Fields:        Fieldsets{},
		RelationPages: make(map[string]PageParams),
	}
}

// relationPage resolves the page parameters scoped to one relationship
// name, falling back to the given default size. The second return reports
// whether the client asked for paging of this relation at all.
func (p *ViewParams) relationPage(relation string, defaultSize int) (PageParams, bool) {
	page := p.RelationPages[relation]
	requested := page.requested()
	if page.Size == 0 {
		page.Size = defaultSize
	}
	if page.Number == 0 {
		page.Number = 1
	}
	return page, requested
}

// ParseViewParams converts raw query values into typed view parameters.
// Understood parameters: include, sort, fields[<type>], page[size],
// page[number], page[<relation>][size], page[<relation>][number]. Unknown
// parameters are ignored, as the wire specification requires.
func ParseViewParams(query url.Values) (*ViewParams, error) {
	params := NewViewParams()
	for param := range query {
		value := query.Get(param)
		switch param {
		case includeParam:
			params.Include = strings.Split(value, ",")
		case sortParam:
			params.Sort = value
		case topLevelPageSize:
			n, err := parsePageValue(param, value)
			if err != nil {
				return nil, err
			}
			params.Page.Size = n
		case topLevelPageNumber:
			n, err := parsePageValue(param, value)
			if err != nil {
				return nil, err
			}
			params.Page.Number = n
		default:
			if m := fieldsParamPattern.FindStringSubmatch(param); m != nil {
				params.Fields[m[1]] = splitFields(value)
				continue
			}
			if m := relationPagePattern.FindStringSubmatch(param); m != nil {
				n, err := parsePageValue(param, value)
				if err != nil {
					return nil, err
				}
				page := params.RelationPages[m[1]]
				if m[2] == "size" {
					page.Size = n
				} else {
					page.Number = n
				}
				params.RelationPages[m[1]] = page
			}
		}
	}
	return params, nil
}

func parsePageValue(param, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, newParseErrorParam(
			fmt.Sprintf("Invalid value for %s: '%s'. Must be a positive integer.", param, value),
			param,
		)
	}
	return n, nil
}

// splitFields splits a comma-separated field list, dropping empty entries
// and duplicates while preserving first-seen order.
func splitFields(value string) []string {
	seen := make(map[string]struct{})
	var fields []string
	for _, field := range strings.Split(value, ",") {
		if field == "" {
			continue
		}
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		fields = append(fields, field)
	}
	return fields
}
