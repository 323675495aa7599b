package jsonapiengine

import (
	"reflect"
)

// resourceKey is the comparable (type, id) pair used for dedup; a full
// ResourceIdentifier cannot key a map since it may carry meta.
type resourceKey struct {
	Type string
	ID   string
}

// scope is the mutable state of one assembly walk: the view parameters, the
// included accumulator, first-seen dedup of (type, id) pairs and the set of
// resource types encountered. One scope per call; never shared.
type scope struct {
	ctrl     *Controller
	params   *ViewParams
	pageSize int

	included *[]*ResourceObject
	seen     map[resourceKey]struct{}
	touched  map[string]struct{}
}

func (c *Controller) newScope(params *ViewParams) *scope {
	if params == nil {
		params = NewViewParams()
	}
	pageSize := c.DefaultPageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	included := []*ResourceObject{}
	return &scope{
		ctrl:     c,
		params:   params,
		pageSize: pageSize,
		included: &included,
		seen:     make(map[resourceKey]struct{}),
		touched:  make(map[string]struct{}),
	}
}

// markSeen records a (type, id) pair, reporting whether it was new.
func (s *scope) markSeen(id ResourceIdentifier) bool {
	key := resourceKey{Type: id.Type, ID: id.ID}
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// buildResource converts one entity into a wire resource object: primary
// identity, attributes filtered through the sparse fieldset, and one
// relationship entry per declared relationship. Relationships requested in
// the include tree additionally recurse, pushing their related resources
// into the scope's included accumulator.
func (rt *ResourceType) buildResource(entity interface{}, tree IncludeTree, s *scope) (*ResourceObject, error) {
	s.touched[rt.Name] = struct{}{}

	res := &ResourceObject{
		Type: rt.Name,
		ID:   rt.ID(entity),
	}

	attrs := rt.attributeMap(entity)
	if fields, ok := s.params.Fields[rt.Name]; ok {
		if err := rt.applyFieldset(attrs, fields); err != nil {
			return nil, err
		}
	}
	res.Attributes = attrs

	for _, name := range rt.relOrder {
		resolver := rt.relationships[name]
		rel := &RelationshipObject{
			Links: resolver.BuildRelationshipLinks(entity, rt),
		}
		included := tree.Contains(name)
		if included || resolver.ShowData {
			if err := rt.buildLinkage(entity, resolver, tree.Branch(name), included, rel, s); err != nil {
				return nil, err
			}
		}
		if rel.isEmpty() {
			continue
		}
		if res.Relationships == nil {
			res.Relationships = make(map[string]*RelationshipObject)
		}
		res.Relationships[name] = rel
	}

	if rt.MetaFunc != nil {
		res.Meta = rt.MetaFunc(entity)
	}
	res.Links = rt.buildResourceLinks(entity)
	return res, nil
}

// buildLinkage fetches the related entities, emits their identifiers as the
// relationship's linkage data and, when the relationship is part of the
// include tree, recurses to accumulate the full related resources.
func (rt *ResourceType) buildLinkage(entity interface{}, resolver *RelationshipResolver, branch []string, include bool, rel *RelationshipObject, s *scope) error {
	related, err := resolver.GetRelated(entity, &RelationContext{Params: s.params})
	if err != nil {
		return err
	}
	relatedType, err := resolver.RelatedType()
	if err != nil {
		return err
	}

	if !resolver.Many {
		if related == nil {
			rel.Data = &Linkage{}
			return nil
		}
		id := relatedType.Identifier(related)
		rel.Data = ToOneLinkage(&id)
		if include {
			return s.include(relatedType, related, branch)
		}
		return nil
	}

	page, requested := s.params.relationPage(resolver.Name, s.pageSize)
	paged, meta, err := resolver.ApplyPagination(related, page.Size, page.Number)
	if err != nil {
		return err
	}
	if requested {
		rel.Meta = meta.Meta()
	}

	v := reflect.ValueOf(paged)
	identifiers := make([]ResourceIdentifier, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		item := v.Index(i).Interface()
		identifiers = append(identifiers, relatedType.Identifier(item))
		if include {
			if err := s.include(relatedType, item, branch); err != nil {
				return err
			}
		}
	}
	rel.Data = ToManyLinkage(identifiers)
	return nil
}

// include builds a related entity's full resource object and appends it to
// the included accumulator, once per (type, id) pair. Every occurrence is
// built: an entity first reached through a branch with no sub-path may later
// be reached through one that carries further segments, and those deeper
// resources must still be accumulated. Only the append is deduplicated.
func (s *scope) include(rt *ResourceType, entity interface{}, branch []string) error {
	isNew := s.markSeen(rt.Identifier(entity))
	tree, err := rt.BuildIncludeTree(branch)
	if err != nil {
		return err
	}
	res, err := rt.buildResource(entity, tree, s)
	if err != nil {
		return err
	}
	if isNew {
		*s.included = append(*s.included, res)
	}
	return nil
}

func (rt *ResourceType) buildResourceLinks(entity interface{}) Links {
	links := Links{}
	if rt.ctrl != nil && rt.ctrl.Routes != nil {
		if url, err := rt.ctrl.Routes.Reverse(detailRouteName(rt.Name), rt.ID(entity)); err == nil {
			links["self"] = URLLink(url)
		}
	}
	if rt.LinksFunc != nil {
		links = rt.LinksFunc(entity, links)
	}
	if len(links) == 0 {
		return nil
	}
	return links
}
