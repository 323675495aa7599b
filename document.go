package jsonapiengine

import (
	"encoding/json"
)

// MediaType is the JSON:API content type used for every request and response
// document.
const MediaType = "application/vnd.api+json"

// Version reported in the top-level 'jsonapi' member.
const Version = "1.0"

// Meta holds non-standard meta-information. Any members are allowed.
type Meta map[string]interface{}

// Link is a single member of a links object. On the wire it is either a bare
// URL string or an object with 'href' and 'meta' members. A Link with no Meta
// marshals as the bare string form.
type Link struct {
	Href string
	Meta Meta
}

func (l Link) MarshalJSON() ([]byte, error) {
	if l.Meta == nil {
		return json.Marshal(l.Href)
	}
	return json.Marshal(struct {
		Href string `json:"href"`
		Meta Meta   `json:"meta"`
	}{Href: l.Href, Meta: l.Meta})
}

func (l *Link) UnmarshalJSON(data []byte) error {
	var href string
	if err := json.Unmarshal(data, &href); err == nil {
		l.Href = href
		l.Meta = nil
		return nil
	}
	var obj struct {
		Href string `json:"href"`
		Meta Meta   `json:"meta"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	l.Href = obj.Href
	l.Meta = obj.Meta
	return nil
}

// Links maps link names to links. A nil entry marshals as an explicit null,
// which pagination uses for absent 'next'/'prev' links.
type Links map[string]*Link

// URLLink is a shorthand for the bare string link form.
func URLLink(url string) *Link {
	return &Link{Href: url}
}

// ResourceIdentifier is the minimal {type, id} reference used for
// relationship linkage and request payload addressing.
type ResourceIdentifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Meta Meta   `json:"meta,omitempty"`
}

// Linkage is the 'data' member of a relationship object. It distinguishes
// the to-one form (single identifier or null) from the to-many form (array,
// possibly empty). A nil *Linkage means the member is absent altogether.
type Linkage struct {
	Many bool
	One  *ResourceIdentifier
	List []ResourceIdentifier
}

func (l *Linkage) MarshalJSON() ([]byte, error) {
	if l.Many {
		if l.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(l.List)
	}
	if l.One == nil {
		return []byte("null"), nil
	}
	return json.Marshal(l.One)
}

// ToOneLinkage builds a to-one linkage; a nil identifier marshals as null.
func ToOneLinkage(id *ResourceIdentifier) *Linkage {
	return &Linkage{One: id}
}

// ToManyLinkage builds a to-many linkage; a nil slice marshals as [].
func ToManyLinkage(ids []ResourceIdentifier) *Linkage {
	return &Linkage{Many: true, List: ids}
}

// RelationshipObject describes one named relationship of a resource object:
// manipulation links, optional linkage data and optional meta (pagination
// of to-many linkage lands in Meta).
type RelationshipObject struct {
	Links Links    `json:"links,omitempty"`
	Data  *Linkage `json:"data,omitempty"`
	Meta  Meta     `json:"meta,omitempty"`
}

func (r *RelationshipObject) isEmpty() bool {
	return len(r.Links) == 0 && r.Data == nil && len(r.Meta) == 0
}

// ResourceObject is the canonical wire representation of one domain entity.
type ResourceObject struct {
	Type          string                         `json:"type"`
	ID            string                         `json:"id,omitempty"`
	Attributes    map[string]interface{}         `json:"attributes,omitempty"`
	Relationships map[string]*RelationshipObject `json:"relationships,omitempty"`
	Links         Links                          `json:"links,omitempty"`
	Meta          Meta                           `json:"meta,omitempty"`
}

// PrimaryData is the top-level 'data' member. The single form marshals as an
// object or null; the collection form always marshals as an array, even when
// empty.
type PrimaryData struct {
	Many bool
	One  *ResourceObject
	List []*ResourceObject
}

func (p *PrimaryData) MarshalJSON() ([]byte, error) {
	if p.Many {
		if p.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(p.List)
	}
	if p.One == nil {
		return []byte("null"), nil
	}
	return json.Marshal(p.One)
}

// SingleData wraps one resource object (or nil) as primary data.
func SingleData(res *ResourceObject) *PrimaryData {
	return &PrimaryData{One: res}
}

// CollectionData wraps a resource object list as primary data.
func CollectionData(list []*ResourceObject) *PrimaryData {
	return &PrimaryData{Many: true, List: list}
}

// Document is the top-level envelope of a JSON:API payload.
type Document struct {
	Data     *PrimaryData
	Errors   []*ErrorObject
	Meta     Meta
	JSONAPI  Meta
	Links    Links
	Included []*ResourceObject
}

// MarshalJSON enforces the top-level membership rules: 'data' and 'errors'
// never coexist (errors win), and 'included' is dropped whenever primary
// data is absent.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := struct {
		Data     *PrimaryData      `json:"data,omitempty"`
		Errors   []*ErrorObject    `json:"errors,omitempty"`
		JSONAPI  Meta              `json:"jsonapi,omitempty"`
		Links    Links             `json:"links,omitempty"`
		Included []*ResourceObject `json:"included,omitempty"`
		Meta     Meta              `json:"meta,omitempty"`
	}{
		Data:     d.Data,
		Errors:   d.Errors,
		JSONAPI:  d.JSONAPI,
		Links:    d.Links,
		Included: d.Included,
		Meta:     d.Meta,
	}
	if len(d.Errors) > 0 {
		out.Data = nil
		out.Included = nil
	}
	if out.Data == nil {
		out.Included = nil
	}
	return json.Marshal(out)
}
