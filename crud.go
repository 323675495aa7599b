package jsonapiengine

import (
	"fmt"
	"net/http"
	"reflect"
)

func (h *JSONAPIHandler) Create(model *ModelHandler) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		rt, ok := h.resourceType(model, rw)
		if !ok {
			return
		}
		payload, ok := h.UnmarshalBody(rw, req)
		if !ok {
			return
		}

		entity := rt.New()
		if err := rt.applyResource(entity, payload); err != nil {
			h.HandleEngineError(rw, err)
			return
		}
		if !h.validateEntity(rw, entity) {
			return
		}

		repo := h.GetModelRepositoryByType(model.ModelType)
		if dbErr := repo.Create(entity); dbErr != nil {
			h.manageDBError(rw, dbErr)
			return
		}

		doc, err := h.Controller.Assemble(entity, nil)
		if err != nil {
			h.HandleEngineError(rw, err)
			return
		}
		h.MarshalDocument(doc, rw, req, http.StatusCreated)
	}
}

func (h *JSONAPIHandler) Get(model *ModelHandler) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		rt, ok := h.resourceType(model, rw)
		if !ok {
			return
		}
		tag, ok := h.GetLanguage(rw, req)
		if !ok {
			return
		}
		params, err := ParseViewParams(req.URL.Query())
		if err != nil {
			h.HandleEngineError(rw, err)
			return
		}

		id, _, _ := parseResourcePath(req.URL.Path, rt.Name)
		entity := rt.New()
		repo := h.GetModelRepositoryByType(model.ModelType)
		if dbErr := repo.Get(id, entity); dbErr != nil {
			h.manageDBError(rw, dbErr)
			return
		}

		doc, err := h.Controller.Assemble(entity, params)
		if err != nil {
			h.HandleEngineError(rw, err)
			return
		}
		h.HeaderContentLanguage(rw, tag)
		h.MarshalDocument(doc, rw, req, http.StatusOK)
	}
}

func (h *JSONAPIHandler) List(model *ModelHandler) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		rt, ok := h.resourceType(model, rw)
		if !ok {
			return
		}
		tag, ok := h.GetLanguage(rw, req)
		if !ok {
			return
		}
		params, err := ParseViewParams(req.URL.Query())
		if err != nil {
			h.HandleEngineError(rw, err)
			return
		}

		collectionPtr := rt.NewSlice()
		repo := h.GetModelRepositoryByType(model.ModelType)
		if dbErr := repo.List(collectionPtr); dbErr != nil {
			h.manageDBError(rw, dbErr)
			return
		}
		collection := reflect.ValueOf(collectionPtr).Elem().Interface()

		if params.Sort != "" {
			collection, err = rt.Sort(params.Sort, collection)
			if err != nil {
				h.HandleEngineError(rw, err)
				return
			}
		}

		var pageMeta *PageMeta
		var pageLinks Links
		if params.Page.requested() {
			size := params.Page.Size
			if size == 0 {
				size = h.Controller.DefaultPageSize
			}
			number := params.Page.Number
			if number == 0 {
				number = 1
			}
			collection, pageMeta, err = PaginateCollection(collection, size, number)
			if err != nil {
				h.HandleEngineError(rw, err)
				return
			}
			pageLinks = PaginationLinks(req.URL.Path, req.URL.Query(), pageMeta)
		}

		doc, err := h.Controller.AssembleCollection(collection, params)
		if err != nil {
			h.HandleEngineError(rw, err)
			return
		}
		if pageMeta != nil {
			doc.Meta = pageMeta.Meta()
			doc.Links = pageLinks
		}
		h.HeaderContentLanguage(rw, tag)
		h.MarshalDocument(doc, rw, req, http.StatusOK)
	}
}

func (h *JSONAPIHandler) Patch(model *ModelHandler) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		rt, ok := h.resourceType(model, rw)
		if !ok {
			return
		}
		payload, ok := h.UnmarshalBody(rw, req)
		if !ok {
			return
		}

		id, _, _ := parseResourcePath(req.URL.Path, rt.Name)
		entity := rt.New()
		repo := h.GetModelRepositoryByType(model.ModelType)
		if dbErr := repo.Get(id, entity); dbErr != nil {
			h.manageDBError(rw, dbErr)
			return
		}

		if err := rt.applyResource(entity, payload); err != nil {
			h.HandleEngineError(rw, err)
			return
		}
		// the path id wins over any id carried in the payload
		if err := rt.SetID(entity, id); err != nil {
			h.HandleEngineError(rw, err)
			return
		}
		if !h.validateEntity(rw, entity) {
			return
		}

		if dbErr := repo.Patch(id, entity); dbErr != nil {
			h.manageDBError(rw, dbErr)
			return
		}

		if model.Patch != nil && model.Patch.GetModifiedResult {
			doc, err := h.Controller.Assemble(entity, nil)
			if err != nil {
				h.HandleEngineError(rw, err)
				return
			}
			h.MarshalDocument(doc, rw, req, http.StatusOK)
			return
		}
		rw.WriteHeader(http.StatusNoContent)
	}
}

func (h *JSONAPIHandler) Delete(model *ModelHandler) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		rt, ok := h.resourceType(model, rw)
		if !ok {
			return
		}
		id, _, _ := parseResourcePath(req.URL.Path, rt.Name)
		entity := rt.New()
		repo := h.GetModelRepositoryByType(model.ModelType)
		if dbErr := repo.Delete(id, entity); dbErr != nil {
			h.manageDBError(rw, dbErr)
			return
		}
		rw.WriteHeader(http.StatusNoContent)
	}
}

func (h *JSONAPIHandler) GetRelated(model *ModelHandler) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		rt, ok := h.resourceType(model, rw)
		if !ok {
			return
		}
		tag, ok := h.GetLanguage(rw, req)
		if !ok {
			return
		}
		params, err := ParseViewParams(req.URL.Query())
		if err != nil {
			h.HandleEngineError(rw, err)
			return
		}

		id, relation, _ := parseResourcePath(req.URL.Path, rt.Name)
		resolver, ok := h.relationshipResolver(rt, relation, rw)
		if !ok {
			return
		}

		entity := rt.New()
		repo := h.GetModelRepositoryByType(model.ModelType)
		if dbErr := repo.Get(id, entity); dbErr != nil {
			h.manageDBError(rw, dbErr)
			return
		}

		related, err := resolver.GetRelated(entity, &RelationContext{Params: params})
		if err != nil {
			h.HandleEngineError(rw, err)
			return
		}

		h.HeaderContentLanguage(rw, tag)
		if !resolver.Many {
			if related == nil {
				h.MarshalDocument(&Document{Data: SingleData(nil)}, rw, req, http.StatusOK)
				return
			}
			doc, err := h.Controller.Assemble(related, params)
			if err != nil {
				h.HandleEngineError(rw, err)
				return
			}
			h.MarshalDocument(doc, rw, req, http.StatusOK)
			return
		}

		var pageMeta *PageMeta
		var pageLinks Links
		if params.Page.requested() {
			size := params.Page.Size
			if size == 0 {
				size = h.Controller.DefaultPageSize
			}
			number := params.Page.Number
			if number == 0 {
				number = 1
			}
			related, pageMeta, err = PaginateCollection(related, size, number)
			if err != nil {
				h.HandleEngineError(rw, err)
				return
			}
			pageLinks = PaginationLinks(req.URL.Path, req.URL.Query(), pageMeta)
		}

		doc, err := h.Controller.AssembleCollection(related, params)
		if err != nil {
			h.HandleEngineError(rw, err)
			return
		}
		if pageMeta != nil {
			doc.Meta = pageMeta.Meta()
			doc.Links = pageLinks
		}
		h.MarshalDocument(doc, rw, req, http.StatusOK)
	}
}

func (h *JSONAPIHandler) GetRelationship(model *ModelHandler) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		rt, ok := h.resourceType(model, rw)
		if !ok {
			return
		}
		params, err := ParseViewParams(req.URL.Query())
		if err != nil {
			h.HandleEngineError(rw, err)
			return
		}

		id, relation, _ := parseResourcePath(req.URL.Path, rt.Name)
		resolver, ok := h.relationshipResolver(rt, relation, rw)
		if !ok {
			return
		}
		relatedType, err := resolver.RelatedType()
		if err != nil {
			h.log.Error(err)
			h.MarshalErrors(rw, ErrInternalError.Copy())
			return
		}

		entity := rt.New()
		repo := h.GetModelRepositoryByType(model.ModelType)
		if dbErr := repo.Get(id, entity); dbErr != nil {
			h.manageDBError(rw, dbErr)
			return
		}

		related, err := resolver.GetRelated(entity, &RelationContext{Params: params})
		if err != nil {
			h.HandleEngineError(rw, err)
			return
		}

		doc := &Document{Links: resolver.BuildRelationshipLinks(entity, rt)}
		if !resolver.Many {
			if related == nil {
				doc.Data = SingleData(nil)
			} else {
				identifier := relatedType.Identifier(related)
				doc.Data = SingleData(&ResourceObject{Type: identifier.Type, ID: identifier.ID})
			}
			h.MarshalDocument(doc, rw, req, http.StatusOK)
			return
		}

		page, requested := params.relationPage(resolver.Name, h.Controller.DefaultPageSize)
		related, pageMeta, err := resolver.ApplyPagination(related, page.Size, page.Number)
		if err != nil {
			h.HandleEngineError(rw, err)
			return
		}
		if requested || params.Page.requested() {
			doc.Meta = pageMeta.Meta()
		}

		v := reflect.ValueOf(related)
		list := make([]*ResourceObject, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			identifier := relatedType.Identifier(v.Index(i).Interface())
			list = append(list, &ResourceObject{Type: identifier.Type, ID: identifier.ID})
		}
		doc.Data = CollectionData(list)
		h.MarshalDocument(doc, rw, req, http.StatusOK)
	}
}

func (h *JSONAPIHandler) PatchRelationship(model *ModelHandler) http.HandlerFunc {
	return h.mutateRelationship(model, func(resolver *RelationshipResolver, entity, related interface{}) error {
		return resolver.SetRelated(entity, related)
	})
}

func (h *JSONAPIHandler) PostRelationship(model *ModelHandler) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		rt, ok := h.resourceType(model, rw)
		if !ok {
			return
		}
		_, relation, _ := parseResourcePath(req.URL.Path, rt.Name)
		resolver, ok := h.relationshipResolver(rt, relation, rw)
		if !ok {
			return
		}
		if !resolver.Many {
			errObj := ErrMethodNotAllowed.Copy()
			errObj.Detail = fmt.Sprintf("Cannot POST to the to-one relationship: '%s'.", resolver.Name)
			h.MarshalErrors(rw, errObj)
			return
		}
		h.mutateRelationship(model, func(resolver *RelationshipResolver, entity, related interface{}) error {
			return resolver.AddRelated(entity, related)
		})(rw, req)
	}
}

func (h *JSONAPIHandler) DeleteRelationship(model *ModelHandler) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		rt, ok := h.resourceType(model, rw)
		if !ok {
			return
		}
		_, relation, _ := parseResourcePath(req.URL.Path, rt.Name)
		resolver, ok := h.relationshipResolver(rt, relation, rw)
		if !ok {
			return
		}
		if !resolver.Many {
			errObj := ErrMethodNotAllowed.Copy()
			errObj.Detail = fmt.Sprintf("Cannot DELETE from the to-one relationship: '%s'.", resolver.Name)
			h.MarshalErrors(rw, errObj)
			return
		}
		h.mutateRelationship(model, func(resolver *RelationshipResolver, entity, related interface{}) error {
			return resolver.RemoveRelated(entity, related)
		})(rw, req)
	}
}

// mutateRelationship is the shared flow of the relationship-manipulation
// endpoints: validate the linkage payload, fetch the owner, apply the
// mutation and persist the owner.
func (h *JSONAPIHandler) mutateRelationship(
	model *ModelHandler,
	mutate func(resolver *RelationshipResolver, entity, related interface{}) error,
) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		rt, ok := h.resourceType(model, rw)
		if !ok {
			return
		}
		id, relation, _ := parseResourcePath(req.URL.Path, rt.Name)
		resolver, ok := h.relationshipResolver(rt, relation, rw)
		if !ok {
			return
		}
		payload, ok := h.UnmarshalBody(rw, req)
		if !ok {
			return
		}

		payload, err := resolver.Validate(payload)
		if err != nil {
			h.HandleEngineError(rw, err)
			return
		}
		related, err := resolver.entitiesFromLinkage(payload)
		if err != nil {
			h.HandleEngineError(rw, err)
			return
		}

		entity := rt.New()
		repo := h.GetModelRepositoryByType(model.ModelType)
		if dbErr := repo.Get(id, entity); dbErr != nil {
			h.manageDBError(rw, dbErr)
			return
		}

		if err := mutate(resolver, entity, related); err != nil {
			h.HandleEngineError(rw, err)
			return
		}
		if dbErr := repo.Patch(id, entity); dbErr != nil {
			h.manageDBError(rw, dbErr)
			return
		}
		rw.WriteHeader(http.StatusNoContent)
	}
}

func (h *JSONAPIHandler) EndpointForbidden(
	model *ModelHandler,
	endpoint EndpointType,
) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		errObj := ErrMethodNotAllowed.Copy()
		errObj.Detail = fmt.Sprintf("Method: '%s' is not allowed for the model: '%s'.", endpoint.String(), model.ModelType.Name())
		h.MarshalErrors(rw, errObj)
	}
}

func (h *JSONAPIHandler) resourceType(model *ModelHandler, rw http.ResponseWriter) (*ResourceType, bool) {
	rt, err := h.Controller.typeByReflect(model.ModelType)
	if err != nil {
		h.log.Error(err)
		h.MarshalErrors(rw, ErrInternalError.Copy())
		return nil, false
	}
	return rt, true
}

func (h *JSONAPIHandler) relationshipResolver(
	rt *ResourceType,
	relation string,
	rw http.ResponseWriter,
) (*RelationshipResolver, bool) {
	resolver := rt.Relationship(relation)
	if resolver == nil {
		errObj := ErrResourceNotFound.Copy()
		errObj.Detail = fmt.Sprintf("Collection: '%s' has no relationship named: '%s'.", rt.Name, relation)
		h.MarshalErrors(rw, errObj)
		return nil, false
	}
	return resolver, true
}
