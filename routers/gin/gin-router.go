package ginjsonapi

import (
	"fmt"

	"github.com/gin-gonic/gin"

	jsonapiengine "github.com/apihedron/jsonapi-engine"
)

// RouteHandler mounts every registered model handler onto the gin engine and
// fills the controller's route set, so resource and relationship links can
// be reversed during assembly. A nil endpoint on a model handler mounts the
// method-not-allowed handler instead.
func RouteHandler(router *gin.Engine, handler *jsonapiengine.JSONAPIHandler) error {
	routes := jsonapiengine.NewRouteSet(handler.Controller.APIURLBase)
	handler.Controller.Routes = routes

	for _, model := range handler.ModelHandlers {
		rt, err := handler.Controller.TypeByModelType(model.ModelType)
		if err != nil {
			return fmt.Errorf("Model: '%s' not precomputed.", model.ModelType.Name())
		}
		collection := rt.Name
		base := handler.Controller.APIURLBase + "/" + collection

		// CREATE
		if model.Create != nil {
			router.POST(base, gin.WrapF(handler.Create(model)))
		} else {
			router.POST(base, gin.WrapF(handler.EndpointForbidden(model, jsonapiengine.Create)))
		}

		// GET
		if model.Get != nil {
			router.GET(base+"/:id", gin.WrapF(handler.Get(model)))
		} else {
			router.GET(base+"/:id", gin.WrapF(handler.EndpointForbidden(model, jsonapiengine.Get)))
		}
		routes.Register(collection+"-detail", "/"+collection+"/:id")

		// LIST
		if model.List != nil {
			router.GET(base, gin.WrapF(handler.List(model)))
		} else {
			router.GET(base, gin.WrapF(handler.EndpointForbidden(model, jsonapiengine.List)))
		}
		routes.Register(collection+"-list", "/"+collection)

		// PATCH
		if model.Patch != nil {
			router.PATCH(base+"/:id", gin.WrapF(handler.Patch(model)))
		} else {
			router.PATCH(base+"/:id", gin.WrapF(handler.EndpointForbidden(model, jsonapiengine.Patch)))
		}

		// DELETE
		if model.Delete != nil {
			router.DELETE(base+"/:id", gin.WrapF(handler.Delete(model)))
		} else {
			router.DELETE(base+"/:id", gin.WrapF(handler.EndpointForbidden(model, jsonapiengine.Delete)))
		}

		// RELATIONSHIP & RELATED
		for _, rel := range rt.RelationshipNames() {
			relatedPath := base + "/:id/" + rel
			relationshipPath := base + "/:id/relationships/" + rel
			routes.Register(fmt.Sprintf("%s-related-%s", collection, rel), "/"+collection+"/:id/"+rel)
			routes.Register(fmt.Sprintf("%s-relationships-%s", collection, rel), "/"+collection+"/:id/relationships/"+rel)

			if model.GetRelated != nil {
				router.GET(relatedPath, gin.WrapF(handler.GetRelated(model)))
			} else {
				router.GET(relatedPath, gin.WrapF(handler.EndpointForbidden(model, jsonapiengine.GetRelated)))
			}

			if model.GetRelationship != nil {
				router.GET(relationshipPath, gin.WrapF(handler.GetRelationship(model)))
			} else {
				router.GET(relationshipPath, gin.WrapF(handler.EndpointForbidden(model, jsonapiengine.GetRelationship)))
			}

			if model.PatchRelationship != nil {
				router.PATCH(relationshipPath, gin.WrapF(handler.PatchRelationship(model)))
			} else {
				router.PATCH(relationshipPath, gin.WrapF(handler.EndpointForbidden(model, jsonapiengine.PatchRelationship)))
			}

			if model.PostRelationship != nil {
				router.POST(relationshipPath, gin.WrapF(handler.PostRelationship(model)))
			} else {
				router.POST(relationshipPath, gin.WrapF(handler.EndpointForbidden(model, jsonapiengine.PostRelationship)))
			}

			if model.DeleteRelationship != nil {
				router.DELETE(relationshipPath, gin.WrapF(handler.DeleteRelationship(model)))
			} else {
				router.DELETE(relationshipPath, gin.WrapF(handler.EndpointForbidden(model, jsonapiengine.DeleteRelationship)))
			}
		}
	}
	return nil
}
