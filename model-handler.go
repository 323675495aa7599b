package jsonapiengine

import (
	"errors"
	"fmt"
	"reflect"

	"golang.org/x/text/language"
)

// ModelHandler binds one registered model to its repository and to the
// endpoints exposed for it. A nil endpoint means the operation is forbidden.
type ModelHandler struct {
	ModelType reflect.Type

	Create *Endpoint
	Get    *Endpoint
	List   *Endpoint
	Patch  *Endpoint
	Delete *Endpoint

	GetRelated         *Endpoint
	GetRelationship    *Endpoint
	PatchRelationship  *Endpoint
	PostRelationship   *Endpoint
	DeleteRelationship *Endpoint

	Repository Repository

	Languages []language.Tag
}

func NewModelHandler(
	model interface{},
	repository Repository,
	endpoints []EndpointType,
) (m *ModelHandler, err error) {
	m = new(ModelHandler)

	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		err = errors.New("Invalid model provided. Model must be struct or a pointer to struct.")
		return
	}

	m.ModelType = t
	m.Repository = repository
	for _, endpoint := range endpoints {
		if err = m.AddEndpoint(&Endpoint{Type: endpoint}); err != nil {
			return
		}
	}
	return
}

// AddEndpoint enables the endpoint of the given type for this model.
func (m *ModelHandler) AddEndpoint(endpoint *Endpoint) error {
	switch endpoint.Type {
	case Create:
		m.Create = endpoint
	case Get:
		m.Get = endpoint
	case List:
		m.List = endpoint
	case Patch:
		m.Patch = endpoint
	case Delete:
		m.Delete = endpoint
	case GetRelated:
		m.GetRelated = endpoint
	case GetRelationship:
		m.GetRelationship = endpoint
	case PatchRelationship:
		m.PatchRelationship = endpoint
	case PostRelationship:
		m.PostRelationship = endpoint
	case DeleteRelationship:
		m.DeleteRelationship = endpoint
	default:
		return fmt.Errorf("Provided invalid endpoint type for model: %s", m.ModelType.Name())
	}
	return nil
}
