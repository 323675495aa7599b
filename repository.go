package jsonapiengine

import (
	"github.com/neuronlabs/uni-db"
)

// Repository is the persistence boundary of the handler. Implementations
// load and store whole entities together with their tagged relationship
// fields; the engine takes care of the wire representation.
type Repository interface {
	Create(entity interface{}) *unidb.Error
	Get(id string, entity interface{}) *unidb.Error
	List(collection interface{}) *unidb.Error
	Patch(id string, entity interface{}) *unidb.Error
	Delete(id string, entity interface{}) *unidb.Error
}
