package jsonapiengine

import (
	"errors"
	"sync"

	"github.com/neuronlabs/uni-db"
)

// DefaultErrorMap contain default mapping of unidb.Error prototype into
// ErrorObject. It is used by default by 'ErrorManager' if created using New() function.
var DefaultErrorMap map[unidb.Error]ErrorObject = map[unidb.Error]ErrorObject{
	unidb.ErrNoResult:              ErrResourceNotFound,
	unidb.ErrConnection:               ErrInternalError,
	unidb.ErrCardinalityViolation:  ErrInternalError,
	unidb.ErrDataException:         ErrInvalidInput,
	unidb.ErrIntegrityConstraintViolation:  ErrInvalidInput,
	unidb.ErrRestrictViolation:     ErrInvalidInput,
	unidb.ErrNotNullViolation:      ErrInvalidInput,
	unidb.ErrForeignKeyViolation:   ErrInvalidInput,
	unidb.ErrUniqueViolation:       ErrResourceAlreadyExists,
	unidb.ErrCheckViolation:        ErrInvalidInput,
	unidb.ErrTxState:     ErrInternalError,
	unidb.ErrTxTermination:      ErrInternalError,
	unidb.ErrTxRollback:         ErrInternalError,
	unidb.ErrTxDone:                ErrInternalError,
	unidb.ErrAuthorizationFailed:  ErrInsufficientAccPerm,
	unidb.ErrAuthenticationFailed:       ErrInternalError,
	unidb.ErrInvalidSchemaName:     ErrInternalError,
	unidb.ErrInvalidSyntax:         ErrInternalError,
	unidb.ErrInsufficientPrivilege: ErrInsufficientAccPerm,
	unidb.ErrInsufficientResources: ErrInternalError,
	unidb.ErrProgramLimitExceeded:  ErrInternalError,
	unidb.ErrSystemError:           ErrInternalError,
	unidb.ErrInternalError:         ErrInternalError,
	unidb.ErrUnspecifiedError:      ErrInternalError,
}

// ErrorManager defines the database unidb.Error one-to-one mapping
// into ErrorObject. The default error mapping is defined
// in package variable 'DefaultErrorMap'.
type ErrorManager struct {
	dbToRest map[unidb.Error]ErrorObject
	sync.RWMutex
}

// NewDBErrorMgr creates new error handler with already inited ErrorMap
func NewDBErrorMgr() *ErrorManager {
	return &ErrorManager{dbToRest: DefaultErrorMap}
}

// Handle enables unidb.Error handling so that proper ErrorObject is returned.
// It returns ErrorObject if given database error exists in the private error mapping.
// If provided dberror doesn't have prototype or no mapping exists for given unidb.Error an
// application 'error' would be returned.
// Thread safety by using RWMutex.RLock
func (r *ErrorManager) Handle(dberr *unidb.Error) (*ErrorObject, error) {
	dbProto, err := dberr.GetPrototype()
	if err != nil {
		return nil, err
	}

	r.RLock()
	apierr, ok := r.dbToRest[dbProto]
	r.RUnlock()
	if !ok {
		err = errors.New("Given database error is unrecognised by the handler")
		return nil, err
	}

	return &apierr, nil
}

// LoadCustomErrorMap enables replacement of the ErrorManager default error map.
// This operation is thread safe - with RWMutex.Lock
func (r *ErrorManager) LoadCustomErrorMap(errorMap map[unidb.Error]ErrorObject) {
	r.Lock()
	r.dbToRest = errorMap
	r.Unlock()
}

// UpdateErrorEntry changes single entry in the Error Handler error map.
// This operation is thread safe - with RWMutex.Lock
func (r *ErrorManager) UpdateErrorEntry(
	dberr unidb.Error,
	apierr ErrorObject,
) {
	r.Lock()
	r.dbToRest[dberr] = apierr
	r.Unlock()
}
