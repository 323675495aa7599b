package jsonapiengine

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/neuronlabs/uni-db"
	"golang.org/x/text/language"
)

// Logger is the leveled logging surface the handler consumes. The uni-logger
// wrapper returned by unilogger.MustGetLoggerWrapper provides it, as does
// any logger with the conventional leveled methods.
type Logger interface {
	Info(args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
}

type JSONAPIHandler struct {
	Controller    *Controller
	ModelHandlers map[reflect.Type]*ModelHandler

	log      Logger
	validate *validator.Validate

	repos             map[reflect.Type]Repository
	defaultRepository Repository
	dbErrMgr          *ErrorManager

	SupportedLanguages []language.Tag
	matcher            language.Matcher
}

func NewHandler(
	c *Controller,
	log Logger,
	dbErrMgr *ErrorManager,
) *JSONAPIHandler {
	if dbErrMgr == nil {
		dbErrMgr = NewDBErrorMgr()
	}
	return &JSONAPIHandler{
		Controller:    c,
		ModelHandlers: make(map[reflect.Type]*ModelHandler),
		log:           log,
		validate:      validator.New(),
		repos:         make(map[reflect.Type]Repository),
		dbErrMgr:      dbErrMgr,
	}
}

// AddModelHandlers registers the per-model handlers. Every model must be
// precomputed within the controller first.
func (h *JSONAPIHandler) AddModelHandlers(models ...*ModelHandler) error {
	for _, model := range models {
		if _, err := h.Controller.typeByReflect(model.ModelType); err != nil {
			return err
		}
		h.ModelHandlers[model.ModelType] = model
		if model.Repository != nil {
			h.repos[model.ModelType] = model.Repository
		}
	}
	return nil
}

func (h *JSONAPIHandler) SetDefaultRepo(repository Repository) {
	h.defaultRepository = repository
}

// SetLanguages defines the languages the served content is available in.
// The first tag is the default used when negotiation fails.
func (h *JSONAPIHandler) SetLanguages(tags ...language.Tag) {
	h.SupportedLanguages = tags
	if len(tags) > 0 {
		h.matcher = language.NewMatcher(tags)
	}
}

func (h *JSONAPIHandler) GetModelsRepository(model interface{}) Repository {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return h.getModelRepositoryByType(t)
}

func (h *JSONAPIHandler) GetModelRepositoryByType(modelType reflect.Type) Repository {
	return h.getModelRepositoryByType(modelType)
}

func (h *JSONAPIHandler) getModelRepositoryByType(modelType reflect.Type) Repository {
	repo, ok := h.repos[modelType]
	if !ok {
		repo = h.defaultRepository
	}
	return repo
}

// GetLanguage negotiates the content language from the Accept-Language
// header. On failure an error document is already written.
func (h *JSONAPIHandler) GetLanguage(
	rw http.ResponseWriter,
	req *http.Request,
) (tag language.Tag, ok bool) {
	if h.matcher == nil {
		return language.Und, true
	}
	tags, _, err := language.ParseAcceptLanguage(req.Header.Get("Accept-Language"))
	if err != nil {
		errObj := ErrLanguageNotAcceptable.Copy()
		errObj.Detail = err.Error()
		h.MarshalErrors(rw, errObj)
		return tag, false
	}
	tag, _, _ = h.matcher.Match(tags...)
	return tag, true
}

// HeaderContentLanguage writes the negotiated language onto the response.
func (h *JSONAPIHandler) HeaderContentLanguage(rw http.ResponseWriter, tag language.Tag) {
	if tag != language.Und {
		rw.Header().Set("Content-Language", tag.String())
	}
}

// MarshalDocument writes the document with the response status derived from
// its errors; a document without errors responds with the given status.
func (h *JSONAPIHandler) MarshalDocument(
	doc *Document,
	rw http.ResponseWriter,
	req *http.Request,
	status int,
) {
	SetContentType(rw)
	if doc.JSONAPI == nil {
		doc.JSONAPI = Meta{"version": Version}
	}
	rw.WriteHeader(status)
	if err := json.NewEncoder(rw).Encode(doc); err != nil {
		h.log.Errorf("Error while marshaling document for path: '%s', method: '%s'. Error: %v", req.URL.Path, req.Method, err)
	}
}

// MarshalErrors writes an errors-only document. The response status is the
// errors' shared status, or the most generally applicable one when they
// differ: 500 if any is a 5xx, otherwise 400.
func (h *JSONAPIHandler) MarshalErrors(rw http.ResponseWriter, errs ...*ErrorObject) {
	SetContentType(rw)
	rw.WriteHeader(errorStatus(errs))
	doc := &Document{Errors: errs}
	if err := json.NewEncoder(rw).Encode(doc); err != nil {
		h.log.Errorf("Error while marshaling error document: %v", err)
	}
}

func errorStatus(errs []*ErrorObject) int {
	status := 0
	for _, errObj := range errs {
		code, err := strconv.Atoi(errObj.Status)
		if err != nil {
			code = http.StatusInternalServerError
		}
		switch {
		case status == 0:
			status = code
		case status != code && code >= 500:
			status = http.StatusInternalServerError
		case status != code && status < 500:
			status = http.StatusBadRequest
		}
	}
	if status == 0 {
		status = http.StatusBadRequest
	}
	return status
}

// UnmarshalBody decodes the request body and returns the value of its single
// top-level "data" member. On failure an error document is already written.
func (h *JSONAPIHandler) UnmarshalBody(
	rw http.ResponseWriter,
	req *http.Request,
) (payload interface{}, ok bool) {
	var body map[string]interface{}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		errObj := ErrInvalidJSONDocument.Copy()
		errObj.Detail = "The request body is not a valid JSON document."
		h.MarshalErrors(rw, errObj)
		return nil, false
	}
	payload, found := body["data"]
	if !found {
		errObj := ErrInvalidJSONDocument.Copy()
		errObj.Detail = `The request document must contain a top-level "data" member.`
		h.MarshalErrors(rw, errObj)
		return nil, false
	}
	return payload, true
}

// HandleEngineError maps an assembly or resolution failure onto the wire
// and logs it with severity matching who is at fault.
func (h *JSONAPIHandler) HandleEngineError(rw http.ResponseWriter, err error) {
	switch err.(type) {
	case *ParseError, *DomainError:
		h.log.Info(err)
	case *MissingCapabilityError:
		h.log.Error(err)
	default:
		h.log.Error(err)
	}
	h.MarshalErrors(rw, WireError(err))
}

func (h *JSONAPIHandler) manageDBError(rw http.ResponseWriter, dbErr *unidb.Error) {
	h.log.Info(dbErr)
	errObj, err := h.dbErrMgr.Handle(dbErr)
	if err != nil {
		h.log.Error(dbErr.Message)
		h.MarshalErrors(rw, ErrInternalError.Copy())
		return
	}
	h.MarshalErrors(rw, errObj)
}

// validateEntity runs the struct-tag validation rules on a freshly
// unmarshaled entity. On failure an error document is already written.
func (h *JSONAPIHandler) validateEntity(rw http.ResponseWriter, entity interface{}) bool {
	err := h.validate.Struct(entity)
	if err == nil {
		return true
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		h.log.Errorf("Error while validating an entity: %v", err)
		h.MarshalErrors(rw, ErrInternalError.Copy())
		return false
	}
	errs := make([]*ErrorObject, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		errObj := ErrInvalidInput.Copy()
		errObj.Detail = "Field validation failed on the '" + fieldError.Tag() + "' rule."
		errObj.Source = &ErrorSource{Pointer: "/data/attributes/" + strings.ToLower(fieldError.Field())}
		errs = append(errs, errObj)
	}
	h.MarshalErrors(rw, errs...)
	return false
}

// parseResourcePath extracts the resource id and optional relationship name
// from the request path, relative to the collection segment. Recognized
// shapes after the collection: "/<id>", "/<id>/<relation>" and
// "/<id>/relationships/<relation>".
func parseResourcePath(path, collection string) (id, relation string, isRelationship bool) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, segment := range segments {
		if segment != collection {
			continue
		}
		rest := segments[i+1:]
		switch len(rest) {
		case 0:
			return "", "", false
		case 1:
			return rest[0], "", false
		case 2:
			return rest[0], rest[1], false
		default:
			if rest[1] == "relationships" {
				return rest[0], rest[2], true
			}
			return rest[0], rest[1], false
		}
	}
	return "", "", false
}

// SetContentType sets the media type header on the response.
func SetContentType(rw http.ResponseWriter) {
	rw.Header().Set("Content-Type", MediaType)
}
