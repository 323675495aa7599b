package jsonapiengine

type EndpointType int

const (
	UnknownPath EndpointType = iota
	Create
	Get
	List
	Patch
	Delete
	GetRelated
	GetRelationship
	PatchRelationship
	PostRelationship
	DeleteRelationship
)

func (e EndpointType) String() string {
	var op string
	switch e {
	case Create:
		op = "CREATE"
	case Get:
		op = "GET"
	case List:
		op = "LIST"
	case Patch:
		op = "PATCH"
	case Delete:
		op = "DELETE"
	case GetRelated:
		op = "GET RELATED"
	case GetRelationship:
		op = "GET RELATIONSHIP"
	case PatchRelationship:
		op = "PATCH RELATIONSHIP"
	case PostRelationship:
		op = "POST RELATIONSHIP"
	case DeleteRelationship:
		op = "DELETE RELATIONSHIP"
	default:
		op = "UNKNOWN"
	}
	return op
}

var (
	FullCRUD = []EndpointType{
		Create,
		Get,
		List,
		Patch,
		Delete,
		GetRelated,
		GetRelationship,
		PatchRelationship,
		PostRelationship,
		DeleteRelationship,
	}

	ReadOnly = []EndpointType{
		Get,
		List,
		GetRelated,
		GetRelationship,
	}

	CreateReadUpdate = []EndpointType{
		Create,
		Get,
		List,
		Patch,
		GetRelated,
		GetRelationship,
		PatchRelationship,
		PostRelationship,
		DeleteRelationship,
	}
)
