package permission

import "net/http"

// Operation is a CRUD action on a resource.
type Operation string

const (
	List          Operation = "list"
	Retrieve      Operation = "retrieve"
	Create        Operation = "create"
	Update        Operation = "update"
	PartialUpdate Operation = "partial_update"
	Destroy       Operation = "destroy"
)

// Operations lists every operation the policy knows about.
var Operations = []Operation{List, Retrieve, Create, Update, PartialUpdate, Destroy}

// IsRead reports whether op does not modify data.
func (op Operation) IsRead() bool {
	return op == List || op == Retrieve
}

// OperationFor maps an HTTP method to an operation. hasID tells a collection
// route from an item route. Unknown methods map to "".
func OperationFor(method string, hasID bool) Operation {
	switch method {
	case http.MethodGet, http.MethodHead:
		if hasID {
			return Retrieve
		}
		return List
	case http.MethodPost:
		return Create
	case http.MethodPut:
		return Update
	case http.MethodPatch:
		return PartialUpdate
	case http.MethodDelete:
		return Destroy
	}
	return ""
}

// Requirement is what a caller must present to perform an operation.
type Requirement int

const (
	// Anonymous lets anyone through; a valid token still resolves a principal.
	Anonymous Requirement = iota
	// Authenticated requires a verified access token of an active user.
	Authenticated
)

func (r Requirement) String() string {
	if r == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Policy maps (resource, operation) to a Requirement. Resources without an
// explicit rule use the default: reads are anonymous, mutations are authenticated.
type Policy struct {
	rules map[string]map[Operation]Requirement
}

func NewPolicy() *Policy {
	return &Policy{rules: make(map[string]map[Operation]Requirement)}
}

// Set overrides the requirement for one operation on resource.
func (p *Policy) Set(resource string, op Operation, req Requirement) *Policy {
	ops, ok := p.rules[resource]
	if !ok {
		ops = make(map[Operation]Requirement)
		p.rules[resource] = ops
	}
	ops[op] = req
	return p
}

// SetAll overrides every operation on resource.
func (p *Policy) SetAll(resource string, req Requirement) *Policy {
	for _, op := range Operations {
		p.Set(resource, op, req)
	}
	return p
}

// Requirement returns the rule for (resource, op). Unknown operations are authenticated.
func (p *Policy) Requirement(resource string, op Operation) Requirement {
	if req, ok := p.rules[resource][op]; ok {
		return req
	}
	if op.IsRead() {
		return Anonymous
	}
	return Authenticated
}

// DefaultPolicy is the policy of the restaurant API.
func DefaultPolicy() *Policy {
	p := NewPolicy().SetAll("user", Authenticated)
	for _, resource := range []string{"order", "orderdish", "invoice", "invoicedish"} {
		p.SetAll(resource, Anonymous)
	}
	return p
}
