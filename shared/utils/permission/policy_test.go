package permission

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	for _, resource := range []string{"desk", "allergens", "ingredient", "dish", "category", "garnish"} {
		assert.Equal(t, Anonymous, p.Requirement(resource, List), resource)
		assert.Equal(t, Anonymous, p.Requirement(resource, Retrieve), resource)
		assert.Equal(t, Authenticated, p.Requirement(resource, Create), resource)
		assert.Equal(t, Authenticated, p.Requirement(resource, Update), resource)
		assert.Equal(t, Authenticated, p.Requirement(resource, PartialUpdate), resource)
		assert.Equal(t, Authenticated, p.Requirement(resource, Destroy), resource)
	}

	for _, op := range Operations {
		assert.Equal(t, Authenticated, p.Requirement("user", op), op)
		assert.Equal(t, Anonymous, p.Requirement("order", op), op)
		assert.Equal(t, Anonymous, p.Requirement("invoicedish", op), op)
	}

	assert.Equal(t, Authenticated, p.Requirement("desk", Operation("")))
}

func TestOperationFor(t *testing.T) {
	assert.Equal(t, List, OperationFor(http.MethodGet, false))
	assert.Equal(t, Retrieve, OperationFor(http.MethodGet, true))
	assert.Equal(t, Create, OperationFor(http.MethodPost, false))
	assert.Equal(t, Update, OperationFor(http.MethodPut, true))
	assert.Equal(t, PartialUpdate, OperationFor(http.MethodPatch, true))
	assert.Equal(t, Destroy, OperationFor(http.MethodDelete, true))
	assert.Equal(t, Operation(""), OperationFor(http.MethodOptions, false))
}
