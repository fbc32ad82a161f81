package vectorstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rill-lang/rill/ext/vectorstore"
	"github.com/rill-lang/rill/value"
)

type nullHost struct{}

func (nullHost) Context() context.Context                      { return context.Background() }
func (nullHost) Get(name string) (value.Value, bool)            { return nil, false }
func (nullHost) Set(name string, v value.Value) error           { return nil }
func (nullHost) Emit(kind string, data map[string]interface{})   {}
func (nullHost) Invoke(callee value.Value, args []value.Value) (value.Value, error) {
	return nil, nil
}

func registration(t *testing.T, s *vectorstore.Store, name string) func(args ...value.Value) (value.Value, error) {
	t.Helper()
	for _, r := range s.Registrations() {
		if r.Name == name {
			rr := r
			return func(args ...value.Value) (value.Value, error) {
				return rr.Fn(context.Background(), nullHost{}, args)
			}
		}
	}
	t.Fatalf("no registration named %q", name)
	return nil
}

func TestPutAndQueryReturnsNearestFirst(t *testing.T) {
	store, err := vectorstore.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	put := registration(t, store, "put")
	query := registration(t, store, "query")

	_, err = put(value.String{Value: "a"}, &value.Vector{Values: []float32{1, 0}})
	require.NoError(t, err)
	_, err = put(value.String{Value: "b"}, &value.Vector{Values: []float32{0, 1}})
	require.NoError(t, err)

	result, err := query(&value.Vector{Values: []float32{1, 0}}, value.Number{Value: 2})
	require.NoError(t, err)

	list, ok := result.(*value.List)
	require.True(t, ok)
	require.Len(t, list.Elements, 2)

	first := list.Elements[0].(*value.Dict)
	id, _ := first.Get("id")
	assert.Equal(t, value.String{Value: "a"}, id)
}

func TestPutOverwritesExistingID(t *testing.T) {
	store, err := vectorstore.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	put := registration(t, store, "put")
	query := registration(t, store, "query")

	_, err = put(value.String{Value: "a"}, &value.Vector{Values: []float32{1, 0}})
	require.NoError(t, err)
	_, err = put(value.String{Value: "a"}, &value.Vector{Values: []float32{0, 1}})
	require.NoError(t, err)

	result, err := query(&value.Vector{Values: []float32{0, 1}}, value.Number{Value: 5})
	require.NoError(t, err)
	list := result.(*value.List)
	require.Len(t, list.Elements, 1)
}

func TestDisposeRemovesEntry(t *testing.T) {
	store, err := vectorstore.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	put := registration(t, store, "put")
	dispose := registration(t, store, "dispose")
	query := registration(t, store, "query")

	_, err = put(value.String{Value: "a"}, &value.Vector{Values: []float32{1, 0}})
	require.NoError(t, err)
	_, err = dispose(value.String{Value: "a"})
	require.NoError(t, err)

	result, err := query(&value.Vector{Values: []float32{1, 0}}, value.Number{Value: 5})
	require.NoError(t, err)
	list := result.(*value.List)
	assert.Len(t, list.Elements, 0)
}
