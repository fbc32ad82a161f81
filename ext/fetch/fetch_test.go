package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rill-lang/rill/ext/fetch"
	"github.com/rill-lang/rill/value"
)

type nullHost struct{}

func (nullHost) Context() context.Context                    { return context.Background() }
func (nullHost) Get(name string) (value.Value, bool)          { return nil, false }
func (nullHost) Set(name string, v value.Value) error         { return nil }
func (nullHost) Emit(kind string, data map[string]interface{}) {}
func (nullHost) Invoke(callee value.Value, args []value.Value) (value.Value, error) {
	return nil, nil
}

func TestFetchGetReturnsStatusHeadersAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Test", "yes")
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	c := fetch.NewClient()
	regs := c.Registrations()
	require.Len(t, regs, 1)
	get := regs[0]
	assert.Equal(t, "get", get.Name)

	result, err := get.Fn(context.Background(), nullHost{}, []value.Value{value.String{Value: srv.URL}})
	require.NoError(t, err)

	d, ok := result.(*value.Dict)
	require.True(t, ok)

	status, _ := d.Get("status")
	assert.Equal(t, value.Number{Value: float64(http.StatusTeapot)}, status)

	body, _ := d.Get("body")
	assert.Equal(t, value.String{Value: "hello"}, body)

	headers, _ := d.Get("headers")
	hd, ok := headers.(*value.Dict)
	require.True(t, ok)
	xtest, exists := hd.Get("x-test")
	require.True(t, exists)
	assert.Equal(t, value.String{Value: "yes"}, xtest)
}

func TestFetchGetSendsRequestHeaders(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := fetch.NewClient()
	get := c.Registrations()[0]

	headers := value.NewDict().With("Authorization", value.String{Value: "Bearer token"})
	_, err := get.Fn(context.Background(), nullHost{}, []value.Value{value.String{Value: srv.URL}, headers})
	require.NoError(t, err)
	assert.Equal(t, "Bearer token", seen)
}

func TestFetchGetRequiresURLArgument(t *testing.T) {
	c := fetch.NewClient()
	get := c.Registrations()[0]
	_, err := get.Fn(context.Background(), nullHost{}, nil)
	assert.Error(t, err)
}
