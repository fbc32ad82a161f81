package introspect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rill-lang/rill/introspect"
	"github.com/rill-lang/rill/value"
)

func TestBuildCatalogSortsByName(t *testing.T) {
	fns := map[string]value.Callable{
		"zeta":  &value.HostFunction{FnName: "zeta"},
		"alpha": &value.HostFunction{FnName: "alpha", Description: "does alpha things"},
	}
	cat := introspect.BuildCatalog(fns)
	require.Len(t, cat, 2)
	assert.Equal(t, "alpha", cat[0].Name)
	assert.Equal(t, "zeta", cat[1].Name)
	assert.True(t, cat[0].Documented)
	assert.False(t, cat[1].Documented)
}

func TestCatalogCoverageRatio(t *testing.T) {
	fns := map[string]value.Callable{
		"a": &value.HostFunction{FnName: "a", Description: "documented"},
		"b": &value.HostFunction{FnName: "b"},
	}
	cat := introspect.BuildCatalog(fns)
	cov := cat.Coverage()
	assert.Equal(t, 2, cov.Total)
	assert.Equal(t, 1, cov.Documented)
	assert.InDelta(t, 0.5, cov.Ratio(), 0.0001)
}

func TestCoverageRatioEmptyCatalogIsOne(t *testing.T) {
	cov := introspect.Coverage{}
	assert.Equal(t, 1.0, cov.Ratio())
}

func TestFunctionInfoIncludesParams(t *testing.T) {
	fns := map[string]value.Callable{
		"add": &value.HostFunction{
			FnName: "add",
			Params: []value.ParamSpec{
				{Name: "a", Type: "number"},
				{Name: "b", Type: ""},
			},
		},
	}
	cat := introspect.BuildCatalog(fns)
	require.Len(t, cat, 1)
	require.Len(t, cat[0].Params, 2)
	assert.Equal(t, "number", cat[0].Params[0].Type)
	assert.Equal(t, "any", cat[0].Params[1].Type)
}

func TestCatalogCoverageTracksParamDocs(t *testing.T) {
	fns := map[string]value.Callable{
		"add": &value.HostFunction{
			FnName: "add",
			Params: []value.ParamSpec{
				{Name: "a", Type: "number", Doc: "first addend"},
				{Name: "b", Type: "number"},
			},
		},
	}
	cat := introspect.BuildCatalog(fns)
	cov := cat.Coverage()
	assert.True(t, cat[0].Params[0].Documented)
	assert.False(t, cat[0].Params[1].Documented)
	assert.Equal(t, 2, cov.ParamsTotal)
	assert.Equal(t, 1, cov.ParamsDocumented)
	assert.InDelta(t, 0.5, cov.ParamRatio(), 0.0001)
}

func TestCurrentVersionInfo(t *testing.T) {
	v := introspect.Current()
	assert.NotEmpty(t, v.SemVer)
}
