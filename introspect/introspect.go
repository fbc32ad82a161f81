// Package introspect builds host-facing documentation and coverage
// reports over a runtime.Context's registered functions — the
// "what can this embedding call" surface a CLI's --list-functions flag
// or an editor's completion list would want. It never touches Go
// source; it reflects only what has actually been registered through
// package host, cataloging already-registered callables for
// documentation rather than inspecting Go packages for codegen.
package introspect

import (
	"sort"

	"github.com/rill-lang/rill/value"
)

// FunctionInfo describes one registered callable for documentation or
// --list-functions output.
type FunctionInfo struct {
	Name        string
	Params      []ParamInfo
	ReturnType  string
	Description string
	Documented  bool
}

// ParamInfo is the documentation-facing projection of a value.ParamSpec.
type ParamInfo struct {
	Name       string
	Type       string
	Doc        string
	Documented bool
	HasDefault bool
}

// Catalog is a sorted, deterministic snapshot of a registered function
// set, the shape a --list-functions CLI flag or doc generator walks.
type Catalog []FunctionInfo

// BuildCatalog builds a sorted Catalog from a registered function set
// (runtime.Context.Functions or host.Registry.Functions()).
func BuildCatalog(fns map[string]value.Callable) Catalog {
	names := make([]string, 0, len(fns))
	for name := range fns {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(Catalog, 0, len(names))
	for _, name := range names {
		out = append(out, functionInfo(name, fns[name]))
	}
	return out
}

// Coverage sums the catalog's documented-vs-total functions.
func (c Catalog) Coverage() Coverage {
	return MeasureCoverage(c)
}

func functionInfo(name string, c value.Callable) FunctionInfo {
	info := FunctionInfo{Name: name}
	for _, p := range c.CallableParams() {
		info.Params = append(info.Params, ParamInfo{
			Name:       p.Name,
			Type:       displayType(p.Type),
			Doc:        p.Doc,
			Documented: p.Doc != "",
			HasDefault: p.HasDefault(),
		})
	}
	if hf, ok := c.(*value.HostFunction); ok {
		info.Description = hf.Description
		info.ReturnType = hf.ReturnType
		info.Documented = hf.Description != ""
	}
	if rb, ok := c.(*value.RuntimeBuiltin); ok {
		info.Description = rb.Description
		info.Documented = rb.Description != ""
	}
	return info
}

func displayType(t string) string {
	if t == "" {
		return "any"
	}
	return t
}

// Coverage summarizes how much of a catalog carries a human-readable
// description and per-param documentation, the signal a "doc coverage"
// CLI report would surface.
type Coverage struct {
	Total            int
	Documented       int
	ParamsTotal      int
	ParamsDocumented int
}

// Ratio returns Documented/Total, or 1.0 for an empty catalog (vacuously
// fully documented).
func (c Coverage) Ratio() float64 {
	if c.Total == 0 {
		return 1
	}
	return float64(c.Documented) / float64(c.Total)
}

// ParamRatio returns ParamsDocumented/ParamsTotal, or 1.0 when no
// function declares any parameters (vacuously fully documented).
func (c Coverage) ParamRatio() float64 {
	if c.ParamsTotal == 0 {
		return 1
	}
	return float64(c.ParamsDocumented) / float64(c.ParamsTotal)
}

// MeasureCoverage walks a catalog and tallies Coverage, including each
// function's per-param documentation.
func MeasureCoverage(catalog []FunctionInfo) Coverage {
	cov := Coverage{Total: len(catalog)}
	for _, fn := range catalog {
		if fn.Documented {
			cov.Documented++
		}
		for _, p := range fn.Params {
			cov.ParamsTotal++
			if p.Documented {
				cov.ParamsDocumented++
			}
		}
	}
	return cov
}

// VersionInfo is the runtime/build identification a host embedding or
// CLI surfaces via --version, populated via -ldflags at build time.
type VersionInfo struct {
	SemVer    string
	Commit    string
	BuildTime string
}

// SemVer, Commit and BuildTime are set at build time via -ldflags;
// these are the fallbacks a development build reports.
var (
	SemVer    = "0.0.0-dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Current returns the process's VersionInfo.
func Current() VersionInfo {
	return VersionInfo{SemVer: SemVer, Commit: Commit, BuildTime: BuildTime}
}
