package scanner

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/VaitaR/chainscan/pkg/common/types"
)

// Transform names a wire-encoding transformer for one logical parameter.
// The set is closed; providers that need unusual encodings reference one of
// these by name in their specs.
type Transform string

const (
	// TransformHexNum renders an integer (or decimal string) as an
	// 0x-prefixed hex quantity, the form proxy-module block tags require.
	TransformHexNum Transform = "hexnum"
)

// EndpointSpec declaratively describes one logical method on one provider:
// the HTTP shape, the parameter renaming, and the response parser. Specs are
// data; the dispatch interpreter in Scanner never special-cases a provider.
type EndpointSpec struct {
	HTTPMethod string            // GET or POST
	Path       string            // may contain {name} placeholders
	Query      map[string]string // static query skeleton
	ParamMap   map[string]string // logical name -> wire name
	PathParams []string          // logical names substituted into Path
	Transforms map[string]Transform
	Parser     Parser
	Cacheable  bool
}

// BuildRequest renders logical params into a concrete path and query:
// transforms are applied, recognized keys are renamed per ParamMap, unknown
// keys are forwarded verbatim, path-bound keys are substituted (URL-encoded)
// and removed from the query, and the static skeleton fills the rest.
// A placeholder left unbound is an InvalidArgument, raised before any I/O.
func (s *EndpointSpec) BuildRequest(params map[string]any) (string, url.Values, error) {
	query := url.Values{}
	for k, v := range s.Query {
		query.Set(k, v)
	}

	pathBound := make(map[string]bool, len(s.PathParams))
	for _, p := range s.PathParams {
		pathBound[p] = true
	}

	path := s.Path
	for name, value := range params {
		if value == nil {
			continue
		}
		wire, err := s.encode(name, value)
		if err != nil {
			return "", nil, err
		}
		if pathBound[name] {
			placeholder := "{" + name + "}"
			if !strings.Contains(path, placeholder) {
				return "", nil, &types.Error{
					Kind:    types.KindInvalidArgument,
					Message: fmt.Sprintf("parameter %q is path-bound but %q has no placeholder", name, s.Path),
				}
			}
			path = strings.ReplaceAll(path, placeholder, url.PathEscape(wire))
			continue
		}
		if mapped, ok := s.ParamMap[name]; ok {
			query.Set(mapped, wire)
		} else {
			// Provider-specific extension: forward under the caller's name.
			query.Set(name, wire)
		}
	}

	if i := strings.IndexByte(path, '{'); i >= 0 {
		end := strings.IndexByte(path[i:], '}')
		missing := path[i:]
		if end >= 0 {
			missing = path[i : i+end+1]
		}
		return "", nil, &types.Error{
			Kind:    types.KindInvalidArgument,
			Message: fmt.Sprintf("missing required path parameter %s", missing),
		}
	}
	return path, query, nil
}

func (s *EndpointSpec) encode(name string, value any) (string, error) {
	if t, ok := s.Transforms[name]; ok && t == TransformHexNum {
		return encodeHexNum(name, value)
	}
	return stringify(value), nil
}

func encodeHexNum(name string, value any) (string, error) {
	switch v := value.(type) {
	case int:
		return "0x" + strconv.FormatInt(int64(v), 16), nil
	case int64:
		return "0x" + strconv.FormatInt(v, 16), nil
	case uint64:
		return "0x" + strconv.FormatUint(v, 16), nil
	case string:
		if strings.HasPrefix(v, "0x") || strings.HasPrefix(v, "0X") {
			return v, nil
		}
		// Named tags (latest, earliest, pending) pass through.
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return "0x" + strconv.FormatUint(n, 16), nil
		}
		return v, nil
	default:
		return "", &types.Error{
			Kind:    types.KindInvalidArgument,
			Message: fmt.Sprintf("parameter %q: cannot hex-encode %T", name, value),
		}
	}
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
