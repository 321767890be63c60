package postman

import "github.com/mark3labs/conjure-postman/internal/conjure"

// Arguments is an endpoint's argument list bucketed by parameter kind.
// Every input argument lands in exactly one bucket.
type Arguments struct {
	// Body is the first body argument, nil when there is none.
	Body   *conjure.ArgumentDefinition
	Path   []conjure.ArgumentDefinition
	Query  []conjure.ArgumentDefinition
	Header []conjure.ArgumentDefinition
	// Ignored holds arguments that do not affect the request: extra body
	// arguments after the first and parameter kinds this build does not know.
	Ignored []conjure.ArgumentDefinition
}

// ClassifyArguments buckets args by their parameter type, keeping
// declaration order within each bucket.
func ClassifyArguments(args []conjure.ArgumentDefinition) Arguments {
	var out Arguments
	for i := range args {
		arg := args[i]
		switch arg.ParamType.(type) {
		case conjure.BodyParameter:
			if out.Body == nil {
				out.Body = &arg
				continue
			}
			out.Ignored = append(out.Ignored, arg)
		case conjure.PathParameter:
			out.Path = append(out.Path, arg)
		case conjure.QueryParameter:
			out.Query = append(out.Query, arg)
		case conjure.HeaderParameter:
			out.Header = append(out.Header, arg)
		default:
			out.Ignored = append(out.Ignored, arg)
		}
	}
	return out
}
