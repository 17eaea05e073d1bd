package hcl_adapter

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"
)

// newEvalContext exposes the environment as `env` and a few string
// functions to project files, e.g. `password = env.RCON_PWD` or
// `prefix = lower(env.USER)`.
func newEvalContext(env map[string]string) (*hcl.EvalContext, error) {
	envVal, err := gocty.ToCtyValue(env, cty.Map(cty.String))
	if err != nil {
		return nil, fmt.Errorf("unable to convert environment: %w", err)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": envVal,
		},
		Functions: map[string]function.Function{
			"lower":     stdlib.LowerFunc,
			"upper":     stdlib.UpperFunc,
			"trimspace": stdlib.TrimSpaceFunc,
			"coalesce":  stdlib.CoalesceFunc,
			"lookup":    lookupFunc,
		},
	}, nil
}

// lookupFunc returns env-style map values with a fallback:
// lookup(env, "RCON_PWD", "").
var lookupFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "map", Type: cty.Map(cty.String)},
		{Name: "key", Type: cty.String},
		{Name: "default", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		m, key := args[0], args[1]
		if m.IsKnown() && !m.IsNull() && m.HasIndex(key).True() {
			return m.Index(key), nil
		}
		return args[2], nil
	},
})
