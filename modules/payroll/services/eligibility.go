package services

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/harborpay/payroll-core/modules/payroll/domain/types"
)

// eligibilityFilter evaluates a company's CEL eligibility expression per
// employee. An empty expression admits everyone. Compiled once per run.
type eligibilityFilter struct {
	program cel.Program
}

func newEligibilityFilter(expr string) (*eligibilityFilter, error) {
	if expr == "" {
		return &eligibilityFilter{}, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("employee", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, types.NewConfiguration("eligibility: build environment", err)
	}
	ast, iss := env.Compile(expr)
	if iss.Err() != nil {
		return nil, types.NewConfiguration(fmt.Sprintf("eligibility: compile %q", expr), iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, types.NewConfiguration(fmt.Sprintf("eligibility: %q must evaluate to bool", expr), nil)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, types.NewConfiguration("eligibility: build program", err)
	}
	return &eligibilityFilter{program: prg}, nil
}

func (f *eligibilityFilter) admits(e types.Employee) (bool, error) {
	if f.program == nil {
		return true, nil
	}
	out, _, err := f.program.Eval(map[string]any{
		"employee": map[string]any{
			"id":                e.ID,
			"compensation_type": string(e.CompensationType),
			"pay_rate_cents":    e.PayRateCents,
			"work_state":        e.WorkState,
			"allowances":        e.Allowances,
			"active":            e.Active,
		},
	})
	if err != nil {
		return false, types.NewConfiguration("eligibility: evaluate", err)
	}
	allowed, ok := out.Value().(bool)
	if !ok {
		return false, types.NewConfiguration("eligibility: non-bool result", nil)
	}
	return allowed, nil
}
