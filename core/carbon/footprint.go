package carbon

import (
	"github.com/pkg/errors"

	"github.com/caplc/backend/core/actioncard"
)

var ErrUnknownVariable = errors.New("unknown variable")

// ComputeFootprint walks structure: nested objects are recursed into and string leaves
// name a variable, evaluated through formulas (or read from data if it has no formula).
// The result has the shape of structure.
func ComputeFootprint(structure, formulas map[string]interface{}, data Data) (map[string]interface{}, error) {
	fp := make(map[string]interface{}, len(structure))
	for key, node := range structure {
		v, err := walkFootprint(node, formulas, data)
		if err != nil {
			return nil, errors.Wrapf(err, "computing %s", key)
		}
		fp[key] = v
	}
	return fp, nil
}

func walkFootprint(node interface{}, formulas map[string]interface{}, data Data) (interface{}, error) {
	if m, ok := asMap(node); ok {
		return ComputeFootprint(m, formulas, data)
	}
	name, ok := node.(string)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidRule, "footprint leaves must be variable names, got %T", node)
	}
	return EvaluateVariable(name, formulas, data)
}

// EvaluateVariable evaluates the formula of name, or reads name from data if there is no formula.
func EvaluateVariable(name string, formulas map[string]interface{}, data Data) (interface{}, error) {
	if formula, ok := formulas[name]; ok {
		v, err := Evaluate(formula, data)
		return v, errors.Wrapf(err, "evaluating %s", name)
	}
	if v, ok := data.Get(name); ok {
		return v, nil
	}
	return nil, errors.Wrapf(ErrUnknownVariable, "%q", name)
}

// Merge shallow merges maps; later maps win.
func Merge(maps ...map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// Footprint computes a participant footprint with this model.
// roundGlobals override the model globals, variables are the participant's own
// and operations (from the chosen action cards) are applied in order before computing.
// It returns the footprint and the participant variables once the operations are applied.
func (m Model) Footprint(
	roundGlobals, variables map[string]interface{},
	operations []actioncard.Operation,
) (footprint, finalVariables map[string]interface{}, err error) {
	finalVariables = Merge(variables)
	values := Merge(m.GlobalCarbonVariables, roundGlobals, finalVariables)

	for _, op := range operations {
		data, err := NewData(values)
		if err != nil {
			return nil, nil, err
		}
		v, err := Evaluate(op.Operation, data)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "applying operation on %s", op.Variable)
		}
		finalVariables[op.Variable] = v
		values[op.Variable] = v
	}

	data, err := NewData(values)
	if err != nil {
		return nil, nil, err
	}
	footprint, err = ComputeFootprint(m.FootprintStructure, m.VariableFormulas, data)
	if err != nil {
		return nil, nil, err
	}
	return footprint, finalVariables, nil
}
