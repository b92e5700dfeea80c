package carbon

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caplc/backend/core"
	"github.com/caplc/backend/core/actioncard"
)

func rule(t *testing.T, s string) interface{} {
	t.Helper()
	var r interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &r))
	return r
}

func TestEvaluate(t *testing.T) {
	data, err := NewData(map[string]interface{}{
		"km":      10000.0,
		"meat":    "100",
		"vegan":   false,
		"diet":    "omnivore",
		"car":     map[string]interface{}{"fuel": "diesel", "factor": 0.2},
		"flights": []interface{}{2.0, 3.0},
		"zero":    0.0,
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		rule    string
		want    interface{}
		wantErr error
	}{
		{name: "literal", rule: `42`, want: 42.0},
		{name: "string literal", rule: `"lol"`, want: "lol"},
		{name: "var", rule: `{"var": "km"}`, want: 10000.0},
		{name: "var list", rule: `{"var": ["km"]}`, want: 10000.0},
		{name: "nested var", rule: `{"var": "car.factor"}`, want: 0.2},
		{name: "array index", rule: `{"var": "flights.1"}`, want: 3.0},
		{name: "missing var", rule: `{"var": "lol"}`, want: nil},
		{name: "var default", rule: `{"var": ["lol", 7]}`, want: 7.0},
		{name: "sum", rule: `{"+": [1, 2, {"var": "km"}]}`, want: 10003.0},
		{name: "string operand", rule: `{"*": [{"var": "meat"}, 2]}`, want: 200.0},
		{name: "product of vars", rule: `{"*": [{"var": "km"}, {"var": "car.factor"}]}`, want: 2000.0},
		{name: "minus", rule: `{"-": [10, 4]}`, want: 6.0},
		{name: "negate", rule: `{"-": 3}`, want: -3.0},
		{name: "divide", rule: `{"/": [9, 3]}`, want: 3.0},
		{name: "modulo", rule: `{"%": [10, 4]}`, want: 2.0},
		{name: "min", rule: `{"min": [3, 1, 2]}`, want: 1.0},
		{name: "max", rule: `{"max": [3, 1, 2]}`, want: 3.0},
		{name: "cat", rule: `{"cat": ["a", 1, true]}`, want: "a1true"},
		{name: "loose equal", rule: `{"==": [{"var": "meat"}, 100]}`, want: true},
		{name: "strict equal", rule: `{"===": [{"var": "meat"}, 100]}`, want: false},
		{name: "not equal", rule: `{"!=": [{"var": "diet"}, "vegan"]}`, want: true},
		{name: "less than", rule: `{"<": [1, 2]}`, want: true},
		{name: "between", rule: `{"<=": [1, 5, 3]}`, want: false},
		{name: "not", rule: `{"!": [{"var": "vegan"}]}`, want: true},
		{name: "double not", rule: `{"!!": [{"var": "flights"}]}`, want: true},
		{name: "and", rule: `{"and": [true, {"var": "zero"}, "lol"]}`, want: 0.0},
		{name: "or", rule: `{"or": [false, "", {"var": "diet"}]}`, want: "omnivore"},
		{name: "in list", rule: `{"in": [3, {"var": "flights"}]}`, want: true},
		{name: "in string", rule: `{"in": ["vore", {"var": "diet"}]}`, want: true},
		{
			name: "if",
			rule: `{"if": [{"==": [{"var": "car.fuel"}, "petrol"]}, 1, {"==": [{"var": "car.fuel"}, "diesel"]}, 2, 3]}`,
			want: 2.0,
		},
		{name: "if else", rule: `{"if": [false, 1, 3]}`, want: 3.0},
		{name: "ternary", rule: `{"?:": [true, "yes", "no"]}`, want: "yes"},
		{name: "array", rule: `[1, {"var": "km"}]`, want: []interface{}{1.0, 10000.0}},
		{name: "division by zero", rule: `{"/": [1, {"var": "zero"}]}`, wantErr: ErrDivisionByZero},
		{name: "modulo by zero", rule: `{"%": [1, 0]}`, wantErr: ErrDivisionByZero},
		{name: "unknown operator", rule: `{"lol": [1, 2]}`, wantErr: ErrUnknownOperator},
		{name: "two keys object literal", rule: `{"+": [1], "-": [1]}`, want: map[string]interface{}{"+": []interface{}{1.0}, "-": []interface{}{1.0}}},
		{name: "empty object literal", rule: `{}`, want: map[string]interface{}{}},
		{name: "object literal in list", rule: `[{}, {"var": "km"}]`, want: []interface{}{map[string]interface{}{}, 10000.0}},
		{name: "not a number", rule: `{"+": [1, {"var": "diet"}]}`, wantErr: ErrNotANumber},
		{name: "null operand", rule: `{"*": [1, {"var": "lol"}]}`, wantErr: ErrNotANumber},
		{name: "binary arity", rule: `{"/": [1, 2, 3]}`, wantErr: ErrInvalidRule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(rule(t, tt.rule), data)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeFootprint(t *testing.T) {
	structure := map[string]interface{}{
		"food":      "foodFootprint",
		"transport": map[string]interface{}{"car": "carFootprint", "plane": "plane"},
	}
	formulas := map[string]interface{}{
		"foodFootprint": rule(t, `{"*": [{"var": "meat"}, 2]}`),
		"carFootprint":  rule(t, `{"*": [{"var": "km"}, 0.2]}`),
	}

	data, err := NewData(map[string]interface{}{"meat": 50, "km": 100, "plane": 1.5})
	require.NoError(t, err)
	fp, err := ComputeFootprint(structure, formulas, data)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"food":      100.0,
		"transport": map[string]interface{}{"car": 20.0, "plane": 1.5},
	}, fp)

	data, err = NewData(map[string]interface{}{"meat": 50, "km": 100})
	require.NoError(t, err)
	_, err = ComputeFootprint(structure, formulas, data)
	assert.Equal(t, ErrUnknownVariable, errors.Cause(err))

	_, err = ComputeFootprint(map[string]interface{}{"food": 1}, formulas, data)
	assert.Equal(t, ErrInvalidRule, errors.Cause(err))
}

func TestModel_Footprint(t *testing.T) {
	m := Model{
		FootprintStructure: map[string]interface{}{
			"food":      "foodFootprint",
			"transport": map[string]interface{}{"car": "carFootprint"},
		},
		GlobalCarbonVariables: map[string]interface{}{"meatFactor": 2.0, "carFactor": 0.2},
		VariableFormulas: map[string]interface{}{
			"foodFootprint": rule(t, `{"*": [{"var": "meat"}, {"var": "meatFactor"}]}`),
			"carFootprint":  rule(t, `{"*": [{"var": "km"}, {"var": "carFactor"}]}`),
		},
	}
	variables := map[string]interface{}{"meat": 100.0, "km": 10000.0}

	t.Run("no operations", func(t *testing.T) {
		fp, final, err := m.Footprint(nil, variables, nil)
		require.NoError(t, err)
		assert.InDelta(t, 200, fp["food"], 1e-9)
		assert.InDelta(t, 2000, fp["transport"].(map[string]interface{})["car"], 1e-9)
		assert.Equal(t, variables, final)
	})

	t.Run("round globals win", func(t *testing.T) {
		fp, _, err := m.Footprint(map[string]interface{}{"meatFactor": 1.0}, variables, nil)
		require.NoError(t, err)
		assert.InDelta(t, 100, fp["food"], 1e-9)
	})

	t.Run("operations apply in order", func(t *testing.T) {
		ops := []actioncard.Operation{
			{Variable: "km", Operation: rule(t, `{"-": [{"var": "km"}, 1000]}`)},
			{Variable: "km", Operation: rule(t, `{"/": [{"var": "km"}, 3]}`)},
			{Variable: "carFactor", Operation: 0.1},
		}
		fp, final, err := m.Footprint(nil, variables, ops)
		require.NoError(t, err)
		assert.InDelta(t, 300, fp["transport"].(map[string]interface{})["car"], 1e-9)
		assert.InDelta(t, 3000, final["km"], 1e-9)
		assert.Equal(t, 10000.0, variables["km"], "input variables are left untouched")
	})

	t.Run("failing operation", func(t *testing.T) {
		ops := []actioncard.Operation{{Variable: "km", Operation: rule(t, `{"/": [{"var": "km"}, 0]}`)}}
		_, _, err := m.Footprint(nil, variables, ops)
		assert.Equal(t, ErrDivisionByZero, errors.Cause(err))
	})
}

func TestValidateModel(t *testing.T) {
	m := Model{
		FootprintStructure:    map[string]interface{}{"food": "foodFootprint", "sub": map[string]interface{}{"x": "x"}},
		GlobalCarbonVariables: map[string]interface{}{"x": 1.0},
		VariableFormulas:      map[string]interface{}{"foodFootprint": 1.0},
	}
	assert.NoError(t, ValidateModel(m))

	m.FootprintStructure["other"] = "lol"
	err := ValidateModel(m)
	assert.EqualError(t, err, `footprintStructure.other: variable "lol" has no formula`)
	var valErr *core.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, map[string]string{"footprintStructure.other": `variable "lol" has no formula`}, valErr.FieldMap())

	m.FootprintStructure["other"] = 1.0
	assert.EqualError(t, ValidateModel(m), "footprintStructure.other: leaves must be variable names")
}
