package carbon

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

var (
	ErrUnknownOperator = errors.New("unknown operator")
	ErrDivisionByZero  = errors.New("division by zero")
	ErrInvalidRule     = errors.New("invalid rule")
	ErrNotANumber      = errors.New("not a number")
)

// Data is the document formulas read their variables from.
type Data struct {
	raw []byte
}

func NewData(values map[string]interface{}) (Data, error) {
	if values == nil {
		values = map[string]interface{}{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return Data{}, errors.Wrap(err, "encoding formula data")
	}
	return Data{raw: raw}, nil
}

// Get returns the value at the dot separated path ("a.b.0"). The empty path returns the whole document.
func (d Data) Get(path string) (interface{}, bool) {
	if path == "" {
		return gjson.ParseBytes(d.raw).Value(), true
	}
	res := gjson.GetBytes(d.raw, path)
	if !res.Exists() {
		return nil, false
	}
	return res.Value(), true
}

// Evaluate evaluates a JSON-logic rule against data.
// Literals evaluate to themselves, arrays element-wise, and {"op": args} objects apply op.
func Evaluate(rule interface{}, data Data) (interface{}, error) {
	// objects without exactly one key are literals
	if m, ok := asMap(rule); ok && len(m) == 1 {
		for op, rawArgs := range m {
			return apply(op, asArgs(rawArgs), data)
		}
	}
	if list, ok := asSlice(rule); ok {
		out := make([]interface{}, 0, len(list))
		for _, item := range list {
			v, err := Evaluate(item, data)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	return rule, nil
}

func evalAll(args []interface{}, data Data) ([]interface{}, error) {
	values := make([]interface{}, 0, len(args))
	for _, arg := range args {
		v, err := Evaluate(arg, data)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func apply(op string, args []interface{}, data Data) (interface{}, error) {
	// lazily evaluated operators
	switch op {
	case "if", "?:":
		return applyIf(args, data)
	case "and":
		return applyAndOr(args, data, false)
	case "or":
		return applyAndOr(args, data, true)
	}

	values, err := evalAll(args, data)
	if err != nil {
		return nil, err
	}

	switch op {
	case "var":
		return applyVar(values, data)
	case "+":
		return fold(values, 0, func(acc, n float64) float64 { return acc + n })
	case "*":
		if len(values) == 0 {
			return nil, errors.Wrap(ErrInvalidRule, "* needs at least one operand")
		}
		return fold(values, 1, func(acc, n float64) float64 { return acc * n })
	case "-":
		return applyMinus(values)
	case "/":
		a, b, err := binaryNumbers(op, values)
		if err != nil {
			return nil, err
		}
		if b == 0 {
			return nil, ErrDivisionByZero
		}
		return a / b, nil
	case "%":
		a, b, err := binaryNumbers(op, values)
		if err != nil {
			return nil, err
		}
		if b == 0 {
			return nil, ErrDivisionByZero
		}
		return math.Mod(a, b), nil
	case "min", "max":
		return applyMinMax(op, values)
	case "cat":
		var sb strings.Builder
		for _, v := range values {
			sb.WriteString(toString(v))
		}
		return sb.String(), nil
	case "==", "!=":
		if len(values) != 2 {
			return nil, errors.Wrapf(ErrInvalidRule, "%s needs 2 operands", op)
		}
		eq := looseEqual(values[0], values[1])
		return eq == (op == "=="), nil
	case "===", "!==":
		if len(values) != 2 {
			return nil, errors.Wrapf(ErrInvalidRule, "%s needs 2 operands", op)
		}
		eq := strictEqual(values[0], values[1])
		return eq == (op == "==="), nil
	case "<", "<=", ">", ">=":
		return applyCompare(op, values)
	case "!":
		if len(values) == 0 {
			return true, nil
		}
		return !truthy(values[0]), nil
	case "!!":
		if len(values) == 0 {
			return false, nil
		}
		return truthy(values[0]), nil
	case "in":
		return applyIn(values)
	}
	return nil, errors.Wrapf(ErrUnknownOperator, "%q", op)
}

func applyVar(values []interface{}, data Data) (interface{}, error) {
	if len(values) == 0 {
		v, _ := data.Get("")
		return v, nil
	}
	var path string
	switch p := values[0].(type) {
	case nil:
	case string:
		path = p
	default:
		if _, err := toNumber(p); err != nil {
			return nil, errors.Wrapf(ErrInvalidRule, "var path must be a string or a number, got %T", p)
		}
		path = toString(p)
	}
	if v, ok := data.Get(path); ok {
		return v, nil
	}
	if len(values) > 1 {
		return values[1], nil
	}
	return nil, nil
}

func applyIf(args []interface{}, data Data) (interface{}, error) {
	// [cond, then, cond, then, ..., else]
	i := 0
	for ; i+1 < len(args); i += 2 {
		cond, err := Evaluate(args[i], data)
		if err != nil {
			return nil, err
		}
		if truthy(cond) {
			return Evaluate(args[i+1], data)
		}
	}
	if i < len(args) {
		return Evaluate(args[i], data)
	}
	return nil, nil
}

func applyAndOr(args []interface{}, data Data, isOr bool) (interface{}, error) {
	var v interface{}
	for _, arg := range args {
		var err error
		if v, err = Evaluate(arg, data); err != nil {
			return nil, err
		}
		if truthy(v) == isOr {
			return v, nil
		}
	}
	return v, nil
}

func applyMinus(values []interface{}) (interface{}, error) {
	switch len(values) {
	case 1:
		n, err := toNumber(values[0])
		if err != nil {
			return nil, err
		}
		return -n, nil
	case 2:
		a, b, err := binaryNumbers("-", values)
		if err != nil {
			return nil, err
		}
		return a - b, nil
	}
	return nil, errors.Wrap(ErrInvalidRule, "- needs 1 or 2 operands")
}

func applyMinMax(op string, values []interface{}) (interface{}, error) {
	if len(values) == 0 {
		return nil, errors.Wrapf(ErrInvalidRule, "%s needs at least one operand", op)
	}
	res, err := toNumber(values[0])
	if err != nil {
		return nil, err
	}
	for _, v := range values[1:] {
		n, err := toNumber(v)
		if err != nil {
			return nil, err
		}
		if (op == "min" && n < res) || (op == "max" && n > res) {
			res = n
		}
	}
	return res, nil
}

func applyCompare(op string, values []interface{}) (interface{}, error) {
	if len(values) < 2 || len(values) > 3 {
		return nil, errors.Wrapf(ErrInvalidRule, "%s needs 2 or 3 operands", op)
	}
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		n, err := toNumber(v)
		if err != nil {
			return nil, err
		}
		nums = append(nums, n)
	}
	cmp := func(a, b float64) bool {
		switch op {
		case "<":
			return a < b
		case "<=":
			return a <= b
		case ">":
			return a > b
		default:
			return a >= b
		}
	}
	// 3 operands: "between"
	for i := 0; i+1 < len(nums); i++ {
		if !cmp(nums[i], nums[i+1]) {
			return false, nil
		}
	}
	return true, nil
}

func applyIn(values []interface{}) (interface{}, error) {
	if len(values) != 2 {
		return nil, errors.Wrap(ErrInvalidRule, "in needs 2 operands")
	}
	if s, ok := values[1].(string); ok {
		return strings.Contains(s, toString(values[0])), nil
	}
	if list, ok := asSlice(values[1]); ok {
		for _, item := range list {
			if looseEqual(values[0], item) {
				return true, nil
			}
		}
	}
	return false, nil
}

func fold(values []interface{}, init float64, f func(acc, n float64) float64) (interface{}, error) {
	acc := init
	for _, v := range values {
		n, err := toNumber(v)
		if err != nil {
			return nil, err
		}
		acc = f(acc, n)
	}
	return acc, nil
}

func binaryNumbers(op string, values []interface{}) (float64, float64, error) {
	if len(values) != 2 {
		return 0, 0, errors.Wrapf(ErrInvalidRule, "%s needs 2 operands", op)
	}
	a, err := toNumber(values[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := toNumber(values[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func toNumber(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, errors.Wrapf(ErrNotANumber, "%q", n)
		}
		return f, nil
	case nil:
		return 0, errors.Wrap(ErrNotANumber, "null")
	}
	return 0, errors.Wrapf(ErrNotANumber, "%v (%T)", v, v)
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	}
	if n, err := toNumber(v); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	if n, err := toNumber(v); err == nil {
		return n != 0
	}
	if list, ok := asSlice(v); ok {
		return len(list) > 0
	}
	return true
}

func looseEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	na, errA := toNumber(a)
	nb, errB := toNumber(b)
	if errA == nil && errB == nil {
		return na == nb
	}
	return toString(a) == toString(b)
}

func strictEqual(a, b interface{}) bool {
	na, errA := toNumber(a)
	nb, errB := toNumber(b)
	_, aIsStr := a.(string)
	_, bIsStr := b.(string)
	if errA == nil && errB == nil && !aIsStr && !bIsStr {
		return na == nb
	}
	return reflect.DeepEqual(a, b)
}

// asArgs wraps a single operator argument into a list: {"var": "a"} == {"var": ["a"]}
func asArgs(raw interface{}) []interface{} {
	if list, ok := asSlice(raw); ok {
		return list
	}
	return []interface{}{raw}
}

// asMap accepts any map keyed by strings (decoded documents may use named map types).
func asMap(v interface{}) (map[string]interface{}, bool) {
	if m, ok := v.(map[string]interface{}); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	m := make(map[string]interface{}, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, true
}

func asSlice(v interface{}) ([]interface{}, bool) {
	if list, ok := v.([]interface{}); ok {
		return list, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 { // []byte is not a list
		return nil, false
	}
	list := make([]interface{}, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		list = append(list, rv.Index(i).Interface())
	}
	return list, true
}
