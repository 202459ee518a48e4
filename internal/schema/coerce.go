package schema

import (
	"encoding/json"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// numberLiteral is the JSON number grammar. Strings are coerced to numbers
// only when they match it exactly: no surrounding whitespace, no leading '+',
// no hex, no NaN or Infinity. Scientific notation is accepted.
var numberLiteral = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// coerce converts a scalar v to want. ok is false when the conversion would
// be ambiguous or lose information.
func coerce(want Type, v any) (any, bool) {
	switch want {
	case TypeString:
		return toString(v)
	case TypeNumber:
		return toNumber(v)
	case TypeInteger:
		return toInteger(v)
	case TypeBoolean:
		return toBoolean(v)
	}
	return nil, false
}

func toString(v any) (any, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int64:
		return strconv.FormatInt(t, 10), true
	}
	return nil, false
}

func toNumber(v any) (any, bool) {
	switch t := v.(type) {
	case json.Number:
		return parseFloat(t.String())
	case string:
		if !numberLiteral.MatchString(t) {
			return nil, false
		}
		f, ok := parseFloat(t)
		if !ok || !exactInteger(t, f.(float64)) {
			return nil, false
		}
		return f, true
	case float64:
		return t, true
	case int64:
		return float64(t), true
	}
	return nil, false
}

func toInteger(v any) (any, bool) {
	var literal string
	switch t := v.(type) {
	case json.Number:
		literal = t.String()
	case string:
		if !numberLiteral.MatchString(t) {
			return nil, false
		}
		literal = t
	case int64:
		return t, true
	case float64:
		return integral(t)
	default:
		return nil, false
	}

	if !strings.ContainsAny(literal, ".eE") {
		n, err := strconv.ParseInt(literal, 10, 64)
		if err != nil {
			return nil, false
		}
		return n, true
	}

	f, ok := parseFloat(literal)
	if !ok {
		return nil, false
	}
	return integral(f.(float64))
}

func toBoolean(v any) (any, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch t {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return nil, false
}

func parseFloat(s string) (any, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return f, true
}

// exactInteger reports whether an integer-form literal survives conversion
// to f unchanged. Fractional and exponent forms always pass.
func exactInteger(literal string, f float64) bool {
	if strings.ContainsAny(literal, ".eE") {
		return true
	}
	n, ok := new(big.Int).SetString(literal, 10)
	if !ok {
		return false
	}
	rounded, _ := big.NewFloat(f).Int(nil)
	return n.Cmp(rounded) == 0
}

func integral(f float64) (any, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return nil, false
	}
	return int64(f), true
}
