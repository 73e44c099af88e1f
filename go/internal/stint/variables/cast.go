package variables

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/mcdev12/stint/go/internal/models"
	"github.com/mcdev12/stint/go/internal/stint/errs"
)

// Cast coerces raw into the Go representation of def's data type: int64,
// float64, bool, string, []any or map[string]any. Containers are
// canonicalized through JSON so values read back from storage compare equal
// to freshly cast ones.
func Cast(def *models.VariableDefinition, raw any) (any, error) {
	if raw == nil {
		return nil, errs.Type("%s: cannot cast null to %s", def.Name, def.DataType)
	}
	var (
		out any
		ok  bool
	)
	switch def.DataType {
	case models.DataTypeInt:
		out, ok = toInt(raw)
	case models.DataTypeFloat:
		out, ok = toFloat(raw)
	case models.DataTypeBool:
		out, ok = toBool(raw)
	case models.DataTypeStr:
		out, ok = toString(raw, true)
	case models.DataTypeChoice, models.DataTypeStage:
		out, ok = toString(raw, false)
	case models.DataTypeList:
		out, ok = toContainer(raw, reflect.Slice)
	case models.DataTypeDict:
		out, ok = toContainer(raw, reflect.Map)
	default:
		return nil, errs.Type("%s: unknown data type %q", def.Name, def.DataType)
	}
	if !ok {
		return nil, errs.Type("%s: cannot cast %v (%T) to %s", def.Name, raw, raw, def.DataType)
	}
	return out, nil
}

func toInt(raw any) (int64, bool) {
	switch v := raw.(type) {
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return integral(f)
		}
		return 0, false
	case json.Number:
		return toInt(string(v))
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() > math.MaxInt64 {
			return 0, false
		}
		return int64(rv.Uint()), true
	}
	if f, ok := number(raw); ok {
		return integral(f)
	}
	return 0, false
}

func integral(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return number(raw)
}

// number converts any Go numeric kind to float64.
func number(raw any) (float64, bool) {
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

var boolLiterals = map[string]bool{
	"true": true, "1": true, "1.0": true,
	"false": false, "0": false, "0.0": false,
}

func toBool(raw any) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		b, ok := boolLiterals[strings.ToLower(v)]
		return b, ok
	case json.Number:
		return toBool(string(v))
	}
	if f, ok := number(raw); ok {
		switch f {
		case 0:
			return false, true
		case 1:
			return true, true
		}
	}
	return false, false
}

func toString(raw any, containers bool) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case json.Number:
		return v.String(), true
	}
	if f, ok := number(raw); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	if !containers {
		return "", false
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func toContainer(raw any, kind reflect.Kind) (any, bool) {
	var data []byte
	if s, ok := raw.(string); ok {
		data = []byte(s)
	} else {
		if reflect.ValueOf(raw).Kind() != kind {
			return nil, false
		}
		b, err := json.Marshal(raw)
		if err != nil {
			return nil, false
		}
		data = b
	}

	if kind == reflect.Slice {
		var out []any
		if err := json.Unmarshal(data, &out); err != nil || out == nil {
			return nil, false
		}
		return out, true
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil || out == nil {
		return nil, false
	}
	return out, true
}
