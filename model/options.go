package model

import (
	"encoding/json"
	"fmt"
)

// Options are free-form ipset options. Scalar values of any JSON type are accepted and
// kept in their string form, so {"timeout": 300} and {"timeout": "300"} are the same.
type Options map[string]string

func (o *Options) UnmarshalJSON(raw []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("options must be a map, err:%w", err)
	}
	if m == nil {
		*o = nil
		return nil
	}
	rs := make(Options, len(m))
	for k, v := range m {
		switch tv := v.(type) {
		case nil:
			rs[k] = ""
		case map[string]interface{}, []interface{}:
			return fmt.Errorf("option %s must be a scalar value", k)
		case float64:
			rs[k] = formatNumber(tv)
		default:
			rs[k] = fmt.Sprint(tv)
		}
	}
	*o = rs
	return nil
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprint(int64(v))
	}
	return fmt.Sprint(v)
}
