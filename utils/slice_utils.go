package utils

import "sort"

func StringSliceDedup(items []string) []string {
	m := make(map[string]struct{}, len(items))
	for _, item := range items {
		m[item] = struct{}{}
	}
	rs := make([]string, 0, len(m))
	for k := range m {
		rs = append(rs, k)
	}
	sort.Strings(rs)
	return rs
}

// StringSliceSubtract returns the sorted, deduplicated items of a that are not in b.
func StringSliceSubtract(a, b []string) []string {
	m := make(map[string]struct{}, len(b))
	for _, item := range b {
		m[item] = struct{}{}
	}
	rs := make([]string, 0, len(a))
	for _, item := range StringSliceDedup(a) {
		if _, ok := m[item]; ok {
			continue
		}
		rs = append(rs, item)
	}
	return rs
}
