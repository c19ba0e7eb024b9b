package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Validate checks the declared set before any firewall-cmd call is made.
// The returned error, if any, is a ValidationErrors and matches ErrInvalidIPSet.
func (s *IPSet) Validate() error {
	var errs ValidationErrors
	if !IsValidName(s.Name) {
		errs.Add("name", s.Name, "IPset name must be a word with no spaces")
	}
	if len(s.Ensure) > 0 && s.Ensure != EnsurePresent && s.Ensure != EnsureAbsent {
		errs.Add("ensure", string(s.Ensure), "must be present or absent")
	}
	if len(s.Type) > 0 && !IsValidSetType(s.Type) {
		errs.Add("type", string(s.Type), "unsupported ipset type, want one of "+joinSetTypes(AllSetTypes()))
	}
	if len(s.Family) > 0 && s.Family != FamilyInet && s.Family != FamilyInet6 {
		errs.Add("family", string(s.Family), "must be inet or inet6")
	}
	for _, item := range []struct {
		field string
		value int64
	}{
		{OptionHashSize, s.HashSize},
		{OptionMaxElem, s.MaxElem},
		{OptionTimeout, s.Timeout},
	} {
		if item.value < 0 {
			errs.Add(item.field, strconv.FormatInt(item.value, 10), "must be a positive integer")
		}
	}
	for k, v := range s.Options {
		if len(k) == 0 {
			errs.Add("options", v, "option key must not be empty")
		}
	}
	if !s.IsManageEntries() && (len(s.Entries) > 0 || len(s.EntriesFile) > 0) {
		errs.Add("entries", fmt.Sprintf("%d entries", len(s.Entries)), "Ipset should not declare entries if it doesn't manage entries")
	}
	if errs.HasErrors() {
		return errs
	}
	return nil
}

func joinSetTypes(types []SetType) string {
	rs := make([]string, 0, len(types))
	for _, t := range types {
		rs = append(rs, string(t))
	}
	return strings.Join(rs, ",")
}
