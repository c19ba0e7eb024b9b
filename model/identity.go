package model

import "strconv"

const (
	OptionFamily   = "family"
	OptionHashSize = "hashsize"
	OptionMaxElem  = "maxelem"
	OptionTimeout  = "timeout"
)

const (
	AttrType     = "type"
	AttrFamily   = OptionFamily
	AttrHashSize = OptionHashSize
	AttrMaxElem  = OptionMaxElem
	AttrTimeout  = OptionTimeout
)

// Identity holds the set-level attributes firewalld cannot change in place.
type Identity struct {
	Type     SetType
	Family   Family
	HashSize int64
	MaxElem  int64
	Timeout  int64
}

type AttrChange struct {
	Attr    string `json:"attr"`
	Current string `json:"current"`
	Desired string `json:"desired"`
}

func (s *IPSet) Identity() Identity {
	return Identity{
		Type:     s.Type,
		Family:   s.Family,
		HashSize: s.HashSize,
		MaxElem:  s.MaxElem,
		Timeout:  s.Timeout,
	}
}

// IdentityFromOptions builds the identity of a live set from its type and option map.
// Options that fail to parse are treated as unset.
func IdentityFromOptions(typ SetType, opts map[string]string) Identity {
	return Identity{
		Type:     typ,
		Family:   Family(opts[OptionFamily]),
		HashSize: parseInt(opts[OptionHashSize]),
		MaxElem:  parseInt(opts[OptionMaxElem]),
		Timeout:  parseInt(opts[OptionTimeout]),
	}
}

// DiffIdentity lists the attributes where desired is set and differs from current.
func DiffIdentity(current, desired Identity) []AttrChange {
	rs := make([]AttrChange, 0, 5)
	if len(desired.Type) > 0 && desired.Type != current.Type {
		rs = append(rs, AttrChange{Attr: AttrType, Current: string(current.Type), Desired: string(desired.Type)})
	}
	if len(desired.Family) > 0 && desired.Family != current.Family {
		rs = append(rs, AttrChange{Attr: AttrFamily, Current: string(current.Family), Desired: string(desired.Family)})
	}
	for _, item := range []struct {
		attr    string
		current int64
		desired int64
	}{
		{AttrHashSize, current.HashSize, desired.HashSize},
		{AttrMaxElem, current.MaxElem, desired.MaxElem},
		{AttrTimeout, current.Timeout, desired.Timeout},
	} {
		if item.desired > 0 && item.desired != item.current {
			rs = append(rs, AttrChange{Attr: item.attr, Current: formatInt(item.current), Desired: formatInt(item.desired)})
		}
	}
	return rs
}

func formatInt(v int64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatInt(v, 10)
}

func parseInt(s string) int64 {
	if len(s) == 0 {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
