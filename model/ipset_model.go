package model

import (
	"regexp"
	"sort"
	"strings"
)

type SetType string
type Family string
type Ensure string

const (
	SetTypeBitmapIP       SetType = "bitmap:ip"
	SetTypeBitmapIPMac    SetType = "bitmap:ip,mac"
	SetTypeBitmapPort     SetType = "bitmap:port"
	SetTypeHashIP         SetType = "hash:ip"
	SetTypeHashIPMark     SetType = "hash:ip,mark"
	SetTypeHashIPPort     SetType = "hash:ip,port"
	SetTypeHashIPPortIP   SetType = "hash:ip,port,ip"
	SetTypeHashIPPortNet  SetType = "hash:ip,port,net"
	SetTypeHashMac        SetType = "hash:mac"
	SetTypeHashNet        SetType = "hash:net"
	SetTypeHashNetIface   SetType = "hash:net,iface"
	SetTypeHashNetNet     SetType = "hash:net,net"
	SetTypeHashNetPort    SetType = "hash:net,port"
	SetTypeHashNetPortNet SetType = "hash:net,port,net"
	SetTypeListSet        SetType = "list:set"

	DefaultSetType = SetTypeHashIP
)

const (
	defaultHostSuffix       = "/32"
	defaultEntriesSeparator = "\n"
)

const (
	FamilyInet  Family = "inet"
	FamilyInet6 Family = "inet6"
)

const (
	EnsurePresent Ensure = "present"
	EnsureAbsent  Ensure = "absent"
)

var (
	defaultNameRegexp = regexp.MustCompile(`^[\w-]+$`)
	allSetTypes       = []SetType{
		SetTypeBitmapIP, SetTypeBitmapIPMac, SetTypeBitmapPort,
		SetTypeHashIP, SetTypeHashIPMark, SetTypeHashIPPort, SetTypeHashIPPortIP, SetTypeHashIPPortNet,
		SetTypeHashMac, SetTypeHashNet, SetTypeHashNetIface, SetTypeHashNetNet, SetTypeHashNetPort,
		SetTypeHashNetPortNet, SetTypeListSet,
	}
)

// IPSet is the declared state of one firewalld ipset.
type IPSet struct {
	Name          string            `json:"name"`
	Ensure        Ensure            `json:"ensure,omitempty"`
	Type          SetType           `json:"type,omitempty"`
	Family        Family            `json:"family,omitempty"`
	HashSize      int64             `json:"hashsize,omitempty"`
	MaxElem       int64             `json:"maxelem,omitempty"`
	Timeout       int64             `json:"timeout,omitempty"`
	Options       Options           `json:"options,omitempty"`
	ManageEntries *bool             `json:"manage_entries,omitempty"`
	Entries       []string          `json:"entries,omitempty"`
	EntriesFile   string            `json:"entries_file,omitempty"`
}

func AllSetTypes() []SetType {
	rs := make([]SetType, len(allSetTypes))
	copy(rs, allSetTypes)
	return rs
}

func IsValidSetType(typ SetType) bool {
	for _, item := range allSetTypes {
		if item == typ {
			return true
		}
	}
	return false
}

func IsValidName(name string) bool {
	return defaultNameRegexp.MatchString(name)
}

// ApplyDefaults fills unset fields with their default values and normalizes entries.
func (s *IPSet) ApplyDefaults() {
	if len(s.Ensure) == 0 {
		s.Ensure = EnsurePresent
	}
	if len(s.Type) == 0 {
		s.Type = DefaultSetType
	}
	if s.ManageEntries == nil {
		v := true
		s.ManageEntries = &v
	}
	s.Entries = NormalizeEntries(s.Entries)
}

func (s *IPSet) IsManageEntries() bool {
	return s.ManageEntries == nil || *s.ManageEntries
}

func (s *IPSet) IsPresent() bool {
	return s.Ensure != EnsureAbsent
}

// CreateOptions returns the key=value options passed to --new-ipset.
// Identity fields come first in a fixed order, free-form options follow sorted by key.
func (s *IPSet) CreateOptions() []string {
	rs := make([]string, 0, 4+len(s.Options))
	explicit := make(map[string]struct{}, 4)
	add := func(k, v string) {
		explicit[k] = struct{}{}
		rs = append(rs, k+"="+v)
	}
	if len(s.Family) > 0 {
		add(OptionFamily, string(s.Family))
	}
	if s.HashSize > 0 {
		add(OptionHashSize, formatInt(s.HashSize))
	}
	if s.MaxElem > 0 {
		add(OptionMaxElem, formatInt(s.MaxElem))
	}
	if s.Timeout > 0 {
		add(OptionTimeout, formatInt(s.Timeout))
	}
	keys := make([]string, 0, len(s.Options))
	for k := range s.Options {
		if _, ok := explicit[k]; ok {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rs = append(rs, k+"="+s.Options[k])
	}
	return rs
}

// NormalizeEntry strips a trailing /32, firewalld reports single hosts without it.
func NormalizeEntry(entry string) string {
	entry = strings.TrimSpace(entry)
	return strings.TrimSuffix(entry, defaultHostSuffix)
}

// NormalizeEntries normalizes, dedups and sorts entries.
func NormalizeEntries(entries []string) []string {
	if len(entries) == 0 {
		return nil
	}
	m := make(map[string]struct{}, len(entries))
	rs := make([]string, 0, len(entries))
	for _, e := range entries {
		e = NormalizeEntry(e)
		if len(e) == 0 {
			continue
		}
		if _, ok := m[e]; ok {
			continue
		}
		m[e] = struct{}{}
		rs = append(rs, e)
	}
	sort.Strings(rs)
	return rs
}

// EncodeEntries renders entries in the newline-delimited format of firewall-cmd entry files.
func EncodeEntries(entries []string) []byte {
	if len(entries) == 0 {
		return nil
	}
	return []byte(strings.Join(entries, defaultEntriesSeparator) + defaultEntriesSeparator)
}
