package ipsetkeeper

import (
	"sort"

	"ipset-keeper/model"
	"ipset-keeper/provider"
)

type Action string

const (
	ActionNone     Action = "none"
	ActionCreate   Action = "create"
	ActionRecreate Action = "recreate"
	ActionUpdate   Action = "update"
	ActionDestroy  Action = "destroy"
)

// Change describes what was done, or would be done, to one declared set.
type Change struct {
	Name     string               `json:"name"`
	Action   Action               `json:"action"`
	Identity []model.AttrChange   `json:"identity,omitempty"`
	Entries  provider.EntryChange `json:"entries"`
	Err      error                `json:"-"`
}

func (c *Change) Changed() bool {
	return c.Action != ActionNone
}

// Applied reports whether firewalld was modified, even partially. A failed recreate may
// already have deleted the set, a failed update may have removed entries.
func (c *Change) Applied() bool {
	if c.Action == ActionNone {
		return false
	}
	if c.Err == nil {
		return true
	}
	return c.Action == ActionRecreate || !c.Entries.Empty()
}

// Snapshot is the prefetched live state, keyed by set name.
type Snapshot map[string]*SetState

type SetState struct {
	Name       string
	Identity   model.Identity
	Options    map[string]string
	EntryCount int
}

func (s Snapshot) Sorted() []*SetState {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	rs := make([]*SetState, 0, len(names))
	for _, n := range names {
		rs = append(rs, s[n])
	}
	return rs
}
