package main

import (
	"errors"
	"testing"

	ipsetkeeper "ipset-keeper"
	"ipset-keeper/kernelset"
	"ipset-keeper/model"
	"ipset-keeper/provider"

	"github.com/stretchr/testify/assert"
)

func TestRenderPlan(t *testing.T) {
	out := string(renderPlan([]*ipsetkeeper.Change{
		{Name: "whitelist", Action: ipsetkeeper.ActionUpdate, Entries: provider.EntryChange{Added: []string{"192.168.2.2"}, Removed: []string{"10.9.9.9"}}},
		{Name: "blocked", Action: ipsetkeeper.ActionRecreate, Identity: []model.AttrChange{{Attr: "type", Current: "hash:ip", Desired: "hash:net"}}},
		{Name: "same", Action: ipsetkeeper.ActionNone},
	}, false))
	assert.Contains(t, out, "ipset whitelist: update\n  - 10.9.9.9\n  + 192.168.2.2\n")
	assert.Contains(t, out, `  ~ type: "hash:ip" -> "hash:net"`)
	assert.NotContains(t, out, "ipset same")
	assert.Contains(t, out, "2 of 3 ipsets to change")
}

func TestRenderTables(t *testing.T) {
	out := string(renderChanges([]*ipsetkeeper.Change{
		{Name: "whitelist", Action: ipsetkeeper.ActionCreate, Entries: provider.EntryChange{Added: []string{"1.1.1.1"}}},
		{Name: "broken", Action: ipsetkeeper.ActionCreate, Err: errors.New("boom")},
	}))
	assert.Contains(t, out, "whitelist")
	assert.Contains(t, out, "boom")

	out = string(renderStates([]*ipsetkeeper.SetState{
		{Name: "blocked", Identity: model.Identity{Type: model.SetTypeHashNet}, Options: map[string]string{"family": "inet", "nomatch": ""}},
	}))
	assert.Contains(t, out, "family=inet nomatch")

	out = string(renderKernelSet(&kernelset.KernelSet{Name: "blocked", Type: "hash:net", NumEntries: 1, Entries: []string{"10.0.0.0/8"}}))
	assert.Contains(t, out, "hash:net")
	assert.Contains(t, out, "10.0.0.0/8")
}
