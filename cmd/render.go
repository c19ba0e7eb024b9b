package main

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	ipsetkeeper "ipset-keeper"
	"ipset-keeper/kernelset"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(buf *bytes.Buffer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(buf)
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	return t
}

func renderChanges(changes []*ipsetkeeper.Change) []byte {
	var buf bytes.Buffer
	t := newTable(&buf)
	t.AppendHeader(table.Row{"IPSet", "Action", "Identity", "Added", "Removed", "Error"})
	for _, c := range changes {
		errMsg := ""
		if c.Err != nil {
			errMsg = c.Err.Error()
		}
		t.AppendRow(table.Row{c.Name, string(c.Action), formatAttrs(c), len(c.Entries.Added), len(c.Entries.Removed), errMsg})
	}
	t.Render()
	return buf.Bytes()
}

func renderPlan(changes []*ipsetkeeper.Change, colored bool) []byte {
	var buf bytes.Buffer
	add := color.New(color.FgGreen)
	del := color.New(color.FgRed)
	mod := color.New(color.FgYellow)
	for _, p := range []*color.Color{add, del, mod} {
		if colored {
			p.EnableColor()
		} else {
			p.DisableColor()
		}
	}
	pending := 0
	for _, c := range changes {
		if !c.Changed() {
			continue
		}
		pending++
		header := fmt.Sprintf("ipset %s: %s", c.Name, c.Action)
		switch c.Action {
		case ipsetkeeper.ActionCreate:
			add.Fprintln(&buf, header)
		case ipsetkeeper.ActionDestroy:
			del.Fprintln(&buf, header)
		default:
			mod.Fprintln(&buf, header)
		}
		for _, a := range c.Identity {
			mod.Fprintf(&buf, "  ~ %s: %q -> %q\n", a.Attr, a.Current, a.Desired)
		}
		for _, e := range c.Entries.Removed {
			del.Fprintf(&buf, "  - %s\n", e)
		}
		for _, e := range c.Entries.Added {
			add.Fprintf(&buf, "  + %s\n", e)
		}
	}
	fmt.Fprintf(&buf, "%d of %d ipsets to change\n", pending, len(changes))
	return buf.Bytes()
}

func formatAttrs(c *ipsetkeeper.Change) string {
	attrs := make([]string, 0, len(c.Identity))
	for _, a := range c.Identity {
		attrs = append(attrs, a.Attr)
	}
	return strings.Join(attrs, ",")
}

func renderStates(states []*ipsetkeeper.SetState) []byte {
	var buf bytes.Buffer
	t := newTable(&buf)
	t.AppendHeader(table.Row{"IPSet", "Type", "Options", "Entries"})
	for _, s := range states {
		keys := make([]string, 0, len(s.Options))
		for k := range s.Options {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		opts := make([]string, 0, len(keys))
		for _, k := range keys {
			if v := s.Options[k]; len(v) > 0 {
				opts = append(opts, k+"="+v)
				continue
			}
			opts = append(opts, k)
		}
		t.AppendRow(table.Row{s.Name, string(s.Identity.Type), strings.Join(opts, " "), s.EntryCount})
	}
	t.Render()
	return buf.Bytes()
}

func renderKernelSet(ks *kernelset.KernelSet) []byte {
	var buf bytes.Buffer
	t := newTable(&buf)
	t.AppendRows([]table.Row{
		{"Name", ks.Name},
		{"Type", ks.Type},
		{"Family", ks.Family},
		{"Hashsize", strconv.FormatUint(uint64(ks.HashSize), 10)},
		{"Maxelem", strconv.FormatUint(uint64(ks.MaxElem), 10)},
		{"Timeout", strconv.FormatUint(uint64(ks.Timeout), 10)},
		{"References", strconv.FormatUint(uint64(ks.References), 10)},
		{"Entries", strconv.FormatUint(uint64(ks.NumEntries), 10)},
	})
	t.Render()
	for _, e := range ks.Entries {
		fmt.Fprintln(&buf, e)
	}
	return buf.Bytes()
}
