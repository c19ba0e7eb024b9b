// Package fakecmd provides an in-memory firewall-cmd used by tests.
package fakecmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"ipset-keeper/firewallcmd"
)

type Set struct {
	Type    string
	Options []string
	Entries map[string]struct{}
}

// Call is one recorded invocation. FileEntries holds the content of the batch file
// referenced by an *-entries-from-file flag, read while the file still existed.
type Call struct {
	Args        []string
	FileEntries []string
	FilePath    string
}

func (c Call) Cmd() string {
	for _, a := range c.Args {
		if a == "--permanent" {
			continue
		}
		if strings.HasPrefix(a, "--ipset=") {
			continue
		}
		k, _, _ := strings.Cut(a, "=")
		return k
	}
	return ""
}

type Firewalld struct {
	mu      sync.Mutex
	Stopped bool
	Sets    map[string]*Set
	Calls   []Call
	// FailOn makes any call whose command (see Call.Cmd) matches a key fail with the value.
	FailOn map[string]error
}

var _ firewallcmd.IRunner = (*Firewalld)(nil)

func New() *Firewalld {
	return &Firewalld{
		Sets:   make(map[string]*Set),
		FailOn: make(map[string]error),
	}
}

// AddSet seeds a set as if it already existed.
func (f *Firewalld) AddSet(name string, typ string, options []string, entries ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &Set{Type: typ, Options: options, Entries: make(map[string]struct{})}
	for _, e := range entries {
		s.Entries[e] = struct{}{}
	}
	f.Sets[name] = s
}

func (f *Firewalld) Entries(name string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.Sets[name]
	if !ok {
		return nil
	}
	return sortedKeys(s.Entries)
}

// CallsOf returns the recorded calls of one command, e.g. "--new-ipset".
func (f *Firewalld) CallsOf(cmd string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	rs := make([]Call, 0, len(f.Calls))
	for _, c := range f.Calls {
		if c.Cmd() == cmd {
			rs = append(rs, c)
		}
	}
	return rs
}

func (f *Firewalld) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = nil
}

func (f *Firewalld) Run(_ context.Context, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := Call{Args: append([]string(nil), args...)}
	var set string
	flags := make(map[string]string, len(args))
	var options []string
	for _, a := range args {
		k, v, _ := strings.Cut(a, "=")
		switch k {
		case "--ipset":
			set = v
		case "--option":
			options = append(options, v)
		case "--add-entries-from-file", "--remove-entries-from-file":
			raw, err := os.ReadFile(v)
			if err != nil {
				return nil, f.fail(args, fmt.Errorf("read entry file failed, err:%w", err))
			}
			call.FilePath = v
			call.FileEntries = strings.Fields(string(raw))
		}
		flags[k] = v
	}
	f.Calls = append(f.Calls, call)
	if err, ok := f.FailOn[call.Cmd()]; ok {
		return nil, f.fail(args, err)
	}
	if _, ok := flags["--state"]; ok {
		if f.Stopped {
			return nil, &firewallcmd.ExecError{Args: args, Stdout: []byte("not running\n"), Err: errors.New("exit status 252")}
		}
		return []byte("running\n"), nil
	}
	if f.Stopped {
		return nil, f.fail(args, errors.New("FirewallD is not running"))
	}
	if _, ok := flags["--reload"]; ok {
		return []byte("success\n"), nil
	}
	if _, ok := flags["--get-ipsets"]; ok {
		names := make([]string, 0, len(f.Sets))
		for n := range f.Sets {
			names = append(names, n)
		}
		sort.Strings(names)
		return []byte(strings.Join(names, " ") + "\n"), nil
	}
	if name, ok := flags["--info-ipset"]; ok {
		s, ok := f.Sets[name]
		if !ok {
			return nil, f.fail(args, fmt.Errorf("INVALID_IPSET: %s", name))
		}
		out := fmt.Sprintf("%s\n  type: %s\n  options: %s\n  entries: %s\n",
			name, s.Type, strings.Join(s.Options, " "), strings.Join(sortedKeys(s.Entries), " "))
		return []byte(out), nil
	}
	if name, ok := flags["--new-ipset"]; ok {
		if _, exist := f.Sets[name]; exist {
			return nil, f.fail(args, fmt.Errorf("NAME_CONFLICT: %s", name))
		}
		f.Sets[name] = &Set{Type: flags["--type"], Options: options, Entries: make(map[string]struct{})}
		return []byte("success\n"), nil
	}
	if name, ok := flags["--delete-ipset"]; ok {
		if _, exist := f.Sets[name]; !exist {
			return nil, f.fail(args, fmt.Errorf("INVALID_IPSET: %s", name))
		}
		delete(f.Sets, name)
		return []byte("success\n"), nil
	}
	s, ok := f.Sets[set]
	if !ok {
		return nil, f.fail(args, fmt.Errorf("INVALID_IPSET: %s", set))
	}
	if _, ok := flags["--get-entries"]; ok {
		entries := sortedKeys(s.Entries)
		if len(entries) == 0 {
			return nil, nil
		}
		return []byte(strings.Join(entries, "\n") + "\n"), nil
	}
	if _, ok := flags["--add-entries-from-file"]; ok {
		for _, e := range call.FileEntries {
			s.Entries[e] = struct{}{}
		}
		return []byte("success\n"), nil
	}
	if _, ok := flags["--remove-entries-from-file"]; ok {
		for _, e := range call.FileEntries {
			delete(s.Entries, e)
		}
		return []byte("success\n"), nil
	}
	return nil, f.fail(args, errors.New("unsupported command"))
}

func (f *Firewalld) fail(args []string, err error) error {
	return &firewallcmd.ExecError{Args: args, Stderr: []byte(err.Error()), Err: err}
}

func sortedKeys(m map[string]struct{}) []string {
	rs := make([]string, 0, len(m))
	for k := range m {
		rs = append(rs, k)
	}
	sort.Strings(rs)
	return rs
}
