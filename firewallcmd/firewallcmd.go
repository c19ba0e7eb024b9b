package firewallcmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"ipset-keeper/model"
	"ipset-keeper/utils"
)

// Client wraps the firewall-cmd ipset commands.
type Client struct {
	runner IRunner
	c      *clientConfig
}

func New(runner IRunner, opts ...Option) *Client {
	c := &clientConfig{}
	for _, opt := range opts {
		opt(c)
	}
	return &Client{runner: runner, c: c}
}

func (s *Client) stateOpts(opts []CmdOption) []CmdOption {
	if !s.c.permanent {
		return opts
	}
	rs := make([]CmdOption, 0, len(opts)+1)
	rs = append(rs, opts...)
	rs = append(rs, WithPermanent())
	return rs
}

func (s *Client) runCmd(ctx context.Context, c *config, args ...string) ([]byte, error) {
	if len(c.params) > 0 {
		newArgs := make([]string, 0, len(args)+len(c.params))
		newArgs = append(newArgs, args...)
		newArgs = append(newArgs, c.params...)
		args = newArgs
	}
	return s.runner.Run(ctx, args...)
}

func (s *Client) runCmdNoData(ctx context.Context, c *config, args ...string) error {
	_, err := s.runCmd(ctx, c, args...)
	return err
}

// State reports whether the firewalld daemon is running.
func (s *Client) State(ctx context.Context) (bool, error) {
	out, err := s.runCmd(ctx, applyOpts(), flagState)
	if err != nil {
		var execErr *ExecError
		if errors.As(err, &execErr) && isNotRunning(execErr) {
			return false, nil
		}
		return false, fmt.Errorf("query firewalld state failed, err:%w", err)
	}
	return strings.TrimSpace(string(out)) == "running", nil
}

// isNotRunning matches the documented exit of --state when the daemon is down.
func isNotRunning(e *ExecError) bool {
	var exitErr *exec.ExitError
	if errors.As(e.Err, &exitErr) && exitErr.ExitCode() == notRunningExitCode {
		return true
	}
	return strings.TrimSpace(string(e.Stdout)) == "not running"
}

func (s *Client) Reload(ctx context.Context) error {
	return s.runCmdNoData(ctx, applyOpts(), flagReload)
}

// GetIPSets returns the names of all ipsets known to firewalld.
func (s *Client) GetIPSets(ctx context.Context, opts ...CmdOption) ([]string, error) {
	out, err := s.runCmd(ctx, applyOpts(s.stateOpts(opts)...), flagGetIPSets)
	if err != nil {
		return nil, err
	}
	return strings.Fields(string(out)), nil
}

func (s *Client) InfoIPSet(ctx context.Context, set string, opts ...CmdOption) (*IPSetInfo, error) {
	out, err := s.runCmd(ctx, applyOpts(s.stateOpts(opts)...), "--info-ipset="+set)
	if err != nil {
		return nil, err
	}
	info, err := ParseIPSetInfo(out)
	if err != nil {
		return nil, fmt.Errorf("parse ipset:%s info failed, err:%w", set, err)
	}
	if len(info.Name) == 0 {
		info.Name = set
	}
	return info, nil
}

// NewIPSet creates a set. Each option is a key=value pair passed as its own --option flag.
func (s *Client) NewIPSet(ctx context.Context, set string, typ model.SetType, options []string, opts ...CmdOption) error {
	args := make([]string, 0, 2+len(options))
	args = append(args, "--new-ipset="+set, "--type="+string(typ))
	for _, o := range options {
		args = append(args, "--option="+o)
	}
	return s.runCmdNoData(ctx, applyOpts(s.stateOpts(opts)...), args...)
}

func (s *Client) DeleteIPSet(ctx context.Context, set string, opts ...CmdOption) error {
	return s.runCmdNoData(ctx, applyOpts(s.stateOpts(opts)...), "--delete-ipset="+set)
}

// GetEntries returns the sorted entries of a set.
func (s *Client) GetEntries(ctx context.Context, set string, opts ...CmdOption) ([]string, error) {
	out, err := s.runCmd(ctx, applyOpts(s.stateOpts(opts)...), "--ipset="+set, flagGetEntry)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(out), "\n")
	rs := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		rs = append(rs, line)
	}
	sort.Strings(rs)
	return rs, nil
}

func (s *Client) AddEntriesFromFile(ctx context.Context, set string, entries []string, opts ...CmdOption) error {
	return s.runWithEntryFile(ctx, set, "--add-entries-from-file=", entries, opts...)
}

func (s *Client) RemoveEntriesFromFile(ctx context.Context, set string, entries []string, opts ...CmdOption) error {
	return s.runWithEntryFile(ctx, set, "--remove-entries-from-file=", entries, opts...)
}

func (s *Client) runWithEntryFile(ctx context.Context, set string, flag string, entries []string, opts ...CmdOption) error {
	tmpPath, err := utils.WriteTempFile(s.c.tmpDir, defaultBatchFilePrefix, model.EncodeEntries(entries))
	if err != nil {
		return fmt.Errorf("write ipset entries to tmp file failed, err:%w", err)
	}
	defer os.Remove(tmpPath)
	return s.runCmdNoData(ctx, applyOpts(s.stateOpts(opts)...), "--ipset="+set, flag+tmpPath)
}
