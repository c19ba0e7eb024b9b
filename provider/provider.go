package provider

import (
	"context"
	"fmt"

	"ipset-keeper/firewallcmd"
	"ipset-keeper/model"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// EntryChange is the membership delta applied (or planned) for one set.
type EntryChange struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
}

func (c *EntryChange) Empty() bool {
	return c == nil || (len(c.Added) == 0 && len(c.Removed) == 0)
}

type IProvider interface {
	Exists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, set *model.IPSet) error
	Destroy(ctx context.Context, name string) error
	Entries(ctx context.Context, set *model.IPSet) ([]string, error)
	SetEntries(ctx context.Context, set *model.IPSet) (*EntryChange, error)
	SyncIdentity(ctx context.Context, set *model.IPSet, current model.Identity) ([]model.AttrChange, *EntryChange, error)
	Recreate(ctx context.Context, set *model.IPSet) (*EntryChange, error)
}

type defaultProvider struct {
	cli *firewallcmd.Client
}

func New(cli *firewallcmd.Client) IProvider {
	return &defaultProvider{cli: cli}
}

func (p *defaultProvider) Exists(ctx context.Context, name string) (bool, error) {
	names, err := p.cli.GetIPSets(ctx)
	if err != nil {
		return false, fmt.Errorf("get ipsets failed, err:%w", err)
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

func (p *defaultProvider) createSet(ctx context.Context, set *model.IPSet) error {
	if err := p.cli.NewIPSet(ctx, set.Name, set.Type, set.CreateOptions()); err != nil {
		return fmt.Errorf("create ipset failed, err:%w", err)
	}
	return nil
}

func (p *defaultProvider) Create(ctx context.Context, set *model.IPSet) error {
	if err := p.createSet(ctx, set); err != nil {
		return err
	}
	logger := logutil.GetLogger(ctx).With(zap.String("ipset", set.Name), zap.String("type", string(set.Type)))
	if !set.IsManageEntries() {
		logger.Info("create ipset succ, entries managed elsewhere")
		return nil
	}
	if len(set.Entries) > 0 {
		if err := p.cli.AddEntriesFromFile(ctx, set.Name, set.Entries); err != nil {
			return fmt.Errorf("seed ipset entries failed, err:%w", err)
		}
	}
	logger.Info("create ipset succ", zap.Int("entries", len(set.Entries)))
	return nil
}

func (p *defaultProvider) Destroy(ctx context.Context, name string) error {
	if err := p.cli.DeleteIPSet(ctx, name); err != nil {
		return fmt.Errorf("delete ipset failed, err:%w", err)
	}
	logutil.GetLogger(ctx).Info("delete ipset succ", zap.String("ipset", name))
	return nil
}

func (p *defaultProvider) Entries(ctx context.Context, set *model.IPSet) ([]string, error) {
	if !set.IsManageEntries() {
		return set.Entries, nil
	}
	entries, err := p.cli.GetEntries(ctx, set.Name)
	if err != nil {
		return nil, fmt.Errorf("get ipset entries failed, err:%w", err)
	}
	return entries, nil
}

func (p *defaultProvider) SetEntries(ctx context.Context, set *model.IPSet) (*EntryChange, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("ipset", set.Name))
	if !set.IsManageEntries() {
		logger.Info("ipset entries not managed, skip reconcile")
		return &EntryChange{}, nil
	}
	current, err := p.Entries(ctx, set)
	if err != nil {
		return nil, err
	}
	toAdd, toRemove := Reconcile(current, set.Entries)
	change := &EntryChange{}
	if len(toRemove) > 0 {
		if err := p.cli.RemoveEntriesFromFile(ctx, set.Name, toRemove); err != nil {
			return change, fmt.Errorf("remove ipset entries failed, err:%w", err)
		}
		change.Removed = toRemove
	}
	if len(toAdd) > 0 {
		if err := p.cli.AddEntriesFromFile(ctx, set.Name, toAdd); err != nil {
			return change, fmt.Errorf("add ipset entries failed, err:%w", err)
		}
		change.Added = toAdd
	}
	if !change.Empty() {
		logger.Info("reconcile ipset entries succ", zap.Strings("removed", toRemove), zap.Strings("added", toAdd))
	}
	return change, nil
}

// SyncIdentity recreates the set when a declared identity attribute differs from current.
// The returned EntryChange is nil when no recreate happened.
func (p *defaultProvider) SyncIdentity(ctx context.Context, set *model.IPSet, current model.Identity) ([]model.AttrChange, *EntryChange, error) {
	changes := model.DiffIdentity(current, set.Identity())
	if len(changes) == 0 {
		return nil, nil, nil
	}
	for _, c := range changes {
		logutil.GetLogger(ctx).Info("ipset identity attribute changed",
			zap.String("ipset", set.Name), zap.String("attr", c.Attr),
			zap.String("current", c.Current), zap.String("desired", c.Desired))
	}
	entryChange, err := p.Recreate(ctx, set)
	if err != nil {
		return changes, entryChange, err
	}
	return changes, entryChange, nil
}

// Recreate destroys and recreates the set, then reconciles entries against the queried
// membership of the new set rather than assuming it starts empty.
func (p *defaultProvider) Recreate(ctx context.Context, set *model.IPSet) (*EntryChange, error) {
	if err := p.Destroy(ctx, set.Name); err != nil {
		return nil, err
	}
	if err := p.createSet(ctx, set); err != nil {
		return nil, err
	}
	return p.SetEntries(ctx, set)
}
