package ipsetkeeper

import (
	"context"
	"errors"
	"fmt"

	"ipset-keeper/model"
	"ipset-keeper/provider"
	"ipset-keeper/utils"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

var (
	ErrNotRunning = errors.New("firewalld is not running")
)

type IPSetKeeper struct {
	c *config
}

func New(opts ...Option) (*IPSetKeeper, error) {
	c := applyOpts(opts...)
	if c.cli == nil {
		return nil, fmt.Errorf("no firewall-cmd client found")
	}
	if c.provider == nil {
		c.provider = provider.New(c.cli)
	}
	return &IPSetKeeper{c: c}, nil
}

// Prepare validates the declared sets, loads entry files and applies defaults.
// It makes no firewall-cmd call, so a bad declaration fails before anything is touched.
func (k *IPSetKeeper) Prepare(sets []*model.IPSet) ([]*model.IPSet, error) {
	rs := make([]*model.IPSet, 0, len(sets))
	seen := make(map[string]struct{}, len(sets))
	for _, s := range sets {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("validate ipset:%s failed, err:%w", s.Name, err)
		}
		if _, ok := seen[s.Name]; ok {
			return nil, fmt.Errorf("validate ipset:%s failed, err:%w", s.Name,
				model.ValidationErrors{model.NewValidationError("name", s.Name, "duplicate ipset declaration")})
		}
		seen[s.Name] = struct{}{}
		item := *s
		if len(item.EntriesFile) > 0 {
			fileEntries, err := utils.ReadEntryListFromFile(item.EntriesFile)
			if err != nil {
				return nil, fmt.Errorf("read entries file:%s of ipset:%s failed, err:%w", item.EntriesFile, s.Name, err)
			}
			entries := make([]string, 0, len(item.Entries)+len(fileEntries))
			entries = append(entries, item.Entries...)
			entries = append(entries, fileEntries...)
			item.Entries = entries
		}
		item.ApplyDefaults()
		rs = append(rs, &item)
	}
	return rs, nil
}

// Prefetch lists every live set once along with its type and options.
func (k *IPSetKeeper) Prefetch(ctx context.Context) (Snapshot, error) {
	names, err := k.c.cli.GetIPSets(ctx)
	if err != nil {
		return nil, fmt.Errorf("get ipsets failed, err:%w", err)
	}
	snap := make(Snapshot, len(names))
	for _, name := range names {
		info, err := k.c.cli.InfoIPSet(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("read ipset:%s info failed, err:%w", name, err)
		}
		snap[name] = &SetState{
			Name:       name,
			Identity:   info.Identity(),
			Options:    info.Options,
			EntryCount: len(info.Entries),
		}
	}
	logutil.GetLogger(ctx).Debug("prefetch ipsets succ", zap.Int("count", len(snap)))
	return snap, nil
}

func (k *IPSetKeeper) ensureRunning(ctx context.Context) error {
	if k.c.skipStateCheck {
		return nil
	}
	ok, err := k.c.cli.State(ctx)
	if err != nil {
		return fmt.Errorf("check firewalld state failed, err:%w", err)
	}
	if !ok {
		return ErrNotRunning
	}
	return nil
}

// Plan reports what Apply would do without changing anything.
func (k *IPSetKeeper) Plan(ctx context.Context, sets []*model.IPSet) ([]*Change, error) {
	sets, err := k.Prepare(sets)
	if err != nil {
		return nil, err
	}
	if err := k.ensureRunning(ctx); err != nil {
		return nil, err
	}
	snap, err := k.Prefetch(ctx)
	if err != nil {
		return nil, err
	}
	rs := make([]*Change, 0, len(sets))
	for _, set := range sets {
		change, err := k.planOne(ctx, set, snap[set.Name])
		if err != nil {
			return nil, err
		}
		rs = append(rs, change)
	}
	return rs, nil
}

func (k *IPSetKeeper) planOne(ctx context.Context, set *model.IPSet, state *SetState) (*Change, error) {
	change := &Change{Name: set.Name, Action: ActionNone}
	if !set.IsPresent() {
		if state != nil {
			change.Action = ActionDestroy
		}
		return change, nil
	}
	if state == nil {
		change.Action = ActionCreate
		if set.IsManageEntries() {
			change.Entries.Added = set.Entries
		}
		return change, nil
	}
	change.Identity = model.DiffIdentity(state.Identity, set.Identity())
	if len(change.Identity) > 0 {
		change.Action = ActionRecreate
		if set.IsManageEntries() {
			change.Entries.Added = set.Entries
		}
		return change, nil
	}
	current, err := k.c.provider.Entries(ctx, set)
	if err != nil {
		return nil, err
	}
	toAdd, toRemove := provider.Reconcile(current, set.Entries)
	change.Entries = provider.EntryChange{Added: toAdd, Removed: toRemove}
	if !change.Entries.Empty() {
		change.Action = ActionUpdate
	}
	return change, nil
}

// Apply reconciles every declared set. A failure on one set is recorded on its Change and
// does not stop the others; the joined errors are returned.
func (k *IPSetKeeper) Apply(ctx context.Context, sets []*model.IPSet) ([]*Change, error) {
	sets, err := k.Prepare(sets)
	if err != nil {
		return nil, err
	}
	if err := k.ensureRunning(ctx); err != nil {
		return nil, err
	}
	snap, err := k.Prefetch(ctx)
	if err != nil {
		return nil, err
	}
	rs := make([]*Change, 0, len(sets))
	var errs []error
	changed := false
	for _, set := range sets {
		change := k.applyOne(ctx, set, snap[set.Name])
		if change.Err != nil {
			logutil.GetLogger(ctx).Error("apply ipset failed", zap.String("ipset", set.Name), zap.Error(change.Err))
			errs = append(errs, fmt.Errorf("apply ipset:%s failed, err:%w", set.Name, change.Err))
		}
		if change.Applied() {
			changed = true
		}
		rs = append(rs, change)
	}
	if changed && k.c.reloadOnChange {
		if err := k.c.cli.Reload(ctx); err != nil {
			errs = append(errs, fmt.Errorf("reload firewalld failed, err:%w", err))
		} else {
			logutil.GetLogger(ctx).Info("reload firewalld succ")
		}
	}
	return rs, errors.Join(errs...)
}

func (k *IPSetKeeper) applyOne(ctx context.Context, set *model.IPSet, state *SetState) *Change {
	p := k.c.provider
	change := &Change{Name: set.Name, Action: ActionNone}
	if !set.IsPresent() {
		if state == nil {
			return change
		}
		change.Action = ActionDestroy
		change.Err = p.Destroy(ctx, set.Name)
		return change
	}
	if state == nil {
		change.Action = ActionCreate
		if change.Err = p.Create(ctx, set); change.Err == nil && set.IsManageEntries() {
			change.Entries.Added = set.Entries
		}
		return change
	}
	attrs, entryChange, err := p.SyncIdentity(ctx, set, state.Identity)
	if len(attrs) > 0 {
		change.Action = ActionRecreate
		change.Identity = attrs
		if entryChange != nil {
			change.Entries = *entryChange
		}
		change.Err = err
		return change
	}
	if err != nil {
		change.Err = err
		return change
	}
	entryChange, err = p.SetEntries(ctx, set)
	if entryChange != nil {
		change.Entries = *entryChange
	}
	if !change.Entries.Empty() {
		change.Action = ActionUpdate
	}
	change.Err = err
	return change
}

// List returns the prefetched live sets, sorted by name.
func (k *IPSetKeeper) List(ctx context.Context) ([]*SetState, error) {
	if err := k.ensureRunning(ctx); err != nil {
		return nil, err
	}
	snap, err := k.Prefetch(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Sorted(), nil
}

// Destroy deletes one set by name; a missing set is not an error.
func (k *IPSetKeeper) Destroy(ctx context.Context, name string) (bool, error) {
	if !model.IsValidName(name) {
		return false, fmt.Errorf("validate ipset:%s failed, err:%w", name,
			model.ValidationErrors{model.NewValidationError("name", name, "IPset name must be a word with no spaces")})
	}
	if err := k.ensureRunning(ctx); err != nil {
		return false, err
	}
	ok, err := k.c.provider.Exists(ctx, name)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := k.c.provider.Destroy(ctx, name); err != nil {
		return false, err
	}
	if k.c.reloadOnChange {
		if err := k.c.cli.Reload(ctx); err != nil {
			return true, fmt.Errorf("reload firewalld failed, err:%w", err)
		}
	}
	return true, nil
}
