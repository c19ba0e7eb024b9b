package ipsetkeeper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ipset-keeper/firewallcmd"
	"ipset-keeper/firewallcmd/fakecmd"
	"ipset-keeper/model"
	"ipset-keeper/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKeeper(t *testing.T, opts ...Option) (*fakecmd.Firewalld, *IPSetKeeper) {
	fw := fakecmd.New()
	cli := firewallcmd.New(fw, firewallcmd.WithTmpDir(t.TempDir()))
	k, err := New(append([]Option{WithClient(cli)}, opts...)...)
	require.NoError(t, err)
	return fw, k
}

func cmdsOf(fw *fakecmd.Firewalld) []string {
	rs := make([]string, 0, len(fw.Calls))
	for _, c := range fw.Calls {
		rs = append(rs, c.Cmd())
	}
	return rs
}

func TestNewWithoutClient(t *testing.T) {
	_, err := New()
	assert.Error(t, err)
}

func TestApplyCreateThenIdempotent(t *testing.T) {
	fw, k := newTestKeeper(t, WithReloadOnChange(true))
	ctx := context.Background()
	sets := []*model.IPSet{
		{Name: "whitelist", Entries: []string{"192.168.2.2", "10.72.1.100/32"}},
	}
	{
		changes, err := k.Apply(ctx, sets)
		require.NoError(t, err)
		require.Len(t, changes, 1)
		assert.Equal(t, ActionCreate, changes[0].Action)
		assert.Equal(t, []string{"10.72.1.100", "192.168.2.2"}, changes[0].Entries.Added)
		assert.Equal(t, []string{"--state", "--get-ipsets", "--new-ipset", "--add-entries-from-file", "--reload"}, cmdsOf(fw))
		assert.Equal(t, []string{"10.72.1.100", "192.168.2.2"}, fw.Entries("whitelist"))
	}
	{
		fw.ResetCalls()
		changes, err := k.Apply(ctx, sets)
		require.NoError(t, err)
		require.Len(t, changes, 1)
		assert.Equal(t, ActionNone, changes[0].Action)
		assert.Empty(t, fw.CallsOf("--add-entries-from-file"))
		assert.Empty(t, fw.CallsOf("--remove-entries-from-file"))
		assert.Empty(t, fw.CallsOf("--reload"))
	}
	// declared input is not mutated by Apply
	assert.Equal(t, []string{"192.168.2.2", "10.72.1.100/32"}, sets[0].Entries)
}

func TestApplyUpdateAndDestroy(t *testing.T) {
	fw, k := newTestKeeper(t)
	ctx := context.Background()
	fw.AddSet("whitelist", "hash:ip", nil, "10.9.9.9", "10.8.8.8", "10.72.1.100")
	fw.AddSet("old", "hash:net", nil)
	fw.AddSet("unrelated", "hash:net", nil, "1.0.0.0/8")
	changes, err := k.Apply(ctx, []*model.IPSet{
		{Name: "whitelist", Entries: []string{"192.168.2.2", "10.72.1.100"}},
		{Name: "old", Ensure: model.EnsureAbsent},
		{Name: "never", Ensure: model.EnsureAbsent},
	})
	require.NoError(t, err)
	require.Len(t, changes, 3)
	assert.Equal(t, ActionUpdate, changes[0].Action)
	assert.Equal(t, []string{"192.168.2.2"}, changes[0].Entries.Added)
	assert.Equal(t, []string{"10.8.8.8", "10.9.9.9"}, changes[0].Entries.Removed)
	assert.Equal(t, ActionDestroy, changes[1].Action)
	assert.Equal(t, ActionNone, changes[2].Action)
	assert.Len(t, fw.CallsOf("--remove-entries-from-file"), 1)
	assert.Len(t, fw.CallsOf("--add-entries-from-file"), 1)
	assert.Len(t, fw.CallsOf("--get-ipsets"), 1)
	assert.Empty(t, fw.CallsOf("--reload"))
	_, ok := fw.Sets["old"]
	assert.False(t, ok)
	assert.Equal(t, []string{"1.0.0.0/8"}, fw.Entries("unrelated"))
}

func TestApplyRecreate(t *testing.T) {
	fw, k := newTestKeeper(t)
	fw.AddSet("blocked", "hash:ip", []string{"family=inet", "hashsize=1024"}, "10.0.0.1", "10.0.0.2")
	changes, err := k.Apply(context.Background(), []*model.IPSet{
		{Name: "blocked", Type: model.SetTypeHashNet, Family: model.FamilyInet, Entries: []string{"10.0.0.0/24"}},
	})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, ActionRecreate, changes[0].Action)
	require.Len(t, changes[0].Identity, 1)
	assert.Equal(t, model.AttrType, changes[0].Identity[0].Attr)
	assert.Equal(t, []string{"10.0.0.0/24"}, changes[0].Entries.Added)
	assert.Equal(t, []string{"10.0.0.0/24"}, fw.Entries("blocked"))
	assert.Equal(t, "hash:net", fw.Sets["blocked"].Type)
}

func TestApplyValidationFailsBeforeAnyCall(t *testing.T) {
	fw, k := newTestKeeper(t)
	manage := false
	_, err := k.Apply(context.Background(), []*model.IPSet{
		{Name: "ok"},
		{Name: "dynamic", ManageEntries: &manage, Entries: []string{"1.1.1.1"}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidIPSet))
	assert.Empty(t, fw.Calls)

	_, err = k.Apply(context.Background(), []*model.IPSet{{Name: "dup"}, {Name: "dup"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidIPSet))
	assert.Empty(t, fw.Calls)
}

func TestApplyUnmanagedEntries(t *testing.T) {
	fw, k := newTestKeeper(t)
	fw.AddSet("dynamic", "hash:ip", []string{"timeout=600"}, "5.5.5.5")
	manage := false
	changes, err := k.Apply(context.Background(), []*model.IPSet{
		{Name: "dynamic", Timeout: 600, ManageEntries: &manage},
	})
	require.NoError(t, err)
	assert.Equal(t, ActionNone, changes[0].Action)
	assert.Empty(t, fw.CallsOf("--get-entries"))
	assert.Equal(t, []string{"5.5.5.5"}, fw.Entries("dynamic"))
}

func TestApplyContinuesAfterFailure(t *testing.T) {
	fw, k := newTestKeeper(t)
	fw.AddSet("a", "hash:ip", nil, "1.1.1.1")
	fw.FailOn["--new-ipset"] = errors.New("boom")
	changes, err := k.Apply(context.Background(), []*model.IPSet{
		{Name: "b", Entries: []string{"2.2.2.2"}},
		{Name: "a", Entries: []string{"3.3.3.3"}},
	})
	require.Error(t, err)
	require.Len(t, changes, 2)
	assert.Error(t, changes[0].Err)
	assert.NoError(t, changes[1].Err)
	assert.Equal(t, []string{"3.3.3.3"}, fw.Entries("a"))
}

func TestApplyNotRunning(t *testing.T) {
	fw, k := newTestKeeper(t)
	fw.Stopped = true
	_, err := k.Apply(context.Background(), []*model.IPSet{{Name: "a"}})
	assert.ErrorIs(t, err, ErrNotRunning)

	fw.Stopped = false
	fw.FailOn["--state"] = errors.New("Authorization failed.")
	_, err = k.Apply(context.Background(), []*model.IPSet{{Name: "a"}})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotRunning)
	assert.Empty(t, fw.CallsOf("--get-ipsets"))

	_, k = newTestKeeper(t, WithSkipStateCheck(true))
	_, err = k.Plan(context.Background(), []*model.IPSet{{Name: "a"}})
	assert.NoError(t, err)
}

func TestPlanDoesNotMutate(t *testing.T) {
	fw, k := newTestKeeper(t)
	fw.AddSet("whitelist", "hash:ip", nil, "10.9.9.9", "10.72.1.100")
	fw.AddSet("blocked", "hash:ip", []string{"maxelem=1024"})
	changes, err := k.Plan(context.Background(), []*model.IPSet{
		{Name: "whitelist", Entries: []string{"192.168.2.2", "10.72.1.100"}},
		{Name: "blocked", MaxElem: 2048, Entries: []string{"1.1.1.1"}},
		{Name: "fresh", Entries: []string{"2.2.2.2"}},
	})
	require.NoError(t, err)
	require.Len(t, changes, 3)
	assert.Equal(t, ActionUpdate, changes[0].Action)
	assert.Equal(t, []string{"192.168.2.2"}, changes[0].Entries.Added)
	assert.Equal(t, []string{"10.9.9.9"}, changes[0].Entries.Removed)
	assert.Equal(t, ActionRecreate, changes[1].Action)
	assert.Equal(t, ActionCreate, changes[2].Action)
	for _, c := range fw.Calls {
		assert.Contains(t, []string{"--state", "--get-ipsets", "--info-ipset", "--get-entries"}, c.Cmd())
	}
	assert.Equal(t, []string{"10.72.1.100", "10.9.9.9"}, fw.Entries("whitelist"))
}

func TestPrepareEntriesFile(t *testing.T) {
	_, k := newTestKeeper(t)
	f := filepath.Join(t.TempDir(), "entries.txt")
	require.NoError(t, os.WriteFile(f, []byte("# hosts\n8.8.8.8/32\n9.9.9.9\n"), 0644))
	sets, err := k.Prepare([]*model.IPSet{{Name: "dns", Entries: []string{"1.1.1.1"}, EntriesFile: f}})
	require.NoError(t, err)
	assert.Equal(t, []string{"1.1.1.1", "8.8.8.8", "9.9.9.9"}, sets[0].Entries)

	_, err = k.Prepare([]*model.IPSet{{Name: "dns", EntriesFile: f + ".missing"}})
	assert.Error(t, err)
}

func TestListAndDestroy(t *testing.T) {
	fw, k := newTestKeeper(t, WithReloadOnChange(true))
	ctx := context.Background()
	fw.AddSet("b", "hash:net", []string{"family=inet6"}, "2001:db8::/32")
	fw.AddSet("a", "hash:ip", nil)
	states, err := k.List(ctx)
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "a", states[0].Name)
	assert.Equal(t, model.FamilyInet6, states[1].Identity.Family)
	assert.Equal(t, 0, states[0].EntryCount)
	assert.Equal(t, 1, states[1].EntryCount)

	ok, err := k.Destroy(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, fw.CallsOf("--reload"), 1)
	ok, err = k.Destroy(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = k.Destroy(ctx, "bad name")
	assert.ErrorIs(t, err, model.ErrInvalidIPSet)
}

type failingCreateProvider struct {
	provider.IProvider
}

func (p *failingCreateProvider) Create(ctx context.Context, set *model.IPSet) error {
	return errors.New("create refused")
}

func TestApplyFailedCreateSkipsReload(t *testing.T) {
	fw := fakecmd.New()
	cli := firewallcmd.New(fw, firewallcmd.WithTmpDir(t.TempDir()))
	k, err := New(
		WithClient(cli),
		WithProvider(&failingCreateProvider{IProvider: provider.New(cli)}),
		WithReloadOnChange(true),
	)
	require.NoError(t, err)
	changes, err := k.Apply(context.Background(), []*model.IPSet{{Name: "fresh", Entries: []string{"1.1.1.1"}}})
	require.Error(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, ActionCreate, changes[0].Action)
	assert.False(t, changes[0].Applied())
	assert.Empty(t, fw.CallsOf("--reload"))
	assert.Empty(t, fw.CallsOf("--new-ipset"))

	fw.AddSet("fresh", "hash:ip", nil, "9.9.9.9")
	fw.FailOn["--add-entries-from-file"] = errors.New("boom")
	changes, err = k.Apply(context.Background(), []*model.IPSet{{Name: "fresh", Entries: []string{"1.1.1.1"}}})
	require.Error(t, err)
	assert.Equal(t, ActionUpdate, changes[0].Action)
	assert.True(t, changes[0].Applied())
	assert.Len(t, fw.CallsOf("--reload"), 1)
}
