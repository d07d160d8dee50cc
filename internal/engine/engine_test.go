package engine

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/modsync/internal/apperr"
	"github.com/starford/modsync/internal/loadorder"
	"github.com/starford/modsync/internal/models"
	"github.com/starford/modsync/internal/testutil"
	"github.com/starford/modsync/internal/workspace"
)

const (
	uuidA = "0a1b2c3d-0000-4000-8000-00000000000a"
	uuidB = "0a1b2c3d-0000-4000-8000-00000000000b"
	uuidC = "0a1b2c3d-0000-4000-8000-00000000000c"
	uuidD = "0a1b2c3d-0000-4000-8000-00000000000d"
	uuidX = "0a1b2c3d-0000-4000-8000-0000000000ff"
)

var fixedNow = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func newWorkspace(t *testing.T, mods []testutil.Mod, entries ...testutil.Entry) *workspace.Memory {
	t.Helper()
	ws := workspace.NewMemory(
		[]byte(testutil.RegistryJSON(mods...)),
		[]byte(testutil.ModsettingsXML(entries...)),
	)
	ws.SetClock(func() time.Time { return fixedNow })
	return ws
}

func apply(ws workspace.Workspace, op Op) (*Result, error) {
	return New(ws, nil).Apply(context.Background(), op)
}

func load(t *testing.T, ws workspace.Workspace) *workspace.Snapshot {
	t.Helper()
	snap, err := ws.Load()
	require.NoError(t, err)
	return snap
}

func docUUIDs(snap *workspace.Snapshot) []string {
	var out []string
	for _, n := range snap.Document.Nodes() {
		out = append(out, n.UUID())
	}
	return out
}

func entry(t *testing.T, snap *workspace.Snapshot, uuid string) *models.ModEntry {
	t.Helper()
	e, ok := snap.Registry.Get(uuid)
	require.True(t, ok, "registry has %s", uuid)
	return e
}

func fragment(e testutil.Entry) []byte {
	return []byte(testutil.EntryXML(e, ""))
}

func assertUntouched(t *testing.T, ws *workspace.Memory, reg, doc []byte) {
	t.Helper()
	assert.Equal(t, 0, ws.Commits)
	assert.Equal(t, string(reg), string(ws.RegistryData()))
	assert.Equal(t, string(doc), string(ws.DocumentData()))
}

// --- Activate ---

func TestActivateFresh(t *testing.T) {
	ws := newWorkspace(t, []testutil.Mod{{UUID: uuidA, Name: "Test Mod", Number: 1}})
	ws.SetBackup(uuidA, fragment(testutil.Entry{UUID: uuidA, Name: "Test Mod"}))

	res, err := apply(ws, Activate{Number: 1})
	require.NoError(t, err)
	assert.Equal(t, Applied, res.Outcome)
	assert.Equal(t, uuidA, res.UUID)

	snap := load(t, ws)
	assert.Equal(t, []string{testutil.GustavDevUUID, uuidA}, docUUIDs(snap))
	assert.True(t, entry(t, snap, uuidA).Installed)
	n, _ := snap.Document.FindByUUID(uuidA)
	assert.Equal(t, "Test Mod", n.Entry().Name)

	_, kept := ws.Backup(uuidA)
	assert.True(t, kept, "activation keeps the fragment")
}

func TestActivateMissingBackup(t *testing.T) {
	ws := newWorkspace(t, []testutil.Mod{{UUID: uuidA, Name: "Test Mod", Number: 1}})
	reg, doc := ws.RegistryData(), ws.DocumentData()

	_, err := apply(ws, Activate{Number: 1})
	require.ErrorIs(t, err, apperr.ErrMissingBackup)
	assertUntouched(t, ws, reg, doc)
}

func TestActivateNumberNotFound(t *testing.T) {
	ws := newWorkspace(t, []testutil.Mod{{UUID: uuidA, Name: "A", Number: 1}})
	reg, doc := ws.RegistryData(), ws.DocumentData()

	_, err := apply(ws, Activate{Number: 99})
	require.ErrorIs(t, err, apperr.ErrModNotFound)
	assertUntouched(t, ws, reg, doc)
}

func TestActivateAlreadyActive(t *testing.T) {
	ws := newWorkspace(t,
		[]testutil.Mod{{UUID: uuidA, Name: "A", Number: 1, Installed: true}},
		testutil.Entry{UUID: uuidA, Name: "A"},
	)
	res, err := apply(ws, Activate{Number: 1})
	require.NoError(t, err)
	assert.Equal(t, AlreadyInState, res.Outcome)
	assert.Equal(t, 0, ws.Commits)
}

func TestActivateMalformedBackup(t *testing.T) {
	cases := map[string][]byte{
		"garbage":    []byte("<node"),
		"no uuid":    []byte(`<node id="ModuleShortDesc"><attribute id="Name" type="LSString" value="A"/></node>`),
		"other uuid": fragment(testutil.Entry{UUID: uuidB, Name: "B"}),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			ws := newWorkspace(t, []testutil.Mod{{UUID: uuidA, Name: "A", Number: 1}})
			ws.SetBackup(uuidA, data)
			reg, doc := ws.RegistryData(), ws.DocumentData()

			_, err := apply(ws, Activate{Number: 1})
			require.ErrorIs(t, err, apperr.ErrMalformedBackup)
			assertUntouched(t, ws, reg, doc)
		})
	}
}

func TestActivateEntryAlreadyInDocument(t *testing.T) {
	ws := newWorkspace(t,
		[]testutil.Mod{{UUID: uuidA, Name: "A", Number: 1}},
		testutil.Entry{UUID: uuidA, Name: "A"},
	)
	ws.SetBackup(uuidA, fragment(testutil.Entry{UUID: uuidA, Name: "A"}))

	res, err := apply(ws, Activate{Number: 1})
	require.NoError(t, err)
	assert.Len(t, res.Warnings, 1)

	snap := load(t, ws)
	assert.Equal(t, []string{testutil.GustavDevUUID, uuidA}, docUUIDs(snap))
	assert.True(t, entry(t, snap, uuidA).Installed)
}

func TestActivateKeepsForeignEntryAheadOfMods(t *testing.T) {
	ws := newWorkspace(t,
		[]testutil.Mod{
			{UUID: uuidA, Name: "A", Number: 1},
			{UUID: uuidB, Name: "B", Number: 2, Installed: true},
		},
		testutil.Entry{UUID: uuidB, Name: "B"},
		testutil.Entry{UUID: uuidX, Name: "Foreign"},
	)
	ws.SetBackup(uuidA, fragment(testutil.Entry{UUID: uuidA, Name: "A"}))

	_, err := apply(ws, Activate{Number: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{testutil.GustavDevUUID, uuidX, uuidA, uuidB}, docUUIDs(load(t, ws)))
}

// --- Deactivate ---

func TestDeactivate(t *testing.T) {
	ws := newWorkspace(t,
		[]testutil.Mod{{UUID: uuidA, Name: "A", Number: 1, Installed: true}},
		testutil.Entry{UUID: uuidA, Name: "A"},
	)
	res, err := apply(ws, Deactivate{Number: 1})
	require.NoError(t, err)
	assert.Equal(t, Applied, res.Outcome)

	snap := load(t, ws)
	assert.Equal(t, []string{testutil.GustavDevUUID}, docUUIDs(snap))
	assert.False(t, entry(t, snap, uuidA).Installed)
	_, ok := ws.Backup(uuidA)
	assert.True(t, ok)
}

func TestDeactivateOverwritesOldBackup(t *testing.T) {
	ws := newWorkspace(t,
		[]testutil.Mod{{UUID: uuidA, Name: "A", Number: 1, Installed: true}},
		testutil.Entry{UUID: uuidA, Name: "A v2"},
	)
	ws.SetBackup(uuidA, fragment(testutil.Entry{UUID: uuidA, Name: "A v1"}))

	_, err := apply(ws, Deactivate{Number: 1})
	require.NoError(t, err)

	data, _ := ws.Backup(uuidA)
	n, err := loadorder.ParseFragment(data)
	require.NoError(t, err)
	assert.Equal(t, "A v2", n.Entry().Name)
}

func TestDeactivateEntryNotFound(t *testing.T) {
	ws := newWorkspace(t, []testutil.Mod{{UUID: uuidA, Name: "A", Number: 1, Installed: true}})
	reg, doc := ws.RegistryData(), ws.DocumentData()

	_, err := apply(ws, Deactivate{Number: 1})
	require.ErrorIs(t, err, apperr.ErrEntryNotFound)
	assertUntouched(t, ws, reg, doc)
	_, ok := ws.Backup(uuidA)
	assert.False(t, ok, "no backup for a missing entry")
}

func TestDeactivateAlreadyInactive(t *testing.T) {
	ws := newWorkspace(t, []testutil.Mod{{UUID: uuidA, Name: "A", Number: 1}})
	res, err := apply(ws, Deactivate{Number: 1})
	require.NoError(t, err)
	assert.Equal(t, AlreadyInState, res.Outcome)
	assert.Equal(t, 0, ws.Commits)
}

func TestDeactivateActivateRoundTrip(t *testing.T) {
	original := testutil.Entry{UUID: uuidA, Name: "A", Folder: "AFolder", MD5: "abc123", Version: "36028797018963968"}
	ws := newWorkspace(t,
		[]testutil.Mod{
			{UUID: uuidA, Name: "A", Number: 1, Installed: true},
			{UUID: uuidB, Name: "B", Number: 2, Installed: true},
		},
		testutil.Entry{UUID: uuidB, Name: "B"},
		original,
	)
	before, ok := load(t, ws).Document.FindByUUID(uuidA)
	require.True(t, ok)
	wantAttrs := before.Attributes()

	_, err := apply(ws, Deactivate{Number: 1})
	require.NoError(t, err)
	_, err = apply(ws, Activate{Number: 1})
	require.NoError(t, err)

	snap := load(t, ws)
	after, ok := snap.Document.FindByUUID(uuidA)
	require.True(t, ok)
	assert.Equal(t, wantAttrs, after.Attributes())
	assert.Equal(t, []string{testutil.GustavDevUUID, uuidA, uuidB}, docUUIDs(snap))
}

// --- Install ---

func meta(uuid, name string) *models.PackageMetadata {
	return &models.PackageMetadata{UUID: uuid, Folder: name + "Folder", Name: name, MD5: "ff", Version: "1"}
}

func TestInstallNew(t *testing.T) {
	ws := newWorkspace(t,
		[]testutil.Mod{{UUID: uuidA, Name: "A", Number: 4, Installed: true}},
		testutil.Entry{UUID: uuidA, Name: "A"},
	)
	res, err := apply(ws, Install{Metadata: meta(uuidB, "B")})
	require.NoError(t, err)
	assert.Equal(t, Applied, res.Outcome)

	snap := load(t, ws)
	b := entry(t, snap, uuidB)
	assert.Equal(t, 5, b.Number)
	assert.True(t, b.Installed)
	assert.Equal(t, models.OriginStandard, b.Origin)
	assert.True(t, b.CreatedAt.Equal(fixedNow))
	assert.Equal(t, []string{testutil.GustavDevUUID, uuidA, uuidB}, docUUIDs(snap))

	n, _ := snap.Document.FindByUUID(uuidB)
	assert.Equal(t, map[string]string{
		"Folder": "BFolder", "MD5": "ff", "Name": "B", "UUID": uuidB, "Version64": "1",
	}, n.Attributes())
}

func TestInstallFirstModGetsNumberOne(t *testing.T) {
	ws := newWorkspace(t, nil)
	_, err := apply(ws, Install{Metadata: meta(uuidA, "A")})
	require.NoError(t, err)
	assert.Equal(t, 1, entry(t, load(t, ws), uuidA).Number)
}

func TestInstallAlreadyInstalled(t *testing.T) {
	ws := newWorkspace(t,
		[]testutil.Mod{{UUID: uuidA, Name: "A", Number: 1, Installed: true}},
		testutil.Entry{UUID: uuidA, Name: "A"},
	)
	res, err := apply(ws, Install{Metadata: meta(uuidA, "A")})
	require.NoError(t, err)
	assert.Equal(t, AlreadyInState, res.Outcome)
	assert.Equal(t, 0, ws.Commits)
}

func TestInstallEntryAlreadyInDocument(t *testing.T) {
	ws := newWorkspace(t, nil, testutil.Entry{UUID: uuidA, Name: "A"})
	doc := ws.DocumentData()

	res, err := apply(ws, Install{Metadata: meta(uuidA, "A")})
	require.NoError(t, err)
	assert.Equal(t, Applied, res.Outcome)
	assert.Len(t, res.Warnings, 1)
	assert.Equal(t, string(doc), string(ws.DocumentData()), "document left alone")
	assert.True(t, entry(t, load(t, ws), uuidA).Installed)
}

func TestInstallInactiveEntry(t *testing.T) {
	ws := newWorkspace(t, []testutil.Mod{{UUID: uuidA, Name: "A", Number: 3}})
	_, err := apply(ws, Install{Metadata: meta(uuidA, "A")})
	require.NoError(t, err)

	snap := load(t, ws)
	a := entry(t, snap, uuidA)
	assert.True(t, a.Installed)
	assert.Equal(t, 3, a.Number)
	assert.True(t, snap.Document.Has(uuidA))
}

func TestInstallUpdate(t *testing.T) {
	ws := newWorkspace(t,
		[]testutil.Mod{
			{UUID: uuidA, Name: "A", Number: 1, Installed: true},
			{UUID: uuidB, Name: "B", Number: 2},
		},
		testutil.Entry{UUID: uuidA, Name: "A"},
	)
	doc := ws.DocumentData()

	res, err := apply(ws, Install{Metadata: meta(uuidA, "A"), Update: true})
	require.NoError(t, err)
	assert.Equal(t, Applied, res.Outcome)
	a := entry(t, load(t, ws), uuidA)
	assert.True(t, a.UpdatedAt.Equal(fixedNow))
	assert.False(t, a.CreatedAt.Equal(fixedNow))

	res, err = apply(ws, Install{Metadata: meta(uuidB, "B"), Update: true})
	require.NoError(t, err)
	assert.Equal(t, Skipped, res.Outcome)
	assert.True(t, res.Inactive)
	assert.False(t, entry(t, load(t, ws), uuidB).Installed)
	assert.Equal(t, string(doc), string(ws.DocumentData()))
}

func TestInstallUpdateOfUnknownModInstallsIt(t *testing.T) {
	ws := newWorkspace(t, nil)
	res, err := apply(ws, Install{Metadata: meta(uuidC, "C"), Update: true})
	require.NoError(t, err)
	assert.Equal(t, Applied, res.Outcome)

	snap := load(t, ws)
	c := entry(t, snap, uuidC)
	assert.True(t, c.Installed)
	assert.Equal(t, 1, c.Number)
	assert.True(t, snap.Document.Has(uuidC))
}

func TestInstallPakOnly(t *testing.T) {
	ws := newWorkspace(t, nil)
	res, err := apply(ws, Install{})
	require.NoError(t, err)
	assert.Equal(t, Skipped, res.Outcome)
	assert.Equal(t, 0, ws.Commits)
}

func TestInstallInvalidMetadata(t *testing.T) {
	for name, m := range map[string]*models.PackageMetadata{
		"no uuid":   {Folder: "F", Name: "N"},
		"no folder": {UUID: uuidA, Name: "N"},
		"no name":   {UUID: uuidA, Folder: "F"},
		"sentinel":  {UUID: models.GustavDevUUID, Folder: "F", Name: "N"},
	} {
		t.Run(name, func(t *testing.T) {
			ws := newWorkspace(t, nil)
			_, err := apply(ws, Install{Metadata: m})
			require.ErrorIs(t, err, apperr.ErrInvalidMetadata)
			assert.Equal(t, 0, ws.Commits)
		})
	}
}

// --- Refresh ---

func TestRefreshPhases(t *testing.T) {
	ws := newWorkspace(t,
		[]testutil.Mod{
			{UUID: uuidA, Name: "A", Number: 1},
			{UUID: uuidB, Name: "B", Number: 2, Installed: true},
		},
		testutil.Entry{UUID: uuidX, Name: "Foreign"},
		testutil.Entry{UUID: uuidA, Name: "A"},
	)

	res, err := apply(ws, Refresh{})
	require.NoError(t, err)
	assert.Equal(t, Applied, res.Outcome)
	require.NotNil(t, res.Refresh)
	require.Len(t, res.Refresh.Imported, 1)
	assert.Equal(t, "Foreign", res.Refresh.Imported[0].Name)
	require.Len(t, res.Refresh.Disabled, 1)
	assert.Equal(t, uuidB, res.Refresh.Disabled[0].UUID)
	require.Len(t, res.Refresh.Enabled, 1)
	assert.Equal(t, uuidA, res.Refresh.Enabled[0].UUID)
	assert.Equal(t, 1, ws.Commits, "one write for all phases")

	snap := load(t, ws)
	x := entry(t, snap, uuidX)
	assert.Equal(t, 3, x.Number)
	assert.True(t, x.Installed)
	assert.Equal(t, models.OriginModsettings, x.Origin)
	assert.True(t, entry(t, snap, uuidA).Installed)
	assert.False(t, entry(t, snap, uuidB).Installed)
}

func TestRefreshIsIdempotent(t *testing.T) {
	ws := newWorkspace(t,
		[]testutil.Mod{{UUID: uuidB, Name: "B", Number: 2, Installed: true}},
		testutil.Entry{UUID: uuidX, Name: "X"},
		testutil.Entry{UUID: uuidC, Name: "C"},
	)
	_, err := apply(ws, Refresh{})
	require.NoError(t, err)
	reg := ws.RegistryData()

	res, err := apply(ws, Refresh{})
	require.NoError(t, err)
	assert.Equal(t, AlreadyInState, res.Outcome)
	assert.Zero(t, res.Refresh.Changes())
	assert.Equal(t, 1, ws.Commits)
	assert.Equal(t, string(reg), string(ws.RegistryData()))
}

func TestRefreshImportNumbersContinueFromMax(t *testing.T) {
	ws := newWorkspace(t,
		[]testutil.Mod{{UUID: uuidA, Name: "A", Number: 7, Installed: true}},
		testutil.Entry{UUID: uuidA, Name: "A"},
		testutil.Entry{UUID: uuidC, Name: "C"},
		testutil.Entry{UUID: uuidD, Name: "D"},
	)
	_, err := apply(ws, Refresh{})
	require.NoError(t, err)

	snap := load(t, ws)
	assert.Equal(t, 8, entry(t, snap, uuidC).Number)
	assert.Equal(t, 9, entry(t, snap, uuidD).Number)
}

func TestRefreshWarnsAboutEntryWithoutUUID(t *testing.T) {
	ws := newWorkspace(t, nil, testutil.Entry{Name: "Broken"})
	res, err := apply(ws, Refresh{})
	require.NoError(t, err)
	assert.Equal(t, AlreadyInState, res.Outcome)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], `"Broken"`)
	assert.Zero(t, load(t, ws).Registry.Len())
}

func TestRefreshNeverRegistersSentinels(t *testing.T) {
	ws := newWorkspace(t, nil, testutil.Entry{UUID: models.GustavXDevUUID, Name: "GustavX"})
	res, err := apply(ws, Refresh{})
	require.NoError(t, err)
	assert.Equal(t, AlreadyInState, res.Outcome)

	snap := load(t, ws)
	assert.False(t, snap.Registry.Has(models.GustavDevUUID))
	assert.False(t, snap.Registry.Has(models.GustavXDevUUID))
}

// --- Reorder ---

func reorderFixture(t *testing.T) *workspace.Memory {
	return newWorkspace(t,
		[]testutil.Mod{
			{UUID: uuidA, Name: "A", Number: 1, Installed: true},
			{UUID: uuidB, Name: "B", Number: 2, Installed: true},
		},
		testutil.Entry{UUID: uuidA, Name: "A"},
		testutil.Entry{UUID: uuidB, Name: "B"},
	)
}

func TestReorderAfter(t *testing.T) {
	ws := reorderFixture(t)
	res, err := apply(ws, Reorder{Selected: []int{1}, Placement: Placement{Kind: PlaceAfter, Target: 2}})
	require.NoError(t, err)
	assert.Equal(t, Applied, res.Outcome)

	snap := load(t, ws)
	assert.Equal(t, 1, entry(t, snap, uuidB).Number)
	assert.Equal(t, 2, entry(t, snap, uuidA).Number)
	assert.Equal(t, []string{testutil.GustavDevUUID, uuidB, uuidA}, docUUIDs(snap))
}

func TestReorderPermutation(t *testing.T) {
	mods := []testutil.Mod{
		{UUID: uuidA, Name: "A", Number: 1, Installed: true},
		{UUID: uuidB, Name: "B", Number: 5, Installed: true},
		{UUID: uuidC, Name: "C", Number: 7},
		{UUID: uuidD, Name: "D", Number: 9, Installed: true},
	}
	entries := []testutil.Entry{
		{UUID: uuidA, Name: "A"}, {UUID: uuidB, Name: "B"}, {UUID: uuidD, Name: "D"},
	}
	cases := []struct {
		name      string
		selected  []int
		placement Placement
		want      []string
	}{
		{"beginning", []int{9, 5}, Placement{Kind: PlaceBeginning}, []string{uuidB, uuidD, uuidA, uuidC}},
		{"end", []int{1}, Placement{Kind: PlaceEnd}, []string{uuidB, uuidC, uuidD, uuidA}},
		{"after", []int{1, 5}, Placement{Kind: PlaceAfter, Target: 7}, []string{uuidC, uuidA, uuidB, uuidD}},
		{"after last", []int{7}, Placement{Kind: PlaceAfter, Target: 9}, []string{uuidA, uuidB, uuidD, uuidC}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ws := newWorkspace(t, mods, entries...)
			_, err := apply(ws, Reorder{Selected: tc.selected, Placement: tc.placement})
			require.NoError(t, err)

			snap := load(t, ws)
			var got []string
			var numbers []int
			for _, e := range snap.Registry.Sorted() {
				got = append(got, e.UUID)
				numbers = append(numbers, e.Number)
			}
			assert.Equal(t, tc.want, got)
			assert.Equal(t, []int{1, 2, 3, 4}, numbers)

			ids := append([]string(nil), got...)
			sort.Strings(ids)
			assert.Equal(t, []string{uuidA, uuidB, uuidC, uuidD}, ids)

			var active []string
			for _, u := range tc.want {
				if u != uuidC {
					active = append(active, u)
				}
			}
			assert.Equal(t, append([]string{testutil.GustavDevUUID}, active...), docUUIDs(snap))
		})
	}
}

func TestReorderErrors(t *testing.T) {
	cases := []struct {
		name    string
		op      Reorder
		wantErr error
	}{
		{"target in selection", Reorder{Selected: []int{1, 2}, Placement: Placement{Kind: PlaceAfter, Target: 2}}, apperr.ErrInvalidTarget},
		{"target missing", Reorder{Selected: []int{1}, Placement: Placement{Kind: PlaceAfter, Target: 42}}, apperr.ErrModNotFound},
		{"unmatched target in selection", Reorder{Selected: []int{1, 99}, Placement: Placement{Kind: PlaceAfter, Target: 99}}, apperr.ErrModNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ws := reorderFixture(t)
			reg, doc := ws.RegistryData(), ws.DocumentData()
			_, err := apply(ws, tc.op)
			require.ErrorIs(t, err, tc.wantErr)
			assertUntouched(t, ws, reg, doc)
		})
	}
}

func TestReorderNoWrite(t *testing.T) {
	cases := []struct {
		name string
		op   Reorder
		want Outcome
	}{
		{"cancel", Reorder{Selected: []int{1}, Placement: Placement{Kind: PlaceCancel}}, Cancelled},
		{"no match", Reorder{Selected: []int{40, 41}, Placement: Placement{Kind: PlaceEnd}}, Skipped},
		{"empty", Reorder{Placement: Placement{Kind: PlaceEnd}}, Skipped},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ws := reorderFixture(t)
			reg, doc := ws.RegistryData(), ws.DocumentData()
			res, err := apply(ws, tc.op)
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Outcome)
			assertUntouched(t, ws, reg, doc)
		})
	}
}

func TestReorderWarnsAboutUnmatchedNumbers(t *testing.T) {
	ws := reorderFixture(t)
	res, err := apply(ws, Reorder{Selected: []int{2, 9}, Placement: Placement{Kind: PlaceBeginning}})
	require.NoError(t, err)
	assert.Equal(t, Applied, res.Outcome)
	assert.Equal(t, []string{"no mod with number 9"}, res.Warnings)
}

func TestReorderKeepsSentinelsFirst(t *testing.T) {
	ws := newWorkspace(t,
		[]testutil.Mod{
			{UUID: uuidA, Name: "A", Number: 1, Installed: true},
			{UUID: uuidB, Name: "B", Number: 2, Installed: true},
		},
		testutil.Entry{UUID: uuidA, Name: "A"},
		testutil.Entry{UUID: models.GustavXDevUUID, Name: "GustavX"},
		testutil.Entry{UUID: uuidB, Name: "B"},
	)
	_, err := apply(ws, Reorder{Selected: []int{2}, Placement: Placement{Kind: PlaceBeginning}})
	require.NoError(t, err)

	snap := load(t, ws)
	assert.Equal(t, []string{testutil.GustavDevUUID, models.GustavXDevUUID, uuidB, uuidA}, docUUIDs(snap))
	assert.Equal(t, 2, snap.Registry.Len())
}

// --- Plan purity ---

func TestPlanLeavesSnapshotAlone(t *testing.T) {
	ws := reorderFixture(t)
	snap := load(t, ws)

	change, _, err := Plan(snap, Deactivate{Number: 1})
	require.NoError(t, err)
	require.NotNil(t, change.Registry)
	assert.True(t, entry(t, snap, uuidA).Installed)
	assert.True(t, snap.Document.Has(uuidA))
	assert.Len(t, change.Backups, 1)
}

func TestApplyConflict(t *testing.T) {
	ws := reorderFixture(t)
	snap := load(t, ws)
	change, _, err := Plan(snap, Deactivate{Number: 1})
	require.NoError(t, err)

	ws.SetDocumentData([]byte(testutil.ModsettingsXML(testutil.Entry{UUID: uuidB, Name: "B"})))
	assert.ErrorIs(t, ws.Commit(change), apperr.ErrConflict)
}

func TestApplyHonoursCancelledContext(t *testing.T) {
	ws := reorderFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(ws, nil).Apply(ctx, Deactivate{Number: 1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, ws.Commits)
}
