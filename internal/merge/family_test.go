package merge

import (
	"context"
	"testing"

	"github.com/emrgen/lineage/internal/model"
	"github.com/emrgen/lineage/internal/store"
	"github.com/emrgen/lineage/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFamilies(t *testing.T, st store.Store, phoenix, titanic string) (*model.Family, *model.Family) {
	t.Helper()
	return getFamily(t, st, phoenix), getFamily(t, st, titanic)
}

func TestFamilyQuery_SameCouple(t *testing.T) {
	ctx := context.Background()
	st := tester.LoadTree(t, `
people:
  - {handle: p1, primary_name: {first: John}, families: [f1, f2]}
  - {handle: p2, primary_name: {first: Mary}, families: [f1, f2]}
  - {handle: c1, primary_name: {first: Ann}, parent_families: [f1]}
  - {handle: c2, primary_name: {first: Tom}, parent_families: [f2]}
  - {handle: c3, primary_name: {first: Sue}, parent_families: [f1, f2]}
  - handle: p3
    primary_name: {first: Ann}
    lds_ordinances: [{type: Sealed to Parents, famc: f2}]
families:
  - handle: f1
    father: p1
    mother: p2
    children: [{ref: c1}, {ref: c3}]
  - handle: f2
    father: p1
    mother: p2
    type: Married
    children: [{ref: c2}, {ref: c3}]
    events: [{ref: e1, role: Family}]
events:
  - {handle: e1, type: Marriage}
notes:
  - {handle: n1, text: banns, links: [{kind: Family, handle: f2}]}
`)

	phoenix, titanic := loadFamilies(t, st, "f1", "f2")
	query, err := NewFamilyQuery(st, phoenix, titanic)
	require.NoError(t, err)
	assert.False(t, query.FatherSwapped())
	assert.False(t, query.MotherSwapped())
	require.NoError(t, query.Execute(ctx))

	assertGone(t, st, model.KindFamily, "f2")
	f1 := getFamily(t, st, "f1")
	assert.Equal(t, []string{"c1", "c3", "c2"}, f1.ChildHandles())
	assert.Equal(t, []model.EventRef{{Ref: "e1", Role: "Family"}}, f1.EventRefList)
	assert.Equal(t, model.FamilyMarried, f1.Type)

	assert.Equal(t, []string{"f1"}, getPerson(t, st, "c3").ParentFamilyList)
	assert.Equal(t, []string{"f1"}, getPerson(t, st, "p1").FamilyList)
	assert.Equal(t, "f1", getPerson(t, st, "p3").LdsOrdList[0].Famc)

	n1, err := st.Get(ctx, model.KindNote, "n1")
	require.NoError(t, err)
	assert.Equal(t, []model.Ref{{Kind: model.KindFamily, Handle: "f1"}}, n1.(*model.Note).Links)
	assertConsistent(t, st)
}

const swappedCoupleTree = `
people:
  - {handle: a, primary_name: {first: Alex}, families: [f1, f2]}
  - {handle: b, primary_name: {first: Sam}, families: [f1, f2]}
  - {handle: c1, primary_name: {first: Ann}, parent_families: [f1]}
  - {handle: c2, primary_name: {first: Tom}, parent_families: [f2]}
families:
  - {handle: f1, father: a, mother: b, children: [{ref: c1}]}
  - {handle: f2, father: b, mother: a, children: [{ref: c2}]}
`

func TestFamilyQuery_SameCoupleSwapped(t *testing.T) {
	tests := []struct {
		name          string
		opts          []FamilyOption
		parents       [2]string
		fatherSwapped bool
	}{
		{name: "phoenix slots", parents: [2]string{"a", "b"}},
		{name: "titanic father", opts: []FamilyOption{WithFather("b")}, parents: [2]string{"b", "a"}, fatherSwapped: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			st := tester.LoadTree(t, swappedCoupleTree)

			phoenix, titanic := loadFamilies(t, st, "f1", "f2")
			query, err := NewFamilyQuery(st, phoenix, titanic, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.fatherSwapped, query.FatherSwapped())
			require.NoError(t, query.Execute(ctx))

			assertGone(t, st, model.KindFamily, "f2")
			f1 := getFamily(t, st, "f1")
			assert.Equal(t, tt.parents, f1.Parents())
			assert.Equal(t, []string{"c1", "c2"}, f1.ChildHandles())

			assert.Equal(t, []string{"f1"}, getPerson(t, st, "a").FamilyList)
			assert.Equal(t, []string{"f1"}, getPerson(t, st, "b").FamilyList)
			assert.Equal(t, []string{"f1"}, getPerson(t, st, "c2").ParentFamilyList)

			people, err := st.List(ctx, model.KindPerson)
			require.NoError(t, err)
			assert.Len(t, people, 4)
			assertConsistent(t, st)
		})
	}
}

func TestFamilyQuery_SameCoupleSwappedRejectsOutsider(t *testing.T) {
	st := tester.LoadTree(t, swappedCoupleTree)
	phoenix, titanic := loadFamilies(t, st, "f1", "f2")

	_, err := NewFamilyQuery(st, phoenix, titanic, WithFather("c1"))
	assert.True(t, IsMergeError(err))
	_, err = NewFamilyQuery(st, phoenix, titanic, WithFather("a"), WithMother("a"))
	assert.True(t, IsMergeError(err))
}

func TestFamilyQuery_SharedParentKeepsOtherReferences(t *testing.T) {
	ctx := context.Background()
	st := tester.LoadTree(t, `
people:
  - handle: a
    primary_name: {first: John}
    families: [f1, f2]
    lds_ordinances: [{type: Sealed to Parents, famc: f2}]
  - {handle: b, primary_name: {first: Mary}, families: [f1, f2]}
families:
  - {handle: f1, father: a, mother: b}
  - {handle: f2, father: a, mother: b}
`)

	phoenix, titanic := loadFamilies(t, st, "f1", "f2")
	query, err := NewFamilyQuery(st, phoenix, titanic)
	require.NoError(t, err)
	require.NoError(t, query.Execute(ctx))

	assertGone(t, st, model.KindFamily, "f2")
	a := getPerson(t, st, "a")
	assert.Equal(t, []string{"f1"}, a.FamilyList)
	assert.Equal(t, "f1", a.LdsOrdList[0].Famc)

	refs, err := st.FindBacklinks(ctx, "f2")
	require.NoError(t, err)
	assert.Empty(t, refs)
	assertConsistent(t, st)
}

const twoFathersTree = `
people:
  - {handle: a, id: I1, primary_name: {first: John}, families: [f1]}
  - {handle: b, id: I2, primary_name: {first: Johnny}, families: [f2]}
  - {handle: m, primary_name: {first: Mary}, families: [f1, f2]}
  - {handle: k1, primary_name: {first: Ann}, parent_families: [f1]}
  - {handle: k2, primary_name: {first: Tom}, parent_families: [f2]}
families:
  - {handle: f1, father: a, mother: m, children: [{ref: k1}]}
  - {handle: f2, father: b, mother: m, children: [{ref: k2}]}
`

func TestFamilyQuery_MergesDifferentFathers(t *testing.T) {
	ctx := context.Background()
	st := tester.LoadTree(t, twoFathersTree)

	phoenix, titanic := loadFamilies(t, st, "f1", "f2")
	query, err := NewFamilyQuery(st, phoenix, titanic)
	require.NoError(t, err)
	require.NoError(t, query.Execute(ctx))

	assertGone(t, st, model.KindFamily, "f2")
	assertGone(t, st, model.KindPerson, "b")

	f1 := getFamily(t, st, "f1")
	assert.Equal(t, [2]string{"a", "m"}, f1.Parents())
	assert.Equal(t, []string{"k1", "k2"}, f1.ChildHandles())

	a := getPerson(t, st, "a")
	assert.Equal(t, []string{"f1"}, a.FamilyList)
	assert.Equal(t, []model.Name{{First: "Johnny"}}, a.AlternateNames)
	assert.Equal(t, []string{"f1"}, getPerson(t, st, "m").FamilyList)

	rec, err := st.FindMerge(ctx, model.KindPerson, "b")
	require.NoError(t, err)
	assert.Equal(t, "a", rec.Phoenix)
	assertConsistent(t, st)
}

func TestFamilyQuery_ChosenFatherFromTitanic(t *testing.T) {
	ctx := context.Background()
	st := tester.LoadTree(t, twoFathersTree)

	phoenix, titanic := loadFamilies(t, st, "f1", "f2")
	query, err := NewFamilyQuery(st, phoenix, titanic, WithFather("b"))
	require.NoError(t, err)
	assert.True(t, query.FatherSwapped())
	assert.False(t, query.MotherSwapped())
	require.NoError(t, query.Execute(ctx))

	assertGone(t, st, model.KindFamily, "f2")
	assertGone(t, st, model.KindPerson, "a")
	assert.Equal(t, [2]string{"b", "m"}, getFamily(t, st, "f1").Parents())
	assert.Equal(t, []string{"f1"}, getPerson(t, st, "b").FamilyList)
	assertConsistent(t, st)
}

func TestFamilyQuery_RejectsForeignParent(t *testing.T) {
	st := tester.LoadTree(t, twoFathersTree)
	phoenix, titanic := loadFamilies(t, st, "f1", "f2")

	_, err := NewFamilyQuery(st, phoenix, titanic, WithFather("k1"))
	assert.True(t, IsMergeError(err))
	_, err = NewFamilyQuery(st, phoenix, titanic, WithMother("a"))
	assert.True(t, IsMergeError(err))
	_, err = NewFamilyQuery(st, phoenix, phoenix)
	assert.ErrorIs(t, err, errSameObject)
}

func TestFamilyQuery_PromotesLoneFather(t *testing.T) {
	ctx := context.Background()
	st := tester.LoadTree(t, `
people:
  - {handle: p, primary_name: {first: John}, families: [f1]}
  - {handle: m, primary_name: {first: Mary}, families: [f1, f2]}
  - {handle: k1, primary_name: {first: Ann}, parent_families: [f1]}
  - {handle: k2, primary_name: {first: Tom}, parent_families: [f2]}
families:
  - {handle: f1, father: p, mother: m, children: [{ref: k1}]}
  - {handle: f2, mother: m, children: [{ref: k2}]}
`)

	phoenix, titanic := loadFamilies(t, st, "f1", "f2")
	query, err := NewFamilyQuery(st, phoenix, titanic)
	require.NoError(t, err)
	require.NoError(t, query.Execute(ctx))

	assertGone(t, st, model.KindFamily, "f2")
	f1 := getFamily(t, st, "f1")
	assert.Equal(t, [2]string{"p", "m"}, f1.Parents())
	assert.Equal(t, []string{"k1", "k2"}, f1.ChildHandles())
	assert.Equal(t, []string{"f1"}, getPerson(t, st, "p").FamilyList)

	people, err := st.List(ctx, model.KindPerson)
	require.NoError(t, err)
	assert.Len(t, people, 4)
	_, err = st.FindMerge(ctx, model.KindPerson, "p")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assertConsistent(t, st)
}

func TestFamilyQuery_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		tree    string
		phoenix string
		titanic string
		want    error
	}{
		{
			name: "promoted father is a child of the family",
			tree: `
people:
  - {handle: p, primary_name: {first: John}, families: [f1], parent_families: [f2]}
families:
  - {handle: f1, father: p}
  - {handle: f2, children: [{ref: p}]}
`,
			phoenix: "f1",
			titanic: "f2",
			want:    errSelfParent,
		},
		{
			name: "titanic father has no counterpart",
			tree: `
people:
  - {handle: p1, primary_name: {first: John}, families: [f1], parent_families: [f2]}
families:
  - {handle: f1, father: p1}
  - {handle: f2, children: [{ref: p1}]}
`,
			phoenix: "f2",
			titanic: "f1",
			want:    errMissingPhoenix,
		},
		{
			name: "titanic father is a child of the phoenix family",
			tree: `
people:
  - {handle: q, primary_name: {first: Bob}, families: [f2]}
  - {handle: p1, primary_name: {first: John}, families: [f1], parent_families: [f2]}
families:
  - {handle: f1, father: p1}
  - {handle: f2, father: q, children: [{ref: p1}]}
`,
			phoenix: "f2",
			titanic: "f1",
			want:    errParentChild,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			st := tester.LoadTree(t, tt.tree)
			before := tester.TakeSnapshot(t, st)

			phoenix, titanic := loadFamilies(t, st, tt.phoenix, tt.titanic)
			query, err := NewFamilyQuery(st, phoenix, titanic)
			require.NoError(t, err)

			err = query.Execute(ctx)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsMergeError(err))
			assert.Equal(t, before, tester.TakeSnapshot(t, st))
		})
	}
}

func TestFamilyQuery_FailureRollsBackEverything(t *testing.T) {
	ctx := context.Background()
	st := tester.LoadTree(t, twoFathersTree)
	before := tester.TakeSnapshot(t, st)

	phoenix, titanic := loadFamilies(t, st, "f1", "f2")
	query, err := NewFamilyQuery(&faultyStore{Store: st, kind: model.KindFamily, remove: true}, phoenix, titanic)
	require.NoError(t, err)

	err = query.Execute(ctx)
	assert.ErrorIs(t, err, errInjected)
	assert.Equal(t, before, tester.TakeSnapshot(t, st))

	history, err := st.History(ctx, 0)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Equal(t, "Import", history[0].Label)
}
