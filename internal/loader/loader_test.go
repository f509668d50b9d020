package loader_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/emrgen/lineage/internal/loader"
	"github.com/emrgen/lineage/internal/model"
	"github.com/emrgen/lineage/internal/store"
	"github.com/emrgen/lineage/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `
default_person: p1
people:
  - handle: p1
    id: I0001
    primary_name: {first: John, surname: Smith}
    families: [f1]
families:
  - handle: f1
    father: p1
    type: Married
notes:
  - {handle: n1, text: hello, links: [{kind: Family, handle: f1}]}
`

func TestLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	st := tester.TestStore(t)

	tree, err := loader.Load(ctx, st, strings.NewReader(doc))
	require.NoError(t, err)
	assert.Len(t, tree.Objects(), 3)

	home, err := st.DefaultPersonHandle(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p1", home)

	refs, err := st.FindBacklinks(ctx, "f1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.Ref{{Kind: model.KindPerson, Handle: "p1"}, {Kind: model.KindNote, Handle: "n1"}}, refs)

	exported, err := loader.Export(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, "p1", exported.DefaultPerson)
	require.Len(t, exported.People, 1)
	assert.Equal(t, tree.People[0].PrimaryName, exported.People[0].PrimaryName)
	assert.Equal(t, "I0001", exported.People[0].ID)
	require.Len(t, exported.Families, 1)
	assert.Equal(t, model.FamilyMarried, exported.Families[0].Type)
	assert.Equal(t, tree.Notes, exported.Notes)

	var buf bytes.Buffer
	require.NoError(t, loader.Write(&buf, exported))
	again, err := loader.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, exported, again)

	history, err := st.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Import", history[0].Label)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		err  error
	}{
		{name: "unknown field", doc: "people:\n  - handle: p1\n    nickname: Jack\n"},
		{name: "missing handle", doc: "people:\n  - id: I1\n", err: store.ErrMissingHandle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := tester.TestStore(t)
			_, err := loader.Load(context.Background(), st, strings.NewReader(tt.doc))
			require.Error(t, err)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}

			objects, err := st.List(context.Background(), model.KindPerson)
			require.NoError(t, err)
			assert.Empty(t, objects)
		})
	}
}
