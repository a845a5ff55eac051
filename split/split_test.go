package split_test

import (
	"sort"
	"testing"

	"github.com/featurebasedb/seerprep/errors"
	"github.com/featurebasedb/seerprep/ledger"
	"github.com/featurebasedb/seerprep/split"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByLedger(t *testing.T) {
	l := ledger.New()
	l.Set("Age", 1)
	l.Set("Site", 3)
	l.Set("Nodes", 2)
	columns := []string{"Age", "Site 1", "Site 2", "Site 3", "Nodes continuous", "Nodes 99"}

	groups, err := split.ByLedger(columns, l)
	require.NoError(t, err)
	want := []split.Group{
		{Entry: "Age", Columns: []string{"Age"}},
		{Entry: "Site", Columns: []string{"Site 1", "Site 2", "Site 3"}},
		{Entry: "Nodes", Columns: []string{"Nodes continuous", "Nodes 99"}},
	}
	if diff := cmp.Diff(want, groups); diff != "" {
		t.Fatalf("groups (-want +got):\n%s", diff)
	}

	_, err = split.ByLedger(columns[:5], l)
	assert.True(t, errors.Is(err, errors.ErrEncodingMismatch))
}

func TestSplit(t *testing.T) {
	p, err := split.Split(100, split.DefaultRatios)
	require.NoError(t, err)
	assert.Len(t, p.Train, 80)
	assert.Len(t, p.Valid, 10)
	assert.Len(t, p.Test, 10)

	all := append(append(append([]int{}, p.Train...), p.Valid...), p.Test...)
	sort.Ints(all)
	for i, v := range all {
		require.Equal(t, i, v)
	}

	again, err := split.Split(100, split.DefaultRatios)
	require.NoError(t, err)
	assert.Equal(t, p, again)

	sets := p.Assignments()
	assert.Len(t, sets, 100)
	assert.Equal(t, split.Test, sets[p.Test[0]])
	assert.Equal(t, split.Train, sets[p.Train[0]])
}

func TestSplit_Rounding(t *testing.T) {
	p, err := split.Split(7, split.Ratios{Valid: 0.1, Test: 0.1})
	require.NoError(t, err)
	assert.Len(t, p.Train, 5)
	assert.Len(t, p.Test, 1)
	assert.Len(t, p.Valid, 1)

	p, err = split.Split(0, split.DefaultRatios)
	require.NoError(t, err)
	assert.Empty(t, p.Assignments())

	p, err = split.Split(5, split.Ratios{})
	require.NoError(t, err)
	assert.Len(t, p.Train, 5)

	_, err = split.Split(5, split.Ratios{Valid: 0.5, Test: 0.5})
	assert.Error(t, err)
}
