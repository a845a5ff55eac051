package ledger_test

import (
	"encoding/json"
	"testing"

	"github.com/featurebasedb/seerprep/errors"
	"github.com/featurebasedb/seerprep/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger(t *testing.T) {
	l := ledger.FromNames([]string{"Age", "Site", "Sex"})
	assert.Equal(t, 3, l.Sum())
	require.NoError(t, l.Check(3))

	l.Move("Site", 4)
	assert.Equal(t, []ledger.Entry{{"Age", 1}, {"Sex", 1}, {"Site", 4}}, l.Entries())
	assert.Equal(t, 6, l.Sum())

	err := l.Check(5)
	assert.True(t, errors.Is(err, errors.ErrEncodingMismatch))
	assert.Contains(t, err.Error(), "5 table columns vs. 6")

	require.NoError(t, l.Decrement("Site"))
	w, ok := l.Width("Site")
	assert.True(t, ok)
	assert.Equal(t, 3, w)

	require.NoError(t, l.Decrement("Age"))
	assert.False(t, l.Has("Age"))
	assert.True(t, errors.Is(l.Decrement("Age"), errors.ErrColumnNotFound))
	assert.True(t, errors.Is(l.MustRemove("Age"), errors.ErrColumnNotFound))

	l.Set("Sex", 2)
	assert.Equal(t, []ledger.Entry{{"Sex", 2}, {"Site", 3}}, l.Entries())
}

func TestLedger_JSON(t *testing.T) {
	l := ledger.New()
	l.Set("Zeta", 2)
	l.Set("Alpha", 1)
	data, err := json.Marshal(l)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Zeta","width":2},{"name":"Alpha","width":1}]`, string(data))

	back := ledger.New()
	require.NoError(t, json.Unmarshal(data, back))
	assert.Equal(t, l.Entries(), back.Entries())

	assert.Error(t, json.Unmarshal([]byte(`[{"name":"a","width":0}]`), back))
	err = json.Unmarshal([]byte(`[{"name":"a","width":1},{"name":"a","width":1}]`), back)
	assert.True(t, errors.Is(err, errors.ErrDuplicateColumn))
}

func TestLedger_Clone(t *testing.T) {
	l := ledger.FromNames([]string{"a", "b"})
	c := l.Clone()
	c.Remove("a")
	assert.True(t, l.Has("a"))
	assert.Equal(t, 1, c.Len())
}
