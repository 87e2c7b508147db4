package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueKinds(t *testing.T) {
	t.Run("null", func(t *testing.T) {
		v := Null()
		assert.True(t, v.IsNull())
		assert.False(t, v.IsNumeric())
		assert.Nil(t, v.Interface())
		assert.Equal(t, "", v.String())
	})

	t.Run("int widens to float", func(t *testing.T) {
		v := Int(42)
		assert.Equal(t, int64(42), v.Int())
		assert.Equal(t, 42.0, v.Float())
		assert.True(t, v.IsNumeric())
	})

	t.Run("real", func(t *testing.T) {
		v := Real(1.5)
		assert.Equal(t, 1.5, v.Float())
		assert.Equal(t, "1.5", v.String())
	})

	t.Run("text and bool", func(t *testing.T) {
		assert.Equal(t, "perennial", Text("perennial").Text())
		assert.Equal(t, "true", Bool(true).String())
		assert.Equal(t, "false", Bool(false).String())
	})
}

func TestValueEqual(t *testing.T) {
	assert.True(t, Int(3).Equal(Int(3)))
	assert.False(t, Int(3).Equal(Real(3)), "kinds must match")
	assert.False(t, Text("a").Equal(Text("b")))
	assert.True(t, Null().Equal(Null()))
}

func TestRowGetSet(t *testing.T) {
	var r Row
	assert.True(t, r.Get("missing").IsNull())
	r.Set("dam_count", Int(3))
	assert.Equal(t, int64(3), r.Get("dam_count").Int())
}

func TestTableClone(t *testing.T) {
	tbl := New("rs_context_huc12", 12, "stream_length_km")
	tbl.Units["stream_length_km"] = "kilometer"
	tbl.Append(Row{Code: "170401010101", Cells: map[string]Value{"stream_length_km": Real(10)}})

	clone := tbl.Clone()
	clone.Rows[0].Set("stream_length_km", Real(99))
	clone.Units["stream_length_km"] = "mile"

	require.Equal(t, 10.0, tbl.Rows[0].Get("stream_length_km").Float(), "clone must not alias rows")
	assert.Equal(t, "kilometer", tbl.Units["stream_length_km"], "clone must not alias unit tags")
}

func TestTableSortByCode(t *testing.T) {
	tbl := New("layer", 12, "x")
	tbl.Append(Row{Code: "170401010102"})
	tbl.Append(Row{Code: "170401010101"})
	tbl.SortByCode()
	assert.Equal(t, "170401010101", tbl.Rows[0].Code)
}
