package sql

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/dbdict/dialect/sql/schema"
)

func TestBufferAppendValue(t *testing.T) {
	col := &schema.Column{Name: "name", Type: schema.TypeVarchar}

	t.Run("typed", func(t *testing.T) {
		b := NewBuffer(nil).Append("name = ").AppendValue("a8m", col)
		assert.Equal(t, "name = ?", b.SQL())
		ps := b.Params()
		require.Len(t, ps, 1)
		assert.Equal(t, "a8m", ps[0].Value)
		assert.Equal(t, "name", ps[0].Key)
		assert.Same(t, col, ps[0].Column)
		assert.False(t, ps[0].User)
	})

	t.Run("null", func(t *testing.T) {
		b := NewBuffer(nil).AppendValue(nil, col).Append(", ").AppendValue(NullValue(schema.TypeVarchar), col)
		assert.Equal(t, "NULL, NULL", b.SQL())
		assert.Empty(t, b.Params())
	})

	t.Run("raw", func(t *testing.T) {
		b := NewBuffer(nil).Append("updated_at = ").AppendValue(RawValue("CURRENT_TIMESTAMP"), nil)
		assert.Equal(t, "updated_at = CURRENT_TIMESTAMP", b.SQL())
		assert.Empty(t, b.Params())
	})

	t.Run("unset", func(t *testing.T) {
		b := NewBuffer(nil).AppendValue(Value{}, col)
		assert.Error(t, b.Err())
	})

	t.Run("param_null_keeps_marker", func(t *testing.T) {
		b := NewBuffer(nil).Append("name = ").AppendParam(NullValue(schema.TypeVarchar), col).
			Append(", at = ").AppendParam(RawValue("CURRENT_TIMESTAMP"), nil)
		assert.Equal(t, "name = ?, at = CURRENT_TIMESTAMP", b.SQL())
		ps := b.Params()
		require.Len(t, ps, 1)
		assert.Nil(t, ps[0].Value)
		assert.Equal(t, "name", ps[0].Key)
		assert.False(t, ps[0].User)
	})

	t.Run("user_null_keeps_marker", func(t *testing.T) {
		b := NewBuffer(nil).Append("name = ").AppendUserParam("name", nil, nil)
		assert.Equal(t, "name = ?", b.SQL())
		ps := b.UserParams()
		require.Len(t, ps, 1)
		assert.Equal(t, "name", ps[0].Key)
		assert.Nil(t, ps[0].Value)
	})
}

func TestBufferBindUser(t *testing.T) {
	b := NewBuffer(nil).Append("SELECT * FROM users WHERE ")
	And(UserParamEQ("name", "n", "a8m"), EQ("active", true), UserParamEQ("age", "a", 30))(b)
	text := b.SQL()
	assert.Equal(t, "SELECT * FROM users WHERE (name = ? AND active = ? AND age = ?)", text)

	require.NoError(t, b.BindUser(map[string]any{"n": "nati", "a": 40}))
	_, args := b.Query()
	assert.Equal(t, []any{"nati", true, 40}, args)
	assert.Equal(t, text, b.SQL(), "rebinding does not touch the text")

	err := b.BindUser(map[string]any{"n": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"a"`)
}

func TestBufferSetParams(t *testing.T) {
	b := NewBuffer(nil).AppendValue(1, nil).Append(", ").AppendValue(2, nil)
	require.Error(t, b.SetParams([]Param{{Value: 1}}))
	require.NoError(t, b.SetParams([]Param{{Value: 3}, {Value: 4}}))
	_, args := b.Query()
	assert.Equal(t, []any{3, 4}, args)
}

func TestBufferSetParameters(t *testing.T) {
	col := &schema.Column{Name: "id", Type: schema.TypeBigInt}
	b := NewBuffer(nil).AppendValue(10, col).Append(" ").AppendValue("x", nil)

	var args Args
	require.NoError(t, b.SetParameters(&args))
	assert.Equal(t, Args{10, "x"}, args)

	var cols []*schema.Column
	err := b.SetParameters(BinderFunc(func(pos int, _ any, c *schema.Column) error {
		cols = append(cols, c)
		if pos == 1 {
			return errors.New("closed")
		}
		return nil
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parameter 1")
	assert.Equal(t, []*schema.Column{col, nil}, cols)
}

func TestBufferAppendBufferAt(t *testing.T) {
	b := NewBuffer(nil).Append("SELECT a FROM t WHERE x = ").AppendValue(1, nil).Append(" AND y = ").AppendValue(2, nil)
	mid := NewBuffer(nil).Append("z = ").AppendValue(3, nil).Append(" AND ")
	pos := len("SELECT a FROM t WHERE ")
	require.NoError(t, b.AppendBufferAt(mid, pos))
	assert.Equal(t, "SELECT a FROM t WHERE z = ? AND x = ? AND y = ?", b.SQL())
	_, args := b.Query()
	assert.Equal(t, []any{3, 1, 2}, args)

	t.Run("out_of_range", func(t *testing.T) {
		require.Error(t, b.AppendBufferAt(mid, b.Len()+1))
	})

	t.Run("pending", func(t *testing.T) {
		p := NewBuffer(nil).Append("SELECT * FROM t WHERE id IN ").AppendSubquery(SubqueryFunc(func() *Buffer {
			return NewBuffer(nil).Append("SELECT 1")
		}), "")
		err := p.AppendBufferAt(NewBuffer(nil).Append("x"), 3)
		require.ErrorIs(t, err, ErrSplicePending)
		// Appending at the end is always allowed.
		require.NoError(t, p.AppendBufferAt(NewBuffer(nil).Append(" LIMIT 1"), p.Len()))
		assert.Equal(t, "SELECT * FROM t WHERE id IN (SELECT 1) LIMIT 1", p.SQL())
	})
}

func TestBufferNestedSubqueries(t *testing.T) {
	groups := func() *Buffer {
		return NewBuffer(nil).Append("SELECT id FROM groups WHERE kind = ").AppendValue("a", nil)
	}
	teams := func() *Buffer {
		b := NewBuffer(nil).Append("SELECT id FROM teams WHERE group_id IN ")
		b.AppendSubquery(SubqueryFunc(groups), "")
		return b.Append(" AND size > ").AppendValue(5, nil)
	}
	lazy := NewBuffer(nil).Append("SELECT * FROM users WHERE team_id IN ")
	lazy.AppendSubquery(SubqueryFunc(teams), "")
	lazy.Append(" AND group_id IN ").AppendSubquery(SubqueryFunc(groups), "g")
	lazy.Append(" AND age > ").AppendValue(30, nil)
	assert.True(t, lazy.HasPending())

	manual := NewBuffer(nil).Append("SELECT * FROM users WHERE team_id IN (").
		Append("SELECT id FROM teams WHERE group_id IN (").
		Append("SELECT id FROM groups WHERE kind = ").AppendValue("a", nil).
		Append(") AND size > ").AppendValue(5, nil).
		Append(") AND group_id IN (").
		Append("SELECT id FROM groups WHERE kind = ").AppendValue("a", nil).
		Append(") g AND age > ").AppendValue(30, nil)

	q1, args1 := lazy.Query()
	q2, args2 := manual.Query()
	assert.Equal(t, q2, q1)
	assert.Equal(t, args2, args1)
	assert.Equal(t, []any{"a", 5, "a", 30}, args1)
	assert.False(t, lazy.HasPending())
	assert.Equal(t, manual.Inline(), lazy.Inline())
}

func TestBufferAppendBufferImportsPending(t *testing.T) {
	sub := SubqueryFunc(func() *Buffer { return NewBuffer(nil).Append("SELECT ").AppendValue(1, nil) })
	o := NewBuffer(nil).Append("x IN ").AppendSubquery(sub, "").Append(" AND y = ").AppendValue(2, nil)
	b := NewBuffer(nil).Append("WHERE a = ").AppendValue(0, nil).Append(" AND ").AppendBuffer(o)
	assert.True(t, b.HasPending())
	q, args := b.Query()
	assert.Equal(t, "WHERE a = ? AND x IN (SELECT ?) AND y = ?", q)
	assert.Equal(t, []any{0, 1, 2}, args)
}

func TestBufferSubqueryError(t *testing.T) {
	b := NewBuffer(nil).Append("x IN ").AppendSubquery(SubqueryFunc(func() *Buffer { return nil }), "")
	assert.Error(t, b.Err())
}

func TestBufferInline(t *testing.T) {
	b := NewBuffer(nil).Append("UPDATE t SET name = ").AppendValue("it's", nil).
		Append(", data = ").AppendValue([]byte{0xca, 0xfe}, nil).
		Append(" WHERE id = ").AppendValue(int64(7), nil)
	assert.Equal(t, "UPDATE t SET name = 'it''s', data = X'CAFE' WHERE id = 7", b.Inline())
	assert.Equal(t, "UPDATE t SET name = ?, data = ? WHERE id = ?", b.SQL())
}

func TestBufferCloneAndJoin(t *testing.T) {
	a := NewBuffer(nil).Append("a = ").AppendValue(1, nil)
	c := a.Clone()
	c.Append(" AND b = ").AppendValue(2, nil)
	assert.Equal(t, "a = ?", a.SQL())
	assert.Len(t, a.Params(), 1)
	assert.Equal(t, "a = ? AND b = ?", c.SQL())

	j := NewBuffer(nil).Join(", ", a, NewBuffer(nil), c)
	assert.Equal(t, "a = ?, a = ? AND b = ?", j.SQL())
	assert.Len(t, j.Params(), 3)
	assert.True(t, (*Buffer)(nil).IsEmpty())
}

func TestBufferRebind(t *testing.T) {
	b := NewBuffer(dollarDialect{}).Append("SELECT * FROM ").AppendIdent("t").Append(" WHERE ")
	And(EQ("a", 1), EQ("b", 2))(b)
	q, args := b.Query()
	assert.Equal(t, `SELECT * FROM "t" WHERE ("a" = $1 AND "b" = $2)`, q)
	assert.Equal(t, []any{1, 2}, args)
}
