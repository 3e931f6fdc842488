package sql

import (
	"testing"
)

func BenchmarkBuffer_Insert(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		NewBuffer(dollarDialect{}).
			Append("INSERT INTO ").AppendIdent("users").
			Append(" (").AppendIdents("id", "age", "first_name", "last_name", "nickname", "created_at").Append(") VALUES (").
			AppendValue(1, nil).Append(", ").
			AppendValue(30, nil).Append(", ").
			AppendValue("Ariel", nil).Append(", ").
			AppendValue("Mashraki", nil).Append(", ").
			AppendValue("a8m", nil).Append(", ").
			AppendValue("2009-11-10 23:00:00", nil).
			Append(")").
			Query()
	}
}

func BenchmarkSelectSpec_WithJoins(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		s := NewSelect(dollarDialect{}).
			Columns("u.id", "u.name", "p.title").
			From("users", "u").
			Join(JoinInner, "posts", "p", ColumnsEQ("u.id", "p.user_id")).
			Filter(EQ("u.active", true)).
			OrderBy("u.created_at")
		_ = s.Where().SQL()
	}
}

func BenchmarkBuffer_NestedSubqueries(b *testing.B) {
	inner := func() *Buffer {
		return NewBuffer(dollarDialect{}).Append("SELECT ").AppendIdent("id").Append(" FROM ").AppendIdent("groups").
			Append(" WHERE ").AppendIdent("active").Append(" = ").AppendValue(true, nil)
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf := NewBuffer(dollarDialect{}).Append("SELECT * FROM ").AppendIdent("users").Append(" WHERE ")
		InSubquery("group_id", SubqueryFunc(inner))(buf)
		buf.Append(" AND ")
		InSubquery("team_id", SubqueryFunc(inner))(buf)
		buf.Query()
	}
}

func BenchmarkBuffer_Inline(b *testing.B) {
	buf := NewBuffer(nil).Append("SELECT * FROM users WHERE ")
	And(EQ("name", "a8m"), GT("age", 30), In("role", "admin", "owner"))(buf)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = buf.Inline()
	}
}
