package schema

import (
	"context"
	"database/sql"
	"testing"

	atlas "ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/syssam/dbdict/dialect"
)

func atlasColumn(name string, typ atlas.Type, null bool) *atlas.Column {
	return &atlas.Column{Name: name, Type: &atlas.ColumnType{Type: typ, Null: null}}
}

func TestFromAtlas(t *testing.T) {
	id := atlasColumn("id", &atlas.IntegerType{T: "bigint"}, false)
	id.AddAttrs(&sqlite.AutoIncrement{})
	name := atlasColumn("name", &atlas.StringType{T: "varchar", Size: 64}, true)
	name.Default = &atlas.Literal{V: "'o''neil'"}
	price := atlasColumn("price", &atlas.DecimalType{T: "numeric", Precision: 10, Scale: 2}, false)
	price.Default = &atlas.Literal{V: "0"}
	created := atlasColumn("created_at", &atlas.TimeType{T: "timestamp with time zone"}, false)
	created.Default = &atlas.RawExpr{X: "CURRENT_TIMESTAMP"}
	created.AddAttrs(&atlas.Comment{Text: "creation time"})
	kind := atlasColumn("kind", &atlas.EnumType{T: "kind", Values: []string{"a", "long"}}, false)
	geo := atlasColumn("geo", &atlas.UnsupportedType{T: "geometry"}, true)
	geo.Type.Raw = "geometry"

	users := atlas.NewTable("users").AddColumns(id, name, price, created, kind, geo)
	users.SetPrimaryKey(atlas.NewPrimaryKey(id))
	users.AddIndexes(atlas.NewUniqueIndex("uq_name").AddColumns(name))
	users.AddAttrs(&atlas.Comment{Text: "people"})

	petID := atlasColumn("id", &atlas.IntegerType{T: "integer"}, true)
	owner := atlasColumn("owner_id", &atlas.IntegerType{T: "bigint"}, true)
	pets := atlas.NewTable("pets").AddColumns(petID, owner)
	pets.SetPrimaryKey(atlas.NewPrimaryKey(petID))
	pets.AddForeignKeys(atlas.NewForeignKey("fk_owner").
		AddColumns(owner).
		SetRefTable(users).
		AddRefColumns(id).
		SetOnDelete(atlas.SetNull))

	tables, err := FromAtlas(atlas.New("main").AddTables(users, pets))
	require.NoError(t, err)
	require.Len(t, tables, 2)

	u := tables[0]
	assert.Equal(t, "users", u.Name)
	assert.Equal(t, "main", u.Schema)
	assert.Equal(t, "people", u.Comment)
	c, _ := u.Column("id")
	assert.Equal(t, TypeBigInt, c.Type)
	assert.True(t, c.AutoAssign)
	c, _ = tables[1].Column("id")
	assert.False(t, c.Nullable, "primary key columns are NOT NULL")
	c, _ = u.Column("name")
	assert.Equal(t, TypeVarchar, c.Type)
	assert.Equal(t, 64, c.Size)
	assert.True(t, c.Nullable)
	assert.Equal(t, "o'neil", c.Default)
	c, _ = u.Column("price")
	assert.Equal(t, TypeNumeric, c.Type)
	assert.Equal(t, 10, c.Size)
	assert.Equal(t, 2, c.DecimalDigits)
	assert.Equal(t, int64(0), c.Default)
	c, _ = u.Column("created_at")
	assert.Equal(t, TypeTimestampTZ, c.Type)
	assert.Equal(t, Expr("CURRENT_TIMESTAMP"), c.Default)
	assert.Equal(t, "creation time", c.Comment)
	c, _ = u.Column("kind")
	assert.Equal(t, TypeVarchar, c.Type)
	assert.Equal(t, 4, c.Size)
	c, _ = u.Column("geo")
	assert.Equal(t, TypeOther, c.Type)
	assert.Equal(t, "geometry", c.TypeName)

	require.NotNil(t, u.PrimaryKey)
	assert.Equal(t, "id", u.PrimaryKey.Columns[0].Name)
	require.Len(t, u.Indexes, 1)
	assert.True(t, u.Indexes[0].Unique)

	p := tables[1]
	require.Len(t, p.ForeignKeys, 1)
	fk := p.ForeignKeys[0]
	assert.Equal(t, "fk_owner", fk.Name)
	assert.Equal(t, u, fk.RefTable)
	assert.Equal(t, SetNull, fk.OnDelete)
	assert.Equal(t, NoAction, fk.OnUpdate)
}

func TestFromAtlasForeignTable(t *testing.T) {
	id := atlasColumn("id", &atlas.IntegerType{T: "integer"}, false)
	other := atlas.NewTable("other").AddColumns(id)
	ref := atlasColumn("other_id", &atlas.IntegerType{T: "integer"}, false)
	tbl := atlas.NewTable("t").AddColumns(ref)
	tbl.AddForeignKeys(atlas.NewForeignKey("fk").AddColumns(ref).SetRefTable(other).AddRefColumns(id))
	_, err := FromAtlas(atlas.New("main").AddTables(tbl))
	assert.ErrorContains(t, err, "references a table outside the schema")
}

func TestLiteralValue(t *testing.T) {
	for in, want := range map[string]any{
		"'x'":    "x",
		`"y"`:    "y",
		"42":     int64(42),
		"1.5":    1.5,
		"TRUE":   true,
		"false":  false,
		"now()":  Expr("now()"),
		"'a''b'": "a'b",
	} {
		assert.Equal(t, want, literalValue(in), in)
	}
}

func TestInspectSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", "file:inspect?mode=memory&_pragma=foreign_keys(1)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	for _, stmt := range []string{
		"CREATE TABLE users (id INTEGER PRIMARY KEY AUTOINCREMENT, name VARCHAR(64) NOT NULL DEFAULT 'anon', bio TEXT)",
		"CREATE TABLE pets (id INTEGER PRIMARY KEY, owner_id INTEGER REFERENCES users (id) ON DELETE CASCADE)",
		"CREATE INDEX idx_pets_owner ON pets (owner_id)",
	} {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err, stmt)
	}

	tables, err := Inspect(ctx, dialect.SQLite, db, "")
	require.NoError(t, err)
	require.Len(t, tables, 2)
	byName := map[string]*Table{}
	for _, tbl := range tables {
		byName[tbl.Name] = tbl
	}

	users := byName["users"]
	require.NotNil(t, users)
	id, ok := users.Column("id")
	require.True(t, ok)
	assert.False(t, id.Nullable, "primary key columns are NOT NULL")
	petID, _ := byName["pets"].Column("id")
	assert.False(t, petID.Nullable)
	name, ok := users.Column("name")
	require.True(t, ok)
	assert.Equal(t, TypeVarchar, name.Type)
	assert.Equal(t, 64, name.Size)
	assert.False(t, name.Nullable)
	assert.Equal(t, "anon", name.Default)
	bio, _ := users.Column("bio")
	assert.Equal(t, TypeClob, bio.Type)
	assert.True(t, bio.Nullable)

	pets := byName["pets"]
	require.NotNil(t, pets)
	require.Len(t, pets.ForeignKeys, 1)
	assert.Equal(t, users, pets.ForeignKeys[0].RefTable)
	assert.Equal(t, Cascade, pets.ForeignKeys[0].OnDelete)
	require.Len(t, pets.Indexes, 1)
	assert.Equal(t, "idx_pets_owner", pets.Indexes[0].Name)

	_, err = Inspect(ctx, dialect.Oracle, db, "")
	assert.ErrorContains(t, err, `unsupported dialect "oracle"`)
}
