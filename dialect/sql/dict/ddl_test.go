package dict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/dbdict/dialect"
	"github.com/syssam/dbdict/dialect/sql/schema"
)

// ordersTable returns orders(id, user_id) referencing users on delete cascade.
func ordersTable(users *schema.Table) (*schema.Table, *schema.ForeignKey) {
	id := &schema.Column{Name: "id", Type: schema.TypeBigInt}
	userID := &schema.Column{Name: "user_id", Type: schema.TypeBigInt}
	orders := schema.NewTable("orders").AddColumns(id, userID).SetPrimaryKey("", id)
	fk := &schema.ForeignKey{
		Name:       "fk_orders_user",
		Columns:    []*schema.Column{userID},
		RefTable:   users,
		RefColumns: users.PrimaryKey.Columns,
		OnDelete:   schema.Cascade,
	}
	orders.AddForeignKey(fk)
	return orders, fk
}

func TestCreateTableSQL(t *testing.T) {
	users := usersTable()
	users.Comment = "App users"
	users.Columns[1].Comment = "Display name"

	t.Run("postgres", func(t *testing.T) {
		d := mustDict(t, dialect.Postgres)
		assert.Equal(t, []string{
			"CREATE TABLE users (id BIGINT GENERATED BY DEFAULT AS IDENTITY NOT NULL, name VARCHAR(64), version INTEGER DEFAULT 0 NOT NULL, PRIMARY KEY (id))",
			"COMMENT ON TABLE users IS 'App users'",
			"COMMENT ON COLUMN users.name IS 'Display name'",
		}, d.CreateTableSQL(users))

		d.SetVersion(Version{Major: 9, Minor: 6, Patch: 24})
		stmts := d.CreateTableSQL(users)
		require.Len(t, stmts, 3)
		assert.Equal(t, "CREATE TABLE users (id BIGSERIAL NOT NULL, name VARCHAR(64), version INTEGER DEFAULT 0 NOT NULL, PRIMARY KEY (id))", stmts[0])
	})
	t.Run("mysql", func(t *testing.T) {
		d := mustDict(t, dialect.MySQL)
		assert.Equal(t, []string{
			"CREATE TABLE users (id BIGINT AUTO_INCREMENT NOT NULL, name VARCHAR(64) COMMENT 'Display name', version INTEGER DEFAULT 0 NOT NULL, PRIMARY KEY (id)) ENGINE = InnoDB COMMENT = 'App users'",
		}, d.CreateTableSQL(users))
	})
	t.Run("oracle", func(t *testing.T) {
		d := mustDict(t, dialect.Oracle)
		stmts := d.CreateTableSQL(users)
		require.Len(t, stmts, 3)
		assert.Equal(t, "CREATE TABLE users (id NUMBER(19) GENERATED BY DEFAULT ON NULL AS IDENTITY NOT NULL, name VARCHAR2(64), version INTEGER DEFAULT 0 NOT NULL, PRIMARY KEY (id))", stmts[0])

		d.SetVersion(Version{Major: 11, Minor: 2})
		assert.Equal(t, "CREATE TABLE users (id NUMBER(19) NOT NULL, name VARCHAR2(64), version INTEGER DEFAULT 0 NOT NULL, PRIMARY KEY (id))", d.CreateTableSQL(users)[0])
	})
	t.Run("sqlite", func(t *testing.T) {
		d := mustDict(t, dialect.SQLite)
		plain := usersTable()
		orders, _ := ordersTable(plain)
		assert.Equal(t, []string{
			"CREATE TABLE users (id INTEGER PRIMARY KEY AUTOINCREMENT, name VARCHAR(64), version INTEGER DEFAULT 0 NOT NULL)",
		}, d.CreateTableSQL(plain))
		assert.Equal(t, []string{
			"CREATE TABLE orders (id BIGINT NOT NULL, user_id BIGINT NOT NULL, PRIMARY KEY (id), CONSTRAINT fk_orders_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE)",
		}, d.CreateTableSQL(orders))
	})
	t.Run("schema", func(t *testing.T) {
		d := mustDict(t, dialect.SQLServer)
		tbl := schema.NewTable("user").SetSchema("app").AddColumn(&schema.Column{Name: "id", Type: schema.TypeInteger})
		assert.Equal(t, []string{"CREATE TABLE app.[user] (id INTEGER NOT NULL)"}, d.CreateTableSQL(tbl))
		assert.Equal(t, []string{"DROP TABLE app.[user]"}, d.DropTableSQL(tbl))
	})
}

func TestColumnDeclaration(t *testing.T) {
	d := mustDict(t, dialect.Postgres)
	tests := []struct {
		col  *schema.Column
		want string
	}{
		{&schema.Column{Name: "note", Type: schema.TypeVarchar, Nullable: true}, "note VARCHAR(255)"},
		{&schema.Column{Name: "price", Type: schema.TypeDecimal, Size: 10, DecimalDigits: 2}, "price DECIMAL(10, 2) NOT NULL"},
		{&schema.Column{Name: "created", Type: schema.TypeTimestamp, Default: schema.Expr("CURRENT_TIMESTAMP")}, "created TIMESTAMP DEFAULT CURRENT_TIMESTAMP NOT NULL"},
		{&schema.Column{Name: "active", Type: schema.TypeBoolean, Default: true}, "active BOOLEAN DEFAULT TRUE NOT NULL"},
		{&schema.Column{Name: "user", Type: schema.TypeLongVarchar, Nullable: true}, `"user" TEXT`},
		{&schema.Column{Name: "geo", TypeName: "GEOMETRY", Nullable: true}, "geo GEOMETRY"},
		{&schema.Column{Name: "id", TypeName: "SERIAL", AutoAssign: true}, "id SERIAL NOT NULL"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, d.ColumnDeclaration(tt.col))
	}
}

func TestConstraintNames(t *testing.T) {
	users := usersTable()
	u := &schema.Unique{Name: "u_name", Columns: users.Columns[1:2], Deferred: true}
	users.AddUnique(u)

	pg := mustDict(t, dialect.Postgres)
	assert.Equal(t, "CONSTRAINT u_name UNIQUE (name) INITIALLY DEFERRED DEFERRABLE", pg.UniqueConstraint(u))
	mid := mustDict(t, dialect.Postgres, WithCapabilities(func(c *Capabilities) { c.ConstraintNameMode = NameMid }))
	assert.Equal(t, "UNIQUE u_name (name) INITIALLY DEFERRED DEFERRABLE", mid.UniqueConstraint(u))
	after := mustDict(t, dialect.Postgres, WithCapabilities(func(c *Capabilities) { c.ConstraintNameMode = NameAfter }))
	assert.Equal(t, "UNIQUE (name) CONSTRAINT u_name INITIALLY DEFERRED DEFERRABLE", after.UniqueConstraint(u))

	my := mustDict(t, dialect.MySQL)
	assert.Equal(t, "CONSTRAINT u_name UNIQUE (name)", my.UniqueConstraint(u))

	none := mustDict(t, dialect.Generic, WithCapabilities(func(c *Capabilities) { c.SupportsUniqueConstraints = false }))
	assert.Empty(t, none.UniqueConstraint(u))

	users.PrimaryKey.Logical = true
	assert.Empty(t, pg.PrimaryKeyConstraint(users.PrimaryKey))
	assert.Nil(t, pg.AddPrimaryKeySQL(users.PrimaryKey))
}

func TestForeignKeySQL(t *testing.T) {
	users := usersTable()
	_, fk := ordersTable(users)

	pg := mustDict(t, dialect.Postgres)
	assert.Equal(t, []string{
		"ALTER TABLE orders ADD CONSTRAINT fk_orders_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE",
	}, pg.AddForeignKeySQL(fk))
	assert.Equal(t, []string{"ALTER TABLE orders DROP CONSTRAINT fk_orders_user"}, pg.DropForeignKeySQL(fk))

	my := mustDict(t, dialect.MySQL)
	assert.Equal(t, []string{"ALTER TABLE orders DROP FOREIGN KEY fk_orders_user"}, my.DropForeignKeySQL(fk))

	lite := mustDict(t, dialect.SQLite)
	assert.Nil(t, lite.AddForeignKeySQL(fk))
	assert.Nil(t, lite.DropForeignKeySQL(fk))

	fk.OnUpdate = schema.SetDefault
	assert.Empty(t, my.ForeignKeyConstraint(fk))
	assert.Nil(t, my.AddForeignKeySQL(fk))
	fk.OnUpdate = schema.Cascade
	assert.Contains(t, my.ForeignKeyConstraint(fk), "ON DELETE CASCADE ON UPDATE CASCADE")

	fk.OnDelete = schema.Logical
	assert.Empty(t, pg.ForeignKeyConstraint(fk))

	fk.OnDelete, fk.OnUpdate, fk.Deferred = schema.NoAction, schema.NoAction, true
	assert.Equal(t, "CONSTRAINT fk_orders_user FOREIGN KEY (user_id) REFERENCES users (id) INITIALLY DEFERRED DEFERRABLE", pg.ForeignKeyConstraint(fk))

	fk.OnDelete = schema.Cascade
	assert.Equal(t, "CONSTRAINT fk_orders_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE INITIALLY DEFERRED DEFERRABLE", pg.ForeignKeyConstraint(fk))
	fk.OnDelete = schema.NoAction

	fk.Name = ""
	assert.Nil(t, pg.DropForeignKeySQL(fk))
	assert.Equal(t, "FOREIGN KEY (user_id) REFERENCES users (id) INITIALLY DEFERRED DEFERRABLE", pg.ForeignKeyConstraint(fk))
	assert.Equal(t, "orders", fk.Table().Name)
}

func TestAlterTableSQL(t *testing.T) {
	users := usersTable()
	email := &schema.Column{Name: "email", Type: schema.TypeVarchar, Size: 128, Nullable: true}
	users.AddColumn(email)

	pg := mustDict(t, dialect.Postgres)
	assert.Equal(t, []string{"ALTER TABLE users ADD email VARCHAR(128)"}, pg.AddColumnSQL(email))
	assert.Equal(t, []string{"ALTER TABLE users DROP COLUMN email"}, pg.DropColumnSQL(email))
	assert.Equal(t, []string{"ALTER TABLE users ADD PRIMARY KEY (id)"}, pg.AddPrimaryKeySQL(users.PrimaryKey))
	assert.Nil(t, pg.DropPrimaryKeySQL(users.PrimaryKey))
	assert.Nil(t, pg.AddColumnSQL(&schema.Column{Name: "detached", Type: schema.TypeInteger}))

	users.PrimaryKey.Name = "users_pkey"
	assert.Equal(t, []string{"ALTER TABLE users DROP CONSTRAINT users_pkey"}, pg.DropPrimaryKeySQL(users.PrimaryKey))

	my := mustDict(t, dialect.MySQL)
	users.PrimaryKey.Name = ""
	assert.Equal(t, []string{"ALTER TABLE users DROP PRIMARY KEY"}, my.DropPrimaryKeySQL(users.PrimaryKey))

	lite := mustDict(t, dialect.SQLite)
	assert.Nil(t, lite.DropColumnSQL(email))
	assert.Nil(t, lite.AddPrimaryKeySQL(users.PrimaryKey))
	lite.SetVersion(Version{Major: 3, Minor: 45})
	assert.Equal(t, []string{"ALTER TABLE users DROP COLUMN email"}, lite.DropColumnSQL(email))
}

func TestIndexSQL(t *testing.T) {
	users := usersTable()
	orders, _ := ordersTable(users)
	idx := &schema.Index{Columns: orders.Columns[1:]}
	orders.AddIndex(idx)
	named := &schema.Index{Name: "ux_users_name", Columns: users.Columns[1:2], Unique: true}
	users.AddIndex(named)

	pg := mustDict(t, dialect.Postgres)
	assert.Equal(t, []string{"CREATE INDEX i_orders_user_id ON orders (user_id)"}, pg.CreateIndexSQL(idx))
	assert.Nil(t, pg.DropIndexSQL(idx))
	assert.Equal(t, []string{"CREATE UNIQUE INDEX ux_users_name ON users (name)"}, pg.CreateIndexSQL(named))
	assert.Equal(t, []string{"DROP INDEX ux_users_name"}, pg.DropIndexSQL(named))

	my := mustDict(t, dialect.MySQL)
	assert.Equal(t, []string{"DROP INDEX ux_users_name ON users"}, my.DropIndexSQL(named))
	assert.Nil(t, pg.CreateIndexSQL(&schema.Index{Name: "detached"}))
}

func TestSequenceSQL(t *testing.T) {
	seq := &schema.Sequence{Name: "order_seq", Initial: 1, Increment: 1, Allocate: 50}
	tests := []struct {
		product string
		create  []string
		drop    []string
		next    string
	}{
		{dialect.Postgres, []string{"CREATE SEQUENCE order_seq START WITH 1 INCREMENT BY 1 CACHE 50"}, []string{"DROP SEQUENCE order_seq"}, "SELECT NEXTVAL('order_seq')"},
		{dialect.Oracle, []string{"CREATE SEQUENCE order_seq START WITH 1 INCREMENT BY 1 CACHE 50"}, []string{"DROP SEQUENCE order_seq"}, "SELECT order_seq.NEXTVAL FROM DUAL"},
		{dialect.DB2, []string{"CREATE SEQUENCE order_seq START WITH 1 INCREMENT BY 1 CACHE 50"}, []string{"DROP SEQUENCE order_seq RESTRICT"}, "VALUES NEXTVAL FOR order_seq"},
		{dialect.Derby, []string{"CREATE SEQUENCE order_seq START WITH 1 INCREMENT BY 1"}, []string{"DROP SEQUENCE order_seq RESTRICT"}, "VALUES (NEXT VALUE FOR order_seq)"},
		{dialect.SQLServer, []string{"CREATE SEQUENCE order_seq START WITH 1 INCREMENT BY 1 CACHE 50"}, []string{"DROP SEQUENCE order_seq"}, "SELECT NEXT VALUE FOR order_seq"},
		{dialect.MySQL, nil, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.product, func(t *testing.T) {
			d := mustDict(t, tt.product)
			assert.Equal(t, tt.create, d.CreateSequenceSQL(seq))
			assert.Equal(t, tt.drop, d.DropSequenceSQL(seq))
			next, err := d.NextSequenceSQL(seq)
			if tt.next == "" {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.next, next)
		})
	}

	maria := mustDict(t, dialect.MySQL)
	maria.SetVersion(Version{Major: 10, Minor: 11, Patch: 6, Flavor: dialect.MariaDB})
	next, err := maria.NextSequenceSQL(seq)
	require.NoError(t, err)
	assert.Equal(t, "SELECT NEXTVAL(order_seq)", next)
}

func TestSchemaSQL(t *testing.T) {
	users := usersTable()
	orders, _ := ordersTable(users)
	orders.AddIndex(&schema.Index{Columns: orders.Columns[1:]})
	seq := &schema.Sequence{Name: "order_seq"}

	pg := mustDict(t, dialect.Postgres)
	stmts := pg.SchemaSQL([]*schema.Table{users, orders}, seq)
	require.Len(t, stmts, 5)
	assert.Equal(t, "CREATE SEQUENCE order_seq", stmts[0])
	assert.Contains(t, stmts[1], "CREATE TABLE users ")
	assert.Contains(t, stmts[2], "CREATE TABLE orders ")
	assert.NotContains(t, stmts[2], "FOREIGN KEY")
	assert.Equal(t, "ALTER TABLE orders ADD CONSTRAINT fk_orders_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE", stmts[3])
	assert.Equal(t, "CREATE INDEX i_orders_user_id ON orders (user_id)", stmts[4])

	assert.Equal(t, []string{
		"ALTER TABLE orders DROP CONSTRAINT fk_orders_user",
		"DROP TABLE orders",
		"DROP TABLE users",
		"DROP SEQUENCE order_seq",
	}, pg.DropSchemaSQL([]*schema.Table{users, orders}, seq))

	lite := mustDict(t, dialect.SQLite)
	stmts = lite.SchemaSQL([]*schema.Table{users, orders}, seq)
	require.Len(t, stmts, 3)
	assert.Contains(t, stmts[1], "FOREIGN KEY (user_id)")
	assert.Equal(t, []string{"DROP TABLE orders", "DROP TABLE users"}, lite.DropSchemaSQL([]*schema.Table{users, orders}, seq))
}
