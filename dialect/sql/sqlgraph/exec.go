package sqlgraph

import (
	"context"
	"fmt"

	"github.com/syssam/dbdict"
	"github.com/syssam/dbdict/dialect"
	"github.com/syssam/dbdict/dialect/sql"
	"github.com/syssam/dbdict/dialect/sql/dict"
)

// Exec executes the valid rows in order. Consecutive INSERT rows of the
// same statement are sent as one multi-row INSERT of at most BatchLimit
// rows when the product supports it. An UPDATE or DELETE conditioned on a
// version column that affects no row fails with *dbdict.OptimisticError.
// Driver errors are narrowed by the dictionary.
func Exec(ctx context.Context, drv dialect.ExecQuerier, d *dict.Dictionary, rows ...*Row) error {
	rows = validRows(rows)
	for i := 0; i < len(rows); {
		n, err := batchLen(d, rows[i:])
		if err != nil {
			return err
		}
		if n > 1 {
			err = execBatch(ctx, drv, d, rows[i:i+n])
		} else {
			err = execRow(ctx, drv, d, rows[i])
		}
		if err != nil {
			return err
		}
		i += n
	}
	return nil
}

func validRows(rows []*Row) []*Row {
	valid := make([]*Row, 0, len(rows))
	for _, r := range rows {
		if r != nil && r.IsValid() {
			valid = append(valid, r)
		}
	}
	return valid
}

// batchLen returns the number of leading rows sent in one statement.
func batchLen(d *dict.Dictionary, rows []*Row) (int, error) {
	c := d.Capabilities()
	head := rows[0]
	if head.action != ActionInsert || !c.SupportsMultiRowInsert || c.BatchLimit < 2 {
		return 1, nil
	}
	text, err := head.SQL(d)
	if err != nil || !head.hasSet() {
		return 1, err
	}
	n := 1
	for n < len(rows) && n < c.BatchLimit {
		r := rows[n]
		if r.action != ActionInsert || r.table != head.table {
			break
		}
		other, err := r.SQL(d)
		if err != nil {
			return 0, err
		}
		if other != text {
			break
		}
		n++
	}
	return n, nil
}

func execRow(ctx context.Context, drv dialect.ExecQuerier, d *dict.Dictionary, r *Row) error {
	compiled, err := r.compile(d)
	if err != nil {
		return err
	}
	b, err := bound(d, compiled)
	if err != nil {
		return err
	}
	res, err := sql.ExecBuffer(ctx, drv, b)
	if err != nil {
		return d.Narrow(fmt.Sprintf("%s %s", r.action, r.table.Name), err, r.Failed())
	}
	if r.action == ActionInsert || !r.HasVersionCondition() {
		return nil
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return d.Narrow(fmt.Sprintf("%s %s: rows affected", r.action, r.table.Name), err, r.Failed())
	}
	if affected == 0 {
		return dbdict.NewOptimisticError(fmt.Sprintf("%s %s: row was changed or deleted concurrently", r.action, r.table.Name), r.Failed())
	}
	return nil
}

// execBatch sends rows that share one INSERT statement as a multi-row
// INSERT.
func execBatch(ctx context.Context, drv dialect.ExecQuerier, d *dict.Dictionary, rows []*Row) error {
	head := rows[0]
	b := head.insertHead(d).Append(" VALUES ")
	failed := make([]any, len(rows))
	for i, r := range rows {
		if i > 0 {
			b.Append(", ")
		}
		r.appendTuple(b, d)
		failed[i] = r.Failed()
	}
	if err := b.Err(); err != nil {
		return err
	}
	b, err := bound(d, b)
	if err != nil {
		return err
	}
	if _, err := sql.ExecBuffer(ctx, drv, b); err != nil {
		return d.Narrow(fmt.Sprintf("INSERT %s: batch of %d rows", head.table.Name, len(rows)), err, failed)
	}
	return nil
}

// bound returns a copy of the buffer whose parameters hold the values
// converted for the driver.
func bound(d *dict.Dictionary, b *sql.Buffer) (*sql.Buffer, error) {
	ps := b.Params()
	var args sql.Args
	if err := bindParams(&args, d, ps); err != nil {
		return nil, err
	}
	for i := range ps {
		ps[i].Value = args[i]
	}
	c := b.Clone()
	if err := c.SetParams(ps); err != nil {
		return nil, err
	}
	return c, nil
}
