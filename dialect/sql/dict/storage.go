package dict

import (
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/dbdict"
	"github.com/syssam/dbdict/dialect/sql"
	"github.com/syssam/dbdict/dialect/sql/schema"
)

// BindValue converts v into the value bound for col, following the storage
// limits of the product. Values that lose precision are reported once per
// Go type at warn level, then at debug level, or fail with a
// *dbdict.StorageError when StorageLimitationsFatal is set.
func (d *Dictionary) BindValue(col *schema.Column, v any) (any, error) {
	if val, ok := v.(sql.Value); ok {
		switch val.Kind() {
		case sql.Unset, sql.Null:
			return nil, nil
		case sql.Raw:
			return nil, fmt.Errorf("dict: raw value %q cannot be bound", val.SQL())
		}
		v = val.Data()
	}
	c := d.Capabilities()
	switch x := v.(type) {
	case time.Time:
		t := x.Truncate(time.Duration(math.Pow10(9 - c.DatePrecision)))
		if !t.Equal(x) {
			if err := d.storageLimit(col, v, fmt.Sprintf("fractional seconds beyond %d digits are dropped", c.DatePrecision)); err != nil {
				return nil, err
			}
		}
		return t, nil
	case bool:
		if !c.SupportsBooleanType {
			if x {
				return 1, nil
			}
			return 0, nil
		}
	case uuid.UUID:
		if c.UUIDAsBinary {
			return x[:], nil
		}
		return x.String(), nil
	case *big.Int:
		if c.StoreLargeNumbersAsStrings {
			return x.String(), nil
		}
		if x.IsInt64() {
			return x.Int64(), nil
		}
		f, acc := new(big.Float).SetInt(x).Float64()
		return d.largeNumber(col, v, f, acc)
	case *big.Float:
		if c.StoreLargeNumbersAsStrings {
			return x.Text('f', -1), nil
		}
		f, acc := x.Float64()
		return d.largeNumber(col, v, f, acc)
	case *big.Rat:
		if c.StoreLargeNumbersAsStrings {
			return x.FloatString(18), nil
		}
		f, exact := x.Float64()
		acc := big.Exact
		if !exact {
			acc = big.Below
		}
		return d.largeNumber(col, v, f, acc)
	case uint64:
		if x > math.MaxInt64 {
			return fmt.Sprintf("%d", x), nil
		}
		return int64(x), nil
	}
	return v, nil
}

func (d *Dictionary) largeNumber(col *schema.Column, v any, f float64, acc big.Accuracy) (any, error) {
	if acc != big.Exact {
		if err := d.storageLimit(col, v, "value is rounded to a 64-bit float"); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// storageLimit reports a value narrowed when stored.
func (d *Dictionary) storageLimit(col *schema.Column, v any, msg string) error {
	name := ""
	if col != nil {
		name = col.Name
	}
	if d.Capabilities().StorageLimitationsFatal {
		return dbdict.NewStoreError(dbdict.KindStorage, fmt.Sprintf("column %q: %s", name, msg), "", v, nil)
	}
	typ := fmt.Sprintf("%T", v)
	if _, seen := d.warned.LoadOrStore(typ, struct{}{}); seen {
		d.log.Debug("storage limitation", "dialect", d.name, "column", name, "type", typ, "reason", msg)
		return nil
	}
	d.log.Warn("storage limitation", "dialect", d.name, "column", name, "type", typ, "reason", msg)
	return nil
}
