package dict

import "github.com/syssam/dbdict/dialect"

// The generic product renders SQL:2008 with no range support; callers
// skip and cut rows themselves.
func init() {
	register(&product{
		name: dialect.Generic,
	})
}
