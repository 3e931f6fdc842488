// Command dbdict renders and checks the SQL of database products.
package main

import (
	"os"

	"github.com/syssam/dbdict/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
