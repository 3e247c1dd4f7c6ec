// Command atlasloader prints the DDL of the storefront tables for atlas.
package main

import (
	"fmt"
	"io"
	"os"

	"ariga.io/atlas-provider-gorm/gormschema"

	"github.com/JWebSmart/Nft-marketplace/types"
)

func main() {
	var models []any
	for _, table := range types.AllTables() {
		models = append(models, table.Model)
	}

	stmts, err := gormschema.New("postgres").Load(models...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load gorm schema: %v\n", err)
		os.Exit(1)
	}
	_, _ = io.WriteString(os.Stdout, stmts)
}
