// Package main provides the CLI entrypoint for load-mapper.
//
// load-mapper turns freight shipment spreadsheets into load payloads:
//   - Suggests which columns feed which target fields
//   - Lets humans review and lock the mapping as YAML
//   - Validates mapped rows against the schema registry
//   - Builds one nested JSON payload per valid row
package main

import (
	"os"

	"load-mapper/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
