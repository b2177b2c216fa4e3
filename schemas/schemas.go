// Package schemas embeds the JSON Schemas used to validate catalog records.
package schemas

import _ "embed"

//go:embed strategy.schema.json
var StrategySchemaJSON string
