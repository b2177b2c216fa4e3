// Package metaprompts embeds the built-in strategy catalog.
package metaprompts

import "embed"

// FS holds one <key>.json record per strategy.
//
//go:embed *.json
var FS embed.FS
