package demo_configs

import (
	"embed"
)

// FS provides the embedded demo analysis YAMLs (synthetic samples).
//
//go:embed *.yaml
var FS embed.FS
