package fixtures

import (
	"embed"
)

// FixturesFS holds raw MultiversX records captured from the public API.
//
//go:embed multiversx/*
var FixturesFS embed.FS
