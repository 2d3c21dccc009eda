package config

import (
	"embed"
)

// Store holds the per-network configs, laid out as <namespace>/<blockchain>/<network>/<env>.yml.
//
//go:embed chainparsers/*
var Store embed.FS
