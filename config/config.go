// Package config embeds the default scoring profile. Deployments that need a
// different pass threshold for an operation edit scoring.yaml and rebuild;
// nothing is read from disk at runtime.
package config

import (
	_ "embed"
)

//go:embed scoring.yaml
var EmbeddedScoringFile []byte
