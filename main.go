// Package main is the entry point for querylog, an analytical query engine
// for NGINX access logs.
package main

import (
	"github.com/dalibo/querylog/cmd"
)

// version is set via -ldflags "-X main.version=..." at release build time.
var version = "dev"

func main() {
	cmd.Execute(version)
}
