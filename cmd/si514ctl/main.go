package main

import (
	"github.com/radioclk/si514.go/pkg/cli/sh"
	"github.com/radioclk/si514.go/pkg/clock"
	env "github.com/radioclk/si514.go/pkg/env/connector"

	_ "github.com/radioclk/si514.go/pkg/cli/cmds/all"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
	clock.SetupFlags()
}

func main() {
	sh.Main()
}
