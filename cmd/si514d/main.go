package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	"github.com/radioclk/si514.go/pkg/clock"
	"github.com/radioclk/si514.go/pkg/ctl"
	env "github.com/radioclk/si514.go/pkg/env/agent"
	fx "github.com/radioclk/si514.go/pkg/framework"
)

func init() {
	env.SetAgentType("si514", ctl.ClockMeta{Description: "Si514 clock generator"})
	env.SetupFlags()
	clock.SetupFlags()
}

func main() {
	flag.Parse()

	session, err := clock.NewConfig().Open()
	if err != nil {
		glog.Exitf("open device: %v", err)
	}
	e := env.NewConfig().MustNewEnv(session.Controller)
	session.Controller.Events = e.Registrar

	runner := fx.NewRunner().HandleSignals()
	runner.Go(session)
	runner.Go(e.Runners...)
	if err = runner.Wait(); err != nil {
		glog.Exit(err)
	}
}
