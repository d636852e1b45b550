package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"net"

	"github.com/golang/glog"

	"github.com/radioclk/si514.go/pkg/bridge/sim"
	fx "github.com/radioclk/si514.go/pkg/framework"
)

var (
	listenAddr = flag.String("listen", ":9514", "listening address")
	chipAddr   = flag.Uint("addr", 0x55, "I2C address of the simulated chip")
)

func main() {
	flag.Parse()

	ln, err := net.Listen("tcp", *listenAddr)
	if err != nil {
		glog.Exitf("listen %s: %v", *listenAddr, err)
	}
	glog.Infof("listening on %s", ln.Addr())

	runner := fx.NewRunner().HandleSignals()
	runner.Go(fx.RunnableFunc(func(ctx context.Context) error {
		return fx.RunWithContextCloser(ctx, ln, func() error {
			for {
				nc, err := ln.Accept()
				if err != nil {
					return err
				}
				go serve(ctx, nc)
			}
		})
	}))
	if err = runner.Wait(); err != nil {
		glog.Exit(err)
	}
}

func serve(ctx context.Context, nc net.Conn) {
	defer nc.Close()
	glog.Infof("connected %s", nc.RemoteAddr())
	br := sim.NewBridge(nc)
	br.Add(sim.NewSi514().SetAddr(uint8(*chipAddr)))
	if err := br.Run(ctx); err != nil {
		glog.Warningf("session %s: %v", nc.RemoteAddr(), err)
	}
	glog.Infof("disconnected %s", nc.RemoteAddr())
}
