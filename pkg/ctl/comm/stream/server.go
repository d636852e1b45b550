package stream

import (
	"context"
	"net"
	"sync"

	"github.com/golang/glog"

	"github.com/radioclk/si514.go/pkg/ctl"
	"github.com/radioclk/si514.go/pkg/ctl/comm"
	fx "github.com/radioclk/si514.go/pkg/framework"
)

// Server accepts TCP connections and serves each with a Registrar
// dispatching to the handler.
type Server struct {
	Addr    string
	Handler ctl.CommandHandler

	mux  comm.RegistrarMux
	lock sync.Mutex
}

// NewServer creates a Server listening on addr.
func NewServer(addr string, handler ctl.CommandHandler) *Server {
	return &Server{Addr: addr, Handler: handler}
}

// SendEvent implements Registrar, broadcasting to all connections.
func (s *Server) SendEvent(ctx context.Context, msg ctl.Message) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.mux.SendEvent(ctx, msg)
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	glog.Infof("listening on %s", ln.Addr())
	return fx.RunWithContextCloser(ctx, ln, func() error {
		for {
			nc, err := ln.Accept()
			if err != nil {
				return err
			}
			go s.serve(ctx, nc)
		}
	})
}

func (s *Server) serve(ctx context.Context, nc net.Conn) {
	glog.V(1).Infof("connected %s", nc.RemoteAddr())
	reg := &comm.Registrar{}
	reg.Init(New(nc), s.Handler)
	s.lock.Lock()
	s.mux.Add(reg)
	s.lock.Unlock()

	err := fx.RunWithContextCloser(ctx, nc, func() error {
		return reg.Run(ctx)
	})
	s.lock.Lock()
	s.mux.Remove(reg)
	s.lock.Unlock()
	glog.V(1).Infof("disconnected %s: %v", nc.RemoteAddr(), err)
}
