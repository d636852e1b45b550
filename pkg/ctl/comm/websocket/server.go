package websocket

import (
	"context"
	"net"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/radioclk/si514.go/pkg/ctl"
	"github.com/radioclk/si514.go/pkg/ctl/comm"
	fx "github.com/radioclk/si514.go/pkg/framework"
)

// Server serves websocket connections, each with a Registrar
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
	glog.Infof("listening on ws://%s", ln.Addr())
	srv := &http.Server{
		Handler: websocket.Handler(func(ws *websocket.Conn) {
			s.serve(ctx, ws)
		}),
	}
	return fx.RunWithContextCancel(ctx, func() { srv.Close() }, func() error {
		err := srv.Serve(ln)
		if err == http.ErrServerClosed {
			err = nil
		}
		return err
	})
}

func (s *Server) serve(ctx context.Context, ws *websocket.Conn) {
	glog.V(1).Infof("connected %s", ws.Request().RemoteAddr)
	reg := &comm.Registrar{}
	reg.Init(New(ws), s.Handler)
	s.lock.Lock()
	s.mux.Add(reg)
	s.lock.Unlock()

	err := reg.Run(ctx)
	s.lock.Lock()
	s.mux.Remove(reg)
	s.lock.Unlock()
	glog.V(1).Infof("disconnected %s: %v", ws.Request().RemoteAddr, err)
}
