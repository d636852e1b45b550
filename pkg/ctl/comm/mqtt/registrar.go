package mqtt

import (
	"context"
	"encoding/json"

	"github.com/radioclk/si514.go/pkg/ctl"
	"github.com/radioclk/si514.go/pkg/ctl/comm"
	fx "github.com/radioclk/si514.go/pkg/framework"
)

// Registrar implements ctl.Registrar using MQTT. It publishes the
// agent meta as a retained message for discovery, with a will clearing
// it when the agent goes away.
type Registrar struct {
	Queue *Queue
	Info  ctl.ClockInfo

	metaJSON  string
	registrar comm.Registrar
	rw        *ReadWriter
}

// NewRegistrar creates a Registrar.
func NewRegistrar(brokerURL string, info ctl.ClockInfo, handler ctl.CommandHandler) (*Registrar, error) {
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		panic(err)
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+info.Ref.Name()+"/meta", nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("si514:" + info.Ref.Name())
	}
	r := &Registrar{
		Queue:    NewQueue(opts, topicPrefix),
		Info:     info,
		metaJSON: string(meta),
	}
	r.Queue.OnConnect = func(*Queue) { r.onConnected() }
	r.rw = ForAgent(r.Queue, info.Ref)
	r.registrar.Init(r.rw, handler)
	return r, nil
}

// SendEvent implements Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg ctl.Message) error {
	return r.registrar.SendEvent(ctx, msg)
}

// Run implements Runnable.
func (r *Registrar) Run(ctx context.Context) error {
	r.Queue.Connect()
	err := fx.NewRunnerWith(ctx).
		Go(r.rw, &r.registrar).
		Wait()
	r.Queue.PubWith(r.Info.Ref.Name()+"/meta", nil, 1, true)
	r.Queue.Close()
	return err
}

func (r *Registrar) onConnected() {
	r.Queue.PubWith(r.Info.Ref.Name()+"/meta", []byte(r.metaJSON), 1, true)
}
