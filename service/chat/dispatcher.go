package chat

import (
	errs "conecta/tools/errs"
)

// HandlerFunc processes one inbound event for one connection. A
// returned error means the event is dropped (and logged by the read
// loop); it never tears the connection down.
type HandlerFunc func(c *Client, data map[string]any) error

type Dispatcher struct {
	handlers map[string]HandlerFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]HandlerFunc)}
}

func (d *Dispatcher) Register(event string, h HandlerFunc) {
	d.handlers[event] = h
}

func (d *Dispatcher) Dispatch(c *Client, f *Frame) error {
	h, ok := d.handlers[f.Event]
	if !ok {
		return errs.ErrArgs.WrapMsg("no handler for event", "event", f.Event)
	}
	return h(c, f.Data)
}
