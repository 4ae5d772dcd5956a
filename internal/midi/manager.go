package midi

import (
	"fmt"
	"strings"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register rtmidi driver
)

// Manager owns the MIDI driver connection and finds ports by name.
type Manager struct {
	mu sync.RWMutex
}

// NewManager creates a new MIDI manager.
func NewManager() *Manager {
	return &Manager{}
}

// Close cleans up the MIDI driver.
func (m *Manager) Close() {
	midi.CloseDriver()
}

// ListInPorts returns the names of available MIDI input ports.
func (m *Manager) ListInPorts() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ins := midi.GetInPorts()
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	return names
}

// ListOutPorts returns the names of available MIDI output ports.
func (m *Manager) ListOutPorts() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	outs := midi.GetOutPorts()
	names := make([]string, 0, len(outs))
	for _, out := range outs {
		names = append(names, out.String())
	}
	return names
}

// FindInPort returns the input port matching name: an exact match first,
// then a case-insensitive substring match.
func (m *Manager) FindInPort(name string) (drivers.In, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ins := midi.GetInPorts()
	for _, in := range ins {
		if in.String() == name {
			return in, nil
		}
	}
	for _, in := range ins {
		if strings.Contains(strings.ToLower(in.String()), strings.ToLower(name)) {
			return in, nil
		}
	}
	return nil, fmt.Errorf("input port not found: %s", name)
}

// FindOutPort returns the output port matching name, with the same
// matching rules as FindInPort.
func (m *Manager) FindOutPort(name string) (drivers.Out, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	outs := midi.GetOutPorts()
	for _, out := range outs {
		if out.String() == name {
			return out, nil
		}
	}
	for _, out := range outs {
		if strings.Contains(strings.ToLower(out.String()), strings.ToLower(name)) {
			return out, nil
		}
	}
	return nil, fmt.Errorf("output port not found: %s", name)
}

// Send delivers messages to the named output port.
func (m *Manager) Send(outName string, msgs ...midi.Message) error {
	out, err := m.FindOutPort(outName)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	send, err := midi.SendTo(out)
	if err != nil {
		return fmt.Errorf("failed to create sender: %w", err)
	}
	for _, msg := range msgs {
		if err := send(msg); err != nil {
			return fmt.Errorf("failed to send %s: %w", msg, err)
		}
	}
	return nil
}

// Listen routes inbound messages from the named input port through the
// router and invokes fn for every message a control owns. The returned
// stop function ends the subscription.
func (m *Manager) Listen(inName string, router *Router, fn func(Feedback)) (func(), error) {
	in, err := m.FindInPort(inName)
	if err != nil {
		return nil, err
	}

	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		if fb, ok := router.Handle(msg); ok {
			fn(fb)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start listening: %w", err)
	}
	return stop, nil
}

// Monitor invokes fn for every message on the named input port.
func (m *Manager) Monitor(inName string, fn func(midi.Message, int32)) (func(), error) {
	in, err := m.FindInPort(inName)
	if err != nil {
		return nil, err
	}

	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		fn(msg, timestampms)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start listening: %w", err)
	}
	return stop, nil
}
