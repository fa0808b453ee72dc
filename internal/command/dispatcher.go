// Package command implements the NPC commands and a dispatcher the plugin
// registers them into. Argument parsing belongs to the host: executors
// receive already typed Args.
package command

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/zeusync/reveries/internal/core/host"
	"github.com/zeusync/reveries/internal/core/observability/log"
	"github.com/zeusync/reveries/internal/core/text"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrDuplicate      = errors.New("command already registered")
)

// Args holds the parsed arguments of one invocation, keyed by name.
type Args map[string]any

func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

func (a Args) Get(name string) (any, bool) {
	v, ok := a[name]
	return v, ok
}

func (a Args) String(name string) (string, bool) {
	s, ok := a[name].(string)
	return s, ok
}

func (a Args) Bool(name string) (bool, bool) {
	b, ok := a[name].(bool)
	return b, ok
}

// Error is a failure reported to the command source as a message.
type Error struct {
	Message text.Template
	Subs    map[string]any
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message.Apply(e.Subs).Plain()
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Executor runs one command.
type Executor func(ctx context.Context, src host.CommandSource, args Args) error

type Spec struct {
	Name        string
	Description string
	Permission  string
	Exec        Executor
}

type registration struct {
	owner string
	spec  Spec
}

// Dispatcher routes invocations to registered executors. Commands are
// registered on behalf of an owner so a reload can drop them in one call.
type Dispatcher struct {
	messenger host.Messenger
	log       log.Log

	mu       sync.RWMutex
	commands map[string]registration
}

func NewDispatcher(messenger host.Messenger, logger log.Log) *Dispatcher {
	return &Dispatcher{
		messenger: messenger,
		log:       logger.With(log.String("component", "command")),
		commands:  make(map[string]registration),
	}
}

func (d *Dispatcher) Register(owner string, spec Spec) error {
	if spec.Name == "" || spec.Exec == nil {
		return fmt.Errorf("command needs a name and an executor")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.commands[spec.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, spec.Name)
	}
	d.commands[spec.Name] = registration{owner: owner, spec: spec}
	return nil
}

// Deregister drops every command registered by owner and returns how many
// were removed.
func (d *Dispatcher) Deregister(owner string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for name, reg := range d.commands {
		if reg.owner == owner {
			delete(d.commands, name)
			n++
		}
	}
	return n
}

// Commands lists the registered command names, sorted.
func (d *Dispatcher) Commands() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.commands))
	for name := range d.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Dispatcher) Spec(name string) (Spec, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	reg, ok := d.commands[name]
	return reg.spec, ok
}

// Dispatch runs the named command. A *Error returned by the executor is
// sent to src before being returned.
func (d *Dispatcher) Dispatch(ctx context.Context, src host.CommandSource, name string, args Args) error {
	spec, ok := d.Spec(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	if args == nil {
		args = Args{}
	}

	err := spec.Exec(ctx, src, args)
	if err == nil {
		return nil
	}
	var cmdErr *Error
	if errors.As(err, &cmdErr) {
		d.messenger.Send(src, cmdErr.Message, cmdErr.Subs)
		d.log.Debug("Command refused", log.String("command", name), log.String("source", src.Name()), log.Error(err))
		return err
	}
	d.log.Error("Command failed", log.String("command", name), log.String("source", src.Name()), log.Error(err))
	return err
}
