package server

import (
	"errors"
	"fmt"
	"sync"

	"github.com/chazu/glass/vm"
)

// ErrWorkerStopped is returned by Do once Stop has been called.
var ErrWorkerStopped = errors.New("vm worker stopped")

// vmRequest is a unit of work to be executed on the VM goroutine.
type vmRequest struct {
	fn   func(*vm.VM) (any, error)
	done chan vmResult
}

type vmResult struct {
	value any
	err   error
}

// VMWorker serializes all VM access through a single goroutine. A VM
// is single-threaded; every LSP handler goes through the worker.
type VMWorker struct {
	vm       *vm.VM
	requests chan vmRequest
	quit     chan struct{}
	stopOnce sync.Once
}

// NewVMWorker creates a VMWorker and starts the processing goroutine.
func NewVMWorker(v *vm.VM) *VMWorker {
	w := &VMWorker{
		vm:       v,
		requests: make(chan vmRequest, 16),
		quit:     make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *VMWorker) loop() {
	for {
		select {
		case req := <-w.requests:
			req.done <- w.execute(req.fn)
		case <-w.quit:
			return
		}
	}
}

// execute runs fn on the VM. A panic is turned into an error and the VM
// is reset so the next request starts clean.
func (w *VMWorker) execute(fn func(*vm.VM) (any, error)) (result vmResult) {
	defer func() {
		if r := recover(); r != nil {
			result.err = fmt.Errorf("vm worker: %v", r)
			w.vm.Reset()
		}
	}()
	result.value, result.err = fn(w.vm)
	return result
}

// Do submits fn for execution on the VM goroutine and blocks until it
// completes or the worker is stopped.
func (w *VMWorker) Do(fn func(*vm.VM) (any, error)) (any, error) {
	req := vmRequest{
		fn:   fn,
		done: make(chan vmResult, 1),
	}
	select {
	case <-w.quit:
		return nil, ErrWorkerStopped
	default:
	}
	select {
	case w.requests <- req:
	case <-w.quit:
		return nil, ErrWorkerStopped
	}
	select {
	case result := <-req.done:
		return result.value, result.err
	case <-w.quit:
		return nil, ErrWorkerStopped
	}
}

// Run resets the VM, runs prog from pc and returns r0.
func (w *VMWorker) Run(prog *vm.Program, pc int) (vm.Word, error) {
	v, err := w.Do(func(m *vm.VM) (any, error) {
		m.Reset()
		m.Load(prog, pc)
		if err := m.Run(); err != nil {
			return nil, err
		}
		return m.Result(), nil
	})
	if err != nil {
		return 0, err
	}
	return v.(vm.Word), nil
}

// Stop shuts down the worker goroutine. It is safe to call more than once.
func (w *VMWorker) Stop() {
	w.stopOnce.Do(func() { close(w.quit) })
}
