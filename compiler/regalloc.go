package compiler

import "github.com/chazu/glass/vm"

// regAlloc tracks which registers hold live intermediate values while one
// top-level node is lowered. It exists only at compile time.
type regAlloc struct {
	used [vm.NumRegisters]bool
}

func newRegAlloc() *regAlloc {
	return &regAlloc{}
}

// acquire reserves the lowest free register. The returned func releases
// it and is meant to be deferred.
func (a *regAlloc) acquire() (vm.Reg, func(), error) {
	for i := range a.used {
		if !a.used[i] {
			r := vm.Reg(i)
			release, err := a.reserve(r)
			return r, release, err
		}
	}
	return 0, nil, ErrRegistersExhausted
}

// reserve pins r, failing if it is already live.
func (a *regAlloc) reserve(r vm.Reg) (func(), error) {
	if a.used[r] {
		return nil, ErrRegistersExhausted
	}
	a.used[r] = true
	return func() { a.used[r] = false }, nil
}

// live returns the number of reserved registers.
func (a *regAlloc) live() int {
	n := 0
	for _, u := range a.used {
		if u {
			n++
		}
	}
	return n
}
