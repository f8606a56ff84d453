// Package vm implements the glass virtual machine.
//
// This package contains:
//   - the instruction set and its operand shapes
//   - Program, the compiled unit, with its disassembler
//   - a register/stack interpreter over a bounds-checked byte stack
//   - CBOR program images
package vm
