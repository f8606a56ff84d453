package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/chazu/glass/compiler"
	"github.com/chazu/glass/vm"
)

const (
	banner      = "Glass v" + version + " REPL"
	prompt      = "> "
	historyFile = ".glass_history"
)

const replHelp = `Enter a function declaration, a return statement or a bare expression.
Commands:
  :help     show this help
  :regs     show non-zero registers
  :stack    show the live stack words
  :disasm   show the last compiled program
  :reset    clear registers and stack
  :quit     exit
`

// session evaluates REPL input against one VM.
type session struct {
	vm   *vm.VM
	out  io.Writer
	last *vm.Program
}

// eval handles one line of input and reports whether the REPL should exit.
func (s *session) eval(line string) (quit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, ":") {
		return s.command(line)
	}

	prog, pc, err := compiler.CompileLine(line)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return false
	}
	s.last = prog

	s.vm.Reset()
	s.vm.Load(prog, pc)
	if err := s.vm.Run(); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return false
	}
	fmt.Fprintf(s.out, "$ %d\n", s.vm.Result())
	return false
}

func (s *session) command(line string) (quit bool) {
	switch strings.ToLower(line) {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Fprint(s.out, replHelp)
	case ":regs":
		fmt.Fprintln(s.out, s.vm.RegisterTable(false))
	case ":stack":
		fmt.Fprintln(s.out, s.vm.StackTable())
	case ":disasm":
		if s.last == nil {
			fmt.Fprintln(s.out, "nothing compiled yet")
			break
		}
		fmt.Fprintln(s.out, vm.DisassemblyTable(s.last))
	case ":reset":
		for r := 0; r < vm.NumRegisters; r++ {
			s.vm.SetRegister(vm.Reg(r), 0)
		}
		s.vm.Reset()
		fmt.Fprintln(s.out, "vm reset")
	default:
		fmt.Fprintf(s.out, "unknown command %s. Type :help for a list.\n", line)
	}
	return false
}

// runREPL reads lines with history until EOF or :quit.
func runREPL(machine *vm.VM) int {
	fmt.Println(banner)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	s := &session{vm: machine, out: os.Stdout}
	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Println()
			return 0
		}
		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		if s.eval(line) {
			return 0
		}
	}
}
