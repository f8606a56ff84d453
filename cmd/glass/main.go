// Glass CLI - compiles and runs glass programs.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tebeka/atexit"
	"github.com/tliron/commonlog"

	"github.com/chazu/glass/compiler"
	"github.com/chazu/glass/manifest"
	"github.com/chazu/glass/server"
	"github.com/chazu/glass/vm"

	_ "github.com/tliron/commonlog/simple"
)

const version = "0.0.1"

var log = commonlog.GetLogger("glass.cli")

// options collects the command line flags.
type options struct {
	interactive bool
	verbose     bool
	trace       bool
	disasm      bool
	output      string
	entry       string
	stackSize   int
	lsp         bool
}

func main() {
	var opts options
	flag.BoolVar(&opts.interactive, "i", false, "Start interactive REPL after running files")
	flag.BoolVar(&opts.verbose, "v", false, "Verbose output")
	flag.BoolVar(&opts.trace, "trace", false, "Log every executed instruction")
	flag.BoolVar(&opts.disasm, "disasm", false, "Print the disassembly of each program before running it")
	flag.StringVar(&opts.output, "o", "", "Write the compiled program to an image `file`")
	flag.StringVar(&opts.entry, "entry", compiler.EntryName, "Function to start execution in")
	flag.IntVar(&opts.stackSize, "stack", vm.DefaultStackSize, "Stack size in bytes")
	flag.BoolVar(&opts.lsp, "lsp", false, "Start the language server on stdio")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: glass [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Compiles and runs .gls source files and .glsc images.\n")
		fmt.Fprintf(os.Stderr, "With no files, the project described by the nearest glass.toml is run.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  glass -i                    # Start REPL\n")
		fmt.Fprintf(os.Stderr, "  glass calc.gls              # Run main, exit with its result\n")
		fmt.Fprintf(os.Stderr, "  glass -o calc.glsc calc.gls # Compile and save an image\n")
		fmt.Fprintf(os.Stderr, "  glass -disasm calc.glsc     # Show and run a saved image\n")
		fmt.Fprintf(os.Stderr, "  glass -lsp                  # Start language server\n")
	}
	flag.Parse()

	verbosity := 0
	if opts.verbose || opts.trace {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	atexit.Exit(run(opts, flag.Args()))
}

// run executes the CLI and returns the process exit code.
func run(opts options, paths []string) int {
	if opts.lsp {
		lsp, err := server.NewLSP(vm.StackSize(opts.stackSize))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if err := lsp.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			return 1
		}
		return 0
	}

	if len(paths) == 0 && !opts.interactive {
		m, err := manifest.FindAndLoad(".")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if m == nil {
			flag.Usage()
			return 2
		}
		if paths, err = applyManifest(&opts, m); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	vmOpts := []vm.Option{vm.StackSize(opts.stackSize)}
	if opts.trace {
		vmOpts = append(vmOpts, vm.WithTracer(vm.LogTracer{}))
	}
	machine, err := vm.New(vmOpts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	code, failed := 0, false
	for _, path := range paths {
		result, err := runFile(machine, opts, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", path, err)
			failed = true
			continue
		}
		code = int(result & 0xff)
		if opts.verbose {
			fmt.Printf("%s: %d\n", path, result)
		}
	}

	if opts.interactive {
		return runREPL(machine)
	}
	if failed {
		return 1
	}
	return code
}

// applyManifest fills unset options from m and returns its source files.
func applyManifest(opts *options, m *manifest.Manifest) ([]string, error) {
	log.Infof("using project %q in %s", m.Project.Name, m.Dir)
	if opts.entry == compiler.EntryName {
		opts.entry = m.Source.Entry
	}
	if opts.stackSize == vm.DefaultStackSize {
		opts.stackSize = m.VM.StackSize
	}
	opts.trace = opts.trace || m.VM.Trace
	if opts.output == "" {
		opts.output = m.ImagePath()
	}
	paths, err := m.SourcePaths()
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("project %q has no source files", m.Project.Name)
	}
	return paths, nil
}

// loadProgram compiles a source file or decodes an image. For images the
// entry stored in the image wins over the default one.
func loadProgram(path, entry string) (*vm.Program, string, error) {
	if strings.HasSuffix(path, vm.ImageExt) {
		img, err := vm.LoadImage(path)
		if err != nil {
			return nil, "", err
		}
		if entry == compiler.EntryName && img.Entry != "" {
			entry = img.Entry
		}
		return img.Program, entry, nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	prog, err := compiler.Compile(string(src))
	if err != nil {
		return nil, "", err
	}
	return prog, entry, nil
}

// runFile loads path into machine, runs its entry function and returns r0.
func runFile(machine *vm.VM, opts options, path string) (vm.Word, error) {
	prog, entry, err := loadProgram(path, opts.entry)
	if err != nil {
		return 0, err
	}

	if opts.output != "" && !strings.HasSuffix(path, vm.ImageExt) {
		out := opts.output
		if filepath.Ext(out) == "" {
			out += vm.ImageExt
		}
		if err := vm.SaveImage(out, vm.NewImage(prog, entry)); err != nil {
			return 0, err
		}
		log.Infof("wrote %s", out)
	}

	if opts.disasm {
		fmt.Println(vm.DisassemblyTable(prog))
	}

	pc, err := prog.EntryPoint(entry)
	if err != nil {
		return 0, err
	}
	machine.Reset()
	machine.Load(prog, pc)
	if err := machine.Run(); err != nil {
		return 0, err
	}
	return machine.Result(), nil
}
