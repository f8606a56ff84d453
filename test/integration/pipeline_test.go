package integration_test

import (
	"bytes"
	"errors"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/chazu/glass/compiler"
	"github.com/chazu/glass/vm"
)

// runMain compiles source and runs its main function on m.
func runMain(m *vm.VM, source string) (vm.Word, error) {
	prog, err := compiler.Compile(source)
	if err != nil {
		return 0, err
	}
	pc, err := prog.EntryPoint(compiler.EntryName)
	if err != nil {
		return 0, err
	}
	m.Reset()
	m.Load(prog, pc)
	if err := m.Run(); err != nil {
		return 0, err
	}
	return m.Result(), nil
}

var _ = Describe("Source to result", func() {
	var m *vm.VM

	BeforeEach(func() {
		var err error
		m, err = vm.New(vm.StackSize(4096))
		Expect(err).NotTo(HaveOccurred())
	})

	DescribeTable("arithmetic programs",
		func(source string, want vm.Word) {
			got, err := runMain(m, source)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("literal", "func main() { return 42; }", vm.Word(42)),
		Entry("precedence", "func main() { return 2 + 3 * 4; }", vm.Word(14)),
		Entry("left associative subtraction", "func main() { return 10 - 3 - 2; }", vm.Word(5)),
		Entry("left associative division", "func main() { return 100 / 5 / 2; }", vm.Word(10)),
		Entry("wrapping subtraction", "func main() { return 0 - 1; }", ^vm.Word(0)),
		Entry("max literal", "func main() { return 18446744073709551615; }", ^vm.Word(0)),
		Entry("first return wins", "func main() { return 1; return 2; }", vm.Word(1)),
	)

	It("resolves a forward reference to a later function's entry", func() {
		src := "func main() { return helper; }\nfunc helper() { return 0; }"
		prog, err := compiler.Compile(src)
		Expect(err).NotTo(HaveOccurred())

		entry, err := prog.EntryPoint("helper")
		Expect(err).NotTo(HaveOccurred())

		got, err := runMain(m, src)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(vm.Word(entry)))
	})

	It("reports every unresolved name at once", func() {
		_, err := compiler.Compile("func main() { return a + b * c; }")
		Expect(err).To(MatchError(compiler.ErrUnresolvedSymbol))

		names := []string{}
		for _, e := range compiler.Errors(err) {
			names = append(names, e.Name)
		}
		Expect(names).To(Equal([]string{"a", "b", "c"}))
	})

	It("rejects duplicate function names", func() {
		_, err := compiler.Compile("func f() { return 1; }\nfunc f() { return 2; }")
		Expect(errors.Is(err, compiler.ErrDuplicateSymbol)).To(BeTrue())
	})

	It("faults on division by zero and recovers after Reset", func() {
		_, err := runMain(m, "func main() { return 8 / 0; }")
		Expect(errors.Is(err, vm.ErrArithmeticFault)).To(BeTrue())
		Expect(m.Fault()).NotTo(BeNil())
		Expect(m.Step()).To(MatchError(vm.ErrFaulted))

		got, err := runMain(m, "func main() { return 3; }")
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(vm.Word(3)))
		Expect(m.Fault()).To(BeNil())
	})

	It("leaves the stack balanced after main returns", func() {
		_, err := runMain(m, "func main() { return 1 + 2; }")
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Halted()).To(BeTrue())
		Expect(m.SP()).To(Equal(m.StackCap()))
	})
})

var _ = Describe("Calling convention", func() {
	It("returns to the caller and restores base", func() {
		m, err := vm.New(vm.StackSize(256))
		Expect(err).NotTo(HaveOccurred())

		prog := vm.NewProgram()
		prog.Append(
			vm.Call(3),
			vm.Pair(vm.OpAdd, 0, 0),
			vm.Halt(),
			vm.LoadImm(0, 21),
			vm.Return(),
		)
		m.Load(prog, 0)
		base := m.Base()

		Expect(m.Run()).To(Succeed())
		Expect(m.Result()).To(Equal(vm.Word(42)))
		Expect(m.Base()).To(Equal(base))
	})

	It("skips a conditional call whose register is zero", func() {
		m, err := vm.New(vm.StackSize(256))
		Expect(err).NotTo(HaveOccurred())

		prog := vm.NewProgram()
		prog.Append(
			vm.LoadImm(0, 5),
			vm.LoadImm(1, 0),
			vm.CondBranch(vm.OpCall, 1, 4),
			vm.Halt(),
			vm.LoadImm(0, 99),
			vm.Return(),
		)
		m.Load(prog, 0)
		Expect(m.Run()).To(Succeed())
		Expect(m.Result()).To(Equal(vm.Word(5)))
	})
})

var _ = Describe("Images", func() {
	It("runs a program after a save and load round trip", func() {
		prog, err := compiler.Compile("func two() { return 2; }\nfunc main() { return 6 * 7; }")
		Expect(err).NotTo(HaveOccurred())

		path := filepath.Join(GinkgoT().TempDir(), "calc"+vm.ImageExt)
		Expect(vm.SaveImage(path, vm.NewImage(prog, compiler.EntryName))).To(Succeed())

		img, err := vm.LoadImage(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(img.Entry).To(Equal(compiler.EntryName))
		Expect(img.Program.Code).To(Equal(prog.Code))
		Expect(img.Program.Symbols).To(Equal(prog.Symbols))

		m, err := vm.New()
		Expect(err).NotTo(HaveOccurred())
		pc, err := img.Program.EntryPoint(img.Entry)
		Expect(err).NotTo(HaveOccurred())
		m.Load(img.Program, pc)
		Expect(m.Run()).To(Succeed())
		Expect(m.Result()).To(Equal(vm.Word(42)))
	})

	It("rejects a corrupted image", func() {
		prog, err := compiler.Compile("func main() { return 1; }")
		Expect(err).NotTo(HaveOccurred())

		var buf bytes.Buffer
		Expect(vm.WriteImage(&buf, vm.NewImage(prog, compiler.EntryName))).To(Succeed())
		data := buf.Bytes()
		data = data[:len(data)-3]

		_, err = vm.ReadImage(bytes.NewReader(data))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("REPL lines", func() {
	It("wraps a bare expression and runs it from slot 0", func() {
		prog, pc, err := compiler.CompileLine("9 * 9")
		Expect(err).NotTo(HaveOccurred())
		Expect(pc).To(Equal(0))

		m, err := vm.New()
		Expect(err).NotTo(HaveOccurred())
		m.Load(prog, pc)
		Expect(m.Run()).To(Succeed())
		Expect(m.Result()).To(Equal(vm.Word(81)))
	})
})
