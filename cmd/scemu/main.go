// Command scemu runs a SimpleCPU16 binary image.
package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"simplecpu16/core"
)

func main() {
	var (
		trace     bool
		memdump   string
		dumpState bool
		loadBase  uint16
	)

	rootCmd := &cobra.Command{
		Use:   "scemu <image.bin>",
		Short: "Emulator for SimpleCPU16 binary images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], trace, memdump, dumpState, core.Word(loadBase))
		},
	}
	rootCmd.Flags().BoolVar(&trace, "trace", false, "print a per-instruction execution trace")
	rootCmd.Flags().StringVar(&memdump, "memdump", "", "write non-zero memory words to this file after execution")
	rootCmd.Flags().BoolVar(&dumpState, "dump-state", false, "dump full machine state (spew) after execution")
	rootCmd.Flags().Uint16Var(&loadBase, "load-base", 0, "address to load the image at")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(path string, trace bool, memdump string, dumpState bool, loadBase core.Word) error {
	image, err := readImage(path)
	if err != nil {
		return fmt.Errorf("cannot open input file %s: %w", path, err)
	}

	opts := []core.Option{
		core.WithHostIO(core.NewStdIO(os.Stdout, os.Stdin)),
		core.WithLoadBase(loadBase),
	}
	if trace {
		opts = append(opts, core.WithTrace(os.Stderr))
	}
	m := core.NewMachine(opts...)

	fmt.Printf("Program loaded: %d words at address 0x%04X\n", len(image), loadBase)
	fmt.Println("=== Starting CPU Execution ===")
	report, err := m.Run(image)
	fmt.Println("=== CPU Halted ===")
	fmt.Printf("Total cycles: %d\n", report.Cycles)
	if report.LimitReached {
		fmt.Fprintln(os.Stderr, "!!! Execution limit reached (possible infinite loop) !!!")
	}
	if err != nil {
		return err
	}

	dumpRegisters(report)

	if memdump != "" {
		if err := dumpMemory(m, memdump); err != nil {
			return fmt.Errorf("cannot write memdump file %s: %w", memdump, err)
		}
	}
	if dumpState {
		spew.Dump(report)
	}
	return nil
}

func dumpRegisters(r core.Report) {
	for i, v := range r.Registers {
		fmt.Printf("R%d: 0x%04X (%d)\n", i, v, int16(v))
	}
	fmt.Printf("Flags: Z=%v N=%v C=%v V=%v\n", r.Flags.Z, r.Flags.N, r.Flags.C, r.Flags.V)
}

func dumpMemory(m *core.Machine, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()
	mem := m.Memory()
	for addr := 0; addr < 0xF800; addr++ {
		v := mem.Read(core.Word(addr))
		if v == 0 {
			continue
		}
		fmt.Fprintf(w, "0x%04X: 0x%04X (%d)\n", addr, v, int16(v))
	}
	return nil
}

func readImage(path string) (core.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var image core.Image
	r := bufio.NewReader(f)
	for {
		var w uint16
		if err := binary.Read(r, binary.LittleEndian, &w); err != nil {
			break
		}
		image = append(image, w)
	}
	return image, nil
}
