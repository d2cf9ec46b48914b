// Command scasm assembles SimpleCPU16 source into a flat binary image.
package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"simplecpu16/core"
)

func main() {
	var output string

	rootCmd := &cobra.Command{
		Use:   "scasm <input.asm>",
		Short: "Two-pass assembler for SimpleCPU16",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], output)
		},
	}
	rootCmd.Flags().StringVarP(&output, "output", "o", "", "output binary path (default: input path with .bin extension)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(inputPath, outputPath string) error {
	lines, err := readLines(inputPath)
	if err != nil {
		return fmt.Errorf("cannot open input file %s: %w", inputPath, err)
	}

	if outputPath == "" {
		outputPath = deriveOutputPath(inputPath)
	}

	fmt.Println("Pass 1: Collecting labels...")
	image, diags := core.AssembleText(lines)
	for _, d := range diags.Items() {
		fmt.Fprintf(os.Stderr, "line %d: %s\n", d.Line, d.Msg)
	}
	fmt.Println("Pass 2: Generating code...")

	if err := writeImage(outputPath, image); err != nil {
		return fmt.Errorf("cannot write output file %s: %w", outputPath, err)
	}
	fmt.Printf("Assembly complete: %d words written to %s\n", len(image), outputPath)

	if !diags.Empty() {
		os.Exit(1)
	}
	return nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

func writeImage(path string, image core.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, word := range image {
		if err := binary.Write(w, binary.LittleEndian, word); err != nil {
			return err
		}
	}
	return w.Flush()
}

func deriveOutputPath(inputPath string) string {
	for i := len(inputPath) - 1; i >= 0 && inputPath[i] != '/'; i-- {
		if inputPath[i] == '.' {
			return inputPath[:i] + ".bin"
		}
	}
	return inputPath + ".bin"
}
