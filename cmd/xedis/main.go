// Command xedis disassembles, assembles and inspects Xenos shader
// microcode.
package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"

	"github.com/gogpu/xenos"
	"github.com/gogpu/xenos/shader"
	"github.com/gogpu/xenos/translator"
	"github.com/gogpu/xenos/ucode"
)

func main() {
	root := &cobra.Command{
		Use:           "xedis",
		Short:         "Xenos shader microcode tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(disCmd(), asmCmd(), infoCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "xedis:", err)
		os.Exit(1)
	}
}

func shaderTypeFlag(cmd *cobra.Command) *string {
	return cmd.Flags().StringP("type", "t", "vs", "shader type: vs or ps")
}

func parseShaderType(s string) (ucode.ShaderType, error) {
	switch s {
	case "vs":
		return ucode.ShaderVertex, nil
	case "ps":
		return ucode.ShaderPixel, nil
	}
	return ucode.ShaderVertex, fmt.Errorf("unknown shader type %q, want vs or ps", s)
}

func readMicrocode(path string) ([]uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%s: size %d is not a whole number of dwords", path, len(data))
	}
	dwords := make([]uint32, len(data)/4)
	for i := range dwords {
		dwords[i] = binary.LittleEndian.Uint32(data[4*i:])
	}
	return dwords, nil
}

func disCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dis <microcode.bin>",
		Short: "Disassemble a microcode stream",
		Args:  cobra.ExactArgs(1),
	}
	typeName := shaderTypeFlag(cmd)
	raw := cmd.Flags().Bool("raw", false, "dump the parsed instructions instead of assembly text")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		shaderType, err := parseShaderType(*typeName)
		if err != nil {
			return err
		}
		dwords, err := readMicrocode(args[0])
		if err != nil {
			return err
		}
		program, err := xenos.Decode(shaderType, dwords)
		if err != nil {
			return err
		}
		if *raw {
			spew.Fdump(cmd.OutOrStdout(), program)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), xenos.Disassemble(program))
		return nil
	}
	return cmd
}

func asmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "asm <listing.txt>",
		Short: "Assemble a listing back into microcode",
		Args:  cobra.ExactArgs(1),
	}
	out := cmd.Flags().StringP("output", "o", "", "output file (defaults to the input with a .bin extension)")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		source, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		dwords, err := xenos.Assemble(string(source))
		if err != nil {
			return err
		}
		path := *out
		if path == "" {
			path = strings.TrimSuffix(args[0], ".txt") + ".bin"
		}
		data := make([]byte, 4*len(dwords))
		for i, d := range dwords {
			binary.LittleEndian.PutUint32(data[4*i:], d)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d dwords to %s\n", len(dwords), path)
		return nil
	}
	return cmd
}

func infoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <microcode.bin>",
		Short: "Analyze a microcode stream and report its metadata",
		Args:  cobra.ExactArgs(1),
	}
	typeName := shaderTypeFlag(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		shaderType, err := parseShaderType(*typeName)
		if err != nil {
			return err
		}
		dwords, err := readMicrocode(args[0])
		if err != nil {
			return err
		}
		sh := xenos.NewShader(shaderType, dwords)
		if err := translator.Translate(sh, translator.Options{}); err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), report(sh))
		return nil
	}
	return cmd
}

func report(sh *shader.Shader) string {
	tree := treeprint.New()
	tree.SetValue(fmt.Sprintf("%s shader %016x (%d dwords)", sh.Type(), sh.UcodeDataHash(), len(sh.UcodeData())))

	if bindings := sh.VertexBindings(); len(bindings) > 0 {
		b := tree.AddBranch("vertex bindings")
		for _, vb := range bindings {
			vbNode := b.AddBranch(fmt.Sprintf("binding %d: vf%d stride(%d)", vb.BindingIndex, vb.FetchConstant, vb.StrideWords))
			for _, attr := range vb.Attributes {
				vbNode.AddNode(fmt.Sprintf("attrib %d: fmt(%s) offset(%d) size(%d words)",
					attr.AttribIndex, attr.FetchInstr.Attributes.DataFormat, attr.FetchInstr.Attributes.Offset, attr.SizeWords))
			}
		}
	}
	if bindings := sh.TextureBindings(); len(bindings) > 0 {
		b := tree.AddBranch("texture bindings")
		for _, tb := range bindings {
			b.AddNode(fmt.Sprintf("binding %d: tf%d %s%s", tb.BindingIndex, tb.FetchConstant,
				tb.FetchInstr.Opcode, tb.FetchInstr.Dimension))
		}
	}

	m := sh.ConstantRegisterMap()
	constants := tree.AddBranch("constants")
	switch {
	case m.FloatDynamicAddressing:
		constants.AddNode("float: dynamically addressed, all 256 live")
	case m.FloatCount == 0:
		constants.AddNode("float: none")
	default:
		constants.AddNode(fmt.Sprintf("float (%d):%s", m.FloatCount, bitmapList(" c", m.FloatBitmap.NextSet, 16)))
	}
	constants.AddNode("bool:" + bitmapList(" b", m.BoolBitmap.NextSet, 16))
	constants.AddNode("loop:" + bitmapList(" i", m.LoopBitmap.NextSet, 16))

	flags := tree.AddBranch("flags")
	if sh.Type() == ucode.ShaderPixel {
		targets := make([]string, 0, 4)
		for i := 0; i < 4; i++ {
			if sh.WritesColorTarget(i) {
				targets = append(targets, fmt.Sprintf("oC%d", i))
			}
		}
		flags.AddNode("color writes: " + strings.Join(targets, " "))
		flags.AddNode(fmt.Sprintf("depth write: %v", sh.WritesDepth()))
		flags.AddNode(fmt.Sprintf("implicit early-z: %v", sh.ImplicitEarlyZAllowed()))
	}
	if streams := sh.MemExportStreamConstants(); len(streams) > 0 {
		names := make([]string, len(streams))
		for i, c := range streams {
			names[i] = fmt.Sprintf("c%d", c)
		}
		flags.AddNode("memexport streams: " + strings.Join(names, " "))
	}

	if errs := sh.Errors(); len(errs) > 0 {
		b := tree.AddBranch("errors")
		for _, e := range errs {
			kind := "warning"
			if e.Fatal {
				kind = "fatal"
			}
			b.AddNode(kind + ": " + e.Message)
		}
	}
	return tree.String()
}

// bitmapList renders up to limit set bits as " <prefix>N" entries.
func bitmapList(prefix string, nextSet func(uint) (uint, bool), limit int) string {
	var sb strings.Builder
	n := 0
	for i, ok := nextSet(0); ok; i, ok = nextSet(i + 1) {
		if n == limit {
			sb.WriteString(" ...")
			break
		}
		fmt.Fprintf(&sb, "%s%d", prefix, i)
		n++
	}
	if n == 0 {
		return " none"
	}
	return sb.String()
}
