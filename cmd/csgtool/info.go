package main

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/chazu/bspcsg/pkg/kernel"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <script>",
	Short: "Display measurements of every part in a script",
	Long:  "Show triangle count, bounding box, volume and surface area for each part a script produces.",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	a, err := NewApp(cfg, log)
	if err != nil {
		return err
	}
	res, err := evaluateFile(cmd.Context(), a, args[0], cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Script: %s\n", args[0])
	fmt.Fprintf(out, "Kernel: %s\n", cfg.Kernel)
	fmt.Fprintf(out, "Parts:  %d\n", len(res.Meshes))
	for _, m := range res.Meshes {
		fmt.Fprintln(out)
		printPart(out, m)
	}
	return nil
}

func printPart(w io.Writer, m *kernel.Mesh) {
	fmt.Fprintf(w, "%s (%s)\n", m.PartName, m.Color)
	fmt.Fprintf(w, "  Triangles: %d\n", m.TriangleCount())
	min, max, ok := m.Bounds()
	if !ok {
		fmt.Fprintln(w, "  Empty")
		return
	}
	fmt.Fprintf(w, "  Min: %s\n", formatVector(min))
	fmt.Fprintf(w, "  Max: %s\n", formatVector(max))
	fmt.Fprintf(w, "  Size: %s\n", formatVector([3]float64{max[0] - min[0], max[1] - min[1], max[2] - min[2]}))
	fmt.Fprintf(w, "  Volume: %.6f cubic units\n", m.Volume())
	fmt.Fprintf(w, "  Surface Area: %.6f square units\n", m.SurfaceArea())
	if len(m.Palette) > 0 {
		counts := make(map[string]int)
		for _, name := range m.Materials {
			counts[name]++
		}
		for _, name := range slices.Sorted(maps.Keys(m.Palette)) {
			fmt.Fprintf(w, "  Material %s (%s): %d triangles\n", name, m.Palette[name], counts[name])
		}
	}
}

func formatVector(v [3]float64) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v[0], v[1], v[2])
}
