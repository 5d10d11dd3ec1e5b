package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/chazu/bspcsg/pkg/export"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var outputPath string

var evalCmd = &cobra.Command{
	Use:   "eval <script>",
	Short: "Evaluate a script and export its parts",
	Long: `Evaluate a CSG script. With --output the parts are written to an STL or
GLB file chosen by extension; without it a one-line summary per part is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	evalCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (.stl or .glb)")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	a, err := NewApp(cfg, log)
	if err != nil {
		return err
	}
	res, err := evaluateFile(cmd.Context(), a, args[0], cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if outputPath == "" {
		for _, m := range res.Meshes {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d triangles\t%s\n", m.PartName, m.TriangleCount(), m.Color)
		}
		return nil
	}
	if err := export.Save(outputPath, res.Meshes); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"file": outputPath, "parts": len(res.Meshes)}).Info("exported")
	return nil
}

// evaluateFile runs the script at path through a and prints its
// diagnostics to w. It fails if the script produced any errors.
func evaluateFile(ctx context.Context, a *App, path string, w io.Writer) (Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	res := a.Evaluate(ctx, string(src))
	for _, d := range res.Warnings {
		fmt.Fprintf(w, "%s: warning: %s\n", path, d.Message)
	}
	for _, d := range res.Errors {
		if d.Line > 0 {
			fmt.Fprintf(w, "%s:%d:%d: %s\n", path, d.Line, d.Col, d.Message)
		} else {
			fmt.Fprintf(w, "%s: %s\n", path, d.Message)
		}
	}
	if !res.OK() {
		return res, fmt.Errorf("%s: %d error(s)", path, len(res.Errors))
	}
	return res, nil
}
