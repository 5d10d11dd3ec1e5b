// Command csgtool evaluates CSG scripts and exports the resulting parts.
package main

import (
	"fmt"
	"os"

	"github.com/chazu/bspcsg/pkg/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	kernelName string
	logLevel   string

	cfg *config.Config
	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "csgtool",
	Short: "Evaluate constructive solid geometry scripts",
	Long: `csgtool runs CSG scripts written in a small Lisp, combines their
primitives with exact BSP booleans and exports the parts as STL or GLB.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "TOML config file")
	flags.StringVarP(&kernelName, "kernel", "k", "", "geometry kernel: bsp or sdfx (overrides config)")
	flags.StringVar(&logLevel, "log-level", "", "log level (overrides config)")
}

// setup loads the config file and applies flag overrides.
func setup(cmd *cobra.Command, args []string) error {
	c := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		c = loaded
	}
	if kernelName != "" {
		c.Kernel = kernelName
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if err := c.Validate(); err != nil {
		return err
	}

	cfg = c
	log.SetOutput(os.Stderr)
	log.SetLevel(cfg.Level())
	log.WithFields(logrus.Fields{
		"kernel":  cfg.Kernel,
		"timeout": cfg.Timeout(),
	}).Debug("configured")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
