package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/maplepay/payroll/internal/calculation"
	"github.com/maplepay/payroll/internal/config"
	"github.com/maplepay/payroll/internal/output"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// zerologAdapter implements calculation.Logger over a zerolog.Logger.
type zerologAdapter struct {
	log zerolog.Logger
}

func (z zerologAdapter) Debugf(format string, args ...any) { z.log.Debug().Msgf(format, args...) }
func (z zerologAdapter) Infof(format string, args ...any)  { z.log.Info().Msgf(format, args...) }
func (z zerologAdapter) Warnf(format string, args ...any)  { z.log.Warn().Msgf(format, args...) }
func (z zerologAdapter) Errorf(format string, args ...any) { z.log.Error().Msgf(format, args...) }

func newLogger(verbose bool) zerologAdapter {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
	return zerologAdapter{log: log}
}

// newEngine builds an engine over the embedded statutory data, or over a
// tax-year parameter file when one is supplied.
func newEngine(taxConfigFile string, verbose bool) (*calculation.Engine, error) {
	registry := config.DefaultRegistry()
	if taxConfigFile != "" {
		taxYear, err := config.LoadTaxYearFile(taxConfigFile)
		if err != nil {
			return nil, err
		}
		registry, err = config.NewRegistry(taxYear)
		if err != nil {
			return nil, err
		}
	}
	engine := calculation.NewEngine(registry)
	engine.SetLogger(newLogger(verbose))
	return engine, nil
}

var rootCmd = &cobra.Command{
	Use:   "payroll",
	Short: "Canadian statutory payroll deduction calculator",
	Long:  "Computes per-period CPP, CPP2, EI, federal and provincial tax, and lump-sum bonus tax following the published payroll deduction formulas.",
}

var calculateCmd = &cobra.Command{
	Use:   "calculate [request-file]",
	Short: "Calculate deductions for the employee-periods in a request file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taxConfigFile, _ := cmd.Flags().GetString("tax-config")
		verbose, _ := cmd.Flags().GetBool("verbose")
		asJSON, _ := cmd.Flags().GetBool("json")

		engine, err := newEngine(taxConfigFile, verbose)
		if err != nil {
			return err
		}
		req, err := config.LoadRequestFile(args[0])
		if err != nil {
			return err
		}

		items := engine.CalculateBatch(req.Inputs)
		for _, item := range items {
			if item.Err != nil {
				return fmt.Errorf("employee %s: %w", item.Input.EmployeeID, item.Err)
			}
			if asJSON {
				text, err := output.FormatJSON(item.Result)
				if err != nil {
					return err
				}
				fmt.Fprintln(os.Stdout, text)
				continue
			}
			fmt.Fprintln(os.Stdout, output.FormatResult(item.Result))
		}

		for _, bonusIn := range req.Bonuses {
			res, err := engine.CalculateBonus(bonusIn)
			if err != nil {
				return err
			}
			if asJSON {
				text, err := output.FormatJSON(res)
				if err != nil {
					return err
				}
				fmt.Fprintln(os.Stdout, text)
				continue
			}
			fmt.Fprintln(os.Stdout, output.FormatBonusResult(res))
		}
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [request-file]",
	Short: "Report advisory input violations without calculating",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taxConfigFile, _ := cmd.Flags().GetString("tax-config")
		verbose, _ := cmd.Flags().GetBool("verbose")

		engine, err := newEngine(taxConfigFile, verbose)
		if err != nil {
			return err
		}
		req, err := config.LoadRequestFile(args[0])
		if err != nil {
			return err
		}

		clean := true
		for _, in := range req.Inputs {
			for _, violation := range engine.Validate(in) {
				clean = false
				fmt.Fprintf(os.Stdout, "employee %s: %s\n", in.EmployeeID, violation)
			}
		}
		if clean {
			fmt.Fprintln(os.Stdout, "no violations")
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "payroll %s (commit %s, built %s)\n", version, commit, date)
		if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
			fmt.Fprintln(os.Stdout, bi.Main.Version)
		}
	},
}

func main() {
	for _, cmd := range []*cobra.Command{calculateCmd, validateCmd} {
		cmd.Flags().String("tax-config", "", "Tax year parameter file overriding the embedded data")
		cmd.Flags().Bool("verbose", false, "Enable debug logging")
	}
	calculateCmd.Flags().Bool("json", false, "Emit JSON instead of a console summary")

	rootCmd.AddCommand(calculateCmd, validateCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
