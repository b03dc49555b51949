package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"go.eggybyte.com/settingsx"
	"go.eggybyte.com/settingsx/optionsx"
	"go.eggybyte.com/settingsx/runtimex"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the settings and exit",
	Long: `Registers the settings, runs startup validation and prints every module
and slot.

Example:
  settings-demo check --sample.samplekey=one --sample.samplenumber=2`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}

	err = runtimex.CheckStartup(ctx, a.logger, runtimex.SettingsCheck(a.collection))
	printFailures(cmd, err)

	out := cmd.OutOrStdout()
	printModules(out, settingsx.Default.Modules())
	for _, slot := range a.collection.Slots() {
		fmt.Fprintf(out, "%-40s section=%-10s rules=%d eager=%t\n",
			slot.Type, slot.Section, slot.Rules, slot.Eager)
	}
	return err
}

// printModules lists the types each module registers.
func printModules(out io.Writer, modules []*settingsx.Module) {
	for _, m := range modules {
		names := make([]string, 0)
		for _, t := range m.Types() {
			names = append(names, t.String())
		}
		fmt.Fprintf(out, "module %s: %s\n", m.Name(), strings.Join(names, ", "))
	}
}

// printFailures lists every failed rule of every invalid slot in err.
func printFailures(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	out := cmd.ErrOrStderr()

	var joined interface{ Unwrap() []error }
	errs := []error{err}
	if errors.As(err, &joined) {
		errs = joined.Unwrap()
	}
	for _, e := range errs {
		var failure *optionsx.ValidationFailure
		if !errors.As(e, &failure) {
			fmt.Fprintln(out, e)
			continue
		}
		fmt.Fprintf(out, "%s (section %s):\n", failure.Type, failure.Section)
		for _, msg := range failure.Failures {
			fmt.Fprintf(out, "  - %s\n", msg)
		}
	}
}
