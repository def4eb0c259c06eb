package main

import (
	"fmt"
	"os"

	"github.com/npillmayer/schuko/tracing"
	"github.com/spf13/cobra"
)

var traceKeys = []string{
	"ll1.spec",
	"ll1.grammar",
	"ll1.driver",
}

var rootFlags = struct {
	trace *string
}{}

var rootCmd = &cobra.Command{
	Use:   "ll1",
	Short: "Analyze an LL(1) grammar and parse inputs with it",
	Long: `ll1 provides the following features:
- Computes FIRST and FOLLOW sets of a grammar and builds an LL(1) parsing table.
- Reports conflicts when the grammar is not LL(1).
- Parses inputs with the table, recovering from syntax errors in panic mode.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := tracing.TraceLevelFromString(*rootFlags.trace)
		for _, key := range traceKeys {
			tracing.Select(key).SetTraceLevel(level)
		}
	},
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootFlags.trace = rootCmd.PersistentFlags().String("trace", "Error", "trace level [Debug|Info|Error]")
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
