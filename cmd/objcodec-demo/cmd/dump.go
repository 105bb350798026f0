package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oy3o/objcodec"
	"github.com/oy3o/objcodec/internal/demo"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [file]",
	Short: "Print a file of tagged objects as JSON lines",
	Long: `Dump decodes a file written with the standard registry, such as the
catalog produced by "run", and prints one JSON object per value.

Example:
  objcodec-demo dump objcodec-test.bin`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Files.Test
		if len(args) == 1 {
			path = args[0]
		}
		reg, err := demo.StandardRegistry(log)
		if err != nil {
			return err
		}
		n, err := demo.Dump(objcodec.New(reg, objcodec.WithLogger(log)), path, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		log.Debug("dumped file", zap.String("file", path), zap.Int("objects", n))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}
