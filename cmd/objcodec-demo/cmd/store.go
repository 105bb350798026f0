package cmd

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/oy3o/objcodec"
	"github.com/oy3o/objcodec/internal/demo"
	"github.com/oy3o/objcodec/objstore"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Keep sample objects in a pebble store",
}

var storePutCmd = &cobra.Command{
	Use:   "put",
	Short: "Store one object of every sample type",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *objstore.Store) error {
			ids, err := demo.StoreCatalog(st)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		})
	},
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every stored object as JSON lines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *objstore.Store) error {
			_, err := demo.ListStore(st, cmd.OutOrStdout())
			return err
		})
	},
}

var storeDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ksuid.Parse(args[0])
		if err != nil {
			return errors.Wrapf(err, "parse id %q", args[0])
		}
		return withStore(func(st *objstore.Store) error {
			return st.Delete(id)
		})
	},
}

func withStore(fn func(st *objstore.Store) error) (err error) {
	if err := os.MkdirAll(cfg.Store.Dir, 0o755); err != nil {
		return errors.Wrapf(err, "create store dir %s", cfg.Store.Dir)
	}
	reg, err := demo.StandardRegistry(log)
	if err != nil {
		return err
	}
	st, err := objstore.Open(cfg.Store.Dir, objcodec.New(reg, objcodec.WithLogger(log)),
		objstore.WithLogger(log), objstore.WithSync(cfg.Store.Sync))
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, st.Close())
	}()
	return fn(st)
}

func init() {
	storeCmd.AddCommand(storePutCmd, storeListCmd, storeDeleteCmd)
	rootCmd.AddCommand(storeCmd)
}
