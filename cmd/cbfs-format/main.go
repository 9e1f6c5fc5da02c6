// cbfs-format writes the boot record and free-space bitmap of a cbfs image.
//
//	cbfs-format [--create] [--sectors N] <image>
//	cbfs-format info <image>
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mit-pdos/go-cbfs/common"
	"github.com/mit-pdos/go-cbfs/image"
	"github.com/mit-pdos/go-cbfs/mkfs"
	"github.com/mit-pdos/go-cbfs/super"
	"github.com/mit-pdos/go-cbfs/util"
)

func format(fs afero.Fs, out io.Writer, path string, mode image.Mode, nsectors uint32) error {
	geo := super.DefaultGeometry()
	f, err := image.Open(fs, path, mode, int64(nsectors)*int64(geo.SectorSize))
	if err != nil {
		return err
	}
	defer f.Close()

	if err := image.Lock(f); err != nil {
		return fmt.Errorf("image %s: %w", path, err)
	}
	defer image.Unlock(f)

	if _, err := mkfs.Format(f, geo, nsectors); err != nil {
		return err
	}
	if err := image.Sync(f); err != nil {
		return err
	}
	fmt.Fprintf(out, "image %s formatted successfully\n", path)
	return nil
}

func info(fs afero.Fs, out io.Writer, path string) error {
	f, err := image.Open(fs, path, image.FormatExisting, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	br, err := mkfs.ReadBootRecord(f)
	if err != nil {
		return err
	}
	a, err := mkfs.ReadBitmap(f, br)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, br)
	fmt.Fprintf(out, "%d of %d sectors used\n", a.NumUsed(), a.Len())
	return nil
}

func newRootCmd(fs afero.Fs, out io.Writer) *cobra.Command {
	var create bool
	var nsectors uint32
	var verbose int

	root := &cobra.Command{
		Use:   "cbfs-format <image>",
		Short: "Format a cbfs image",
		Args:  cobra.ExactArgs(1),
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			util.Debug = uint64(verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// past argument checking, errors are not usage errors
			cmd.SilenceUsage = true
			mode := image.FormatExisting
			if create {
				mode = image.CreateNew
			}
			return format(fs, out, args[0], mode, nsectors)
		},
	}
	root.Flags().BoolVar(&create, "create", false, "create (or truncate) the image instead of formatting an existing one")
	root.Flags().Uint32Var(&nsectors, "sectors", uint32(common.NSECTORS), "total sectors in the image")
	root.PersistentFlags().CountVarP(&verbose, "verbose", "v", "debug output (repeat for more)")

	infoCmd := &cobra.Command{
		Use:   "info <image>",
		Short: "Print the boot record and bitmap usage of a formatted image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return info(fs, out, args[0])
		},
	}
	root.AddCommand(infoCmd)

	root.SetOut(out)
	return root
}

func main() {
	if err := newRootCmd(afero.NewOsFs(), os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
