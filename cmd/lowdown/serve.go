package main

import (
	"net"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nieomylnieja/lowdown/internal/build"
	"github.com/nieomylnieja/lowdown/internal/config"
)

type serveFlags struct {
	*rootFlags
	addr string
	dir  string
}

func newServeCommand(root *rootFlags) *cobra.Command {
	flags := &serveFlags{rootFlags: root}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve documentation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			listener, err := net.Listen("tcp", flags.addr)
			if err != nil {
				return errors.Wrapf(err, "failed to listen on %s", flags.addr)
			}
			return build.Serve(cmd.Context(), listener, flags.dir, flags.logger(cmd))
		},
	}
	cmd.Flags().StringVar(&flags.addr, "addr", build.DefaultServeAddr, "Address to listen on")
	cmd.Flags().StringVar(&flags.dir, "dir", config.DefaultDest, "Folder with the built documentation")
	return cmd
}
