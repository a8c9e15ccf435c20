package cmd

import (
	"io"

	"github.com/jaffee/commandeer"
	"github.com/qsimtools/upscale/leveldb"
	"github.com/qsimtools/upscale/network"
	"github.com/spf13/cobra"
)

// NetworkMain is wrapped by NewNetworkCommand and only exported for testing
// purposes.
var NetworkMain *network.Main

// NewNetworkCommand returns a new cobra command wrapping NetworkMain.
func NewNetworkCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var err error
	NetworkMain = network.NewMain()
	networkCommand := &cobra.Command{
		Use:   "network",
		Short: "remove the links of a mode, pt by default, from a network",
		RunE: func(cmd *cobra.Command, args []string) error {
			return NetworkMain.Run()
		},
	}
	flags := networkCommand.Flags()
	err = commandeer.Flags(flags, NetworkMain)
	if err != nil {
		panic(err)
	}
	return networkCommand
}

// FacilitiesMain is wrapped by NewFacilitiesCommand and only exported for
// testing purposes.
var FacilitiesMain *leveldb.Main

// NewFacilitiesCommand returns a new cobra command wrapping FacilitiesMain.
func NewFacilitiesCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var err error
	FacilitiesMain = leveldb.NewMain()
	facilitiesCommand := &cobra.Command{
		Use:   "facilities",
		Short: "load facilities into a leveldb store for upscale --facility-db",
		RunE: func(cmd *cobra.Command, args []string) error {
			return FacilitiesMain.Run()
		},
	}
	flags := facilitiesCommand.Flags()
	err = commandeer.Flags(flags, FacilitiesMain)
	if err != nil {
		panic(err)
	}
	return facilitiesCommand
}

func init() {
	subcommandFns["network"] = NewNetworkCommand
	subcommandFns["facilities"] = NewFacilitiesCommand
}
