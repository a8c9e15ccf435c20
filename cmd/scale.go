package cmd

import (
	"io"

	"github.com/jaffee/commandeer"
	"github.com/qsimtools/upscale/file"
	"github.com/spf13/cobra"
)

// ScaleMain is wrapped by NewScaleCommand and only exported for testing
// purposes.
var ScaleMain *file.ScaleMain

// NewScaleCommand returns a new cobra command wrapping ScaleMain.
func NewScaleCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var err error
	ScaleMain = file.NewScaleMain()
	scaleCommand := &cobra.Command{
		Use:   "scale",
		Short: "rescale a population sample to another sample size",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ScaleMain.Run()
		},
	}
	flags := scaleCommand.Flags()
	err = commandeer.Flags(flags, ScaleMain)
	if err != nil {
		panic(err)
	}
	return scaleCommand
}

func init() {
	subcommandFns["scale"] = NewScaleCommand
}
