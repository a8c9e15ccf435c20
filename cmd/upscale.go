package cmd

import (
	"io"
	"log"
	"time"

	"github.com/jaffee/commandeer"
	"github.com/qsimtools/upscale/file"
	"github.com/spf13/cobra"
)

// UpscaleMain is wrapped by NewUpscaleCommand and only exported for testing
// purposes.
var UpscaleMain *file.Main

// NewUpscaleCommand returns a new cobra command wrapping UpscaleMain.
func NewUpscaleCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var err error
	UpscaleMain = file.NewMain()
	upscaleCommand := &cobra.Command{
		Use:   "upscale",
		Short: "upscale a population from files or s3 and write nested samples of it",
		Long: `Reads a population from a file, all files in a directory or an s3
bucket, clones every person factor times in expectation and writes
one population file per sample size. Persons using transit are dropped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			err = UpscaleMain.Run()
			if err != nil {
				return err
			}
			log.Println("Done: ", time.Since(start))
			return nil
		},
	}
	flags := upscaleCommand.Flags()
	err = commandeer.Flags(flags, UpscaleMain)
	if err != nil {
		panic(err)
	}
	return upscaleCommand
}

func init() {
	subcommandFns["upscale"] = NewUpscaleCommand
}
