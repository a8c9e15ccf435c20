package cmd

import (
	"io"

	"github.com/jaffee/commandeer"
	"github.com/qsimtools/upscale/kafka"
	"github.com/spf13/cobra"
)

// KafkaMain is wrapped by NewKafkaCommand and only exported for testing
// purposes.
var KafkaMain *kafka.Main

// NewKafkaCommand returns a new cobra command wrapping KafkaMain.
func NewKafkaCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var err error
	KafkaMain = kafka.NewMain()
	kafkaCommand := &cobra.Command{
		Use:   "kafka",
		Short: "upscale a population consumed from kafka, producing each sample to its own topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			return KafkaMain.Run()
		},
	}
	flags := kafkaCommand.Flags()
	err = commandeer.Flags(flags, KafkaMain)
	if err != nil {
		panic(err)
	}
	return kafkaCommand
}

// PublishMain is wrapped by NewPublishCommand and only exported for testing
// purposes.
var PublishMain *kafka.PublishMain

// NewPublishCommand returns a new cobra command wrapping PublishMain.
func NewPublishCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var err error
	PublishMain = kafka.NewPublishMain()
	publishCommand := &cobra.Command{
		Use:   "publish",
		Short: "produce a population read from files to a kafka topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			return PublishMain.Run()
		},
	}
	flags := publishCommand.Flags()
	err = commandeer.Flags(flags, PublishMain)
	if err != nil {
		panic(err)
	}
	return publishCommand
}

func init() {
	subcommandFns["kafka"] = NewKafkaCommand
	subcommandFns["publish"] = NewPublishCommand
}
