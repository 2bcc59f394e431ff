package main

import (
	"github.com/spf13/cobra"

	"github.com/gsplat/spz"
)

var convertOpts options

var convertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "convert between SPZ and PLY, by file suffix",
	Args:  cobra.ExactArgs(2),
	RunE:  runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&convertOpts.frame, "frame", "",
		"coordinate system the loaded cloud is considered to be in, used as both the decode target and the re-encode source (rub, rdf, ruf, ldb, ...); unspecified means no axis conversion on either side")
}

func runConvert(cmd *cobra.Command, args []string) error {
	if err := convertOpts.Validate(); err != nil {
		return reportAndExit(err)
	}
	frame, _ := spz.ParseCoordinateSystem(convertOpts.frame)

	cloud, err := loadCloud(args[0], frame)
	if err != nil {
		return reportAndExit(err)
	}
	if err := saveCloud(args[1], cloud, frame); err != nil {
		return reportAndExit(err)
	}
	return nil
}
