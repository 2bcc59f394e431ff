package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/gsplat/spz"
)

var infoOpts options

var infoCmd = &cobra.Command{
	Use:   "info <path>",
	Short: "print summary statistics about a splat cloud",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoOpts.histogram, "histogram", false, "also print scale/opacity ASCII histograms and a content fingerprint")
}

func runInfo(cmd *cobra.Command, args []string) error {
	cloud, err := loadCloud(args[0], spz.Unspecified)
	if err != nil {
		return reportAndExit(err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"field", "value"})
	table.Append([]string{"num_points", strconv.FormatUint(uint64(cloud.NumPoints), 10)})
	table.Append([]string{"sh_degree", strconv.FormatUint(uint64(cloud.ShDegree), 10)})
	table.Append([]string{"antialiased", strconv.FormatBool(cloud.Antialiased)})
	table.Append([]string{"median_volume", strconv.FormatFloat(float64(cloud.MedianVolume()), 'g', 6, 64)})
	if infoOpts.histogram {
		table.Append([]string{"fingerprint", strconv.FormatUint(cloud.Fingerprint(), 16)})
	}
	table.Render()

	if infoOpts.histogram && cloud.NumPoints > 0 {
		printHistogram("scale volume", cloud.ScaleHistogram(40))
		printHistogram("opacity", cloud.OpacityHistogram(40))
	}
	return nil
}

func printHistogram(title string, h spz.Histogram) {
	fmt.Printf("\n%s (min=%.4f max=%.4f mean=%.4f):\n", title, h.Min, h.Max, h.Mean)
	plot := asciigraph.Plot(h.Counts, asciigraph.Height(10), asciigraph.Width(60))
	fmt.Println(plot)
}

// reportAndExit prints the error's Kind (if it is a *spz.Error) and returns
// it so cobra's own error handling path still exits non-zero.
func reportAndExit(err error) error {
	var kindErr *spz.Error
	if e, ok := err.(*spz.Error); ok {
		kindErr = e
		fmt.Fprintf(os.Stderr, "spz: %s: %v\n", kindErr.Kind, err)
	}
	return err
}
