package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/xaionaro-go/camif/format"
	"github.com/xaionaro-go/camif/hw"
	"github.com/xaionaro-go/camif/types"
)

func printFormats(w io.Writer, size types.Resolution) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tNAME\tFOURCC\tBUS CODE\tCOLOR\tPLANES\tFLAGS\tSIZE AT %s\n", size)
	for idx, desc := range format.All() {
		frameSize := "-"
		if desc.FourCC != 0 {
			var pix format.MPlaneFormat
			format.Adjust(&desc, size.Width, size.Height, &pix)
			var total uint64
			for i := 0; i < int(pix.NumPlanes); i++ {
				total += uint64(pix.Planes[i].SizeImage)
			}
			frameSize = humanize.Bytes(total)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			idx, desc.Name, desc.FourCC, desc.BusCode, desc.Color,
			desc.MemPlanes, desc.ColPlanes, desc.Flags, frameSize,
		)
	}
	return tw.Flush()
}

func printSoCs(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "SOC\tUNITS\tBUS CLOCK\n")
	for _, name := range hw.KnownSoCs() {
		data, err := hw.LookupDriverData(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", name, data.NumUnits, humanize.SI(float64(data.BusClockRate), "Hz"))
	}
	return tw.Flush()
}
