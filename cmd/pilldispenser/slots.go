package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/calvinmclean/pilldispenser"
)

func runSlots(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	printLayout(cfg.Layout)
	return nil
}

func printLayout(layout pilldispenser.Layout) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SLOT\tDAY\tDOSE\tANGLE")
	for i := range layout.NumSlots() {
		slot := pilldispenser.Slot(i)
		day, dose, _ := layout.Describe(slot)
		angle, _ := layout.Angle(slot)
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\n", i, day, dose, angle)
	}
	w.Flush()
}
