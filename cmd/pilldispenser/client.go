package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/calvinmclean/pilldispenser/client"
)

var clientAddr string

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Control a running dispenser",
}

func init() {
	clientCmd.PersistentFlags().StringVar(&clientAddr, "addr", "http://localhost", "address of the dispenser")

	for _, c := range []struct {
		use   string
		short string
		run   func(client.Client, context.Context, string, int) (client.Response, error)
	}{
		{"add", "Fill a dose", client.Client.Add},
		{"remove", "Remove a dose without dispensing", client.Client.Remove},
		{"dispense", "Dispense a dose", client.Client.Dispense},
	} {
		clientCmd.AddCommand(&cobra.Command{
			Use:   c.use + " DAY DOSE",
			Short: c.short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				dose, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid dose %q: %w", args[1], err)
				}

				resp, err := c.run(*client.NewClient(clientAddr), cmd.Context(), args[0], dose)
				if err != nil {
					return err
				}

				fmt.Println(resp.Message)
				if resp.Warning != "" {
					fmt.Println("warning:", resp.Warning)
				}
				return nil
			},
		})
	}

	clientCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List filled doses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doses, err := client.NewClient(clientAddr).Filled(cmd.Context())
			if err != nil {
				return err
			}
			for _, d := range doses {
				fmt.Printf("%s dose %d\n", d.Day, d.Dose)
			}
			return nil
		},
	})
}
