package cmd

import (
	"github.com/spf13/cobra"
)

var pricesOutput string

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "List the prices offered on the payment screen",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(pricesOutput)
		if err != nil {
			return err
		}

		ctx, stop := signalContext()
		defer stop()

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		prices, err := a.payments.Prices(ctx)
		if err != nil {
			if format == "text" {
				a.render.Error(err)
			}
			return err
		}
		if format == "text" {
			a.render.Payment(prices)
			return nil
		}
		return writeStructured(cmd.OutOrStdout(), format, prices)
	},
}

func init() {
	pricesCmd.Flags().StringVarP(&pricesOutput, "output", "o", "text", "output format: text, json or yaml")
	rootCmd.AddCommand(pricesCmd)
}
