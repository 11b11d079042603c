package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/globaledge/globaledge/pkg/quote"
	"github.com/globaledge/globaledge/services/shipment-service/client"
	"github.com/globaledge/globaledge/services/shipment-service/internal/crypto"
)

var errNoQuote = errors.New("no quote: check the route, weight and dimensions")

type quoteFlags struct {
	from, to      string
	weight        float64
	length        float64
	width         float64
	height        float64
	level         string
	mode          string
	pallets       int
	perPallet     float64
	asJSON        bool
	remote        string
	remoteTimeout time.Duration
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "quotectl",
		Short:        "GlobalEdge pricing and admin helper",
		SilenceUsage: true,
	}
	root.AddCommand(newQuoteCmd(), newHashTokenCmd())
	return root
}

func newQuoteCmd() *cobra.Command {
	f := &quoteFlags{}
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a parcel or freight shipment",
		Long: `Price a shipment with the same engine the booking site uses.

Available subcommands:
  parcel  - courier parcel priced on the greater of actual and volumetric weight
  freight - palletised freight by air, sea or road`,
	}
	cmd.PersistentFlags().StringVar(&f.from, "from", "", `origin as "City, Country"`)
	cmd.PersistentFlags().StringVar(&f.to, "to", "", `destination as "City, Country"`)
	cmd.PersistentFlags().Float64Var(&f.length, "length", 0, "length in cm")
	cmd.PersistentFlags().Float64Var(&f.width, "width", 0, "width in cm")
	cmd.PersistentFlags().Float64Var(&f.height, "height", 0, "height in cm")
	cmd.PersistentFlags().BoolVar(&f.asJSON, "json", false, "print the full quote as JSON")
	cmd.PersistentFlags().StringVar(&f.remote, "remote", "", "shipment service gRPC address; prices locally when empty")
	cmd.PersistentFlags().DurationVar(&f.remoteTimeout, "timeout", 5*time.Second, "remote call timeout")

	parcel := &cobra.Command{
		Use:   "parcel",
		Short: "Price a courier parcel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuote(cmd.Context(), cmd.OutOrStdout(), f, quote.Input{
				ServiceType: string(quote.ServiceParcel),
				WeightKg:    quote.Number(f.weight),
				Level:       f.level,
			})
		},
	}
	parcel.Flags().Float64Var(&f.weight, "weight", 0, "actual weight in kg")
	parcel.Flags().StringVar(&f.level, "level", "standard", "standard, express or priority")

	freight := &cobra.Command{
		Use:   "freight",
		Short: "Price palletised freight",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuote(cmd.Context(), cmd.OutOrStdout(), f, quote.Input{
				ServiceType:       string(quote.ServiceFreight),
				Mode:              f.mode,
				Pallets:           quote.Number(f.pallets),
				WeightKgPerPallet: quote.Number(f.perPallet),
			})
		},
	}
	freight.Flags().StringVar(&f.mode, "mode", "air", "air, sea or road")
	freight.Flags().IntVar(&f.pallets, "pallets", 1, "number of identical pallets")
	freight.Flags().Float64Var(&f.perPallet, "weight-per-pallet", 0, "weight of one pallet in kg")

	cmd.AddCommand(parcel, freight)
	return cmd
}

func runQuote(ctx context.Context, out io.Writer, f *quoteFlags, in quote.Input) error {
	in.From = f.from
	in.To = f.to
	in.LengthCm = quote.Number(f.length)
	in.WidthCm = quote.Number(f.width)
	in.HeightCm = quote.Number(f.height)

	q, ok, err := compute(ctx, f, in)
	if err != nil {
		return err
	}
	if !ok {
		return errNoQuote
	}
	if f.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(q)
	}
	printQuote(out, q)
	return nil
}

func compute(ctx context.Context, f *quoteFlags, in quote.Input) (quote.Quote, bool, error) {
	if f.remote == "" {
		q, ok := in.Compute()
		return q, ok, nil
	}
	ctx, cancel := context.WithTimeout(ctx, f.remoteTimeout)
	defer cancel()

	c, err := client.NewQuoteClient(f.remote)
	if err != nil {
		return quote.Quote{}, false, err
	}
	defer c.Close()
	return c.ComputeQuote(ctx, in)
}

func printQuote(out io.Writer, q quote.Quote) {
	scope := "international"
	if q.SameCountry {
		scope = "domestic"
	}
	fmt.Fprintf(out, "%s %s\n", q.ServiceType, scope)
	fmt.Fprintf(out, "  billable weight  %8.2f kg (actual %.2f, volumetric %.2f)\n",
		q.BillableWeightKg, q.ActualWeightKg, q.VolumetricWeightKg)
	fmt.Fprintf(out, "  subtotal         %8.2f %s\n", q.Subtotal, q.Currency)
	fmt.Fprintf(out, "  fuel surcharge   %8.2f %s\n", q.FuelSurcharge, q.Currency)
	fmt.Fprintf(out, "  security fee     %8.2f %s\n", q.SecurityFee, q.Currency)
	fmt.Fprintf(out, "  total            %8.2f %s\n", q.TotalPrice, q.Currency)
	fmt.Fprintf(out, "  estimated time   %s\n", q.ETAText)
}

func newHashTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-token [token]",
		Short: "Print an argon2id hash for ADMIN_TOKEN_HASH",
		Long: `Hash an admin bearer token. The token is read from the argument or,
when omitted, from the first line of standard input.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := ""
			if len(args) == 1 {
				token = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				token = line
			}
			token = strings.TrimSpace(token)
			if token == "" {
				return errors.New("token must not be empty")
			}
			hash, err := crypto.NewArgon2Hasher(nil).HashToken(cmd.Context(), token)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
