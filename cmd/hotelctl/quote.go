package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/shared"
	"hotel_booking/internal/storage"
)

func newQuoteCmd(cfg *shared.Config) *cobra.Command {
	var (
		from, to     string
		guests       int
		allInclusive bool
		rate         float64
		hotelID      int64
	)
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a stay, either at --rate or at a stored hotel's rate (--hotel)",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := domain.ParseStayDate(from)
			if err != nil {
				return err
			}
			out, err := domain.ParseStayDate(to)
			if err != nil {
				return err
			}
			stay := domain.Stay{CheckIn: in, CheckOut: out, Guests: guests, AllInclusive: allInclusive}

			var q domain.Quote
			switch {
			case hotelID > 0:
				store, err := storage.Open(cmd.Context(), *cfg)
				if err != nil {
					return err
				}
				defer store.Close()
				q, err = app.NewBookingService(store).QuotePrice(cmd.Context(), hotelID, stay)
				if err != nil {
					return err
				}
			case rate > 0:
				if q, err = domain.QuoteStay(stay, rate); err != nil {
					return err
				}
			default:
				return errors.New("either --rate or --hotel is required")
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "nights:     %d\n", q.Nights)
			fmt.Fprintf(w, "base:       %s\n", domain.FormatPrice(q.BasePrice))
			fmt.Fprintf(w, "surcharge:  %d%%\n", q.SurchargePercent)
			fmt.Fprintf(w, "total:      %s\n", domain.FormatPrice(q.TotalPrice))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&from, "from", "", "check-in date (YYYY-MM-DD)")
	f.StringVar(&to, "to", "", "check-out date (YYYY-MM-DD)")
	f.IntVar(&guests, "guests", 1, "number of guests")
	f.BoolVar(&allInclusive, "all-inclusive", false, "add the all-inclusive surcharge")
	f.Float64Var(&rate, "rate", 0, "nightly rate")
	f.Int64Var(&hotelID, "hotel", 0, "price at this hotel's stored rate")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
