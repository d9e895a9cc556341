package main

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/semaphore"

	"hotel_booking/internal/app"
	"hotel_booking/internal/shared"
	"hotel_booking/internal/storage"
)

func newReconcileCmd(cfg *shared.Config) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "reconcile [hotel-id...]",
		Short: "Recompute rating counters from reviews (all hotels when no id is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if workers <= 0 {
				workers = cfg.ReconcileWorkers
			}

			store, err := storage.Open(ctx, *cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			ids := make([]int64, 0, len(args))
			for _, a := range args {
				id, err := strconv.ParseInt(a, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid hotel id %q", a)
				}
				ids = append(ids, id)
			}
			if len(ids) == 0 {
				if ids, err = store.ListHotelIDs(ctx); err != nil {
					return fmt.Errorf("list hotels: %w", err)
				}
			}

			res := reconcile(ctx, app.NewRatingAggregator(store), ids, workers)
			fmt.Fprintf(cmd.OutOrStdout(), "reconciled %d hotels: %d changed, %d failed\n", res.total, res.changed, res.failed)
			if res.failed > 0 {
				return fmt.Errorf("%d hotels failed to reconcile", res.failed)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent recomputes (default RECONCILE_WORKERS)")
	return cmd
}

type reconcileResult struct {
	total, changed, failed int64
}

// reconcile recomputes each hotel with at most workers in flight.
func reconcile(ctx context.Context, agg *app.RatingAggregator, ids []int64, workers int) reconcileResult {
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var changed, failed atomic.Int64

	for _, id := range ids {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			failed.Add(1)
			break
		}
		wg.Add(1)
		go func(hotelID int64) {
			defer wg.Done()
			defer sem.Release(1)

			a, ch, err := agg.Recompute(ctx, hotelID)
			if err != nil {
				failed.Add(1)
				log.Warn().Int64("id", hotelID).Err(err).Msg("reconcile failed")
				return
			}
			if ch {
				changed.Add(1)
			}
			log.Debug().Int64("id", hotelID).Int64("total", a.Total).Int64("count", a.Count).Bool("changed", ch).Msg("reconcile ok")
		}(id)
	}
	wg.Wait()
	return reconcileResult{total: int64(len(ids)), changed: changed.Load(), failed: failed.Load()}
}
