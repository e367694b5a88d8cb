// Command canvass finds sellers for each product given on the command line,
// runs simulated negotiations and prints the best deal per product.
//
//	canvass -workers 4 "iPhone 15 Pro" "PlayStation 5"
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"dealfinder/internal/adapters/memcache"
	"dealfinder/internal/adapters/observability"
	"dealfinder/internal/adapters/serper"
	"dealfinder/internal/app"
	"dealfinder/internal/domain"
	"dealfinder/internal/pricing"
	"dealfinder/internal/shared"
	"dealfinder/internal/storage"
)

type outcome struct {
	product string
	demo    bool
	best    domain.Deal
	savings int
	sellers int
	err     error
}

func main() {
	workers := flag.Int("workers", 0, "products processed concurrently (default CALL_WORKERS)")
	record := flag.Bool("record", true, "append each product's deals to the data log")
	flag.Parse()

	products := flag.Args()
	if len(products) == 0 {
		fmt.Fprintln(os.Stderr, "usage: canvass [-workers n] [-record=false] product...")
		os.Exit(2)
	}

	ctx := context.Background()
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)
	if *workers <= 0 {
		*workers = cfg.CallWorkers
	}

	var search domain.SearchClient
	if cfg.SerperKey != "" {
		if c, err := serper.New(cfg.SerperBase, cfg.SerperKey, 5); err != nil {
			log.Warn().Err(err).Msg("serper client disabled")
		} else {
			search = c
		}
	}
	// same data log as the API, so recorded deals show up in /v1/logs
	store, err := storage.Open(ctx, cfg.MySQLDSN, cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("storage unavailable")
	}
	defer store.Close()

	est := pricing.New()
	logs := app.NewLogService(store)
	finder := app.NewSearchService(search, memcache.New(time.Minute), cfg.CacheTTL, est)
	calls := app.NewCallService(nil, est, app.NewEventLog(0), logs, *workers)

	log.Info().Int("products", len(products)).Int("workers", *workers).Msg("canvass starting")

	results := make([]outcome, len(products))
	sem := semaphore.NewWeighted(int64(*workers))
	var wg sync.WaitGroup

	for i, p := range products {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = canvass(ctx, finder, calls, logs, p, *record)
			if results[i].err != nil {
				log.Warn().Str("product", p).Err(results[i].err).Msg("canvass failed")
				return
			}
			log.Info().Str("product", p).Int("best", results[i].best.FinalPrice).Msg("canvass ok")
		}()
	}
	wg.Wait()

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tSELLERS\tBEST SELLER\tBEST PRICE\tTOTAL SAVINGS\tDATA")
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t%v\n", r.product, r.err)
			continue
		}
		data := "live"
		if r.demo {
			data = "demo"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t$%d\t$%d\t%s\n", r.product, r.sellers, r.best.SellerName, r.best.FinalPrice, r.savings, data)
	}
	_ = tw.Flush()

	if failed > 0 {
		store.Close() // os.Exit skips deferred calls
		os.Exit(1)
	}
}

func canvass(ctx context.Context, finder *app.SearchService, calls *app.CallService, logs *app.LogService, product string, record bool) outcome {
	out := outcome{product: product}
	res, err := finder.FindSellers(ctx, product)
	if err != nil {
		out.err = err
		return out
	}
	results, err := calls.Negotiate(ctx, res.Product, res.Offers)
	if err != nil {
		out.err = err
		return out
	}
	deals := calls.Deals(results)
	if len(deals) == 0 {
		out.err = domain.ErrNoDeals
		return out
	}
	sum := app.Summarize(res.Product, deals, time.Now())
	out.demo, out.best, out.savings, out.sellers = res.Demo, sum.Best, sum.TotalSavings, len(deals)
	if record {
		if _, err := logs.LogDeals(ctx, res.Product, deals); err != nil {
			log.Warn().Err(err).Str("product", product).Msg("log deals failed")
		}
	}
	return out
}
