// Command coupon-import loads regional promo code exports into a location's
// coupon catalog. Each nightly export is a gzipped file of one code per line;
// a code is trusted only when at least two regions agree on it, so the tool
// streams every file twice: once to build a per-file bloom filter, once to
// collect codes that another region's filter also contains.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/bits"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/zestpos/coupon-service/internal/domain/coupon"
	"github.com/zestpos/coupon-service/internal/storage/postgres"
)

const (
	bloomCapacity = 120_000_000
	bloomFPR      = 0.001
	regionFiles   = 3
	progressEvery = 10_000_000
	minCodeLen    = 8
	maxCodeLen    = 10
)

// promoRule maps a known promo code to the regular coupon it unlocks.
// Unknown but agreed-upon codes fall back to defaultRule.
type promoRule struct {
	kind        coupon.DiscountKind
	value       string
	minOrder    string
	maxDiscount string
	description string
}

var promoRules = map[string]promoRule{
	"FIFTYOFF": {kind: coupon.KindPercentage, value: "50", description: "50% off entire order"},
	"HAPPYHRS": {kind: coupon.KindPercentage, value: "18", description: "Happy Hours: 18% off"},
	"OVER9000": {kind: coupon.KindFixed, value: "90", minOrder: "900", description: "90 off orders of 900 or more"},
	"WEEKEND1": {kind: coupon.KindPercentage, value: "25", maxDiscount: "200", description: "Weekend special: 25% off, up to 200"},
	"LOYALTY5": {kind: coupon.KindFixed, value: "50", description: "Loyalty reward: 50 off"},
}

var defaultRule = promoRule{
	kind:        coupon.KindPercentage,
	value:       "10",
	maxDiscount: "100",
	description: "Valid promo code: 10% off, up to 100",
}

func main() {
	var (
		dataDir     string
		databaseURL string
		locationID  string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing promoexportN.gz files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&locationID, "location", "", "location to import the codes into")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if locationID == "" {
		slog.Error("location is required: set --location")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL, locationID); err != nil {
		slog.Error("coupon import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("coupon import completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL, locationID string) error {
	files := make([]string, regionFiles)
	for i := range files {
		files[i] = filepath.Join(dataDir, fmt.Sprintf("promoexport%d.gz", i+1))
		if _, err := os.Stat(files[i]); err != nil {
			return errors.Wrapf(err, "check file %s", files[i])
		}
	}

	slog.Info("pass 1: building bloom filters", slog.Int("files", len(files)))
	filters, err := buildFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "build bloom filters")
	}

	slog.Info("pass 2: cross-checking codes")
	codes, err := agreedCodes(ctx, files, filters)
	if err != nil {
		return errors.Wrap(err, "cross-check codes")
	}
	slog.Info("agreed codes found", slog.Int("count", len(codes)))

	if len(codes) == 0 {
		slog.Info("nothing to import")
		return nil
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	catalog := postgres.NewCatalogRepository(pool)
	return errors.Wrap(importCodes(ctx, catalog, locationID, codes), "import codes")
}

// buildFilters streams every file concurrently, producing one bloom filter
// per region.
func buildFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
			var n uint64
			err := eachCode(ctx, path, func(code string) {
				filter.AddString(code)
				if n++; n%progressEvery == 0 {
					slog.Info("pass 1 progress", slog.Int("file", i+1), slog.Uint64("codes", n))
				}
			})
			if err != nil {
				return errors.Wrapf(err, "build filter for file %d", i+1)
			}
			slog.Info("pass 1 complete", slog.Int("file", i+1), slog.Uint64("codes", n))
			filters[i] = filter
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filters, nil
}

// agreedCodes re-streams each file, testing codes against the other regions'
// filters, and returns the codes present in two or more files.
func agreedCodes(ctx context.Context, files []string, filters []*bloom.BloomFilter) ([]string, error) {
	perFile := make([]map[string]uint, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			seen := make(map[string]uint)
			bit := uint(1) << uint(i)
			err := eachCode(ctx, path, func(code string) {
				for j, f := range filters {
					if j != i && f.TestString(code) {
						seen[code] |= bit
						break
					}
				}
			})
			if err != nil {
				return errors.Wrapf(err, "scan file %d", i+1)
			}
			slog.Info("pass 2 complete", slog.Int("file", i+1), slog.Int("candidates", len(seen)))
			perFile[i] = seen
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]uint)
	for _, seen := range perFile {
		for code, mask := range seen {
			merged[code] |= mask
		}
	}

	var codes []string
	for code, mask := range merged {
		if bits.OnesCount(mask) >= 2 {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes, nil
}

// eachCode streams a gzipped export and calls fn for every well-formed code.
func eachCode(ctx context.Context, path string, fn func(code string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		code := scanner.Text()
		if len(code) >= minCodeLen && len(code) <= maxCodeLen {
			fn(code)
		}
	}
	return errors.Wrapf(scanner.Err(), "scan %s", path)
}

// importCodes upserts the agreed codes as regular coupons of the location.
func importCodes(ctx context.Context, catalog *postgres.CatalogRepository, locationID string, codes []string) error {
	slog.Info("importing codes", slog.Int("count", len(codes)), slog.String("location", locationID))

	for i, code := range codes {
		rule, ok := promoRules[code]
		if !ok {
			rule = defaultRule
		}

		c := coupon.RegularCoupon{
			ID:          "promo-" + code,
			Name:        code,
			Kind:        rule.kind,
			Value:       decimal.RequireFromString(rule.value),
			Description: rule.description,
		}
		if rule.minOrder != "" {
			c.MinOrderAmount = decimal.RequireFromString(rule.minOrder)
		}
		if rule.maxDiscount != "" {
			c.MaxDiscount = decimal.RequireFromString(rule.maxDiscount)
		}

		if err := catalog.UpsertRegular(ctx, locationID, c, i); err != nil {
			return errors.Wrapf(err, "upsert code %s", code)
		}
		if (i+1)%100 == 0 || i+1 == len(codes) {
			slog.Info("import progress", slog.Int("written", i+1), slog.Int("total", len(codes)))
		}
	}
	return nil
}
