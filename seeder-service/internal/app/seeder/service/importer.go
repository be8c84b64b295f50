package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"techdeals/pkg/logger"
	"techdeals/pkg/metrics"
	"techdeals/seeder-service/internal/app/seeder/entity"
	"techdeals/seeder-service/internal/app/seeder/repository"
)

const (
	DefaultImportBatchSize = 100
	maxSKUAttempts         = 10
	utf8BOM                = "\ufeff"
)

// Importer loads the CSV datasets into the products collection.
type Importer struct {
	products  repository.ProductRepository
	counters  repository.CounterRepository
	rates     RateProvider
	rng       *rand.Rand
	now       func() time.Time
	dataDir   string
	batchSize int
	sources   []entity.CategorySource
}

type ImporterOption func(*Importer)

// WithSources replaces the default source table.
func WithSources(sources []entity.CategorySource) ImporterOption {
	return func(i *Importer) { i.sources = sources }
}

func WithClock(now func() time.Time) ImporterOption {
	return func(i *Importer) { i.now = now }
}

func NewImporter(
	products repository.ProductRepository,
	counters repository.CounterRepository,
	rates RateProvider,
	rng *rand.Rand,
	dataDir string,
	batchSize int,
	opts ...ImporterOption,
) *Importer {
	if batchSize <= 0 {
		batchSize = DefaultImportBatchSize
	}

	imp := &Importer{
		products:  products,
		counters:  counters,
		rates:     rates,
		rng:       rng,
		now:       time.Now,
		dataDir:   dataDir,
		batchSize: batchSize,
		sources:   entity.CategorySources,
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// Run reads every source, inserts the valid products and reports the final
// collection counts. Problems with single files or batches are logged and
// counted; only store failures outside of inserts abort the run.
func (imp *Importer) Run(ctx context.Context) (*entity.ImportSummary, error) {
	rate := imp.rates.Rate(ctx)
	logger.Info().
		Str("data_dir", imp.dataDir).
		Str("rate", rate.String()).
		Int("sources", len(imp.sources)).
		Msg("Starting product import")

	transformer := NewProductTransformer(imp.rng, rate, imp.now)
	seen := make(map[string]struct{})
	summary := &entity.ImportSummary{}

	var all []entity.Product
	for _, src := range imp.sources {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		products, fileSummary := imp.readSource(src, transformer, seen)
		summary.Files = append(summary.Files, fileSummary)
		all = append(all, products...)
	}
	summary.Parsed = len(all)

	if len(all) > 0 {
		first, err := imp.counters.Reserve(ctx, repository.ProductCounter, len(all))
		if err != nil {
			return summary, fmt.Errorf("failed to reserve product ids: %w", err)
		}
		for i := range all {
			all[i].ID = first + int64(i)
		}
	}

	for start := 0; start < len(all); start += imp.batchSize {
		end := min(start+imp.batchSize, len(all))
		batch := all[start:end]

		n, err := imp.products.InsertMany(ctx, batch)
		summary.Inserted += n
		if err != nil {
			summary.FailedBatches++
			metrics.SeederBatchFailures.WithLabelValues(entity.ProductsCollection).Inc()
			logger.Error().
				Err(err).
				Int("batch_start", start).
				Int("batch_size", len(batch)).
				Int("inserted", n).
				Msg("Product batch insert failed")
			continue
		}

		for _, p := range batch {
			metrics.SeederProductsImported.WithLabelValues(p.Category).Inc()
		}
		logger.Debug().Int("batch_start", start).Int("inserted", n).Msg("Inserted product batch")
	}

	total, err := imp.products.Count(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to count products: %w", err)
	}
	summary.Total = total

	byCategory, err := imp.products.CountByCategory(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to count products by category: %w", err)
	}
	summary.ByCategory = byCategory

	for _, c := range byCategory {
		logger.Info().Str("category", c.Category).Int64("count", c.Count).Msg("Products per category")
	}
	logger.Info().
		Int("parsed", summary.Parsed).
		Int("inserted", summary.Inserted).
		Int("failed_batches", summary.FailedBatches).
		Int64("total", total).
		Msg("Product import finished")

	return summary, nil
}

// readSource parses one CSV file. A read error discards the whole file.
func (imp *Importer) readSource(
	src entity.CategorySource,
	transformer *ProductTransformer,
	seen map[string]struct{},
) ([]entity.Product, entity.FileSummary) {
	path := filepath.Join(imp.dataDir, src.FileName())
	summary := entity.FileSummary{
		Source:   src.Key,
		Category: src.Category,
		Skipped:  make(map[entity.SkipReason]int),
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			summary.Missing = true
			logger.Warn().Str("file", path).Msg("CSV file not found, skipping")
			return nil, summary
		}
		summary.Err = fmt.Errorf("failed to open %s: %w", path, err)
		logger.Error().Err(summary.Err).Msg("Skipping CSV file")
		return nil, summary
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			summary.Err = fmt.Errorf("failed to read header of %s: %w", path, err)
			logger.Error().Err(summary.Err).Msg("Skipping CSV file")
		}
		return nil, summary
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], utf8BOM))
	}

	var products []entity.Product
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			summary.Err = fmt.Errorf("failed to read %s: %w", path, err)
			summary.Valid = 0
			logger.Error().Err(summary.Err).Int("rows", summary.Rows).Msg("Aborting CSV file")
			return nil, summary
		}

		summary.Rows++
		if summary.Valid >= src.RowCap {
			imp.skip(&summary, src, entity.SkipOverCap)
			continue
		}

		row := make(Row, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}

		product, reason := transformer.Build(row, src)
		if reason != "" {
			imp.skip(&summary, src, reason)
			continue
		}

		for attempt := 0; attempt < maxSKUAttempts; attempt++ {
			if _, dup := seen[product.SKU]; !dup {
				break
			}
			product.SKU = transformer.RerollSKU(product.SKU)
		}
		seen[product.SKU] = struct{}{}

		products = append(products, product)
		summary.Valid++
	}

	logger.Info().
		Str("file", src.FileName()).
		Str("category", src.Category).
		Int("rows", summary.Rows).
		Int("valid", summary.Valid).
		Int("skipped", summary.SkippedTotal()).
		Msg("Processed CSV file")

	return products, summary
}

func (imp *Importer) skip(summary *entity.FileSummary, src entity.CategorySource, reason entity.SkipReason) {
	summary.Skipped[reason]++
	metrics.SeederRowsSkipped.WithLabelValues(src.Category, string(reason)).Inc()
}
