// Package ingest turns energy-mix CSV exports into records and
// classification rows. Files may be plain, gzip (.gz) or zstd (.zst).
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"

	"energymix/internal/engine"
	"energymix/internal/models"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrNonFinite     = errors.New("value is not a finite number")
)

// Open opens path, transparently decompressing by extension.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip %s: %w", path, err)
		}
		return &stacked{Reader: zr, closers: []io.Closer{zr, f}}, nil
	case ".zst", ".zstd":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("zstd %s: %w", path, err)
		}
		return &stacked{Reader: zr, closers: []io.Closer{zstdCloser{zr}, f}}, nil
	}
	return f, nil
}

type stacked struct {
	io.Reader
	closers []io.Closer
}

func (s *stacked) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

type zstdCloser struct{ d *zstd.Decoder }

func (z zstdCloser) Close() error { z.d.Close(); return nil }

// ParseRecords reads an energy CSV. Columns are matched by header name;
// unknown columns are skipped. Empty cells are absent values.
func ParseRecords(r io.Reader) ([]models.EnergyRecord, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	countryCol, yearCol, isoCol := -1, -1, -1
	metricCols := make(map[int]models.Metric)
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		switch key {
		case "country":
			countryCol = i
		case "year":
			yearCol = i
		case "iso_code":
			isoCol = i
		default:
			if m, err := models.ParseMetric(key); err == nil {
				metricCols[i] = m
			}
		}
	}
	if countryCol < 0 {
		return nil, fmt.Errorf("%w: country", ErrMissingColumn)
	}
	if yearCol < 0 {
		return nil, fmt.Errorf("%w: year", ErrMissingColumn)
	}

	var out []models.EnergyRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)

		rec := models.EnergyRecord{Country: strings.TrimSpace(row[countryCol])}
		if rec.Country == "" {
			return nil, fmt.Errorf("line %d: empty country", line)
		}
		if rec.Year, err = strconv.Atoi(strings.TrimSpace(row[yearCol])); err != nil {
			return nil, fmt.Errorf("line %d: year: %w", line, err)
		}
		if isoCol >= 0 {
			rec.ISOCode = strings.TrimSpace(row[isoCol])
		}
		for i, m := range metricCols {
			cell := strings.TrimSpace(row[i])
			if isAbsent(cell) {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, m.Column(), err)
			}
			// ParseFloat accepts "inf" and "nan" spellings that isAbsent does not cover.
			if math.IsInf(v, 0) || math.IsNaN(v) {
				return nil, fmt.Errorf("line %d: %s: %w: %q", line, m.Column(), ErrNonFinite, cell)
			}
			rec.Set(m, v)
		}
		out = append(out, rec)
	}
	return out, nil
}

func isAbsent(cell string) bool {
	switch strings.ToLower(cell) {
	case "", "na", "nan", "null":
		return true
	}
	return false
}

// ParseClassification reads a country,category CSV.
func ParseClassification(r io.Reader) ([]models.CountryClassification, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	countryCol, catCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "country":
			countryCol = i
		case "category", "classification":
			catCol = i
		}
	}
	if countryCol < 0 || catCol < 0 {
		return nil, fmt.Errorf("%w: country and category", ErrMissingColumn)
	}

	var out []models.CountryClassification
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		cat, err := models.ParseCategory(row[catCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, models.CountryClassification{Country: strings.TrimSpace(row[countryCol]), Category: cat})
	}
	return out, nil
}

// ctxReader fails reads once ctx is done, so a parse stops at the next buffer fill.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// LoadRecords opens and parses an energy CSV file. Cancelling ctx aborts the parse.
func LoadRecords(ctx context.Context, path string) ([]models.EnergyRecord, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	recs, err := ParseRecords(ctxReader{ctx: ctx, r: rc})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// LoadClassification opens and parses a classification CSV file.
func LoadClassification(ctx context.Context, path string) ([]models.CountryClassification, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	rows, err := ParseClassification(ctxReader{ctx: ctx, r: rc})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// Sources names the two input files. ClassificationPath may be empty.
type Sources struct {
	RecordsPath        string
	ClassificationPath string
}

// Load reads both sources concurrently. The first failure cancels the other read.
func Load(ctx context.Context, src Sources) ([]models.EnergyRecord, []models.CountryClassification, error) {
	var (
		recs    []models.EnergyRecord
		classes []models.CountryClassification
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recs, err = LoadRecords(gctx, src.RecordsPath)
		return err
	})
	if src.ClassificationPath != "" {
		g.Go(func() error {
			var err error
			classes, err = LoadClassification(gctx, src.ClassificationPath)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return recs, classes, nil
}

// LoadStore reads the sources and builds an engine snapshot.
func LoadStore(ctx context.Context, src Sources, log *slog.Logger) (*engine.Store, error) {
	start := time.Now()
	log.Info("loading data", "records", src.RecordsPath, "classification", src.ClassificationPath)

	recs, classes, err := Load(ctx, src)
	if err != nil {
		return nil, err
	}
	cls, err := engine.NewClassification(classes)
	if err != nil {
		return nil, err
	}
	store, err := engine.NewStore(recs, cls)
	if err != nil {
		return nil, err
	}

	log.Info("load complete",
		"rows", humanize.Comma(int64(store.Len())),
		"countries", len(store.CountryDict),
		"classified", cls.Len(),
		"elapsed", time.Since(start))
	return store, nil
}
