package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Ayash-Bera/vbm-explorer/internal/models"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

const fetchTimeout = 30 * time.Second

// Load reads the precomputed results from a file path or an http(s) URL.
func Load(ctx context.Context, source string, logger *logrus.Logger) (*Corpus, error) {
	start := time.Now()

	var (
		data []byte
		err  error
	)
	if isRemote(source) {
		data, err = fetchRemote(ctx, source, logger)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus from %s: %w", source, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse corpus from %s: %w", source, err)
	}

	for _, d := range c.Duplicates() {
		logger.WithFields(logrus.Fields{
			"kept":    d.Kept,
			"dropped": d.Dropped,
		}).Warn("Duplicate analysis key, later record dropped")
	}

	logger.WithFields(logrus.Fields{
		"source":         source,
		"analyses":       c.Len(),
		"duplicates":     len(c.Duplicates()),
		"generated_date": c.Metadata().GeneratedDate,
		"size_bytes":     len(data),
		"elapsed_ms":     time.Since(start).Milliseconds(),
	}).Info("Result corpus loaded")

	return c, nil
}

// Parse decodes a corpus document and validates it.
func Parse(data []byte) (*Corpus, error) {
	var file models.CorpusFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal corpus: %w", err)
	}
	return New(file.Analyses, file.Metadata)
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func fetchRemote(ctx context.Context, url string, logger *logrus.Logger) ([]byte, error) {
	c := colly.NewCollector(
		colly.UserAgent("vbm-explorer/1.0"),
		colly.MaxBodySize(0),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(fetchTimeout)

	var (
		body     []byte
		fetchErr error
	)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
		r.Headers.Set("Accept", "application/json")
	})

	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		logger.WithFields(logrus.Fields{
			"url":         url,
			"status_code": r.StatusCode,
			"size":        len(r.Body),
		}).Debug("Corpus fetched")
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			fetchErr = fmt.Errorf("corpus fetch failed with status %d: %w", r.StatusCode, err)
			return
		}
		fetchErr = err
	})

	if err := c.Visit(url); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	c.Wait()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	if body == nil {
		return nil, fmt.Errorf("empty corpus response from %s", url)
	}
	return body, nil
}
