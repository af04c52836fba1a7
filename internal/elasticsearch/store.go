package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"kql-assistant-backend/config"
	"kql-assistant-backend/internal/model"

	"github.com/cenkalti/backoff"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

const sinkName = "elasticsearch"

type RunStore struct {
	bulkIndexer esutil.BulkIndexer
	indexPrefix string
	countFailed uint64
}

func newTransport() *http.Transport {
	return &http.Transport{
		MaxIdleConnsPerHost:   10,
		ResponseHeaderTimeout: 10 * time.Second,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
	}
}

// NewRunStore connects (with retries) and starts a bulk indexer that writes
// query runs into daily indices.
func NewRunStore(lc fx.Lifecycle, cfg *config.Config) (*RunStore, error) {
	if len(cfg.Elasticsearch.Addresses) == 0 {
		log.Error().Msg("Elasticsearch addresses are not configured.")
		return nil, errors.New("elasticsearch configuration missing")
	}
	esCfg := elasticsearch.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Transport: newTransport(),
	}

	var esClient *elasticsearch.Client
	operation := func() error {
		var err error
		esClient, err = elasticsearch.NewClient(esCfg)
		if err != nil {
			log.Warn().Err(err).Msg("Attempt failed: Error creating the Elasticsearch client")
			return err
		}

		res, err := esClient.Info(esClient.Info.WithContext(context.Background()))
		if err != nil {
			log.Warn().Err(err).Msg("Attempt failed: Elasticsearch Info() call failed")
			return err
		}
		defer res.Body.Close()
		if res.IsError() {
			err = fmt.Errorf("elasticsearch Info() returned error status: %s", res.Status())
			log.Warn().Err(err).Msg("Attempt failed: Elasticsearch ping returned error status")
			return err
		}
		log.Info().Msg("Elasticsearch client initialized and connection verified")
		return nil
	}

	connectBackoff := backoff.NewExponentialBackOff()
	connectBackoff.InitialInterval = 2 * time.Second
	connectBackoff.MaxInterval = 15 * time.Second
	connectBackoff.MaxElapsedTime = 90 * time.Second

	log.Info().Msg("Attempting to connect to Elasticsearch with retries...")
	if err := backoff.Retry(operation, connectBackoff); err != nil {
		log.Error().Err(err).Msg("Failed to connect to Elasticsearch after multiple retries")
		return nil, err
	}

	store := &RunStore{
		indexPrefix: cfg.Elasticsearch.RunIndex,
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:        esClient,
		Index:         store.indexName(time.Now()),
		NumWorkers:    cfg.Elasticsearch.BulkWorkers,
		FlushBytes:    cfg.Elasticsearch.FlushBytes,
		FlushInterval: cfg.Elasticsearch.FlushInterval,
		OnError: func(ctx context.Context, err error) {
			log.Error().Err(err).Msg("BulkIndexer error")
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("Error creating the BulkIndexer")
		return nil, err
	}
	store.bulkIndexer = bi
	log.Info().Str("index_prefix", store.indexPrefix).Msg("Elasticsearch run store initialized")

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Closing Elasticsearch BulkIndexer...")
			return store.Close(ctx)
		},
	})

	return store, nil
}

func (s *RunStore) Name() string { return sinkName }

// StoreRuns queues runs on the bulk indexer. Items that fail after the flush
// are reported through OnFailure.
func (s *RunStore) StoreRuns(ctx context.Context, runs []model.QueryRun) error {
	if len(runs) == 0 {
		return nil
	}

	failed := 0
	for _, run := range runs {
		if err := s.queueRun(ctx, run); err != nil {
			failed++
			atomic.AddUint64(&s.countFailed, 1)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d query runs failed to queue for indexing", failed, len(runs))
	}
	return nil
}

func (s *RunStore) queueRun(ctx context.Context, run model.QueryRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		log.Error().Err(err).Str("run_id", run.ID).Msg("Failed to marshal query run for Elasticsearch")
		return err
	}

	err = s.bulkIndexer.Add(ctx, esutil.BulkIndexerItem{
		Action:     "index",
		Index:      s.indexName(run.Time),
		DocumentID: run.ID,
		Body:       bytes.NewReader(data),
		OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
			atomic.AddUint64(&s.countFailed, 1)
			if err != nil {
				log.Error().Err(err).Str("run_id", item.DocumentID).Msg("Failed to index query run")
			} else {
				log.Error().Str("run_id", item.DocumentID).Str("reason", res.Error.Reason).Msg("Failed to index query run")
			}
		},
	})
	if err != nil {
		log.Error().Err(err).Str("run_id", run.ID).Msg("Failed to add item to BulkIndexer")
	}
	return err
}

func (s *RunStore) Close(ctx context.Context) error {
	err := s.bulkIndexer.Close(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error closing BulkIndexer")
	}

	stats := s.bulkIndexer.Stats()
	log.Info().
		Uint64("indexed", stats.NumIndexed).
		Uint64("added", stats.NumAdded).
		Uint64("flushed", stats.NumFlushed).
		Uint64("failed", stats.NumFailed).
		Uint64("runs_failed", atomic.LoadUint64(&s.countFailed)).
		Uint64("requests", stats.NumRequests).
		Msg("Elasticsearch BulkIndexer final stats")
	return err
}

// indexName returns the daily index for t, e.g. "kql-runs-2024-05-01".
func (s *RunStore) indexName(t time.Time) string {
	return dailyIndex(s.indexPrefix, t)
}

func dailyIndex(prefix string, t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return fmt.Sprintf("%s-%s", prefix, t.UTC().Format("2006-01-02"))
}
