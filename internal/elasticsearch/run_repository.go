package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"kql-assistant-backend/config"
	"kql-assistant-backend/internal/dto"
	"kql-assistant-backend/internal/model"
	"kql-assistant-backend/internal/repository"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/core/search"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"
	"github.com/rs/zerolog/log"
)

const defaultSearchSize = 50

type runRepository struct {
	esTypedClient *elasticsearch.TypedClient
	indexPrefix   string
}

func NewRunRepository(cfg *config.Config) (repository.RunSearchRepository, error) {
	typedClient, err := elasticsearch.NewTypedClient(elasticsearch.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Transport: newTransport(),
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create typed Elasticsearch client for run repository")
		return nil, err
	}

	return &runRepository{
		esTypedClient: typedClient,
		indexPrefix:   cfg.Elasticsearch.RunIndex,
	}, nil
}

func (r *runRepository) Search(ctx context.Context, req dto.RunSearchRequest) (*dto.RunSearchResponse, error) {
	indexPattern := fmt.Sprintf("%s-*", r.indexPrefix)
	searchRequest := buildRunSearchRequest(req)

	res, err := r.esTypedClient.Search().
		Index(indexPattern).
		Request(searchRequest).
		Do(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error executing run search via TypedClient")
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}

	runs := make([]model.QueryRun, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		if hit.Source_ == nil {
			continue
		}
		var run model.QueryRun
		if err := json.Unmarshal(hit.Source_, &run); err != nil {
			log.Error().Err(err).Msg("Error unmarshalling run hit source")
			continue
		}
		runs = append(runs, run)
	}

	resp := &dto.RunSearchResponse{Runs: runs}
	if res.Hits.Total != nil {
		resp.TotalCount = res.Hits.Total.Value
	}
	log.Debug().Int64("total_hits", resp.TotalCount).Int("returned_hits", len(runs)).Msg("Run search successful")
	return resp, nil
}

func buildRunSearchRequest(req dto.RunSearchRequest) *search.Request {
	startTimeStr := req.StartTime.UTC().Format(time.RFC3339)
	endTimeStr := req.EndTime.UTC().Format(time.RFC3339)

	filters := []types.Query{
		{
			Range: map[string]types.RangeQuery{
				"@timestamp": types.DateRangeQuery{
					Gte: &startTimeStr,
					Lte: &endTimeStr,
				},
			},
		},
	}
	if req.Outcome != "" {
		filters = append(filters, types.Query{
			Term: map[string]types.TermQuery{
				"outcome.keyword": {Value: req.Outcome},
			},
		})
	}

	size := req.Size
	if size <= 0 {
		size = defaultSearchSize
	}
	order := sortorder.Desc

	return &search.Request{
		Query: &types.Query{
			Bool: &types.BoolQuery{
				Filter: filters,
			},
		},
		Size: &size,
		Sort: []types.SortCombinations{
			types.SortOptions{
				SortOptions: map[string]types.FieldSort{
					"@timestamp": {Order: &order},
				},
			},
		},
	}
}
