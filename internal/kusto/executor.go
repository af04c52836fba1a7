package kusto

import (
	"context"
	"errors"
	"fmt"

	"kql-assistant-backend/config"
	"kql-assistant-backend/internal/model"

	"github.com/Azure/azure-kusto-go/kusto"
	kustoerrors "github.com/Azure/azure-kusto-go/kusto/data/errors"
	"github.com/Azure/azure-kusto-go/kusto/data/table"
	"github.com/Azure/azure-kusto-go/kusto/kql"
	"github.com/rs/zerolog/log"
)

var (
	ErrMissingCluster  = errors.New("kusto cluster must not be empty")
	ErrMissingDatabase = errors.New("kusto database must not be empty")
)

// QueryExecutor runs query text against a cluster/database. A nil result with
// a nil error means the store returned no primary result.
type QueryExecutor interface {
	Execute(ctx context.Context, cluster, database, query string) (*model.QueryResult, error)
}

type managedIdentityExecutor struct {
	clientID string
}

func NewManagedIdentityExecutor(cfg *config.Config) QueryExecutor {
	return &managedIdentityExecutor{
		clientID: cfg.Kusto.ManagedIdentityClientID,
	}
}

func (e *managedIdentityExecutor) connectionString(cluster string) *kusto.ConnectionStringBuilder {
	kcsb := kusto.NewConnectionStringBuilder(cluster)
	if e.clientID != "" {
		return kcsb.WithUserManagedIdentity(e.clientID)
	}
	return kcsb.WithSystemManagedIdentity()
}

func (e *managedIdentityExecutor) Execute(ctx context.Context, cluster, database, query string) (*model.QueryResult, error) {
	if cluster == "" {
		return nil, ErrMissingCluster
	}
	if database == "" {
		return nil, ErrMissingDatabase
	}

	client, err := kusto.New(e.connectionString(cluster))
	if err != nil {
		log.Error().Err(err).Str("cluster", cluster).Msg("Failed to create Kusto client")
		return nil, fmt.Errorf("failed to create kusto client: %w", err)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			log.Warn().Err(cerr).Str("cluster", cluster).Msg("Failed to close Kusto client")
		}
	}()

	log.Info().Str("cluster", cluster).Str("database", database).Msg("Executing generated query")

	// The generated text is submitted as-is. No parsing, escaping or
	// parameterization happens here.
	stmt := kql.New("").AddUnsafe(query)

	iter, err := client.Query(ctx, database, stmt)
	if err != nil {
		log.Error().Err(err).Str("database", database).Msg("Kusto query failed")
		return nil, fmt.Errorf("kusto query failed: %w", err)
	}
	defer iter.Stop()

	builder := &tableBuilder{}
	err = iter.DoOnRowOrError(func(row *table.Row, inlineErr *kustoerrors.Error) error {
		if inlineErr != nil {
			return inlineErr
		}
		builder.add(row)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("database", database).Msg("Failed reading Kusto primary result")
		return nil, fmt.Errorf("kusto result read failed: %w", err)
	}

	result := builder.result()
	if result == nil {
		log.Info().Str("database", database).Msg("Kusto returned no primary result")
		return nil, nil
	}
	log.Debug().Int("rows", result.RowCount()).Int("columns", len(result.Columns)).Msg("Kusto query completed")
	return result, nil
}

type tableBuilder struct {
	columns []model.Column
	rows    [][]interface{}
}

func (b *tableBuilder) add(row *table.Row) {
	if row.Replace {
		b.rows = nil
	}
	if b.columns == nil {
		b.columns = make([]model.Column, len(row.ColumnTypes))
		for i, c := range row.ColumnTypes {
			b.columns[i] = model.Column{Name: c.Name, Type: string(c.Type)}
		}
	}
	raw := make([]string, len(row.Values))
	for i, v := range row.Values {
		raw[i] = v.String()
	}
	b.rows = append(b.rows, convertRow(b.columns, raw))
}

func (b *tableBuilder) result() *model.QueryResult {
	if b.columns == nil {
		return nil
	}
	return &model.QueryResult{Columns: b.columns, Rows: b.rows}
}
