package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var extractionEventColumns = []string{
	"id", "sequence", "timestamp", "kind", "stage", "strategy", "model", "raw_text", "error",
}

func (r *eventRepo) AppendExtractionFailure(ctx context.Context, data ExtractionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder.Insert(tableExtractionEvents).
		Columns(extractionEventColumns[1:]...).
		Values(
			seqNum, time.Now().UnixMilli(),
			data.Kind, data.Stage, data.Strategy, data.Model, data.RawText, data.Error,
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save extraction event: %w", err)
	}
	return nil
}

// QueryExtractionFailures ignores opts.Purpose; extraction events carry a
// kind instead.
func (r *eventRepo) QueryExtractionFailures(ctx context.Context, opts QueryOpts) ([]ExtractionEventRecord, error) {
	opts.Purpose = ""
	sel := builder.Select(extractionEventColumns...).
		From(entsql.Table(tableExtractionEvents)).
		OrderBy(entsql.Desc("sequence"))
	applyOpts(sel, opts)

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query extraction events: %w", err)
	}
	defer rows.Close()

	var records []ExtractionEventRecord
	for rows.Next() {
		var rec ExtractionEventRecord
		var ts int64
		if err := rows.Scan(
			&rec.ID, &rec.Sequence, &ts,
			&rec.Kind, &rec.Stage, &rec.Strategy, &rec.Model, &rec.RawText, &rec.Error,
		); err != nil {
			return nil, fmt.Errorf("scan extraction event: %w", err)
		}
		rec.Timestamp = time.UnixMilli(ts).UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}
