package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"cre_catalog/internal/domain"
)

// dataString returns the first non-empty value among keys, formatted for a
// filter column, or NULL when every key is absent.
func dataString(data map[string]any, keys ...string) any {
	for _, k := range keys {
		v, ok := data[k]
		if !ok || v == nil {
			continue
		}
		if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
			return s
		}
	}
	return nil
}

// dataFloat returns the first value among keys coercible to a number, or NULL.
func dataFloat(data map[string]any, keys ...string) any {
	for _, k := range keys {
		switch v := data[k].(type) {
		case float64:
			return v
		case float32:
			return float64(v)
		case int:
			return float64(v)
		case int32:
			return float64(v)
		case int64:
			return float64(v)
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return f
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f
			}
		}
	}
	return nil
}

func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Migrate creates the schema when missing.
func (r *Repo) Migrate(ctx context.Context) error {
	for _, stmt := range []string{createPropertiesSQL, createRunsSQL} {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (r *Repo) ResetCatalog(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, resetCatalogSQL)
	return err
}

func (r *Repo) UpsertProperty(ctx context.Context, p domain.Property) error {
	data, _ := json.Marshal(p.Data)
	sources, _ := json.Marshal(p.Sources)
	var conflicts, details []byte
	if len(p.Conflicts) > 0 {
		conflicts, _ = json.Marshal(p.Conflicts)
	}
	if p.DiscardDetails != nil {
		details, _ = json.Marshal(p.DiscardDetails)
	}
	var reason any
	if p.DiscardReason != "" {
		reason = p.DiscardReason
	}
	_, err := r.db.ExecContext(ctx, upsertPropertySQL,
		p.PropertyID,
		string(p.Classification),
		reason,
		dataString(p.Data, "address"),
		dataString(p.Data, "address_city"),
		dataString(p.Data, "address_state"),
		dataString(p.Data, "homeType", "property_type"),
		dataFloat(p.Data, "unformattedPrice", "price"),
		string(data),
		string(sources),
		valJSON(conflicts),
		valJSON(details),
		p.LastUpdated,
	)
	return err
}

func (r *Repo) RecordRun(ctx context.Context, run domain.RunSummary) error {
	_, err := r.db.ExecContext(ctx, insertRunSQL,
		run.StartedAt,
		run.FinishedAt,
		run.FeedFiles,
		run.Listings,
		run.Properties,
		run.Usable,
		run.Flagged,
		run.Discarded,
		run.Failed,
	)
	return err
}

type rowScanner interface{ Scan(dest ...any) error }

// scanProperty reads one row in getPropertySQL / listPropertiesSQL column
// order. []byte scan targets work for both sql.Row and sql.Rows.
func scanProperty(sc rowScanner) (domain.Property, error) {
	var (
		p         domain.Property
		class     string
		reason    sql.NullString
		data      []byte
		sources   []byte
		conflicts []byte
		details   []byte
	)
	if err := sc.Scan(
		&p.PropertyID,
		&class,
		&reason,
		&data,
		&sources,
		&conflicts,
		&details,
		&p.LastUpdated,
	); err != nil {
		return domain.Property{}, err
	}
	p.Classification = domain.Classification(class)
	if reason.Valid {
		p.DiscardReason = reason.String
	}
	_ = json.Unmarshal(data, &p.Data)
	_ = json.Unmarshal(sources, &p.Sources)
	if len(conflicts) > 0 {
		_ = json.Unmarshal(conflicts, &p.Conflicts)
	}
	if len(details) > 0 {
		p.DiscardDetails = &domain.DiscardDetails{}
		_ = json.Unmarshal(details, p.DiscardDetails)
	}
	return p, nil
}

func (r *Repo) GetProperty(ctx context.Context, id string) (domain.Property, error) {
	p, err := scanProperty(r.db.QueryRowContext(ctx, getPropertySQL, id))
	if err == sql.ErrNoRows {
		return domain.Property{}, domain.ErrNotFound
	}
	return p, err
}

func (r *Repo) ListProperties(ctx context.Context, q domain.CatalogQuery) (domain.CatalogPage, error) {
	qry := listPropertiesSQL
	var (
		where []string
		args  []any
	)
	if q.Classification != "" {
		where = append(where, "classification = ?")
		args = append(args, q.Classification)
	}
	if q.City != "" {
		where = append(where, "city = ?")
		args = append(args, q.City)
	}
	if len(where) > 0 {
		qry += "WHERE " + strings.Join(where, " AND ") + "\n"
	}
	qry += "ORDER BY property_id\nLIMIT ?"
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, qry, args...)
	if err != nil {
		return domain.CatalogPage{}, err
	}
	defer rows.Close()

	// Items stays an empty slice, not nil, so the API encodes [].
	items := make([]domain.Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return domain.CatalogPage{}, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return domain.CatalogPage{}, err
	}
	return domain.CatalogPage{Items: items}, nil
}

func (r *Repo) Stats(ctx context.Context) (domain.CatalogStats, error) {
	st := domain.CatalogStats{
		ByClassification: map[string]int{},
		DiscardReasons:   map[string]int{},
	}

	rows, err := r.db.QueryContext(ctx, statsByClassificationSQL)
	if err != nil {
		return domain.CatalogStats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var class string
		var n int
		if err := rows.Scan(&class, &n); err != nil {
			return domain.CatalogStats{}, err
		}
		st.ByClassification[class] = n
		st.Total += n
	}
	if err := rows.Err(); err != nil {
		return domain.CatalogStats{}, err
	}

	reasons, err := r.db.QueryContext(ctx, statsDiscardReasonsSQL)
	if err != nil {
		return domain.CatalogStats{}, err
	}
	defer reasons.Close()
	for reasons.Next() {
		var reason string
		var n int
		if err := reasons.Scan(&reason, &n); err != nil {
			return domain.CatalogStats{}, err
		}
		st.DiscardReasons[reason] = n
	}
	if err := reasons.Err(); err != nil {
		return domain.CatalogStats{}, err
	}

	var run domain.RunSummary
	err = r.db.QueryRowContext(ctx, lastRunSQL).Scan(
		&run.StartedAt,
		&run.FinishedAt,
		&run.FeedFiles,
		&run.Listings,
		&run.Properties,
		&run.Usable,
		&run.Flagged,
		&run.Discarded,
		&run.Failed,
	)
	switch err {
	case nil:
		st.LastRun = &run
	case sql.ErrNoRows:
		// no run journaled yet
	default:
		return domain.CatalogStats{}, err
	}
	return st, nil
}
