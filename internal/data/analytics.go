package data

import (
	"context"
	"database/sql"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/saasgenius/saasgenius/internal/biz"
)

type analyticsRepo struct {
	data *Data
	log  *log.Helper
}

func NewAnalyticsRepo(data *Data, logger log.Logger) biz.AnalyticsRepo {
	return &analyticsRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// RecordEvent is best effort: failures are logged, never propagated, an
// analytics outage must not break the request that triggered it.
func (r *analyticsRepo) RecordEvent(ctx context.Context, userID *int, eventType, eventData string) {
	var uid sql.NullInt64
	if userID != nil {
		uid = sql.NullInt64{Int64: int64(*userID), Valid: true}
	}
	meta := biz.EventMetaFrom(ctx)
	_, err := r.data.db.ExecContext(ctx, `
		INSERT INTO analytics (user_id, event_type, event_data, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5)`,
		uid, eventType, eventData, meta.IP, meta.UserAgent)
	if err != nil {
		r.log.Warnf("analytics: record %s: %v", eventType, err)
	}
}

func (r *analyticsRepo) CountEvents(ctx context.Context, eventType string) (int, error) {
	var n int
	err := r.data.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM analytics WHERE event_type = $1`, eventType).Scan(&n)
	return n, err
}
