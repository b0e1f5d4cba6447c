package db

import (
	"context"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5"
)

type dbSpanKey struct{}

// queryTracer records every store query as a sentry child span of the
// request transaction. Requests without an active span are left alone.
type queryTracer struct{}

func newQueryTracer() *queryTracer {
	return &queryTracer{}
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	if sentry.SpanFromContext(ctx) == nil {
		return ctx
	}

	query := normalizeQuery(data.SQL)
	span := sentry.StartSpan(
		ctx,
		"db.query",
		sentry.WithDescription(query),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	span.SetData("db.system", "postgresql")

	if verb := queryVerb(query); verb != "" {
		span.SetData("db.operation", verb)
	}

	return context.WithValue(span.Context(), dbSpanKey{}, span)
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	span, _ := ctx.Value(dbSpanKey{}).(*sentry.Span)
	if span == nil {
		return
	}

	if data.Err != nil {
		span.Status = sentry.SpanStatusInternalError
		span.SetData("db.error", data.Err.Error())
	} else {
		span.Status = sentry.SpanStatusOK
	}

	if rows := data.CommandTag.RowsAffected(); rows >= 0 {
		span.SetData("db.rows_affected", rows)
	}

	span.Finish()
}

// normalizeQuery collapses the multiline SQL literals used in the stores into
// a single capped line so span descriptions stay readable.
func normalizeQuery(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "sql.query"
	}

	normalized := strings.Join(fields, " ")
	const maxLen = 512
	if len(normalized) > maxLen {
		return normalized[:maxLen]
	}
	return normalized
}

func queryVerb(query string) string {
	verb, _, _ := strings.Cut(query, " ")
	return strings.ToUpper(verb)
}
