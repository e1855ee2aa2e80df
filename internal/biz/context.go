package biz

import "context"

type eventMetaKey struct{}

// EventMeta carries request attribution for analytics events. The transport
// layer attaches it to the context; repos read it when recording.
type EventMeta struct {
	IP        string
	UserAgent string
}

func WithEventMeta(ctx context.Context, m EventMeta) context.Context {
	return context.WithValue(ctx, eventMetaKey{}, m)
}

func EventMetaFrom(ctx context.Context) EventMeta {
	m, _ := ctx.Value(eventMetaKey{}).(EventMeta)
	return m
}
