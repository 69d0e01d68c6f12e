package notify

import "context"

// プロセス間でイベントを運ぶ（redis / kafka）
type Bus interface {
	Publish(ctx context.Context, evt OrderCreated) error
	StartForwarder(ctx context.Context, onEvt HandlerFunc) error
	Close() error
}
