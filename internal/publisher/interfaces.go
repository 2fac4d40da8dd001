package publisher

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/deusflow/footnews/internal/mirror"
	"github.com/deusflow/footnews/internal/storage"
)

type Messenger interface {
	SendText(ctx context.Context, text string) error
	SendPhoto(ctx context.Context, photo, caption string) error
}

type Store interface {
	HasBeenPublished(ctx context.Context, identity string) (bool, error)
	RecordPublished(ctx context.Context, rec storage.PublishedRecord) error
}

type Translator interface {
	Translate(ctx context.Context, text string) string
}

type Mirror interface {
	Emit(ctx context.Context, evt mirror.PostEvent)
}
