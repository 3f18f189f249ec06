package phones

import "context"

type Repository interface {
	Add(ctx context.Context, clientID int64, number string) error
	Replace(ctx context.Context, clientID int64, numbers []string) error
	DeleteByNumber(ctx context.Context, clientID int64, number string) error
}
