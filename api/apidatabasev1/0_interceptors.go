package apidatabasev1

import (
	"context"

	"github.com/fulldump/box"

	"github.com/fulldump/steamdb/service"
)

type servicerKey struct{}

func SetServicer(ctx context.Context, s service.Servicer) context.Context {
	return context.WithValue(ctx, servicerKey{}, s)
}

func GetServicer(ctx context.Context) service.Servicer {
	return ctx.Value(servicerKey{}).(service.Servicer)
}

func InjectServicer(s service.Servicer) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {
			next(SetServicer(ctx, s))
		}
	}
}

func getEntry(ctx context.Context) (*service.Entry, error) {
	name := box.GetUrlParameter(ctx, "databaseName")
	return GetServicer(ctx).GetDatabase(name)
}
