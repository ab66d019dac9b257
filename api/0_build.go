package api

import (
	"net/http"

	"github.com/fulldump/box"
	"github.com/fulldump/box/boxopenapi"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fulldump/steamdb/api/apidatabasev1"
	"github.com/fulldump/steamdb/service"
)

// Build mounts the HTTP API. Interceptors added by the caller wrap every
// resource; PrettyErrorInterceptor must come before any interceptor that
// sets errors, so it can render them.
func Build(s service.Servicer, version string, apiKey, apiSecret string) *box.B {

	b := box.NewBox()

	v1 := b.Resource("/v1")
	v1.WithInterceptors(
		box.SetResponseHeader("Content-Type", "application/json"),
		Authenticate(apiKey, apiSecret),
	)

	apidatabasev1.BuildV1Database(v1, s).
		WithInterceptors(
			apidatabasev1.InjectServicer(s),
		)

	b.Resource("/v1/*").
		WithActions(box.AnyMethod(func(w http.ResponseWriter) interface{} {
			w.WriteHeader(http.StatusNotImplemented)
			return PrettyError{
				Message:     "not implemented",
				Description: "this endpoint does not exist, please check the documentation",
			}
		}))

	b.Resource("/metrics").
		WithActions(box.Get(promhttp.Handler().ServeHTTP).WithName("metrics"))

	b.Resource("/release").
		WithActions(box.Get(func() string {
			return version
		}))

	spec := boxopenapi.Spec(b)
	spec.Info.Title = "SteamDB"
	spec.Info.Description = "An in-memory media metadata database with indexed queries."
	spec.Info.Contact = &boxopenapi.Contact{
		Url: "https://github.com/fulldump/steamdb/issues/new",
	}
	b.Handle("GET", "/openapi.json", func(r *http.Request) any {

		spec.Servers = []boxopenapi.Server{
			{
				Url: "https://" + r.Host,
			},
			{
				Url: "http://" + r.Host,
			},
		}

		return spec
	})

	return b
}
