package apidatabasev1

import (
	"github.com/fulldump/box"

	"github.com/fulldump/steamdb/service"
)

func BuildV1Database(v1 *box.R, s service.Servicer) *box.R {

	databases := v1.Resource("/databases").
		WithActions(
			box.Get(listDatabases(s)),
			box.Post(createDatabase),
		)

	v1.Resource("/databases/{databaseName}").
		WithActions(
			box.Get(getDatabase),
			box.ActionPost(insert),
			box.ActionPost(query),
			box.ActionPost(remove),
			box.ActionPost(drop),
		)

	return databases
}
