package apidatabasev1

import (
	"context"
	"net/http"
	"time"

	"github.com/fulldump/box"

	"github.com/fulldump/steamdb/service"
)

type DatabaseResponse struct {
	Name         string          `json:"name"`
	Id           string          `json:"id"`
	Fields       []service.Field `json:"fields"`
	Total        int             `json:"total"`
	CreationDate time.Time       `json:"creation_date"`
}

func newDatabaseResponse(entry *service.Entry) *DatabaseResponse {
	return &DatabaseResponse{
		Name:         entry.Name,
		Id:           entry.Uuid,
		Fields:       entry.Fields(),
		Total:        entry.Total(),
		CreationDate: entry.CreationDate,
	}
}

type createDatabaseRequest struct {
	Name   string          `json:"name"`
	Fields []service.Field `json:"fields"`
}

func createDatabase(ctx context.Context, w http.ResponseWriter, input *createDatabaseRequest) (*DatabaseResponse, error) {

	s := GetServicer(ctx)

	entry, err := s.CreateDatabase(input.Name, input.Fields)
	if err != nil {
		return nil, err
	}

	w.WriteHeader(http.StatusCreated)
	return newDatabaseResponse(entry), nil
}

func getDatabase(ctx context.Context) (*DatabaseResponse, error) {

	entry, err := getEntry(ctx)
	if err != nil {
		return nil, err
	}

	return newDatabaseResponse(entry), nil
}

func listDatabases(s service.Servicer) any {
	return func() []*DatabaseResponse {
		result := []*DatabaseResponse{}
		for _, entry := range s.ListDatabases() {
			result = append(result, newDatabaseResponse(entry))
		}
		return result
	}
}

func drop(ctx context.Context) error {

	s := GetServicer(ctx)

	return s.DropDatabase(box.GetUrlParameter(ctx, "databaseName"))
}
