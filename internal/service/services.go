package service

import (
	"github.com/deppfellow/schema-pipeline/internal/server"
)

type Services struct {
	Status *StatusService
}

func NewServices(s *server.Server) (*Services, error) {
	return &Services{
		Status: NewStatusService(s),
	}, nil
}
