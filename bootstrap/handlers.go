package bootstrap

import (
	"go_procure_backend/config"
	"go_procure_backend/handlers"
)

type Handlers struct {
	ProcurementHandler *handlers.ProcurementHandler
	WSHandler          *handlers.WSHandler
}

func NewHandlers(cfg *config.Config, services *Services, infra *Infrastructure) *Handlers {
	res := &Handlers{}
	p := handlers.NewProcurementHandler(services.ProcurementService, services.Excel, infra.Storage, infra.LogBus, cfg.MaxFileSize)
	res.ProcurementHandler = p
	w := handlers.NewWSHandler(infra.LogBus)
	res.WSHandler = w
	return res
}
