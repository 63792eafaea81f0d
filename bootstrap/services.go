package bootstrap

import (
	"go_procure_backend/config"
	"go_procure_backend/services"
)

type Services struct {
	AIGateway          *services.AIGateway
	Parser             *services.RequirementParser
	Matcher            *services.MatchingService
	Excel              *services.ExcelService
	ProcurementService *services.ProcurementService
}

func NewServices(cfg *config.Config, repos *Repositories, infra *Infrastructure) *Services {
	res := &Services{}

	gateway := services.NewAIGateway(cfg, infra.LogBus)
	res.AIGateway = gateway

	parser := services.NewRequirementParser(gateway, infra.Cache, infra.LogBus)
	res.Parser = parser

	matcher := services.NewMatchingService(repos.InventoryRepository, gateway, infra.LogBus)
	res.Matcher = matcher

	excel := services.NewExcelService()
	res.Excel = excel

	procurement := services.NewProcurementService(
		gateway, parser, matcher, excel,
		repos.TaskRepository, repos.InventoryRepository, infra.LogBus,
	)
	res.ProcurementService = procurement
	return res
}
