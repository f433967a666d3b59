package catalogservice

import (
	"log/slog"

	httpadapter "jornada/contexts/strategy-journey/catalog-service/adapters/http"
	"jornada/contexts/strategy-journey/catalog-service/adapters/memory"
	"jornada/contexts/strategy-journey/catalog-service/application/commands"
	"jornada/contexts/strategy-journey/catalog-service/application/queries"
	"jornada/contexts/strategy-journey/catalog-service/domain/entities"
	"jornada/contexts/strategy-journey/catalog-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Seeder  commands.SeedCatalogUseCase
	Store   *memory.Store
}

type Dependencies struct {
	Catalog ports.CatalogRepository
	Writer  ports.CatalogWriter
	Logger  *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			Catalog: queries.CatalogUseCase{Catalog: deps.Catalog},
			Logger:  deps.Logger,
		},
		Seeder: commands.SeedCatalogUseCase{
			Writer: deps.Writer,
			Logger: deps.Logger,
		},
	}
}

func NewInMemoryModule(pillars []entities.Pillar, actions []entities.Action, logger *slog.Logger) Module {
	store := memory.NewStore(pillars, actions)
	module := NewModule(Dependencies{
		Catalog: store,
		Writer:  store,
		Logger:  logger,
	})
	module.Store = store
	return module
}
