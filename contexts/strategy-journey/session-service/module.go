package sessionservice

import (
	"log/slog"

	httpadapter "jornada/contexts/strategy-journey/session-service/adapters/http"
	"jornada/contexts/strategy-journey/session-service/adapters/memory"
	"jornada/contexts/strategy-journey/session-service/application/commands"
	"jornada/contexts/strategy-journey/session-service/application/queries"
	"jornada/contexts/strategy-journey/session-service/domain/entities"
	"jornada/contexts/strategy-journey/session-service/ports"
)

type Module struct {
	Handler  httpadapter.Handler
	Meetings commands.MeetingAdminUseCase
	Store    *memory.Store
}

type Dependencies struct {
	Sessions ports.SessionRepository
	Admin    ports.MeetingAdmin
	Observer ports.SessionObserver
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			Join: commands.JoinSessionUseCase{
				Sessions: deps.Sessions,
				Observer: deps.Observer,
				Clock:    deps.Clock,
				IDGen:    deps.IDGen,
				Logger:   deps.Logger,
			},
			Sessions: queries.SessionUseCase{Sessions: deps.Sessions},
			Logger:   deps.Logger,
		},
		Meetings: commands.MeetingAdminUseCase{
			Admin:  deps.Admin,
			IDGen:  deps.IDGen,
			Logger: deps.Logger,
		},
	}
}

func NewInMemoryModule(codes []entities.MeetingCode, observer ports.SessionObserver, logger *slog.Logger) Module {
	store := memory.NewStore(codes)
	module := NewModule(Dependencies{
		Sessions: store,
		Admin:    store,
		Observer: observer,
		Clock:    store,
		IDGen:    store,
		Logger:   logger,
	})
	module.Store = store
	return module
}
