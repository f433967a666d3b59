package rankingengine

import (
	"log/slog"
	"time"

	httpadapter "jornada/contexts/strategy-journey/ranking-engine/adapters/http"
	"jornada/contexts/strategy-journey/ranking-engine/adapters/memory"
	"jornada/contexts/strategy-journey/ranking-engine/application/commands"
	"jornada/contexts/strategy-journey/ranking-engine/application/queries"
	"jornada/contexts/strategy-journey/ranking-engine/application/workers"
	"jornada/contexts/strategy-journey/ranking-engine/domain/ranking"
	"jornada/contexts/strategy-journey/ranking-engine/ports"
)

type Module struct {
	Handler         httpadapter.Handler
	OutboxRelay     workers.OutboxRelay
	JourneyConsumer workers.JourneyCompletionConsumer
	Store           *memory.Store
}

type Dependencies struct {
	Catalog       ports.ActionCatalog
	Rankings      ports.RankingRepository
	Confessionals ports.ConfessionalRepository
	Achievements  ports.AchievementRepository
	Dashboard     ports.DashboardRepository
	Drafts        ports.DraftStore
	Outbox        ports.OutboxRepository
	Dedup         ports.EventDedupStore
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	ShareCodes    ports.ShareCodeGenerator

	Publisher  ports.EventPublisher
	Subscriber ports.EventSubscriber

	Gestures                   ranking.GestureConfig
	DashboardTopN              int
	OutboxBatchSize            int
	DedupTTL                   time.Duration
	DisableAchievementConsumer bool
	Logger                     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	rankingUseCase := commands.RankingUseCase{
		Catalog:  deps.Catalog,
		Rankings: deps.Rankings,
		Drafts:   deps.Drafts,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Gestures: deps.Gestures,
		Logger:   deps.Logger,
	}
	confessionalUseCase := commands.ConfessionalUseCase{
		Catalog:       deps.Catalog,
		Rankings:      deps.Rankings,
		Confessionals: deps.Confessionals,
		Clock:         deps.Clock,
		IDGen:         deps.IDGen,
		Logger:        deps.Logger,
	}
	achievementUseCase := queries.AchievementUseCase{
		Catalog:       deps.Catalog,
		Rankings:      deps.Rankings,
		Confessionals: deps.Confessionals,
		Achievements:  deps.Achievements,
		ShareCodes:    deps.ShareCodes,
		Logger:        deps.Logger,
	}
	dashboardUseCase := queries.DashboardUseCase{
		Catalog:   deps.Catalog,
		Dashboard: deps.Dashboard,
		TopN:      deps.DashboardTopN,
	}
	return Module{
		Handler: httpadapter.Handler{
			Rankings:      rankingUseCase,
			Confessionals: confessionalUseCase,
			Achievements:  achievementUseCase,
			Dashboard:     dashboardUseCase,
			Logger:        deps.Logger,
		},
		OutboxRelay: workers.OutboxRelay{
			Outbox:    deps.Outbox,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			BatchSize: deps.OutboxBatchSize,
			Logger:    deps.Logger,
		},
		JourneyConsumer: workers.JourneyCompletionConsumer{
			Subscriber:   deps.Subscriber,
			Dedup:        deps.Dedup,
			Catalog:      deps.Catalog,
			Rankings:     deps.Rankings,
			Achievements: deps.Achievements,
			ShareCodes:   deps.ShareCodes,
			Clock:        deps.Clock,
			DedupTTL:     deps.DedupTTL,
			Disabled:     deps.DisableAchievementConsumer,
			Logger:       deps.Logger,
		},
	}
}

// NewInMemoryModule wires every port to one in-memory store. Publisher and
// Subscriber stay nil; callers that run the workers set them afterwards.
func NewInMemoryModule(seed memory.Seed, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Catalog:       store,
		Rankings:      store,
		Confessionals: store,
		Achievements:  store,
		Dashboard:     store,
		Drafts:        store,
		Outbox:        store,
		Dedup:         store,
		Clock:         store,
		IDGen:         store,
		ShareCodes:    store,
		Gestures:      ranking.DefaultGestureConfig(),
		Logger:        logger,
	})
	module.Store = store
	return module
}
