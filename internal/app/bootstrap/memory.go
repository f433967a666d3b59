package bootstrap

import (
	"context"
	"log/slog"
	"strings"

	catalogservice "jornada/contexts/strategy-journey/catalog-service"
	catalogmemory "jornada/contexts/strategy-journey/catalog-service/adapters/memory"
	catalogcommands "jornada/contexts/strategy-journey/catalog-service/application/commands"
	catalogentities "jornada/contexts/strategy-journey/catalog-service/domain/entities"
	rankingengine "jornada/contexts/strategy-journey/ranking-engine"
	rankingmemory "jornada/contexts/strategy-journey/ranking-engine/adapters/memory"
	rankingentities "jornada/contexts/strategy-journey/ranking-engine/domain/entities"
	rankingports "jornada/contexts/strategy-journey/ranking-engine/ports"
	sessionservice "jornada/contexts/strategy-journey/session-service"
	sessioncommands "jornada/contexts/strategy-journey/session-service/application/commands"
	sessionentities "jornada/contexts/strategy-journey/session-service/domain/entities"
	"jornada/internal/platform/config"
	"jornada/internal/platform/httpserver"
	"jornada/internal/platform/messaging"
)

// InMemorySeed is the data a single-process deployment starts with.
type InMemorySeed struct {
	Catalog  catalogcommands.SeedCatalogCommand
	Meetings []sessioncommands.OpenMeetingCommand
}

// InMemoryModules holds the three modules wired against in-memory stores
// that share sessions and pillar completions.
type InMemoryModules struct {
	Sessions sessionservice.Module
	Catalog  catalogservice.Module
	Rankings rankingengine.Module
	Bus      *messaging.Bus
}

// sessionMirror copies new sessions into the ranking projection.
type sessionMirror struct {
	rankings *rankingmemory.Store
}

func (m sessionMirror) SessionJoined(_ context.Context, session sessionentities.Session) {
	m.rankings.SetSession(rankingports.SessionProjection{
		SessionID: session.SessionID,
		MeetingID: session.MeetingID,
		Nickname:  session.Nickname,
	})
}

// completionCatalog reads pillar completion from the ranking store, which
// owns it, and everything else from the catalog store.
type completionCatalog struct {
	*catalogmemory.Store
	rankings *rankingmemory.Store
}

func (c completionCatalog) ListSessionPillars(ctx context.Context, sessionID string) ([]catalogentities.PillarStatus, error) {
	completions, err := c.rankings.ListPillarCompletions(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	items := make([]catalogentities.PillarStatus, 0, len(completions))
	for _, completion := range completions {
		at := completion.CompletedAt
		items = append(items, catalogentities.PillarStatus{
			PillarID:    completion.PillarID,
			IsCompleted: true,
			CompletedAt: &at,
		})
	}
	return items, nil
}

// WireInMemory builds the modules on shared in-memory stores, seeds the
// catalog and meetings through their use cases, and connects the ranking
// workers to an in-process bus.
func WireInMemory(ctx context.Context, seed InMemorySeed, logger *slog.Logger) (InMemoryModules, error) {
	rankingSeed := rankingmemory.Seed{}
	for _, pillar := range seed.Catalog.Pillars {
		rankingSeed.Pillars = append(rankingSeed.Pillars, rankingports.PillarProjection{
			PillarID:    pillar.PillarID,
			Name:        pillar.Name,
			Description: pillar.Description,
			Color:       pillar.Color,
			Icon:        pillar.Icon,
		})
	}
	for _, action := range seed.Catalog.Actions {
		rankingSeed.Actions = append(rankingSeed.Actions, rankingentities.Action{
			ActionID:    action.ActionID,
			PillarID:    action.PillarID,
			Title:       action.Title,
			Description: action.Description,
		})
	}

	rankings := rankingengine.NewInMemoryModule(rankingSeed, logger)
	bus, err := messaging.NewBus(nil, logger)
	if err != nil {
		return InMemoryModules{}, err
	}
	rankings.OutboxRelay.Publisher = bus
	rankings.JourneyConsumer.Subscriber = bus

	catalogStore := catalogmemory.NewStore(nil, nil)
	catalog := catalogservice.NewModule(catalogservice.Dependencies{
		Catalog: completionCatalog{Store: catalogStore, rankings: rankings.Store},
		Writer:  catalogStore,
		Logger:  logger,
	})
	catalog.Store = catalogStore
	if _, err := catalog.Seeder.SeedCatalog(ctx, seed.Catalog); err != nil {
		return InMemoryModules{}, err
	}

	sessions := sessionservice.NewInMemoryModule(nil, sessionMirror{rankings: rankings.Store}, logger)
	for _, meeting := range seed.Meetings {
		code, err := sessions.Meetings.OpenMeeting(ctx, meeting)
		if err != nil {
			return InMemoryModules{}, err
		}
		title := strings.TrimSpace(meeting.Title)
		if title == "" {
			title = code.MeetingID
		}
		rankings.Store.SetMeeting(rankingports.MeetingProjection{MeetingID: code.MeetingID, Title: title})
	}

	return InMemoryModules{
		Sessions: sessions,
		Catalog:  catalog,
		Rankings: rankings,
		Bus:      bus,
	}, nil
}

// BuildInMemoryAPI serves the full API from one process without Postgres or
// Redis. The outbox relay and achievement consumer run alongside the server.
func BuildInMemoryAPI(ctx context.Context, seed InMemorySeed) (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg, "api")

	modules, err := WireInMemory(ctx, seed, logger)
	if err != nil {
		return nil, err
	}
	modules.Rankings.JourneyConsumer.Disabled = !cfg.EnableAchievementConsumer

	server := httpserver.New(modules.Sessions, modules.Catalog, modules.Rankings, httpserver.Options{
		Addr:              normalizeAddr(cfg.HTTPPort),
		CookieTTL:         cfg.SessionCookieTTL,
		CookieSecure:      cfg.CookieSecure,
		JoinRatePerMinute: cfg.JoinRatePerMinute,
		TrustedProxies:    cfg.TrustedProxyPrefixes(),
		DashboardToken:    cfg.DashboardToken,
		Logger:            logger,
	})
	return &APIApp{
		server: server,
		logger: logger,
		background: &WorkerApp{
			bus:          modules.Bus,
			outboxRelay:  modules.Rankings.OutboxRelay,
			journeys:     modules.Rankings.JourneyConsumer,
			pollInterval: cfg.OutboxPollInterval,
			logger:       logger,
		},
	}, nil
}
