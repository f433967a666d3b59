package queries

import (
	"context"
	"sort"
	"strings"

	"jornada/contexts/strategy-journey/ranking-engine/domain/entities"
	"jornada/contexts/strategy-journey/ranking-engine/ports"
)

const defaultDashboardTopActions = 10

type DashboardUseCase struct {
	Catalog   ports.ActionCatalog
	Dashboard ports.DashboardRepository
	TopN      int
}

// MeetingDashboard aggregates the finalized rankings of every session that
// joined the meeting.
func (uc DashboardUseCase) MeetingDashboard(ctx context.Context, meetingID string) (entities.MeetingDashboard, error) {
	meeting, err := uc.Dashboard.GetMeeting(ctx, strings.TrimSpace(meetingID))
	if err != nil {
		return entities.MeetingDashboard{}, err
	}
	totalSessions, err := uc.Dashboard.CountMeetingSessions(ctx, meeting.MeetingID)
	if err != nil {
		return entities.MeetingDashboard{}, err
	}
	rows, err := uc.Dashboard.ListMeetingPriorities(ctx, meeting.MeetingID)
	if err != nil {
		return entities.MeetingDashboard{}, err
	}
	confessionals, err := uc.Dashboard.ListMeetingConfessionals(ctx, meeting.MeetingID)
	if err != nil {
		return entities.MeetingDashboard{}, err
	}
	pillars, err := uc.Catalog.ListPillars(ctx)
	if err != nil {
		return entities.MeetingDashboard{}, err
	}

	pillarSizes := make(map[string]int, len(pillars))
	for _, pillar := range pillars {
		actions, err := uc.Catalog.ListActions(ctx, pillar.PillarID)
		if err != nil {
			return entities.MeetingDashboard{}, err
		}
		pillarSizes[pillar.PillarID] = len(actions)
	}

	standings := aggregateStandings(rows, pillarSizes)
	limit := uc.TopN
	if limit <= 0 {
		limit = defaultDashboardTopActions
	}
	if len(standings) > limit {
		standings = standings[:limit]
	}

	return entities.MeetingDashboard{
		MeetingID:     meeting.MeetingID,
		Title:         meeting.Title,
		TotalSessions: totalSessions,
		TopActions:    standings,
		Confessionals: groupInsights(pillars, confessionals),
	}, nil
}

func aggregateStandings(rows []ports.PriorityRow, pillarSizes map[string]int) []entities.ActionStanding {
	byAction := make(map[string]*entities.ActionStanding)
	rankSums := make(map[string]int)
	for _, row := range rows {
		standing, ok := byAction[row.ActionID]
		if !ok {
			standing = &entities.ActionStanding{ActionID: row.ActionID, PillarID: row.PillarID, Title: row.Title}
			byAction[row.ActionID] = standing
		}
		standing.Rankings++
		rankSums[row.ActionID] += row.Rank
		if row.Rank == 1 {
			standing.TotalRank1++
		}
		if size := pillarSizes[row.PillarID]; size >= row.Rank {
			standing.TotalPoints += size - row.Rank + 1
		}
	}

	items := make([]entities.ActionStanding, 0, len(byAction))
	for id, standing := range byAction {
		standing.AvgRank = float64(rankSums[id]) / float64(standing.Rankings)
		items = append(items, *standing)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].TotalRank1 != items[j].TotalRank1 {
			return items[i].TotalRank1 > items[j].TotalRank1
		}
		if items[i].AvgRank != items[j].AvgRank {
			return items[i].AvgRank < items[j].AvgRank
		}
		return items[i].ActionID < items[j].ActionID
	})
	return items
}

func groupInsights(pillars []ports.PillarProjection, confessionals []entities.Confessional) []entities.PillarInsights {
	byPillar := make(map[string][]string)
	for _, confessional := range confessionals {
		byPillar[confessional.PillarID] = append(byPillar[confessional.PillarID], confessional.Confession)
	}
	items := make([]entities.PillarInsights, 0, len(pillars))
	for _, pillar := range pillars {
		insights, ok := byPillar[pillar.PillarID]
		if !ok {
			continue
		}
		items = append(items, entities.PillarInsights{PillarID: pillar.PillarID, Name: pillar.Name, Insights: insights})
	}
	return items
}
