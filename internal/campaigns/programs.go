package campaigns

import (
	"sort"

	"github.com/AngelCh415/pardot-insights/internal/metrics"
	"github.com/AngelCh415/pardot-insights/internal/models"
)

type ProgramsReport struct {
	TotalPrograms     int                        `json:"total_programs"`
	Running           int                        `json:"running"`
	Paused            int                        `json:"paused"`
	Unknown           int                        `json:"unknown"`
	RunningPercentage float64                    `json:"running_percentage"`
	Programs          []models.EngagementProgram `json:"programs"`
}

// AnalyzePrograms counts engagement programs per lifecycle status. Programs are
// listed running first, then paused, then the rest, newest first within each.
func AnalyzePrograms(programs []models.EngagementProgram) *ProgramsReport {
	rep := &ProgramsReport{TotalPrograms: len(programs), Programs: make([]models.EngagementProgram, 0, len(programs))}
	for _, p := range programs {
		p.Status = models.ParseProgramStatus(string(p.Status))
		switch p.Status {
		case models.ProgramRunning:
			rep.Running++
		case models.ProgramPaused:
			rep.Paused++
		default:
			rep.Unknown++
		}
		rep.Programs = append(rep.Programs, p)
	}
	rank := map[models.ProgramStatus]int{models.ProgramRunning: 0, models.ProgramPaused: 1, models.ProgramUnknown: 2}
	sort.SliceStable(rep.Programs, func(i, j int) bool {
		a, b := rep.Programs[i], rep.Programs[j]
		if rank[a.Status] != rank[b.Status] {
			return rank[a.Status] < rank[b.Status]
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	rep.RunningPercentage = metrics.Pct(rep.Running, rep.TotalPrograms)
	return rep
}
