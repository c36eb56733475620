package datasource

import "seetheplay/domain"

// SampleTeam is the fallback home team used when the provider is down.
func SampleTeam() domain.Team {
	return domain.Team{ID: "sample_phi", Name: "Eagles", Market: "Philadelphia"}
}

// SampleRoster is the fallback roster paired with SampleTeam. It keeps the
// simulation alive offline and is sized to the default roster limit.
func SampleRoster() []domain.Player {
	return []domain.Player{
		{ID: "sample_p1", FirstName: "Jalen", LastName: "Hurts", Position: "QB"},
		{ID: "sample_p2", FirstName: "Saquon", LastName: "Barkley", Position: "RB"},
		{ID: "sample_p3", FirstName: "A.J.", LastName: "Brown", Position: "WR"},
		{ID: "sample_p4", FirstName: "DeVonta", LastName: "Smith", Position: "WR"},
		{ID: "sample_p5", FirstName: "Dallas", LastName: "Goedert", Position: "TE"},
		{ID: "sample_p6", FirstName: "Kenneth", LastName: "Gainwell", Position: "RB"},
		{ID: "sample_p7", FirstName: "Jahan", LastName: "Dotson", Position: "WR"},
		{ID: "sample_p8", FirstName: "Grant", LastName: "Calcaterra", Position: "TE"},
		{ID: "sample_p9", FirstName: "Will", LastName: "Shipley", Position: "RB"},
		{ID: "sample_p10", FirstName: "Tanner", LastName: "McKee", Position: "QB"},
	}
}

// SampleStats is the fallback team rating profile.
func SampleStats() domain.TeamStats {
	return domain.TeamStats{OffensiveRating: 0.78, Pace: 0.65}
}
