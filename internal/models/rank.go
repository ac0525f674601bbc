package models

// RankRecord is one row of the standings. Rows are recomputed from player
// state, never edited.
type RankRecord struct {
	PlayerName string `yaml:"player_name"`
	VPCount    int    `yaml:"vp_count"`
	HP         int    `yaml:"hp"`
	Rank       int    `yaml:"rank"`
}
