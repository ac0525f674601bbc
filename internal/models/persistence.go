package models

import (
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// SaveDir is where transcripts are written. The CLI overrides it.
var SaveDir = ".saves"

// Transcript is the read-only report of a game. It is written for people and
// tools to read; a game cannot be resumed from it.
type Transcript struct {
	Summary   TranscriptSummary `yaml:"summary"`
	Standings []RankRecord      `yaml:"standings"`
	Events    []TranscriptEvent `yaml:"events"`
}

// TranscriptSummary describes how a game ended.
type TranscriptSummary struct {
	SessionID string       `yaml:"session_id"`
	Rounds    int          `yaml:"rounds"`
	Winner    string       `yaml:"winner,omitempty"`
	Reason    string       `yaml:"reason"`
	Players   []PlayerView `yaml:"players"`
}

// TranscriptEvent is the serialized form of an EventRecord plus its refined line.
type TranscriptEvent struct {
	ID           uint64    `yaml:"id"`
	Timestamp    time.Time `yaml:"timestamp"`
	Round        int       `yaml:"round"`
	Participants []string  `yaml:"participants"`
	RolledBy     string    `yaml:"rolled_by"`
	RollerStatus Status    `yaml:"roller_status"`
	Face         Face      `yaml:"-"` // written by name, see MarshalYAML
	Roll         int       `yaml:"roll"`
	DamageDealt  []Effect  `yaml:"damage_dealt,omitempty"`
	HealingDone  []Effect  `yaml:"healing_done,omitempty"`
	VPGained     []Effect  `yaml:"vp_gained,omitempty"`
	VPStolen     []Effect  `yaml:"vp_stolen,omitempty"`
	Line         string    `yaml:"line"`
}

// NewTranscriptEvent converts a ledger record and its refined line.
func NewTranscriptEvent(rec EventRecord, line string) TranscriptEvent {
	c := rec.Clone()
	return TranscriptEvent{
		ID:           c.ID,
		Timestamp:    c.Timestamp,
		Round:        c.Round,
		Participants: c.Participants,
		RolledBy:     c.RolledBy,
		RollerStatus: c.RollerStatus,
		Face:         c.Face,
		Roll:         c.Roll,
		DamageDealt:  c.DamageDealt,
		HealingDone:  c.HealingDone,
		VPGained:     c.VPGained,
		VPStolen:     c.VPStolen,
		Line:         line,
	}
}

func (e TranscriptEvent) MarshalYAML() (any, error) {
	type plain TranscriptEvent
	var node yaml.Node
	if err := node.Encode(plain(e)); err != nil {
		return nil, err
	}
	if e.Face == nil {
		return &node, nil
	}
	var face yaml.Node
	if err := face.Encode(e.Face); err != nil {
		return nil, err
	}
	key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "face"}

	// keep the face next to the roll it came from
	at := len(node.Content)
	for i := 0; i < len(node.Content); i += 2 {
		if node.Content[i].Value == "roll" {
			at = i
			break
		}
	}
	node.Content = slices.Insert(node.Content, at, key, &face)
	return &node, nil
}

func (e *TranscriptEvent) UnmarshalYAML(node *yaml.Node) error {
	type plain TranscriptEvent
	if err := node.Decode((*plain)(e)); err != nil {
		return err
	}
	var named struct {
		Face string `yaml:"face"`
	}
	if err := node.Decode(&named); err != nil {
		return err
	}
	face, err := ParseFace(named.Face)
	if err != nil {
		return err
	}
	e.Face = face
	return nil
}

func (t *Transcript) Save(name string) error {
	dir := filepath.Join(SaveDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Save summary.yaml
	summaryData, err := yaml.Marshal(t.Summary)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "summary.yaml"), summaryData, 0644); err != nil {
		return err
	}

	// Save standings.yaml
	standingsData, err := yaml.Marshal(t.Standings)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "standings.yaml"), standingsData, 0644); err != nil {
		return err
	}

	// Save events.yaml
	eventsData, err := yaml.Marshal(t.Events)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "events.yaml"), eventsData, 0644); err != nil {
		return err
	}

	return nil
}

func LoadTranscript(name string) (*Transcript, error) {
	dir := filepath.Join(SaveDir, name)

	summaryData, err := os.ReadFile(filepath.Join(dir, "summary.yaml"))
	if err != nil {
		return nil, err
	}
	var summary TranscriptSummary
	if err := yaml.Unmarshal(summaryData, &summary); err != nil {
		return nil, err
	}

	standingsData, err := os.ReadFile(filepath.Join(dir, "standings.yaml"))
	if err != nil {
		return nil, err
	}
	var standings []RankRecord
	if err := yaml.Unmarshal(standingsData, &standings); err != nil {
		return nil, err
	}

	eventsData, err := os.ReadFile(filepath.Join(dir, "events.yaml"))
	if err != nil {
		return nil, err
	}
	var events []TranscriptEvent
	if err := yaml.Unmarshal(eventsData, &events); err != nil {
		return nil, err
	}

	return &Transcript{
		Summary:   summary,
		Standings: standings,
		Events:    events,
	}, nil
}

func ListTranscripts() ([]string, error) {
	if _, err := os.Stat(SaveDir); os.IsNotExist(err) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(SaveDir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			// summary.yaml marks a complete transcript
			summaryPath := filepath.Join(SaveDir, entry.Name(), "summary.yaml")
			if _, err := os.Stat(summaryPath); err == nil {
				names = append(names, entry.Name())
			}
		}
	}
	return names, nil
}
