package contracts

import "time"

const DefaultBibleVersion = "ESV"

// ScriptureContextRequest asks for biblical insight on a free-text query
type ScriptureContextRequest struct {
	Query        string `json:"query" validate:"min=10,max=2000"`
	Context      string `json:"context,omitempty" validate:"max=5000"`
	ContentType  string `json:"content_type,omitempty" validate:"omitempty,oneof=discussion prayer_request project general"`
	BibleVersion string `json:"bible_version,omitempty"`
}

func (r ScriptureContextRequest) Validate() error {
	return check(r)
}

// ScriptureReference is a passage cited by the assistant
type ScriptureReference struct {
	Book       string `json:"book"`
	Chapter    int    `json:"chapter"`
	VerseStart int    `json:"verse_start"`
	VerseEnd   *int   `json:"verse_end"`
	Text       string `json:"text"`
	Version    string `json:"version"`
}

type ScriptureContextResponse struct {
	Query                string               `json:"query"`
	Summary              string               `json:"summary"`
	BiblicalPrinciples   []string             `json:"biblical_principles"`
	ScriptureReferences  []ScriptureReference `json:"scripture_references"`
	TheologicalInsights  string               `json:"theological_insights"`
	PracticalApplication string               `json:"practical_application"`
	FurtherStudy         []string             `json:"further_study"`
	Timestamp            time.Time            `json:"timestamp"`
}
