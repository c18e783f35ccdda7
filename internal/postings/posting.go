package postings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	"github.com/spigell/job-qualifier/internal/jobs"
)

const (
	PostingUIDField  = "UID"
	PostingRoleField = "Role"
)

type Postings struct {
	Items []*Posting `json:"items"`
}

// Posting is a job posting together with whatever the enrichment stages
// produced for it.
type Posting struct {
	UID         string `json:"uid,omitempty"`
	Description string `json:"description,omitempty"`
	ContactInfo string `json:"contact_info,omitempty"`

	Quality       *Quality       `json:"quality,omitempty"`
	Skills        *jobs.SkillSet `json:"skills,omitempty"`
	TitleCategory string         `json:"title_category,omitempty"`
	Sanitised     string         `json:"sanitised_description,omitempty"`
	SanitiseError string         `json:"sanitise_error,omitempty"`
}

type Quality struct {
	Accepted           bool           `json:"accepted"`
	Score              int            `json:"score"`
	Role               string         `json:"role"`
	UniversityOrPublic bool           `json:"university_or_public_institution"`
	Raw                map[string]any `json:"raw,omitempty"`
}

// QualityFrom converts a classifier verdict for storage on a posting.
func QualityFrom(c jobs.Classification) *Quality {
	return &Quality{
		Accepted:           c.Verdict,
		Score:              c.CompletenessScore,
		Role:               c.Role,
		UniversityOrPublic: c.UniversityOrPublic,
		Raw:                c.Fields,
	}
}

// FromFile reads postings from a JSON file holding either a list of postings
// or an object with an "items" list. Postings without a uid get a random one.
func FromFile(path string) (*Postings, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Decode(file)
}

func Decode(r io.Reader) (*Postings, error) {
	var raw any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return &Postings{}, nil
		}
		return nil, fmt.Errorf("parse postings: %w", err)
	}

	if list, ok := raw.([]any); ok {
		raw = map[string]any{"items": list}
	}

	var p Postings
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode postings: %w", err)
	}

	p.AssignUIDs()
	return &p, nil
}

// AssignUIDs gives every posting without a uid a random one.
func (p *Postings) AssignUIDs() {
	for _, posting := range p.Items {
		if strings.TrimSpace(posting.UID) == "" {
			posting.UID = uuid.NewString()
		}
	}
}

func (p *Postings) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

func (p *Postings) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	return p.Encode(file)
}

func (p *Postings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := p.Encode(file); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func (p *Posting) GetStringField(name string) string {
	switch name {
	case PostingUIDField:
		return p.UID
	case PostingRoleField:
		if p.Quality == nil {
			return ""
		}
		return p.Quality.Role
	default:
		return ""
	}
}

// ReportByRole groups accepted postings by the role the classifier picked.
// Postings without a quality verdict are listed under "unclassified".
func (p *Postings) ReportByRole() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, posting := range p.Items {
		key := "unclassified"
		entry := map[string]string{"uid": posting.UID}
		if posting.Quality != nil {
			key = posting.Quality.Role
			entry["score"] = fmt.Sprintf("%d", posting.Quality.Score)
		}
		if posting.TitleCategory != "" {
			entry["contact"] = posting.TitleCategory
		}
		if posting.Skills != nil && len(posting.Skills.Core) > 0 {
			entry["core skills"] = strings.Join(posting.Skills.Core, ", ")
		}
		if posting.SanitiseError != "" {
			entry["sanitise error"] = posting.SanitiseError
		}
		report[key] = append(report[key], entry)
	}
	return report
}

func (p *Postings) Len() int {
	return len(p.Items)
}

func (p *Postings) FindByUID(uid string) *Posting {
	for _, posting := range p.Items {
		if posting.UID == uid {
			return posting
		}
	}
	return nil
}

// Exclude removes postings whose field name matches one of targets and
// returns the uids of the removed postings. The remaining postings keep their order.
func (p *Postings) Exclude(name string, targets []string) []string {
	var excluded []string
	p.Items = slices.DeleteFunc(p.Items, func(posting *Posting) bool {
		if !slices.Contains(targets, posting.GetStringField(name)) {
			return false
		}
		excluded = append(excluded, posting.UID)
		return true
	})
	return excluded
}

// UIDs returns the uids of all postings in order.
func (p *Postings) UIDs() []string {
	uids := make([]string, 0, len(p.Items))
	for _, posting := range p.Items {
		uids = append(uids, posting.UID)
	}
	return uids
}
