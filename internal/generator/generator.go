// Package generator maps job types to prompt builders. Each supported type
// declares a parameter schema and a pure BuildPrompt function; dispatch
// rejects unknown and retired types before any collaborator call.
package generator

import (
	"strings"
	"time"

	"github.com/slushhq/agent-ops/internal/domain/model"
	apperrors "github.com/slushhq/agent-ops/internal/errors"
	"github.com/slushhq/agent-ops/internal/sandbox"
)

// Prompt is one assembled model invocation.
type Prompt struct {
	System string
	User   string

	// InputsUsed lists the input sources the prompt was assembled from, in
	// order. ApplyInputsUsed splices it into the generated document.
	InputsUsed []string
}

// Inputs carries everything a prompt builder may consume. Builders are pure:
// all I/O (file loads, snapshot fetch) happens before BuildPrompt runs.
type Inputs struct {
	Params   model.Params
	Files    map[string]string // param name -> loaded content
	Snapshot string            // business snapshot, empty unless the schema wants it
	Now      time.Time         // reference time for date defaults
}

// FileParam declares an optional parameter whose value is a sandbox file key.
type FileParam struct {
	Name     string
	Category sandbox.Category
}

// Schema declares the parameter contract of one job type.
type Schema struct {
	Type          model.JobType
	Required      []string
	Optional      []string
	FileParams    []FileParam
	WantsSnapshot bool
}

// Validate checks params against the schema. A missing or blank required
// parameter is a validation error carrying the field name; extra parameters
// are ignored.
func (s Schema) Validate(params model.Params) error {
	for _, name := range s.Required {
		v, ok := params[name]
		if !ok {
			return apperrors.ValidationField(name, "missing required parameter: "+name)
		}
		if str, isStr := v.(string); isStr && strings.TrimSpace(str) == "" {
			return apperrors.ValidationField(name, "required parameter is blank: "+name)
		}
	}
	return nil
}

// Generator builds prompts for one job type.
type Generator interface {
	Schema() Schema
	BuildPrompt(in Inputs) (Prompt, error)
}

// File-reference parameters shared by all supported types. Each maps to the
// sandbox category its files live under.
var sharedFileParams = []FileParam{
	{Name: "repo_snapshot_key", Category: sandbox.CategoryRepoSnapshots},
	{Name: "data_export_key", Category: sandbox.CategoryPilotDataExports},
	{Name: "notes_key", Category: sandbox.CategoryOutputs},
}

var registry = map[model.JobType]Generator{
	model.JobTypePromptPack:      &promptPackGenerator{},
	model.JobTypeResearchBrief:   &researchBriefGenerator{},
	model.JobTypeWeeklyPilotMemo: &weeklyMemoGenerator{},
}

// ForType resolves the generator for a job type. The retired lead_list type
// yields a deprecated-type error, anything else unknown a validation error;
// neither ever reaches prompt construction.
func ForType(t model.JobType) (Generator, error) {
	if t.Deprecated() {
		return nil, apperrors.DeprecatedType(
			"job type lead_list has been retired; supported types: prompt_pack, research_brief, weekly_pilot_memo")
	}
	gen, ok := registry[t]
	if !ok {
		return nil, apperrors.Validationf("unknown job type: %q", t)
	}
	return gen, nil
}

// SchemaForType resolves just the parameter schema, with the same rejection
// rules as ForType. The job store uses it to validate before persisting.
func SchemaForType(t model.JobType) (Schema, error) {
	gen, err := ForType(t)
	if err != nil {
		return Schema{}, err
	}
	return gen.Schema(), nil
}

// NormalizeQuestions accepts the questions parameter as either an ordered
// list of strings or a single newline-delimited string and returns the same
// ordered, trimmed, blank-free sequence for both shapes.
func NormalizeQuestions(v any) []string {
	var raw []string
	switch q := v.(type) {
	case nil:
		return nil
	case string:
		raw = strings.Split(q, "\n")
	case []string:
		raw = q
	case []any:
		for _, item := range q {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	default:
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, q := range raw {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ApplyInputsUsed replaces the template's inputs placeholder in a generated
// document with the actual input source list.
func ApplyInputsUsed(doc string, inputs []string) string {
	const placeholder = "## Inputs Used\n[List each input source explicitly]"
	if len(inputs) == 0 || !strings.Contains(doc, placeholder) {
		return doc
	}
	lines := make([]string, len(inputs))
	for i, in := range inputs {
		lines[i] = "- " + in
	}
	return strings.Replace(doc, placeholder, "## Inputs Used\n"+strings.Join(lines, "\n"), 1)
}

// clip bounds embedded file content so a single large input cannot dominate
// the prompt.
func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

// appendFileSections writes loaded file contents under a heading and records
// each file in the inputs list. Iteration follows the schema's declared
// FileParams order so prompts are deterministic.
func appendFileSections(sb *strings.Builder, inputs *[]string, opts fileSectionOptions) {
	if len(opts.Files) == 0 {
		return
	}
	sb.WriteString("\n## " + opts.Heading + ":\n")
	for _, fp := range opts.Order {
		content, ok := opts.Files[fp.Name]
		if !ok {
			continue
		}
		*inputs = append(*inputs, opts.Label+": "+fp.Name)
		title := strings.TrimSuffix(fp.Name, "_key")
		sb.WriteString("\n### " + title + ":\n" + clip(content, opts.ClipChars) + "\n")
	}
}

type fileSectionOptions struct {
	Files     map[string]string
	Order     []FileParam
	Heading   string
	Label     string
	ClipChars int
}
