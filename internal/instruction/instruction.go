// Package instruction turns a community name into the text sent to the generation provider.
package instruction

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"
)

// Section is one chapter the generated e-book must contain.
type Section struct {
	Label       string
	Description string
}

const communityPlaceholder = "{community}"

// Sections lists the required chapters in their mandatory order.
var Sections = []Section{
	{"PREFACE", "Brief executive summary"},
	{"TABLE OF CONTENTS", "Hyperlinked internally and Indexed Numbering tabular format"},
	{"INTRODUCTION", "Definition and scope of " + communityPlaceholder},
	{"INDUSTRY EVOLUTION", "History and Future of that respective field"},
	{"ROLES", "Detailed job titles and hierarchies"},
	{"SKILLS", "Hard and Soft skills matrix"},
	{"10-YEAR GROWTH OUTLOOK", "Future trends, AI impact"},
	{"HOW TO PREPARE", "Prerequisites and mindset"},
	{"INTERPERSONAL & BEHAVIORAL SKILLS", "Communication, leadership"},
	{"LEARNING CURVE & ROADMAP", "0-6 months, 6-12 months, 1-3 years"},
	{"EXAMPLE PROJECTS", "3 specific, real-world portfolio projects with descriptions"},
	{"CERTIFICATIONS / COURSES / TOOLS", "Specific names of tools and credentials"},
	{"COMPANY EXAMPLES", "Top tier, mid-tier, and startups hiring " + communityPlaceholder},
	{"SALARY RANGES & PERKS", "Entry, Mid, Senior levels"},
	{"CONCLUSION", "Final actionable advice"},
	{"APPENDIX & TEMPLATES", "Checklists, resume keywords"},
}

// DefaultTemplate is used when no instruction file is configured.
// Templates see .Community (the name, verbatim) and .Sections (the numbered chapter list).
const DefaultTemplate = `You are an Expert Industry Analyst and Career Strategist.
Your task is to write a comprehensive, publication-ready E-Book for an IT and Non-IT Recruiting Agency targeting the specific community: '{{.Community}}'.

**OBJECTIVE:**
Generate a 10-15 page equivalent professional guide. The tone must be authoritative, motivational,
and strictly industry-focused, refined for a young professional audience.

**CONSTRAINTS:**
1. NO storytelling, NO metaphors, NO fictional scenarios.
2. NO conversational filler (e.g., "Let's dive in") and no conversational headings (e.g., "Defining...").
3. Output MUST be valid, standalone HTML5 code with embedded CSS.
4. The CSS must make the document look like a professional whitepaper (serif fonts for body, distinct headers, good line-height and padding, clear margins).
5. Do not repeat any of these instructions in the E-Book content.
6. Format every section properly with bold text, headers and sub headers.

**INTERNAL MINDSET (Do not explicitly state this, but embody it):**
- What is the Industry? -> Insights, trends.
- What is there for Me? -> Roles, specific skills.
- How do I enter? -> Actionable roadmaps.

**REQUIRED E-BOOK STRUCTURE (Strictly follow this order):**
{{.Sections}}
**HTML STYLING REQUIREMENTS:**
- Use a clean font-family (e.g., 'Merriweather', serif for text; 'Arial', sans-serif for headers).
- Use <h2>, <h3> for sections.
- Use <ul> and <li> for lists to make it scannable.
- Use <div style="background-color: #f0f2f6; padding: 15px; border-left: 5px solid #2c3e50; margin: 10px 0;"> for key takeaways, with text in black.
- Do NOT include markdown blocks (` + "```html" + `). Just return the raw HTML code.
- Do NOT use <script>, <iframe>, <form> or external stylesheets.
`

// Builder renders instructions from a template. It is safe for concurrent use.
type Builder struct {
	tmpl *template.Template
}

type templateData struct {
	Community string
	Sections  string
}

// NewBuilder parses text as an instruction template. The template must place the
// community name and the section list in its output.
func NewBuilder(text string) (*Builder, error) {
	tmpl, err := template.New("instruction").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing instruction template: %w", err)
	}
	b := &Builder{tmpl: tmpl}

	const probe = "Probe Community"
	out, err := b.render(probe)
	if err != nil {
		return nil, fmt.Errorf("executing instruction template: %w", err)
	}
	if !strings.Contains(out, probe) {
		return nil, errors.New("instruction template does not use {{.Community}}")
	}
	if !ContainsSectionsInOrder(out) {
		return nil, errors.New("instruction template does not use {{.Sections}}")
	}
	return b, nil
}

// NewBuilderFromFile reads the template from path, or uses DefaultTemplate when path is empty.
func NewBuilderFromFile(path string) (*Builder, error) {
	if len(path) == 0 {
		return NewBuilder(DefaultTemplate)
	}
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading instruction template: %w", err)
	}
	return NewBuilder(string(text))
}

// Default returns a builder over DefaultTemplate.
func Default() *Builder {
	b, err := NewBuilder(DefaultTemplate)
	if err != nil {
		panic(err)
	}
	return b
}

// Build returns the instruction for the given community. The name is embedded verbatim.
func (b *Builder) Build(community string) string {
	// execution was proven by NewBuilder and the data shape never changes
	out, _ := b.render(community)
	return out
}

func (b *Builder) render(community string) (string, error) {
	var sb strings.Builder
	err := b.tmpl.Execute(&sb, templateData{
		Community: community,
		Sections:  FormatSections(community),
	})
	return sb.String(), err
}

// FormatSections renders the numbered chapter list for community.
func FormatSections(community string) string {
	var sb strings.Builder
	for i, s := range Sections {
		desc := strings.ReplaceAll(s.Description, communityPlaceholder, community)
		sb.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, s.Label, desc))
	}
	return sb.String()
}

// ContainsSectionsInOrder reports whether every numbered section label occurs in text
// in the mandatory order.
func ContainsSectionsInOrder(text string) bool {
	pos := 0
	for i, s := range Sections {
		marker := fmt.Sprintf("%d. %s", i+1, s.Label)
		idx := strings.Index(text[pos:], marker)
		if idx < 0 {
			return false
		}
		pos += idx + len(marker)
	}
	return true
}
