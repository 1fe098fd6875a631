// Greeting templates sent with each apply. A random template is picked
// per posting so consecutive messages don't look machine-generated.

package greeting

import (
	"math/rand"
	"strings"
	"time"

	"go-jobapply-automation/internal/platform"
)

type Picker struct {
	templates []string
	rnd       *rand.Rand
}

func NewPicker(templates []string) *Picker {
	return &Picker{
		templates: templates,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// For picks a template and substitutes {position} and {company}.
// Returns "" when no templates are configured; the adapters treat an
// empty greeting as "open the chat, send nothing".
func (p *Picker) For(posting platform.JobPosting) string {
	if p == nil || len(p.templates) == 0 {
		return ""
	}
	g := p.templates[p.rnd.Intn(len(p.templates))]
	g = strings.ReplaceAll(g, "{position}", posting.Title)
	g = strings.ReplaceAll(g, "{company}", posting.Company)
	return g
}
