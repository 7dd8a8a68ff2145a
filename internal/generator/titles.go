package generator

import (
	"fmt"
	"math/rand/v2"

	"github.com/alfredjeanlab/ticketforge/internal/config"
	"github.com/alfredjeanlab/ticketforge/internal/model"
)

var (
	taskActivities = []string{
		"API design", "Core implementation", "Unit tests", "Integration tests",
		"Error handling", "Performance tuning", "Monitoring", "Documentation",
	}

	subtaskSteps = []string{
		"Write migration", "Add input validation", "Handle error cases", "Add structured logging",
		"Update fixtures", "Address review comments", "Add metrics", "Update runbook",
	}

	bugSymptoms = []string{
		"request fails with 500 error", "page renders blank after login",
		"timeout under sustained load", "incorrect totals in report",
		"data not persisted after save", "duplicate notifications sent",
	}

	bugEnvironments = []string{"Production", "Staging", "QA"}

	subtaskChecklist = []string{"Code complete", "Tests added", "Peer reviewed"}

	// relatedComponents is the component a task most often also touches.
	relatedComponents = map[model.Component]model.Component{
		model.ComponentFrontend:       model.ComponentBackend,
		model.ComponentBackend:        model.ComponentDatabase,
		model.ComponentDatabase:       model.ComponentBackend,
		model.ComponentInfrastructure: model.ComponentSecurity,
		model.ComponentSecurity:       model.ComponentInfrastructure,
		model.ComponentTesting:        model.ComponentBackend,
	}
)

func epicTitle(c model.Component) string {
	return fmt.Sprintf("Epic: %s Enhancement Initiative", c)
}

func storyTitle(r *rand.Rand, p *config.Profile, c model.Component) string {
	tpl := p.StoryTemplates[c]
	pool := append(append([]string(nil), tpl.Features...), tpl.Improvements...)
	if len(pool) == 0 {
		return fmt.Sprintf("Implement %s Feature", c)
	}
	return choice(r, pool)
}

func taskTitle(activity, story string) string {
	return fmt.Sprintf("%s: %s", activity, story)
}

func subtaskTitle(r *rand.Rand, parentID string) string {
	return fmt.Sprintf("%s for %s", choice(r, subtaskSteps), parentID)
}

func bugTitle(r *rand.Rand, c model.Component) string {
	return fmt.Sprintf("%s: %s", c, choice(r, bugSymptoms))
}
