package config

import "github.com/alfredjeanlab/ticketforge/internal/model"

// DefaultProfile returns the built-in profile: a mid-sized workflow
// automation vendor with three delivery teams.
func DefaultProfile() *Profile {
	p := &Profile{
		Company:            "InnovaTech Solutions",
		ProjectPrefix:      "INNO",
		SprintDurationDays: 14,
		StoryPointScale:    []int{1, 2, 3, 5, 8, 13, 21},
		BugFrequency:       0.2,
		Probabilities: Probabilities{
			Dependency:  0.3,
			Blocking:    0.2,
			Clone:       0.1,
			Duplicate:   0.15,
			Implements:  0.2,
			BlockSample: 0.2,
		},
		Initiatives: []Initiative{
			{
				Name:        "AI Enhancement",
				Description: "Improve AI capabilities across the platform",
				Objectives: []string{
					"Enhance document classification accuracy by 20%",
					"Implement automated anomaly detection",
					"Add intelligent workflow recommendations",
				},
			},
			{
				Name:        "Platform Scalability",
				Description: "Scale platform to handle enterprise workloads",
				Objectives: []string{
					"Support 10x increase in document processing",
					"Reduce system latency by 40%",
					"Implement multi-region deployment",
				},
			},
			{
				Name:        "User Experience",
				Description: "Enhance platform usability and accessibility",
				Objectives: []string{
					"Redesign workflow designer interface",
					"Implement advanced search capabilities",
					"Add customizable dashboards",
				},
			},
		},
		StoryTemplates: map[model.Component]StoryTemplate{
			model.ComponentFrontend: {
				Features: []string{
					"Implement drag-and-drop workflow designer",
					"Add real-time collaboration features",
					"Create customizable dashboard widgets",
					"Enhance document preview functionality",
					"Improve mobile responsiveness",
				},
				Improvements: []string{
					"Optimize component load time",
					"Enhance error handling and feedback",
					"Implement progressive loading",
					"Add offline support capabilities",
				},
			},
			model.ComponentBackend: {
				Features: []string{
					"Implement document processing pipeline",
					"Create workflow execution engine",
					"Build real-time notification system",
					"Develop audit logging service",
					"Add multi-tenant support",
				},
				Improvements: []string{
					"Optimize database queries",
					"Implement caching layer",
					"Enhance error handling and recovery",
					"Add performance monitoring",
				},
			},
			model.ComponentDatabase: {
				Features: []string{
					"Design workflow state storage",
					"Implement document metadata indexing",
					"Create analytics data model",
					"Add audit trail storage",
					"Design caching structure",
				},
				Improvements: []string{
					"Optimize query performance",
					"Implement data partitioning",
					"Add data archival process",
					"Enhance backup procedures",
				},
			},
			model.ComponentInfrastructure: {
				Features: []string{
					"Set up auto-scaling configuration",
					"Implement blue-green deployment",
					"Add disaster recovery system",
					"Configure monitoring and alerts",
					"Set up CI/CD pipeline",
				},
				Improvements: []string{
					"Optimize resource utilization",
					"Enhance security measures",
					"Improve deployment process",
					"Add performance monitoring",
				},
			},
		},
		Personas: []string{"Process Manager", "Department Head", "End User"},
		Teams: []model.Team{
			{
				ID:         "TEAM-PLATFORM",
				Name:       "Platform Team",
				Components: []model.Component{model.ComponentBackend, model.ComponentDatabase},
				TechStack:  []string{"Go", "PostgreSQL", "NATS"},
				Members: []model.Member{
					{ID: "EMP-001", Name: "Priya Raman", Role: "Tech Lead"},
					{ID: "EMP-002", Name: "Marcus Webb", Role: "Senior Software Engineer"},
					{ID: "EMP-003", Name: "Lena Okafor", Role: "Software Engineer"},
					{ID: "EMP-004", Name: "Tomás Rivera", Role: "QA Engineer"},
				},
			},
			{
				ID:         "TEAM-WEB",
				Name:       "Web Experience Team",
				Components: []model.Component{model.ComponentFrontend},
				TechStack:  []string{"TypeScript", "React", "GraphQL"},
				Members: []model.Member{
					{ID: "EMP-005", Name: "Hana Sato", Role: "Tech Lead"},
					{ID: "EMP-006", Name: "Elliot Brandt", Role: "Senior Software Engineer"},
					{ID: "EMP-007", Name: "Noor Haddad", Role: "Software Engineer"},
					{ID: "EMP-008", Name: "Sam Kowalski", Role: "QA Engineer"},
				},
			},
			{
				ID:         "TEAM-INFRA",
				Name:       "Infrastructure Team",
				Components: []model.Component{model.ComponentInfrastructure, model.ComponentSecurity},
				TechStack:  []string{"Kubernetes", "Terraform", "AWS"},
				Members: []model.Member{
					{ID: "EMP-009", Name: "Ravi Menon", Role: "Tech Lead"},
					{ID: "EMP-010", Name: "Ingrid Larsen", Role: "Senior Software Engineer"},
					{ID: "EMP-011", Name: "Kofi Mensah", Role: "Software Engineer"},
				},
			},
		},
	}
	p.assignTeamIDs()
	return p
}
