package jobs

import "github.com/spigell/job-qualifier/internal/ai"

// SentinelRole is the category assigned when the model reports a role outside
// the accepted enumeration. It never passes the quality check.
const SentinelRole = "Other IT role"

// Token budgets per use case.
const (
	classifyMaxTokens = 400
	skillsMaxTokens   = 400
	titleMaxTokens    = 400
	sanitiseMaxTokens = 1000
)

const (
	fieldCompletenessScore  = "job_completeness_score"
	fieldRole               = "role"
	fieldUniversityOrPublic = "university_or_public_institution_job"
	fieldTitleCategory      = "title_category"
	fieldCoreSkills         = "core_technical_skills"
	fieldSupportingSkills   = "supporting_technical_skills"
	fieldOtherSkills        = "other_technical_skills"
)

var (
	// ClassifyJobTool scores a posting's completeness and categorizes its role.
	ClassifyJobTool = ai.MustToolSchema(
		"classify_job",
		"Score how complete a job posting is and classify the IT role it advertises.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				fieldCompletenessScore: map[string]any{
					"type":        "integer",
					"minimum":     0,
					"maximum":     100,
					"description": "How completely the posting describes the role, responsibilities, requirements, stack and conditions, from 0 to 100.",
				},
				fieldRole: map[string]any{
					"type": "string",
					"enum": []string{
						"Backend Developer",
						"Frontend Developer",
						"Full Stack Developer",
						"Mobile Developer",
						"DevOps Engineer",
						"Data Engineer",
						"Data Scientist",
						"Machine Learning Engineer",
						"QA Engineer",
						"Embedded Developer",
						"Game Developer",
						"Security Engineer",
						SentinelRole,
					},
					"description": "The role the posting hires for. Use \"" + SentinelRole + "\" when none of the others fits.",
				},
				fieldUniversityOrPublic: map[string]any{
					"type":        "boolean",
					"description": "True when the employer is a university, school, research institute or public/government institution.",
				},
			},
			"required": []string{fieldCompletenessScore, fieldRole, fieldUniversityOrPublic},
		},
	)

	// ExtractSkillsTool splits the technical skills of a posting into three tiers.
	ExtractSkillsTool = ai.MustToolSchema(
		"extract_skills_from_job",
		"Extract the technical skills a job posting asks for, grouped by importance.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				fieldCoreSkills: map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Skills the role is built around: primary languages, frameworks and platforms.",
				},
				fieldSupportingSkills: map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Skills used regularly alongside the core stack: databases, CI/CD, cloud services.",
				},
				fieldOtherSkills: map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Nice-to-have or incidental technical skills.",
				},
			},
			"required": []string{fieldCoreSkills, fieldSupportingSkills, fieldOtherSkills},
		},
	)

	// ExtractTitleTool categorizes the person behind a contact blurb.
	ExtractTitleTool = ai.MustToolSchema(
		"extract_title",
		"Categorize the job title of the contact person.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				fieldTitleCategory: map[string]any{
					"type": "string",
					"enum": []string{
						"Recruiter",
						"HR",
						"Hiring Manager",
						"Engineering Manager",
						"CTO",
						"Founder",
						"Other",
					},
					"description": "The category that best matches the contact's title.",
				},
			},
			"required": []string{fieldTitleCategory},
		},
	)
)
