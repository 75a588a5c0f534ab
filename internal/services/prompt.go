package services

import (
	"fmt"

	"alfredoptarigan/resume-assistant/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// Build returns the instruction for task. Output depends only on the task fields.
func (pb *PromptBuilder) Build(task models.Task) (string, error) {
	switch t := task.(type) {
	case models.ATSScoreTask:
		return pb.BuildATSScorePrompt(t.ResumeText), nil
	case models.CoverLetterTask:
		return pb.BuildCoverLetterPrompt(t.ResumeText, t.JobDescription), nil
	case models.ResumeRewriteTask:
		return pb.BuildResumeRewritePrompt(t.ResumeText), nil
	default:
		return "", fmt.Errorf("no prompt template for task %T", task)
	}
}

// BuildATSScorePrompt creates prompt for ATS compatibility scoring
func (pb *PromptBuilder) BuildATSScorePrompt(resumeText string) string {
	return fmt.Sprintf(`You are an expert ATS (Applicant Tracking System) resume analyzer.
Analyze the following resume and provide a comprehensive evaluation of how well it will be parsed and ranked by ATS software.

RESUME TEXT:
%s

Evaluate the resume against these ATS criteria:
1. Keyword optimization and relevance
2. Formatting and structure (ATS-friendly layout)
3. Section completeness (contact info, work experience, education, skills)
4. Use of standard section headers
5. File format compatibility
6. Absence of graphics or images that ATS cannot read
7. Consistent dates and formatting
8. Quantifiable achievements and metrics
9. Industry-specific keywords
10. Overall readability and parseability

Score from 0 to 100 where:
- 90-100: Excellent ATS compatibility
- 70-89: Good ATS compatibility with minor improvements needed
- 50-69: Fair ATS compatibility, significant improvements recommended
- 0-49: Poor ATS compatibility, major overhaul needed

Return your response in the following JSON format, with the fields in this order:
{
  "score": <number between 0 and 100>,
  "feedback": "<detailed feedback about the resume's ATS compatibility>",
  "strengths": ["<strength>", ...],
  "weaknesses": ["<weakness>", ...],
  "recommendations": ["<recommendation>", ...]
}

Respond ONLY with valid JSON. Do not add any text before or after it and do not use markdown code fences.`,
		resumeText)
}

// BuildCoverLetterPrompt creates prompt for a tailored cover letter
func (pb *PromptBuilder) BuildCoverLetterPrompt(resumeText, jobDescription string) string {
	return fmt.Sprintf(`You are an expert career coach and professional cover letter writer.

Use the candidate resume and the job description below to write a tailored, ATS-friendly and compelling cover letter for this specific role.

--- RESUME ---
%s

--- JOB DESCRIPTION ---
%s

The cover letter must:
- Clearly align the candidate's experience with the job requirements
- Highlight 3-5 key achievements that match the role
- Use a professional but warm tone
- Be concise (around 350-500 words)
- Avoid repeating the resume verbatim
- Never invent companies, roles or achievements that are not in the resume

Infer the job title and company name from the job description when possible.

Return your response in the following JSON format, with the fields in this order:
{
  "cover_letter": "<full cover letter text>",
  "job_title": "<detected job title, or empty string if unknown>",
  "company_name": "<detected company name, or empty string if unknown>",
  "notes": "<optional suggestions for the candidate, or empty string>"
}

Respond ONLY with valid JSON. Do not add any text before or after it and do not use markdown code fences.`,
		resumeText, jobDescription)
}

// BuildResumeRewritePrompt creates prompt for an ATS-optimized rewrite
func (pb *PromptBuilder) BuildResumeRewritePrompt(resumeText string) string {
	return fmt.Sprintf(`You are an expert resume writer and ATS optimization specialist.

Rewrite the resume below so that it:
- Improves clarity, structure and readability
- Uses standard ATS-friendly section headings (SUMMARY, EXPERIENCE, EDUCATION, SKILLS)
- Avoids tables, columns, images and graphics
- Uses bullet points where appropriate
- Emphasizes quantified achievements and relevant industry keywords
- Stays truthful: do NOT invent experience, employers, dates or degrees
- Preserves all important information from the original

--- ORIGINAL RESUME ---
%s

Return your response in the following JSON format, with the fields in this order:
{
  "regenerated_resume": "<full rewritten resume in plain text with clear section headings>",
  "notes": "<2-4 sentences explaining the key improvements, or empty string>"
}

Respond ONLY with valid JSON. Do not add any text before or after it and do not use markdown code fences.`,
		resumeText)
}

// temperatureFor returns the sampling temperature used for each task.
func temperatureFor(kind models.TaskKind) float32 {
	switch kind {
	case models.TaskCoverLetter:
		return 0.6
	case models.TaskResumeRewrite:
		return 0.3
	default:
		return 0.2
	}
}
