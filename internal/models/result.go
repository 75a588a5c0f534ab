package models

// Result is one of ATSScoreResult, CoverLetterResult or ResumeRewriteResult.
type Result interface {
	TaskKind() TaskKind
}

type ATSScoreResult struct {
	Score           float64    `json:"score"`
	Feedback        string     `json:"feedback"`
	Strengths       []string   `json:"strengths"`
	Weaknesses      []string   `json:"weaknesses"`
	Recommendations []string   `json:"recommendations"`
	FileType        FileFormat `json:"file_type"`
}

type CoverLetterResult struct {
	CoverLetter string `json:"cover_letter"`
	ModelUsed   string `json:"model_used"`
	JobTitle    string `json:"job_title"`
	CompanyName string `json:"company_name"`
	Notes       string `json:"notes"`
}

type ResumeRewriteResult struct {
	RegeneratedResume string `json:"regenerated_resume"`
	ModelUsed         string `json:"model_used"`
	Notes             string `json:"notes"`
}

func (ATSScoreResult) TaskKind() TaskKind      { return TaskATSScore }
func (CoverLetterResult) TaskKind() TaskKind   { return TaskCoverLetter }
func (ResumeRewriteResult) TaskKind() TaskKind { return TaskResumeRewrite }

// ResumeURLRequest is the JSON body variant of every evaluation endpoint.
type ResumeURLRequest struct {
	ResumeURL      string `json:"resume_url" form:"resume_url"`
	JobDescription string `json:"job_description" form:"job_description"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Details   string `json:"details,omitempty"`
	Retryable bool   `json:"retryable"`
	Code      int    `json:"code"`
}

type HealthResponse struct {
	Status           string `json:"status"`
	GeminiConfigured bool   `json:"gemini_configured"`
	Model            string `json:"model"`
	Time             string `json:"time"`
}
