package models

type TaskKind string

const (
	TaskATSScore      TaskKind = "ats_score"
	TaskCoverLetter   TaskKind = "cover_letter"
	TaskResumeRewrite TaskKind = "resume_rewrite"
)

func (k TaskKind) Valid() bool {
	switch k {
	case TaskATSScore, TaskCoverLetter, TaskResumeRewrite:
		return true
	default:
		return false
	}
}

// EvaluationInput is what the transport layer hands to the pipeline.
type EvaluationInput struct {
	Kind           TaskKind
	Source         DocumentSource
	JobDescription string
}

// Task is one of ATSScoreTask, CoverLetterTask or ResumeRewriteTask.
type Task interface {
	Kind() TaskKind
}

type ATSScoreTask struct {
	ResumeText string
}

type CoverLetterTask struct {
	ResumeText     string
	JobDescription string
}

type ResumeRewriteTask struct {
	ResumeText string
}

func (ATSScoreTask) Kind() TaskKind      { return TaskATSScore }
func (CoverLetterTask) Kind() TaskKind   { return TaskCoverLetter }
func (ResumeRewriteTask) Kind() TaskKind { return TaskResumeRewrite }

// NewTask builds the task variant for kind from extracted resume text.
func NewTask(kind TaskKind, resumeText, jobDescription string) Task {
	switch kind {
	case TaskCoverLetter:
		return CoverLetterTask{ResumeText: resumeText, JobDescription: jobDescription}
	case TaskResumeRewrite:
		return ResumeRewriteTask{ResumeText: resumeText}
	default:
		return ATSScoreTask{ResumeText: resumeText}
	}
}

// ModelResponse is the raw output of a single LLM call.
type ModelResponse struct {
	RawText   string
	ModelName string
}
