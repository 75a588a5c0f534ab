package services

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-assistant/internal/apperror"
	"alfredoptarigan/resume-assistant/internal/config"
	"alfredoptarigan/resume-assistant/internal/models"
	"alfredoptarigan/resume-assistant/internal/testutil"
)

func testDocumentConfig() config.DocumentConfig {
	return config.DocumentConfig{
		MaxFileSize:            1 << 20,
		DownloadTimeout:        time.Second,
		MinResumeChars:         50,
		MinJobDescriptionChars: 30,
	}
}

func newTestEvaluator(gen TextGenerator, rec *recordingRecorder) EvaluatorService {
	docCfg := testDocumentConfig()
	var recorder PipelineRecorder
	var modelRecorder ModelCallRecorder
	if rec != nil {
		recorder = rec
		modelRecorder = rec
	}
	return NewEvaluatorService(
		NewSourceResolver(&http.Client{}, docCfg.MaxFileSize, docCfg.DownloadTimeout),
		NewTextExtractor(),
		NewPromptOrchestrator(gen, testGeminiConfig(), disabledBreaker(), modelRecorder, discardLogger()),
		docCfg,
		recorder,
		discardLogger(),
	)
}

func pdfUpload() models.UploadedFile {
	pages := strings.SplitN(testutil.SampleResume, "\n", 3)
	return models.UploadedFile{
		Filename: "jane.pdf",
		Content:  bytes.NewReader(testutil.BuildPDF(pages[0]+"\n"+pages[1], pages[2])),
	}
}

func TestEvaluate_ATSScoreFromPDF(t *testing.T) {
	gen := &fakeGenerator{text: `{"score": 88, "feedback": "Clear structure", "strengths": ["Keywords"], "weaknesses": [], "recommendations": ["Add a summary"]}`}
	rec := &recordingRecorder{}

	result, err := newTestEvaluator(gen, rec).Evaluate(context.Background(), models.EvaluationInput{
		Kind:   models.TaskATSScore,
		Source: pdfUpload(),
	})

	require.NoError(t, err)
	ats, ok := result.(models.ATSScoreResult)
	require.True(t, ok)
	assert.Equal(t, float64(88), ats.Score)
	assert.Equal(t, models.FormatPDF, ats.FileType)
	assert.Equal(t, []string{"Add a summary"}, ats.Recommendations)

	require.Equal(t, 1, gen.calls())
	assert.Contains(t, gen.requests[0].Prompt, "Kubernetes")

	assert.Equal(t, []stageCall{
		{task: "ats_score", stage: StageResolve},
		{task: "ats_score", stage: StageExtract},
		{task: "ats_score", stage: StageGenerate},
		{task: "ats_score", stage: StageParse},
	}, rec.stages)
	assert.Equal(t, []string{"ats_score:ok"}, rec.evaluations)
}

func TestEvaluate_CoverLetterFromDOCX(t *testing.T) {
	gen := &fakeGenerator{text: `{"cover_letter": "Dear Acme team,", "job_title": "Platform Engineer", "company_name": "Acme"}`}
	docx := testutil.BuildDOCX(testutil.SampleResume)

	result, err := newTestEvaluator(gen, nil).Evaluate(context.Background(), models.EvaluationInput{
		Kind:           models.TaskCoverLetter,
		Source:         models.UploadedFile{Filename: "jane.docx", Content: bytes.NewReader(docx)},
		JobDescription: "  Platform Engineer at Acme. Run Kubernetes clusters in production.  ",
	})

	require.NoError(t, err)
	letter := result.(models.CoverLetterResult)
	assert.Equal(t, "Dear Acme team,", letter.CoverLetter)
	assert.Equal(t, testModel, letter.ModelUsed)
	assert.Contains(t, gen.requests[0].Prompt, "Platform Engineer at Acme. Run Kubernetes clusters in production.")
}

func TestEvaluate_CoverLetterRequiresJobDescriptionBeforeDownload(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(testutil.BuildPDF(testutil.SampleResume))
	}))
	defer srv.Close()

	gen := &fakeGenerator{text: "{}"}
	rec := &recordingRecorder{}
	for _, jd := range []string{"", "   ", "too short"} {
		_, err := newTestEvaluator(gen, rec).Evaluate(context.Background(), models.EvaluationInput{
			Kind:           models.TaskCoverLetter,
			Source:         models.RemoteURL{URL: srv.URL + "/resume.pdf"},
			JobDescription: jd,
		})

		require.Error(t, err, jd)
		assert.True(t, apperror.Is(err, apperror.KindInvalidRequest), jd)
	}

	assert.Equal(t, int32(0), hits.Load())
	assert.Equal(t, 0, gen.calls())
	assert.Empty(t, rec.stages)
	assert.Equal(t, "cover_letter:invalid_request", rec.evaluations[0])
}

func TestEvaluate_MissingSource(t *testing.T) {
	_, err := newTestEvaluator(&fakeGenerator{}, nil).Evaluate(context.Background(), models.EvaluationInput{
		Kind: models.TaskResumeRewrite,
	})

	assert.True(t, apperror.Is(err, apperror.KindInvalidRequest))
}

func TestEvaluate_UnknownKind(t *testing.T) {
	_, err := newTestEvaluator(&fakeGenerator{}, nil).Evaluate(context.Background(), models.EvaluationInput{
		Kind:   "summarize",
		Source: pdfUpload(),
	})

	assert.True(t, apperror.Is(err, apperror.KindInvalidRequest))
}

func TestEvaluate_ShortResumeTextFailsBeforeModelCall(t *testing.T) {
	gen := &fakeGenerator{text: `{"score": 50, "feedback": "x"}`}

	_, err := newTestEvaluator(gen, nil).Evaluate(context.Background(), models.EvaluationInput{
		Kind: models.TaskATSScore,
		Source: models.UploadedFile{
			Filename: "tiny.pdf",
			Content:  bytes.NewReader(testutil.BuildPDF("Jane Doe")),
		},
	})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindExtractionFailed))
	assert.Equal(t, 0, gen.calls())
}

func TestEvaluate_LegacyDOCFailsWithGuidance(t *testing.T) {
	gen := &fakeGenerator{}

	_, err := newTestEvaluator(gen, nil).Evaluate(context.Background(), models.EvaluationInput{
		Kind:   models.TaskResumeRewrite,
		Source: models.UploadedFile{Filename: "old.doc", Content: strings.NewReader(testutil.SampleResume)},
	})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindUnsupportedFormat))
	assert.Contains(t, err.Error(), "DOCX or PDF")
	assert.Equal(t, 0, gen.calls())
}

func TestEvaluate_MalformedModelOutput(t *testing.T) {
	gen := &fakeGenerator{text: "I could not evaluate this resume."}
	rec := &recordingRecorder{}

	_, err := newTestEvaluator(gen, rec).Evaluate(context.Background(), models.EvaluationInput{
		Kind:   models.TaskATSScore,
		Source: pdfUpload(),
	})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindMalformedModelOutput))
	assert.Equal(t, []string{"ats_score:malformed_model_output"}, rec.evaluations)
}

func TestMeaningfulChars(t *testing.T) {
	assert.Equal(t, 0, meaningfulChars(" \n\t "))
	assert.Equal(t, 5, meaningfulChars("ab c\nd é"))
}
