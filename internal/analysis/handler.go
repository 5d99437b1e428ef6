package analysis

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-insight/internal/config"
	"resume-insight/internal/extract"
	"resume-insight/internal/llm"
	"resume-insight/internal/shared/server/respond"
)

// Handler wires the analysis endpoints to the service.
type Handler struct {
	Svc            *Service
	DefaultModel   string
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, defaultModel string, maxUploadBytes int64) *Handler {
	return &Handler{Svc: svc, DefaultModel: defaultModel, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches one POST route per analysis variant.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses/resume", h.analyze(llm.KindResumeAnalysis))
	rg.POST("/analyses/job-match", h.analyze(llm.KindJobMatch))
	rg.POST("/analyses/skill-gap", h.analyze(llm.KindSkillGap))
	rg.POST("/analyses/interview-prep", h.analyze(llm.KindInterviewPrep))
}

// analyzeRequest is the JSON body accepted when no file is uploaded.
type analyzeRequest struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
	TargetRole     string `json:"targetRole"`
	Model          string `json:"model"`
}

func (h *Handler) analyze(kind llm.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("analysisVariant", string(kind))

		in, ok := h.bindInput(c, kind)
		if !ok {
			return
		}

		result, err := h.Svc.Analyze(c.Request.Context(), in)
		if err != nil {
			respondAnalysisError(c, err)
			return
		}
		c.Set("invocationId", result.InvocationID)
		respond.OK(c, result)
	}
}

// bindInput reads either a multipart upload (file field "resume") or a
// JSON body into a service Input. It writes the error response itself
// and reports false when binding failed.
func (h *Handler) bindInput(c *gin.Context, kind llm.Kind) (Input, bool) {
	in := Input{Variant: kind}

	contentType := c.GetHeader("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

		file, header, err := c.Request.FormFile("resume")
		switch {
		case errors.Is(err, http.ErrMissingFile):
			// Text fields only; the résumé may arrive as a form value.
		case err != nil:
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respond.Error(c, http.StatusRequestEntityTooLarge, ErrorCodeTooLarge, "uploaded file exceeds the size limit", nil)
			} else {
				respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "malformed multipart form", nil)
			}
			return Input{}, false
		default:
			defer file.Close()
			format, known := extract.FormatFor(header.Header.Get("Content-Type"), header.Filename)
			if !known {
				respond.Error(c, http.StatusUnsupportedMediaType, ErrorCodeUnsupported, "unsupported document format; use PDF, DOCX, or TXT", nil)
				return Input{}, false
			}
			data, rerr := io.ReadAll(file)
			if rerr != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(rerr, &tooLarge) {
					respond.Error(c, http.StatusRequestEntityTooLarge, ErrorCodeTooLarge, "uploaded file exceeds the size limit", nil)
				} else {
					respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "failed to read uploaded file", nil)
				}
				return Input{}, false
			}
			in.ResumeFile = &extract.RawDocument{Data: data, Format: format, Name: header.Filename}
		}

		in.ResumeText = c.PostForm("resumeText")
		in.JobDescription = c.PostForm("jobDescription")
		in.TargetRole = c.PostForm("targetRole")
		in.Model = config.ResolveModel(c.PostForm("model"), h.DefaultModel)
		return in, true
	}

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "malformed request body", nil)
		return Input{}, false
	}
	in.ResumeText = req.ResumeText
	in.JobDescription = req.JobDescription
	in.TargetRole = req.TargetRole
	in.Model = config.ResolveModel(req.Model, h.DefaultModel)
	return in, true
}

// respondAnalysisError maps pipeline errors to the HTTP error taxonomy.
func respondAnalysisError(c *gin.Context, err error) {
	var missing *llm.MissingFieldError
	var provider *llm.ProviderError

	switch {
	case errors.As(err, &missing):
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "required field is missing or empty", []map[string]string{
			{"field": missing.Field, "issue": "required"},
		})
	case errors.Is(err, extract.ErrUnsupportedFormat):
		respond.Error(c, http.StatusUnsupportedMediaType, ErrorCodeUnsupported, "unsupported document format; use PDF, DOCX, or TXT", nil)
	case errors.Is(err, extract.ErrCorruptDocument):
		respond.Error(c, http.StatusUnprocessableEntity, ErrorCodeCorrupt, "the document could not be read; it may be corrupt", nil)
	case errors.Is(err, extract.ErrEmptyDocument):
		respond.Error(c, http.StatusUnprocessableEntity, ErrorCodeEmpty, "the document contains no extractable text", nil)
	case errors.Is(err, llm.ErrMissingCredential):
		respond.Error(c, http.StatusInternalServerError, ErrorCodeCredential, "the analysis provider is not configured", nil)
	case errors.Is(err, llm.ErrProviderUnavailable):
		respond.Error(c, http.StatusServiceUnavailable, ErrorCodeProviderRetry, "the analysis provider is temporarily unavailable; try again", nil)
	case errors.As(err, &provider):
		respond.Error(c, http.StatusBadGateway, ErrorCodeProvider, "the analysis provider rejected the request", nil)
	case errors.Is(err, c.Request.Context().Err()):
		// Client went away; nothing useful to write.
		c.Abort()
	default:
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "analysis failed", nil)
	}
}
