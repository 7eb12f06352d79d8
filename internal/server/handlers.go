package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/jonathan/resume-tailor/internal/parsing"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/rendering"
	"github.com/jonathan/resume-tailor/internal/rewriting"
	"github.com/jonathan/resume-tailor/internal/server/middleware"
	"github.com/jonathan/resume-tailor/internal/types"
)

// decodeJSON reads a size-limited JSON body into dst.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return err
		}
		return &ErrValidation{Message: "invalid request body: " + err.Error()}
	}
	return nil
}

// handleScore compares a resume before and after caller-supplied rewrites.
// Rewrites that introduce facts are reported and left out of the after score.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req types.ScoreRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.Sanitize()
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	edits, rejected := rewriting.VerifyRewrites(req.Resume, req.RewrittenBullets)
	resp := s.scorer.CompareEdits(req.Resume, req.JD, edits)
	if len(rejected) > 0 {
		resp.RejectedRewrites = rejected
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleAnalyze extracts a structured job description from posting text.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req types.AnalyzeRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if utf8.RuneCountInString(req.Text) > types.MaxJobDescriptionChars {
		s.writeError(w, r, parsing.ErrTooLarge)
		return
	}
	if s.client == nil {
		s.writeError(w, r, ErrServiceUnavailable)
		return
	}

	jd, err := parsing.ParseJobDescription(r.Context(), s.client, s.cache, req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, jd)
}

// handleParse turns plain resume text into a structured resume.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req types.ParseRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, parsing.ParseResume(req.Text))
}

// handleRewrite proposes and verifies a rewrite of a single bullet.
func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	var req types.RewriteRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.JD.Sanitize()
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.rewriter == nil {
		s.writeError(w, r, ErrServiceUnavailable)
		return
	}

	exp := types.Experience{
		Company: req.Company,
		Role:    req.Role,
		Bullets: append([]string{req.Bullet}, req.Context...),
	}
	vb, err := s.rewriter.RewriteExperienceBullet(r.Context(), exp, 0, req.JD)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, vb)
}

// handleExplain returns a short rationale for an accepted rewrite.
func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req types.ExplainRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.client == nil {
		s.writeError(w, r, ErrServiceUnavailable)
		return
	}

	rationale, err := rewriting.Explain(r.Context(), s.client, req.Original, req.Rewritten, req.Keywords)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"rationale": rationale})
}

// tailorInput decodes and checks a tailoring request for both tailor routes.
func (s *Server) tailorInput(w http.ResponseWriter, r *http.Request) (pipeline.Input, error) {
	var req types.TailorRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		return pipeline.Input{}, err
	}
	req.Resume.Sanitize()
	req.JD.Sanitize()
	if utf8.RuneCountInString(req.JDText) > types.MaxJobDescriptionChars {
		return pipeline.Input{}, parsing.ErrTooLarge
	}
	if err := req.Validate(); err != nil {
		return pipeline.Input{}, err
	}
	if s.tailor == nil || (req.JD == nil && s.client == nil) {
		return pipeline.Input{}, ErrServiceUnavailable
	}
	return pipeline.Input{Resume: req.Resume, JD: req.JD, JDText: req.JDText}, nil
}

// handleTailor runs a full tailoring session and returns its result.
func (s *Server) handleTailor(w http.ResponseWriter, r *http.Request) {
	in, err := s.tailorInput(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.tailor.Run(r.Context(), in, nil)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleTailorStream runs a tailoring session and reports each step as a
// server-sent event named after the step. Failures after the stream opened
// are sent as an "error" event.
func (s *Server) handleTailorStream(w http.ResponseWriter, r *http.Request) {
	in, err := s.tailorInput(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger := s.logger.With(slog.String("request_id", middleware.RequestIDFrom(r.Context())))
	logger.Info("starting streaming tailoring session")

	_, err = s.tailor.Run(r.Context(), in, func(event pipeline.ProgressEvent) {
		if werr := sse.WriteEvent(event.Step, event.Content); werr != nil {
			logger.Warn("failed to write SSE event", slog.String("event", event.Step), slog.Any("error", werr))
		}
	})
	if err != nil {
		status := HTTPStatus(err)
		logger.Error("streaming tailoring session failed", slog.Int("status", status), slog.Any("error", err))
		if werr := sse.WriteError(publicMessage(err, status), status); werr != nil {
			logger.Warn("failed to write SSE error event", slog.Any("error", werr))
		}
	}
}

// handleExport renders a resume with the requested template and returns the PDF.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req types.ExportRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.Resume.Sanitize()
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	data, err := rendering.ExportPDF(r.Context(), s.pdf, req.Resume, req.Template)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="resume.pdf"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("failed to write PDF response", slog.Any("error", err))
	}
}
