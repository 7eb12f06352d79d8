package types

import (
	"github.com/go-playground/validator/v10"
)

// MaxJobDescriptionChars is the largest job description text accepted for analysis
const MaxJobDescriptionChars = 20000

var validate = validator.New()

// ScoreRequest asks for a before/after score of a resume against a job description
type ScoreRequest struct {
	Resume           *Resume         `json:"resume" validate:"required"`
	JD               *JobDescription `json:"jd" validate:"required"`
	RewrittenBullets []BulletRewrite `json:"rewrittenBullets" validate:"omitempty,dive"`
}

// Sanitize fills missing arrays on the nested documents.
func (r *ScoreRequest) Sanitize() {
	r.Resume.Sanitize()
	r.JD.Sanitize()
	r.RewrittenBullets = nonNilSlice(r.RewrittenBullets)
}

// Validate validates the ScoreRequest using the validator.
func (r *ScoreRequest) Validate() error {
	return validate.Struct(r)
}

// AnalyzeRequest carries raw job description text for extraction
type AnalyzeRequest struct {
	Text string `json:"text" validate:"required"`
}

// Validate validates the AnalyzeRequest using the validator.
func (r *AnalyzeRequest) Validate() error {
	return validate.Struct(r)
}

// ParseRequest carries raw resume text for parsing
type ParseRequest struct {
	Text string `json:"text" validate:"required"`
}

// Validate validates the ParseRequest using the validator.
func (r *ParseRequest) Validate() error {
	return validate.Struct(r)
}

// RewriteRequest asks for a single verified bullet rewrite
type RewriteRequest struct {
	Bullet  string          `json:"bullet" validate:"required"`
	Company string          `json:"company"`
	Role    string          `json:"role"`
	Context []string        `json:"context"`
	JD      *JobDescription `json:"jd" validate:"required"`
}

// Validate validates the RewriteRequest using the validator.
func (r *RewriteRequest) Validate() error {
	return validate.Struct(r)
}

// ExplainRequest asks for a short rationale of an accepted rewrite
type ExplainRequest struct {
	Original  string   `json:"original" validate:"required"`
	Rewritten string   `json:"rewritten" validate:"required"`
	Keywords  []string `json:"keywords"`
}

// Validate validates the ExplainRequest using the validator.
func (r *ExplainRequest) Validate() error {
	return validate.Struct(r)
}

// TailorRequest runs a full tailoring session. Either JD or JDText must be given.
type TailorRequest struct {
	Resume *Resume         `json:"resume" validate:"required"`
	JD     *JobDescription `json:"jd" validate:"required_without=JDText"`
	JDText string          `json:"jdText" validate:"required_without=JD,max=20000"`
}

// Validate validates the TailorRequest using the validator.
func (r *TailorRequest) Validate() error {
	return validate.Struct(r)
}

// ExportRequest renders a resume to PDF
type ExportRequest struct {
	Resume   *Resume `json:"resume" validate:"required"`
	Template string  `json:"template" validate:"omitempty,oneof=modern classic"`
}

// Validate validates the ExportRequest using the validator.
func (r *ExportRequest) Validate() error {
	return validate.Struct(r)
}

// TailorResult is the outcome of a tailoring session
type TailorResult struct {
	SessionID string           `json:"sessionId"`
	JD        *JobDescription  `json:"jd"`
	Bullets   []VerifiedBullet `json:"bullets"`
	Resume    *Resume          `json:"resume"`
	Score     ScoreResponse    `json:"score"`
}
