package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/GrupoSemah/salidasform/internal/config"
	"github.com/GrupoSemah/salidasform/internal/constants"
	"github.com/GrupoSemah/salidasform/internal/document"
	"github.com/GrupoSemah/salidasform/internal/dtos"
	"github.com/GrupoSemah/salidasform/internal/refdata"
	"github.com/GrupoSemah/salidasform/internal/utils"
)

// EmailSender is the slice of the SendGrid client this service needs.
type EmailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// MoveOutService coordinates the end-to-end submit sequence: validation,
// rate limiting, sanitization, optional document assembly, email dispatch,
// and the best-effort CRM mirror.
type MoveOutService interface {
	Submit(ctx context.Context, clientIP string, req dtos.MoveOutRequest) (*dtos.MoveOutResponse, error)
	Ping(ctx context.Context) error
}

type moveOutService struct {
	cfg       *config.Config
	catalog   *refdata.Catalog
	sender    EmailSender
	limiter   RateLimiterService
	crm       CRMService
	assembler *document.Assembler
}

func NewMoveOutService(
	cfg *config.Config,
	catalog *refdata.Catalog,
	sender EmailSender,
	limiter RateLimiterService,
	crm CRMService,
) MoveOutService {
	return &moveOutService{
		cfg:       cfg,
		catalog:   catalog,
		sender:    sender,
		limiter:   limiter,
		crm:       crm,
		assembler: document.NewAssembler(),
	}
}

func (s *moveOutService) Submit(ctx context.Context, clientIP string, req dtos.MoveOutRequest) (*dtos.MoveOutResponse, error) {
	//-----------------------------------------------------------------
	// 1) Full validation; no side effects on failure
	//-----------------------------------------------------------------
	if ve := ValidateMoveOut(ctx, req, s.catalog, s.cfg.LDFlag_ValidateEmailWithMX); ve != nil {
		return nil, &utils.AppError{
			StatusCode: http.StatusBadRequest,
			Code:       utils.ErrCodeValidation,
			Message:    "La solicitud contiene campos inválidos",
			Details:    ve.Fields,
			Err:        ve,
		}
	}

	//-----------------------------------------------------------------
	// 2) Rate-limit guard
	//-----------------------------------------------------------------
	if err := s.limiter.CheckSubmitRateLimits(ctx, clientIP, strings.TrimSpace(req.Email)); err != nil {
		if err == utils.ErrRateLimitExceeded {
			return nil, &utils.AppError{
				StatusCode: http.StatusTooManyRequests,
				Code:       utils.ErrCodeRateLimitExceeded,
				Message:    "Ya recibimos su solicitud; espere unos segundos antes de reintentar",
				Err:        err,
			}
		}
		return nil, err
	}

	//-----------------------------------------------------------------
	// 3) Sanitize free-text fields, 4) default the document date
	//-----------------------------------------------------------------
	sanitizeRequest(&req)
	defaultDocumentDate(&req, time.Now())

	submissionID := uuid.NewString()

	//-----------------------------------------------------------------
	// 5) Resolve routing and build the outbound payload
	//-----------------------------------------------------------------
	branchName, recipients := s.catalog.ResolveRecipients(req.BranchID)
	payload := s.buildPayload(req, branchName, recipients, submissionID, time.Now())

	msg := mail.NewV3Mail()
	msg.SetFrom(mail.NewEmail(s.cfg.OrganizationName, s.cfg.FromEmail))
	msg.SetTemplateID(s.cfg.SendgridTemplateID)

	p := mail.NewPersonalization()
	for _, addr := range recipients {
		p.AddTos(mail.NewEmail("", addr))
	}
	for k, v := range payload {
		p.SetDynamicTemplateData(k, v)
	}
	msg.AddPersonalizations(p)

	//-----------------------------------------------------------------
	// 6) Attachment delivery mode: render the letter
	//-----------------------------------------------------------------
	if s.cfg.LDFlag_DeliveryMode == constants.DeliveryModeAttachment {
		pdfB64, err := s.assembler.Render(req, branchName, submissionID)
		if err != nil {
			utils.Logger.WithError(err).Error("Document assembly failed")
			return nil, &utils.AppError{
				StatusCode: http.StatusInternalServerError,
				Code:       utils.ErrCodeInternal,
				Message:    "No se pudo generar el documento de la solicitud",
				Err:        err,
			}
		}
		att := mail.NewAttachment()
		att.SetContent(pdfB64)
		att.SetType("application/pdf")
		att.SetFilename(constants.AttachmentFilename)
		att.SetDisposition("attachment")
		msg.AddAttachment(att)
	}

	//-----------------------------------------------------------------
	// 7) Dispatch with a bounded wait
	//-----------------------------------------------------------------
	dispatchCtx, cancel := context.WithTimeout(ctx, s.cfg.DispatchTimeout)
	defer cancel()

	resp, err := s.sender.SendWithContext(dispatchCtx, msg)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Email dispatch failed (submission %s)", submissionID)
		return nil, dispatchFailure(err)
	}
	if resp.StatusCode >= 300 {
		utils.Logger.Errorf("Email dispatch returned %d (submission %s)", resp.StatusCode, submissionID)
		return nil, dispatchFailure(fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, resp.Body))
	}

	//-----------------------------------------------------------------
	// 8) Best-effort CRM mirror; outcome never reaches the user
	//-----------------------------------------------------------------
	go s.crm.TrackMoveOut(context.Background(), submissionID, req)

	utils.Logger.Infof("Move-out request dispatched to %s (submission %s)", branchName, submissionID)
	return &dtos.MoveOutResponse{
		Message:      "Solicitud enviada. Recibirá la confirmación por correo.",
		SubmissionID: submissionID,
	}, nil
}

func (s *moveOutService) Ping(_ context.Context) error {
	// Nothing external to probe cheaply; just ensure the SendGrid key looks sane.
	if len(s.cfg.SendgridAPIKey) < 10 {
		return fmt.Errorf("sendgrid key too short")
	}
	return nil
}

// ------------------------------------------------------------------
// internals
// ------------------------------------------------------------------

// dispatchFailure wraps a send error into the 502 the controller returns,
// tagging it with the matching sentinel so callers can distinguish a timed-out
// dispatch from a rejected one.
func dispatchFailure(err error) error {
	sentinel := utils.ErrExternalServiceFailure
	if errors.Is(err, context.DeadlineExceeded) {
		sentinel = utils.ErrDispatchTimeout
	}
	return &utils.AppError{
		StatusCode: http.StatusBadGateway,
		Code:       utils.ErrCodeExternalServiceFailure,
		Message:    "No pudimos enviar su solicitud. Sus datos se conservan; por favor inténtelo de nuevo.",
		Err:        fmt.Errorf("%w: %w", sentinel, err),
	}
}

// sanitizeRequest strips markup from every free-text field before it can
// reach a payload the email provider may render as HTML.
func sanitizeRequest(req *dtos.MoveOutRequest) {
	for _, f := range []*string{
		&req.DocumentDay, &req.DocumentMonth, &req.DocumentYear,
		&req.FullName, &req.NationalID, &req.TenantID, &req.UnitNumber,
		&req.VacateDate, &req.VacateReason, &req.GoodsDestination,
		&req.ChangeConsideration, &req.ExperienceRating,
		&req.CompanyName, &req.CompanyTaxID,
		&req.AccountHolder, &req.BankName, &req.AccountNumber,
		&req.SignatureName,
	} {
		*f = utils.SanitizeText(*f)
	}
	req.Email = strings.TrimSpace(req.Email)
}

var spanishMonths = []string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// defaultDocumentDate fills blank document-date components from now.
func defaultDocumentDate(req *dtos.MoveOutRequest, now time.Time) {
	if req.DocumentDay == "" {
		req.DocumentDay = fmt.Sprintf("%d", now.Day())
	}
	if req.DocumentMonth == "" {
		req.DocumentMonth = spanishMonths[now.Month()-1]
	}
	if req.DocumentYear == "" {
		req.DocumentYear = now.Format("06")
	}
}

// buildPayload flattens the request into the snake_case key set the email
// template consumes. Optional fields the tenant left blank carry the N/A
// label so the rendered email has no holes.
func (s *moveOutService) buildPayload(
	req dtos.MoveOutRequest,
	branchName string,
	recipients []string,
	submissionID string,
	now time.Time,
) map[string]string {
	return map[string]string{
		"submission_id":        submissionID,
		"emails":               strings.Join(recipients, ","),
		"branch_name":          branchName,
		"person_type":          req.PersonTypeLabel(),
		"document_date":        req.DocumentDate(),
		"full_name":            req.FullName,
		"national_id":          req.NationalID,
		"email":                req.Email,
		"tenant_id":            orNA(req.TenantID),
		"unit_number":          req.UnitNumber,
		"vacate_date":          req.VacateDate,
		"vacate_reason":        req.VacateReason,
		"goods_destination":    req.GoodsDestination,
		"change_consideration": orNA(req.ChangeConsideration),
		"experience_rating":    orNA(req.ExperienceRating),
		"company_name":         orNA(req.CompanyName),
		"company_tax_id":       orNA(req.CompanyTaxID),
		"account_holder":       orNA(req.AccountHolder),
		"bank_name":            orNA(req.BankName),
		"account_type":         orNA(req.AccountTypeLabel()),
		"account_number":       orNA(req.AccountNumber),
		"signature_name":       req.SignatureName,
		"signature":            signatureForPayload(req.SignatureImage),
		"submitted_at":         now.Format("02/01/2006 15:04:05"),
	}
}

// signatureForPayload returns the inline-embeddable signature, or a textual
// placeholder when the signature is absent, malformed, or over the size
// bound. Oversized signatures are replaced, never rejected.
func signatureForPayload(dataURL string) string {
	if dataURL == "" {
		return constants.NoSignaturePlaceholder
	}
	if !strings.HasPrefix(dataURL, constants.SignatureDataURLPrefix) {
		return constants.NoSignaturePlaceholder
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, constants.SignatureDataURLPrefix))
	if err != nil {
		return constants.NoSignaturePlaceholder
	}
	if len(raw) > constants.MaxSignatureBytes {
		return constants.OversizeSignaturePlaceholder
	}
	return dataURL
}

func orNA(s string) string {
	if s == "" {
		return constants.NotProvided
	}
	return s
}
