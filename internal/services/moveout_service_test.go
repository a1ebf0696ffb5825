package services

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GrupoSemah/salidasform/internal/config"
	"github.com/GrupoSemah/salidasform/internal/constants"
	"github.com/GrupoSemah/salidasform/internal/dtos"
	"github.com/GrupoSemah/salidasform/internal/refdata"
	"github.com/GrupoSemah/salidasform/internal/repositories"
	"github.com/GrupoSemah/salidasform/internal/utils"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

type fakeSender struct {
	mu     sync.Mutex
	sent   []*mail.SGMailV3
	delay  time.Duration
	err    error
	status int
}

func (f *fakeSender) SendWithContext(ctx context.Context, m *mail.SGMailV3) (*rest.Response, error) {
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	f.sent = append(f.sent, m)
	f.mu.Unlock()
	status := f.status
	if status == 0 {
		status = http.StatusAccepted
	}
	return &rest.Response{StatusCode: status}, nil
}

func (f *fakeSender) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeSender) lastMail() *mail.SGMailV3 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1]
}

type fakeCRM struct {
	calls chan string
}

func (f *fakeCRM) TrackMoveOut(_ context.Context, submissionID string, _ dtos.MoveOutRequest) {
	f.calls <- submissionID
}

type noopCRM struct{}

func (noopCRM) TrackMoveOut(context.Context, string, dtos.MoveOutRequest) {}

// -----------------------------------------------------------------------------
// Harness
// -----------------------------------------------------------------------------

func testConfig() *config.Config {
	return &config.Config{
		OrganizationName:         constants.OrganizationName,
		AppName:                  "salidas-form-service",
		SendgridAPIKey:           "SG.test-key-0123456789",
		SendgridTemplateID:       "d-test-template",
		FromEmail:                "noreply@almacenajes.net",
		LDFlag_DeliveryMode:      constants.DeliveryModeInline,
		SubmitCooldown:           constants.DefaultSubmitCooldown,
		GlobalSubmitLimitPerHour: 100,
		DispatchTimeout:          time.Second,
	}
}

func newTestService(cfg *config.Config, sender EmailSender, crm CRMService) MoveOutService {
	limiter := NewRateLimiterService(repositories.NewRateLimitRepository(), cfg)
	return NewMoveOutService(cfg, refdata.Default(), sender, limiter, crm)
}

func dynamicData(t *testing.T, m *mail.SGMailV3) map[string]interface{} {
	t.Helper()
	require.NotNil(t, m)
	require.Len(t, m.Personalizations, 1)
	return m.Personalizations[0].DynamicTemplateData
}

// -----------------------------------------------------------------------------
// Happy path: natural person, branch albrook, no signature drawn
// -----------------------------------------------------------------------------

func TestSubmitHappyPathNoSignature(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(testConfig(), sender, noopCRM{})

	resp, err := svc.Submit(context.Background(), "10.0.0.1", validRequest())
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.NotEmpty(t, resp.SubmissionID)
	require.Equal(t, 1, sender.sendCount())

	m := sender.lastMail()
	data := dynamicData(t, m)
	assert.Equal(t, constants.NoSignaturePlaceholder, data["signature"])
	assert.Equal(t, "Albrook", data["branch_name"])
	assert.Equal(t, "Persona Natural", data["person_type"])

	var tos []string
	for _, to := range m.Personalizations[0].To {
		tos = append(tos, to.Address)
	}
	assert.Equal(t, []string{
		"albrook@almacenajes.net",
		"callcenter2@almacenajes.net",
		"callcenter3@almacenajes.net",
	}, tos)
}

// -----------------------------------------------------------------------------
// Validation blocks dispatch
// -----------------------------------------------------------------------------

func TestSubmitLegalEntityMissingTaxIDMakesNoDispatch(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(testConfig(), sender, noopCRM{})

	req := validRequest()
	req.PersonType = dtos.PersonTypeLegal
	req.CompanyName = "Comercial El Valle, S.A."
	// company tax id left blank

	_, err := svc.Submit(context.Background(), "10.0.0.2", req)
	require.Error(t, err)

	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	assert.Equal(t, utils.ErrCodeValidation, appErr.Code)

	fields, ok := appErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, fields, "companyTaxId")

	assert.Zero(t, sender.sendCount(), "no dispatch call may be made on validation failure")
}

// -----------------------------------------------------------------------------
// Rate limiting: two rapid attempts, exactly one dispatch
// -----------------------------------------------------------------------------

func TestSubmitCooldownAllowsExactlyOneDispatch(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(testConfig(), sender, noopCRM{})

	_, err := svc.Submit(context.Background(), "10.0.0.3", validRequest())
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), "10.0.0.3", validRequest())
	require.Error(t, err)

	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusTooManyRequests, appErr.StatusCode)
	assert.Equal(t, utils.ErrCodeRateLimitExceeded, appErr.Code)

	assert.Equal(t, 1, sender.sendCount())
}

// -----------------------------------------------------------------------------
// Dispatch timeout
// -----------------------------------------------------------------------------

func TestSubmitDispatchTimeoutReportsFailure(t *testing.T) {
	cfg := testConfig()
	cfg.DispatchTimeout = 30 * time.Millisecond

	sender := &fakeSender{delay: time.Second}
	svc := newTestService(cfg, sender, noopCRM{})

	resp, err := svc.Submit(context.Background(), "10.0.0.4", validRequest())
	require.Error(t, err)
	assert.Nil(t, resp, "no confirmation may be produced on timeout")

	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadGateway, appErr.StatusCode)
	assert.Equal(t, utils.ErrCodeExternalServiceFailure, appErr.Code)
	assert.True(t, errors.Is(err, utils.ErrDispatchTimeout))
}

func TestSubmitNon2xxDispatchReportsFailure(t *testing.T) {
	sender := &fakeSender{status: http.StatusUnauthorized}
	svc := newTestService(testConfig(), sender, noopCRM{})

	_, err := svc.Submit(context.Background(), "10.0.0.5", validRequest())
	require.Error(t, err)

	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, utils.ErrCodeExternalServiceFailure, appErr.Code)
	assert.True(t, errors.Is(err, utils.ErrExternalServiceFailure))
	assert.False(t, errors.Is(err, utils.ErrDispatchTimeout))
}

// -----------------------------------------------------------------------------
// Branch fallback
// -----------------------------------------------------------------------------

func TestSubmitUnknownBranchFallsBackToDefaultRecipient(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(testConfig(), sender, noopCRM{})

	req := validRequest()
	req.BranchID = "sucursal-fantasma"

	_, err := svc.Submit(context.Background(), "10.0.0.6", req)
	require.NoError(t, err)

	m := sender.lastMail()
	require.Len(t, m.Personalizations[0].To, 1)
	assert.Equal(t, constants.DefaultRecipientEmail, m.Personalizations[0].To[0].Address)
	assert.Equal(t, "No especificada", dynamicData(t, m)["branch_name"])
}

// -----------------------------------------------------------------------------
// Signature size bound
// -----------------------------------------------------------------------------

func TestSubmitOversizedSignatureBecomesPlaceholder(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(testConfig(), sender, noopCRM{})

	big := make([]byte, constants.MaxSignatureBytes+1)
	req := validRequest()
	req.SignatureImage = constants.SignatureDataURLPrefix + base64.StdEncoding.EncodeToString(big)

	_, err := svc.Submit(context.Background(), "10.0.0.7", req)
	require.NoError(t, err)

	data := dynamicData(t, sender.lastMail())
	assert.Equal(t, constants.OversizeSignaturePlaceholder, data["signature"])
}

func TestSubmitSmallSignaturePassesThrough(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(testConfig(), sender, noopCRM{})

	small := constants.SignatureDataURLPrefix + base64.StdEncoding.EncodeToString([]byte("tiny png bytes"))
	req := validRequest()
	req.SignatureImage = small

	_, err := svc.Submit(context.Background(), "10.0.0.8", req)
	require.NoError(t, err)

	data := dynamicData(t, sender.lastMail())
	assert.Equal(t, small, data["signature"])
}

// -----------------------------------------------------------------------------
// CRM mirror is fire-and-forget
// -----------------------------------------------------------------------------

func TestSubmitTriggersCRMMirror(t *testing.T) {
	sender := &fakeSender{}
	crm := &fakeCRM{calls: make(chan string, 1)}
	svc := newTestService(testConfig(), sender, crm)

	resp, err := svc.Submit(context.Background(), "10.0.0.9", validRequest())
	require.NoError(t, err)

	select {
	case id := <-crm.calls:
		assert.Equal(t, resp.SubmissionID, id)
	case <-time.After(time.Second):
		t.Fatal("CRM mirror was never invoked")
	}
}

// -----------------------------------------------------------------------------
// Sanitization
// -----------------------------------------------------------------------------

func TestSubmitStripsMarkupFromFreeText(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(testConfig(), sender, noopCRM{})

	req := validRequest()
	req.FullName = "Ana <b>Cedeño</b>"
	req.UnitNumber = `A-23<img src="x">`

	_, err := svc.Submit(context.Background(), "10.0.0.10", req)
	require.NoError(t, err)

	data := dynamicData(t, sender.lastMail())
	assert.Equal(t, "Ana Cedeño", data["full_name"])
	assert.Equal(t, "A-23", data["unit_number"])
}

// -----------------------------------------------------------------------------
// Attachment delivery mode
// -----------------------------------------------------------------------------

func TestSubmitAttachmentModeAttachesPDF(t *testing.T) {
	cfg := testConfig()
	cfg.LDFlag_DeliveryMode = constants.DeliveryModeAttachment

	sender := &fakeSender{}
	svc := newTestService(cfg, sender, noopCRM{})

	_, err := svc.Submit(context.Background(), "10.0.0.11", validRequest())
	require.NoError(t, err)

	m := sender.lastMail()
	require.Len(t, m.Attachments, 1)
	assert.Equal(t, "application/pdf", m.Attachments[0].Type)
	assert.Equal(t, constants.AttachmentFilename, m.Attachments[0].Filename)

	raw, err := base64.StdEncoding.DecodeString(m.Attachments[0].Content)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(raw[:4]))
}

// -----------------------------------------------------------------------------
// Payload round-trip
// -----------------------------------------------------------------------------

func TestPayloadRoundTrip(t *testing.T) {
	cfg := testConfig()
	svc := newTestService(cfg, &fakeSender{}, noopCRM{}).(*moveOutService)

	req := validRequest()
	req.CompanyName = ""
	req.AccountHolder = "Ana Cedeño"
	req.BankName = "Banco General"
	req.AccountType = dtos.AccountTypeChecking
	req.AccountNumber = "04-99-887766"

	now := time.Date(2025, 5, 12, 9, 30, 0, 0, time.UTC)
	payload := svc.buildPayload(req, "Albrook",
		[]string{"albrook@almacenajes.net", "callcenter2@almacenajes.net"}, "sub-42", now)

	want := map[string]string{
		"submission_id":        "sub-42",
		"emails":               "albrook@almacenajes.net,callcenter2@almacenajes.net",
		"branch_name":          "Albrook",
		"person_type":          "Persona Natural",
		"document_date":        "12/mayo/25",
		"full_name":            "Ana Cedeño",
		"national_id":          "8-123-456",
		"email":                "a@b.com",
		"tenant_id":            "T-1001",
		"unit_number":          "A-23",
		"vacate_date":          "2025-10-01",
		"vacate_reason":        "Recibí nueva casa u oficina",
		"goods_destination":    "Darle uso en un lugar propio",
		"change_consideration": constants.NotProvided,
		"experience_rating":    constants.NotProvided,
		"company_name":         constants.NotProvided,
		"company_tax_id":       constants.NotProvided,
		"account_holder":       "Ana Cedeño",
		"bank_name":            "Banco General",
		"account_type":         "Corriente",
		"account_number":       "04-99-887766",
		"signature_name":       "Ana Cedeño",
		"signature":            constants.NoSignaturePlaceholder,
		"submitted_at":         "12/05/2025 09:30:00",
	}
	assert.Equal(t, want, payload)
}

// -----------------------------------------------------------------------------
// Document date defaulting
// -----------------------------------------------------------------------------

func TestDefaultDocumentDateFillsBlanks(t *testing.T) {
	req := dtos.MoveOutRequest{}
	defaultDocumentDate(&req, time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "3", req.DocumentDay)
	assert.Equal(t, "septiembre", req.DocumentMonth)
	assert.Equal(t, "25", req.DocumentYear)

	// Explicit values are preserved.
	req = dtos.MoveOutRequest{DocumentDay: "12", DocumentMonth: "mayo", DocumentYear: "24"}
	defaultDocumentDate(&req, time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "12/mayo/24", req.DocumentDate())
}

func TestPing(t *testing.T) {
	svc := newTestService(testConfig(), &fakeSender{}, noopCRM{})
	assert.NoError(t, svc.Ping(context.Background()))

	cfg := testConfig()
	cfg.SendgridAPIKey = "short"
	bad := newTestService(cfg, &fakeSender{}, noopCRM{})
	assert.Error(t, bad.Ping(context.Background()))
}
