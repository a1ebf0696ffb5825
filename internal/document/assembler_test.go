package document

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GrupoSemah/salidasform/internal/dtos"
	"github.com/GrupoSemah/salidasform/internal/signature"
)

func sampleRequest() dtos.MoveOutRequest {
	return dtos.MoveOutRequest{
		DocumentDay:      "12",
		DocumentMonth:    "mayo",
		DocumentYear:     "25",
		PersonType:       dtos.PersonTypeNatural,
		FullName:         "Ana Cedeño",
		NationalID:       "8-123-456",
		Email:            "ana@example.com",
		TenantID:         "T-1001",
		UnitNumber:       "A-23",
		BranchID:         "albrook",
		VacateDate:       "2025-10-01",
		VacateReason:     "Recibí nueva casa u oficina",
		GoodsDestination: "Darle uso en un lugar propio",
		AccountHolder:    "Ana Cedeño",
		BankName:         "Banco General",
		AccountType:      dtos.AccountTypeSavings,
		AccountNumber:    "04-99-887766",
		SignatureName:    "Ana Cedeño",
	}
}

// drawnSignature produces a real encoded signature the way the capture
// widget does.
func drawnSignature(t *testing.T) string {
	t.Helper()
	pad := signature.NewPad(280, 140, 1, nil)
	pad.BeginStroke(signature.Point{X: 20, Y: 70})
	pad.ExtendStroke(signature.Point{X: 120, Y: 40})
	pad.ExtendStroke(signature.Point{X: 240, Y: 90})
	pad.EndStroke()
	img := pad.ExportImage()
	require.NotEmpty(t, img)
	return img
}

func decodePDF(t *testing.T, b64 string) []byte {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(b64)
	require.NoError(t, err)
	require.True(t, len(raw) > 4)
	return raw
}

func TestRenderNaturalPersonWithoutSignature(t *testing.T) {
	out, err := NewAssembler().Render(sampleRequest(), "Albrook", "sub-1")
	require.NoError(t, err)

	raw := decodePDF(t, out)
	assert.Equal(t, "%PDF", string(raw[:4]))
}

func TestRenderLegalEntity(t *testing.T) {
	req := sampleRequest()
	req.PersonType = dtos.PersonTypeLegal
	req.CompanyName = "Comercial El Valle, S.A."
	req.CompanyTaxID = "155612345-2-2015"

	out, err := NewAssembler().Render(req, "Colon", "sub-2")
	require.NoError(t, err)
	decodePDF(t, out)
}

func TestRenderEmbedsDrawnSignature(t *testing.T) {
	req := sampleRequest()
	req.SignatureImage = drawnSignature(t)

	out, err := NewAssembler().Render(req, "Albrook", "sub-3")
	require.NoError(t, err)

	// An embedded PNG makes the document noticeably larger than the
	// text-only letter.
	plain, err := NewAssembler().Render(sampleRequest(), "Albrook", "sub-3")
	require.NoError(t, err)
	assert.Greater(t, len(decodePDF(t, out)), len(decodePDF(t, plain)))
}

func TestRenderCorruptSignatureFallsBackToBlankLine(t *testing.T) {
	req := sampleRequest()
	req.SignatureImage = "data:image/png;base64,not-valid-base64!!!"

	out, err := NewAssembler().Render(req, "Albrook", "sub-4")
	require.NoError(t, err)
	decodePDF(t, out)

	req.SignatureImage = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("not a png"))
	out, err = NewAssembler().Render(req, "Albrook", "sub-4")
	require.NoError(t, err)
	decodePDF(t, out)
}

func TestRenderCorruptPixelStreamFallsBackToBlankLine(t *testing.T) {
	// A PNG whose header parses but whose pixel stream is garbage: the
	// header-only check would let it through to the layout engine.
	raw, err := base64.StdEncoding.DecodeString(
		strings.TrimPrefix(drawnSignature(t), "data:image/png;base64,"))
	require.NoError(t, err)

	idat := bytes.Index(raw, []byte("IDAT"))
	require.Greater(t, idat, 0)
	for i := idat + 4; i < idat+12; i++ {
		raw[i] ^= 0xFF
	}

	_, err = png.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err, "the header must still parse for this scenario")
	_, err = png.Decode(bytes.NewReader(raw))
	require.Error(t, err, "the pixel stream must be undecodable")

	req := sampleRequest()
	req.SignatureImage = "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	out, err := NewAssembler().Render(req, "Albrook", "sub-6")
	require.NoError(t, err)
	decodePDF(t, out)
}

func TestRenderFourDigitYear(t *testing.T) {
	req := sampleRequest()
	req.DocumentYear = "2025"

	out, err := NewAssembler().Render(req, "Albrook", "sub-7")
	require.NoError(t, err)
	decodePDF(t, out)
}

func TestShortYear(t *testing.T) {
	assert.Equal(t, "25", shortYear("2025"))
	assert.Equal(t, "25", shortYear("25"))
	assert.Equal(t, "5", shortYear("5"))
	assert.Equal(t, "", shortYear(""))
}

func TestRenderLongTextReflows(t *testing.T) {
	req := sampleRequest()
	req.VacateReason = strings.Repeat("Disminución o cierre de actividad comercial. ", 20)
	req.FullName = strings.Repeat("Nombre Muy Largo ", 10)

	out, err := NewAssembler().Render(req, "Vista Hermosa", "sub-5")
	require.NoError(t, err)
	decodePDF(t, out)
}
