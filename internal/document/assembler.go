// Package document renders a move-out request to a printable PDF letter for
// attachment to the notification email. The artifact never touches the
// filesystem; Render returns it as a base64 blob.
package document

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/GrupoSemah/salidasform/internal/constants"
	"github.com/GrupoSemah/salidasform/internal/dtos"
	"github.com/GrupoSemah/salidasform/internal/utils"
)

const (
	pageMargin      = 20.0
	bottomMargin    = 25.0
	lineHeight      = 6.0
	signatureWidth  = 60.0
	signatureHeight = 30.0
)

type Assembler struct{}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// Render lays out the request into a paginated letter and returns it as a
// base64-encoded PDF. A corrupt signature image degrades to a blank
// signature line; it never aborts generation.
func (a *Assembler) Render(req dtos.MoveOutRequest, branchName, submissionID string) (string, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, bottomMargin)
	pdf.AddPage()

	_, pageHeight := pdf.GetPageSize()

	// Title
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 8, tr("FORMULARIO DE SOLICITUD DE DESOCUPACIÓN"), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, tr("ALMACENAJES MINIDEPÓSITOS"), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	// Document date, right-aligned
	pdf.SetFont("Helvetica", "", 12)
	dateLine := fmt.Sprintf("Panamá, %s de %s de 20%s", req.DocumentDay, req.DocumentMonth, shortYear(req.DocumentYear))
	pdf.CellFormat(0, lineHeight, tr(dateLine), "", 1, "R", false, 0, "")
	pdf.Ln(6)

	// Addressee
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, lineHeight, tr("Señores"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, lineHeight, tr("Almacenajes Minidepósitos"), "", 1, "L", false, 0, "")
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, lineHeight, tr("Estimados Señores:"), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	// Body paragraph, reflowed to the content width
	pdf.MultiCell(0, lineHeight, tr(a.bodyParagraph(req, branchName)), "", "L", false)
	pdf.Ln(4)

	a.labeledBlock(pdf, tr, "El motivo por el cual desocupo el local es:", req.VacateReason)
	a.labeledBlock(pdf, tr, "Mis bienes serán destinados de la siguiente manera:", req.GoodsDestination)

	authorization := "Asimismo, autorizo a Almacenajes Minidepósitos a realizar la devolución " +
		"correspondiente que se tenga a mi favor, en caso de aplicar, mediante transferencia " +
		"a la cuenta bancaria detallada a continuación:"
	pdf.MultiCell(0, lineHeight, tr(authorization), "", "L", false)
	pdf.Ln(6)

	// Keep the bank block and signature together on one page when possible.
	if pdf.GetY() > pageHeight-90 {
		pdf.AddPage()
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, lineHeight, tr("DATOS BANCARIOS PARA DEVOLUCIÓN:"), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, lineHeight, tr("Titular de la Cuenta: "+orNotProvided(req.AccountHolder)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, lineHeight, tr("Banco: "+orNotProvided(req.BankName)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, lineHeight, tr("Tipo de Cuenta: "+orNotProvided(req.AccountTypeLabel())), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, lineHeight, tr("Número de Cuenta: "+orNotProvided(req.AccountNumber)), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	pdf.CellFormat(0, lineHeight, tr("Atentamente,"), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	a.signatureBlock(pdf, tr, req)

	// Generation footer
	pdf.SetXY(pageMargin, pageHeight-15)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(128, 128, 128)
	footer := fmt.Sprintf("Documento generado el: %s - Solicitud %s",
		time.Now().Format("02/01/2006 15:04"), submissionID)
	pdf.CellFormat(0, 4, tr(footer), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return "", fmt.Errorf("assemble document: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (a *Assembler) bodyParagraph(req dtos.MoveOutRequest, branchName string) string {
	if req.PersonType == dtos.PersonTypeLegal {
		return fmt.Sprintf(
			"Por este medio, yo, %s con cédula de identidad personal número %s, actuando en mi "+
				"condición de Representante Legal de la Empresa %s, con RUC %s, quien mantiene "+
				"alquilado el local %s, Tenant ID %s en Almacenajes Minidepósitos, sucursal %s, "+
				"comunico que estaremos desocupando dicho local aproximadamente el día %s.",
			blank(req.FullName), blank(req.NationalID), blank(req.CompanyName), blank(req.CompanyTaxID),
			blank(req.UnitNumber), blank(req.TenantID), branchName, blank(req.VacateDate),
		)
	}
	return fmt.Sprintf(
		"Por este medio, yo, %s con cédula de identidad personal número %s, quien mantiene "+
			"alquilado el local %s, Tenant ID %s en Almacenajes Minidepósitos, sucursal %s, "+
			"comunico que estaremos desocupando dicho local aproximadamente el día %s.",
		blank(req.FullName), blank(req.NationalID), blank(req.UnitNumber), blank(req.TenantID),
		branchName, blank(req.VacateDate),
	)
}

func (a *Assembler) labeledBlock(pdf *fpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, lineHeight, tr(label), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.MultiCell(0, lineHeight, tr("    "+orNotProvided(value)), "", "L", false)
	pdf.Ln(4)
}

func (a *Assembler) signatureBlock(pdf *fpdf.Fpdf, tr func(string) string, req dtos.MoveOutRequest) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, lineHeight, "FIRMA:", "", 1, "L", false, 0, "")
	y := pdf.GetY() + 2

	if img, ok := decodeSignature(req.SignatureImage); ok {
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("signature", opts, bytes.NewReader(img))
		pdf.ImageOptions("signature", pageMargin, y, signatureWidth, signatureHeight, false, opts, 0, "")
		pdf.SetY(y + signatureHeight + 4)
	} else {
		// Blank line for a handwritten signature.
		pdf.Line(pageMargin, y+10, pageMargin+signatureWidth, y+10)
		pdf.SetY(y + 14)
	}

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, lineHeight, tr("Nombre: "+orNotProvided(req.SignatureName)), "", 1, "L", false, 0, "")
}

// decodeSignature strips the data-URL prefix and fully decodes the payload.
// A header-only check is not enough: a PNG with a valid header but a corrupt
// pixel stream would poison fpdf's sticky error state and abort the whole
// document. The decoded image is re-encoded so fpdf only ever receives bytes
// this process produced. Anything undecodable falls back to the blank
// signature line.
func decodeSignature(dataURL string) ([]byte, bool) {
	if dataURL == "" || !strings.HasPrefix(dataURL, constants.SignatureDataURLPrefix) {
		return nil, false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, constants.SignatureDataURLPrefix))
	if err != nil {
		utils.Logger.WithError(err).Warn("Signature image is not valid base64; using blank line")
		return nil, false
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		utils.Logger.WithError(err).Warn("Signature image is not a valid PNG; using blank line")
		return nil, false
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		utils.Logger.WithError(err).Warn("Signature image could not be re-encoded; using blank line")
		return nil, false
	}
	return buf.Bytes(), true
}

// shortYear reduces a fully typed year ("2025") to the two digits the
// "de 20__" letter template expects.
func shortYear(s string) string {
	if len(s) == 4 {
		return s[2:]
	}
	return s
}

func blank(s string) string {
	if strings.TrimSpace(s) == "" {
		return "_____________"
	}
	return s
}

func orNotProvided(s string) string {
	if strings.TrimSpace(s) == "" {
		return "No especificado"
	}
	return s
}
