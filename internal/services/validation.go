package services

import (
	"context"
	"strings"

	"github.com/GrupoSemah/salidasform/internal/dtos"
	"github.com/GrupoSemah/salidasform/internal/refdata"
	"github.com/GrupoSemah/salidasform/internal/utils"
)

// ValidationError carries one human-readable message per failing field,
// keyed by the field's JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// ValidateMoveOut runs the full rule set over a submission: per-field
// requirements, email grammar, enumerated memberships, the person-type
// refinement, and the all-or-nothing bank group. Whitespace-only values
// count as missing. Struct tags cannot express the conditional rules, which
// is why this pass exists alongside them.
func ValidateMoveOut(ctx context.Context, req dtos.MoveOutRequest, catalog *refdata.Catalog, checkMX bool) *ValidationError {
	fields := map[string]string{}

	require := func(key, value, message string) {
		if strings.TrimSpace(value) == "" {
			fields[key] = message
		}
	}

	require("unitNumber", req.UnitNumber, "Debe ingresar el número del local")
	require("branchId", req.BranchID, "Debe seleccionar una sucursal")
	require("vacateDate", req.VacateDate, "Debe ingresar la fecha de desocupación")
	require("signatureName", req.SignatureName, "Debe ingresar el nombre para la firma")

	if strings.TrimSpace(req.VacateReason) == "" {
		fields["vacateReason"] = "Debe seleccionar el motivo de desocupación"
	} else if !catalog.HasVacateReason(strings.TrimSpace(req.VacateReason)) {
		fields["vacateReason"] = "Debe seleccionar un motivo de desocupación válido"
	}

	if strings.TrimSpace(req.GoodsDestination) == "" {
		fields["goodsDestination"] = "Debe seleccionar el destino de sus bienes"
	} else if !catalog.HasGoodsDisposition(strings.TrimSpace(req.GoodsDestination)) {
		fields["goodsDestination"] = "Debe seleccionar un destino de bienes válido"
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		fields["email"] = "Debe ingresar su correo electrónico"
	} else if !utils.ValidateEmail(ctx, email, checkMX) {
		fields["email"] = "Debe ingresar un correo electrónico válido"
	}

	switch req.PersonType {
	case dtos.PersonTypeNatural:
		require("fullName", req.FullName, "Debe ingresar su nombre completo")
		require("nationalId", req.NationalID, "Debe ingresar su número de cédula")
	case dtos.PersonTypeLegal:
		require("fullName", req.FullName, "Debe ingresar su nombre completo")
		require("nationalId", req.NationalID, "Debe ingresar su número de cédula")
		require("companyName", req.CompanyName, "Debe ingresar el nombre de la empresa")
		require("companyTaxId", req.CompanyTaxID, "Debe ingresar el RUC de la empresa")
	default:
		fields["personType"] = "Debe seleccionar el tipo de persona"
	}

	// Bank refund details are optional, but a partially filled block is
	// something branch staff cannot act on.
	bankFields := []struct{ key, value, message string }{
		{"accountHolder", req.AccountHolder, "Debe ingresar el nombre de la cuenta"},
		{"bankName", req.BankName, "Debe ingresar el banco"},
		{"accountType", req.AccountType, "Debe seleccionar el tipo de cuenta"},
		{"accountNumber", req.AccountNumber, "Debe ingresar el número de cuenta"},
	}
	anyBank := false
	for _, f := range bankFields {
		if strings.TrimSpace(f.value) != "" {
			anyBank = true
			break
		}
	}
	if anyBank {
		for _, f := range bankFields {
			require(f.key, f.value, f.message)
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
