package dtos

// Person type values.
const (
	PersonTypeNatural = "natural"
	PersonTypeLegal   = "legal_entity"
)

// Account type values.
const (
	AccountTypeChecking = "checking"
	AccountTypeSavings  = "savings"
)

// PersonTypeLabel returns the display label used in emails and documents.
func (r MoveOutRequest) PersonTypeLabel() string {
	if r.PersonType == PersonTypeLegal {
		return "Persona Jurídica"
	}
	return "Persona Natural"
}

// AccountTypeLabel returns the display label for the bank account type, or
// "" when no account type was provided.
func (r MoveOutRequest) AccountTypeLabel() string {
	switch r.AccountType {
	case AccountTypeChecking:
		return "Corriente"
	case AccountTypeSavings:
		return "Ahorro"
	default:
		return ""
	}
}

// DocumentDate joins the day/month/year components the way the printed
// letter does ("12 de mayo de 2025" appears as 12/mayo/25 in payloads).
func (r MoveOutRequest) DocumentDate() string {
	return r.DocumentDay + "/" + r.DocumentMonth + "/" + r.DocumentYear
}
