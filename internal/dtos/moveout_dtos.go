package dtos

// MoveOutRequest is the full move-out (desocupación) submission. Field
// presence and the person-type-dependent rules are checked by the service's
// validation pass, which trims whitespace before deciding emptiness; the
// struct tags only guard enumerated shapes.
type MoveOutRequest struct {
	// Document date; blank components default to the current date.
	DocumentDay   string `json:"documentDay"`
	DocumentMonth string `json:"documentMonth"`
	DocumentYear  string `json:"documentYear"`

	PersonType string `json:"personType" validate:"omitempty,oneof=natural legal_entity"`

	FullName   string `json:"fullName"`
	NationalID string `json:"nationalId"`
	Email      string `json:"email"`
	TenantID   string `json:"tenantId"`
	UnitNumber string `json:"unitNumber"`
	BranchID   string `json:"branchId"`

	VacateDate       string `json:"vacateDate"`
	VacateReason     string `json:"vacateReason"`
	GoodsDestination string `json:"goodsDestination"`

	// Optional satisfaction survey.
	ChangeConsideration string `json:"changeConsideration,omitempty"`
	ExperienceRating    string `json:"experienceRating,omitempty"`

	// Required when PersonType == "legal_entity".
	CompanyName  string `json:"companyName,omitempty"`
	CompanyTaxID string `json:"companyTaxId,omitempty"`

	// Optional bank refund details; validated as a group when any is present.
	AccountHolder string `json:"accountHolder,omitempty"`
	BankName      string `json:"bankName,omitempty"`
	AccountType   string `json:"accountType,omitempty" validate:"omitempty,oneof=checking savings"`
	AccountNumber string `json:"accountNumber,omitempty"`

	SignatureName  string `json:"signatureName"`
	SignatureImage string `json:"signatureImage,omitempty"`
}

type MoveOutResponse struct {
	Message      string `json:"message"`
	SubmissionID string `json:"submissionId"`
}

type BranchOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RefDataResponse struct {
	Branches          []BranchOption `json:"branches"`
	Banks             []string       `json:"banks"`
	VacateReasons     []string       `json:"vacateReasons"`
	GoodsDispositions []string       `json:"goodsDispositions"`
}
