package constants

import "time"

const (
	OrganizationName = "Almacenajes Minidepósitos"

	// Fallback recipient when a submission references a branch we do not know.
	DefaultRecipientEmail = "info@almacenajes.net"

	// Signature images are embedded inline in the outbound email; anything
	// above this decoded size is replaced by a textual placeholder.
	MaxSignatureBytes            = 30 * 1024
	NoSignaturePlaceholder       = "[no signature provided]"
	OversizeSignaturePlaceholder = "[signature omitted: image exceeds size limit]"
	SignatureDataURLPrefix       = "data:image/png;base64,"

	// Submission pacing and dispatch bounds.
	DefaultSubmitCooldown           = 3 * time.Second
	DefaultDispatchTimeout          = 15 * time.Second
	DefaultGlobalSubmitLimitPerHour = 500
	RateLimitCleanupInterval        = 10 * time.Minute

	// Delivery modes for the outbound email.
	DeliveryModeInline     = "inline"
	DeliveryModeAttachment = "attachment"

	AttachmentFilename = "solicitud-desocupacion.pdf"

	// Label used in payloads for optional fields the tenant left blank.
	NotProvided = "N/A"
)
