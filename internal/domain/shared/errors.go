package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound             = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists        = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput         = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState         = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock    = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrChamberNotFound      = NewDomainError("CHAMBER_NOT_FOUND", "Chamber entry not found for product")
	ErrNoStockForProduct    = NewDomainError("NO_STOCK_FOR_PRODUCT", "No chamber stock recorded for product")
	ErrPacketSizeMismatch   = NewDomainError("PACKET_SIZE_MISMATCH", "Packets-per-bag conflicts with existing entry")
	ErrMissingPackageConfig = NewDomainError("MISSING_PACKAGE_CONFIG", "Package configuration missing for product")
)
