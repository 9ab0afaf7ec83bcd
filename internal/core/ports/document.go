package ports

import (
	"context"
	"time"

	"github.com/portalkit/portal/internal/core/domain"
)

// MessageInput is the DTO for the generic XML message generator.
type MessageInput struct {
	Type     string
	Sender   string
	Receiver string
	Content  string
}

// AccountOpeningInput carries the fields of an acmt.007.001.05 request.
// Empty optional fields are left out of the document.
type AccountOpeningInput struct {
	MessageID         string
	MessageCreatedAt  string
	ProcessingID      string
	ProcessingCreated string
	IBAN              string
	OtherAccountID    string
	AccountName       string
	AccountStatus     string
	AccountType       string
	Currency          string
	MonthlyPayment    string
	MonthlyReceived   string
	MonthlyTxCount    string
	AverageBalance    string
	AccountPurpose    string
	GoLiveDate        time.Time
	Urgent            bool
	ServicerBICFI     string
	OrgAnyBIC         string
	OrgLEI            string
	OrgName           string
	AddressLines      []string
	PostCode          string
	Town              string
	Country           string
	ContactName       string
	ContactEmail      string
}

// GeneratedDocument is an XML payload ready for download.
type GeneratedDocument struct {
	Filename string
	Content  []byte
}

// MessageRepository persists saved XML messages.
type MessageRepository interface {
	Insert(ctx context.Context, filename, content, createdBy string) (*domain.Message, error)
	// Recent returns the newest messages first, without content.
	Recent(ctx context.Context, limit int) ([]domain.Message, error)
}

type DocumentService interface {
	GenerateMessage(in MessageInput) (*GeneratedDocument, error)
	SaveMessage(ctx context.Context, doc *GeneratedDocument, createdBy string) (*domain.Message, error)
	RecentMessages(ctx context.Context, limit int) ([]domain.Message, error)
	GenerateAccountOpening(in AccountOpeningInput) (*GeneratedDocument, error)
}
