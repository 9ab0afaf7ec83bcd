package handler

import (
	"time"

	"github.com/portalkit/portal/internal/core/domain"
)

// --- auth ---

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User      domain.PublicUser `json:"user"`
	LoginTime time.Time         `json:"login_time"`
	ExpiresAt time.Time         `json:"expires_at"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,maxbytes=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// --- users ---

type createUserRequest struct {
	Username        string `json:"username"         validate:"required,min=3,max=50"`
	Password        string `json:"password"         validate:"required,min=8,maxbytes=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	Role            string `json:"role"             validate:"omitempty,oneof=user admin"`
}

type resetPasswordRequest struct {
	Password        string `json:"password"         validate:"required,min=8,maxbytes=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

// --- documents ---

type messageRequest struct {
	Type     string `json:"type"     validate:"omitempty,oneof=Order Invoice Notification Report Custom"`
	Sender   string `json:"sender"   validate:"max=200"`
	Receiver string `json:"receiver" validate:"required,max=200"`
	Content  string `json:"content"  validate:"required"`
}

type accountOpeningRequest struct {
	MessageID         string   `json:"message_id"`
	MessageCreatedAt  string   `json:"message_created_at"`
	ProcessingID      string   `json:"processing_id"`
	ProcessingCreated string   `json:"processing_created_at"`
	IBAN              string   `json:"iban"             validate:"required_without=OtherAccountID,max=34"`
	OtherAccountID    string   `json:"other_account_id"`
	AccountName       string   `json:"account_name"`
	AccountStatus     string   `json:"account_status"`
	AccountType       string   `json:"account_type"`
	Currency          string   `json:"currency"         validate:"omitempty,len=3"`
	MonthlyPayment    string   `json:"monthly_payment_value"`
	MonthlyReceived   string   `json:"monthly_received_value"`
	MonthlyTxCount    string   `json:"monthly_transaction_number"`
	AverageBalance    string   `json:"average_balance"`
	AccountPurpose    string   `json:"account_purpose"`
	GoLiveDate        string   `json:"target_go_live_date" validate:"omitempty,datetime=2006-01-02"`
	Urgent            bool     `json:"urgency_flag"`
	ServicerBICFI     string   `json:"servicer_bicfi"`
	OrgAnyBIC         string   `json:"org_any_bic"`
	OrgLEI            string   `json:"org_lei"`
	OrgName           string   `json:"org_name"`
	AddressLines      []string `json:"address_lines"`
	PostCode          string   `json:"post_code"`
	Town              string   `json:"town_name"`
	Country           string   `json:"country"          validate:"omitempty,len=2"`
	ContactName       string   `json:"contact_name"`
	ContactEmail      string   `json:"contact_email"    validate:"omitempty,email"`
}
