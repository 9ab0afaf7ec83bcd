package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/portalkit/portal/internal/api/metrics"
	"github.com/portalkit/portal/internal/api/websession"
	"github.com/portalkit/portal/internal/core/domain"
	"github.com/portalkit/portal/internal/core/ports"
)

const mimeXML = "application/xml"

type DocumentHandler struct {
	service ports.DocumentService
}

func NewDocumentHandler(service ports.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

func (r messageRequest) toInput() ports.MessageInput {
	return ports.MessageInput{Type: r.Type, Sender: r.Sender, Receiver: r.Receiver, Content: r.Content}
}

func attachment(c echo.Context, doc *ports.GeneratedDocument) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.Filename))
	return c.Blob(http.StatusOK, mimeXML, doc.Content)
}

func (h *DocumentHandler) generateMessage(c echo.Context) (*ports.GeneratedDocument, error) {
	var req messageRequest
	if err := c.Bind(&req); err != nil {
		return nil, fmt.Errorf("%w: invalid payload", domain.ErrInvalidDocument)
	}
	if err := c.Validate(&req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidDocument, err)
	}
	doc, err := h.service.GenerateMessage(req.toInput())
	if err != nil {
		return nil, err
	}
	kind := req.Type
	if kind == "" {
		kind = string(domain.MessageCustom)
	}
	metrics.DocumentsGeneratedTotal.WithLabelValues(kind).Inc()
	return doc, nil
}

// PreviewMessage handles POST /v1/documents/messages/preview.
//
// @Summary      Generate an XML message
// @Tags         documents
// @Accept       json
// @Produce      xml
// @Security     SessionCookie
// @Param        body  body      messageRequest  true  "Message fields"
// @Success      200   {file}    file
// @Failure      400   {object}  ErrorResponse
// @Router       /v1/documents/messages/preview [post]
func (h *DocumentHandler) PreviewMessage(c echo.Context) error {
	doc, err := h.generateMessage(c)
	if err != nil {
		return respondError(c, err)
	}
	return attachment(c, doc)
}

// SaveMessage handles POST /v1/documents/messages.
//
// @Summary      Generate and save an XML message
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        body  body      messageRequest  true  "Message fields"
// @Success      201   {object}  domain.Message
// @Failure      400   {object}  ErrorResponse
// @Failure      503   {object}  ErrorResponse
// @Router       /v1/documents/messages [post]
func (h *DocumentHandler) SaveMessage(c echo.Context) error {
	doc, err := h.generateMessage(c)
	if err != nil {
		return respondError(c, err)
	}

	u, _ := websession.FromContext(c).CurrentUser()
	msg, err := h.service.SaveMessage(c.Request().Context(), doc, u.Username)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, msg)
}

// ListMessages handles GET /v1/documents/messages.
//
// @Summary      Recently saved messages
// @Tags         documents
// @Produce      json
// @Security     SessionCookie
// @Param        limit  query     int  false  "Maximum number of messages (default 10)"
// @Success      200    {array}   domain.Message
// @Router       /v1/documents/messages [get]
func (h *DocumentHandler) ListMessages(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return badRequest(c, "limit must be a positive integer")
		}
		limit = n
	}

	msgs, err := h.service.RecentMessages(c.Request().Context(), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, msgs)
}

// AccountOpening handles POST /v1/documents/account-opening.
//
// @Summary      Generate an acmt.007.001.05 account opening request
// @Tags         documents
// @Accept       json
// @Produce      xml
// @Security     SessionCookie
// @Param        body  body      accountOpeningRequest  true  "Account opening fields"
// @Success      200   {file}    file
// @Failure      400   {object}  ErrorResponse
// @Router       /v1/documents/account-opening [post]
func (h *DocumentHandler) AccountOpening(c echo.Context) error {
	var req accountOpeningRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	in := ports.AccountOpeningInput{
		MessageID:         req.MessageID,
		MessageCreatedAt:  req.MessageCreatedAt,
		ProcessingID:      req.ProcessingID,
		ProcessingCreated: req.ProcessingCreated,
		IBAN:              req.IBAN,
		OtherAccountID:    req.OtherAccountID,
		AccountName:       req.AccountName,
		AccountStatus:     req.AccountStatus,
		AccountType:       req.AccountType,
		Currency:          req.Currency,
		MonthlyPayment:    req.MonthlyPayment,
		MonthlyReceived:   req.MonthlyReceived,
		MonthlyTxCount:    req.MonthlyTxCount,
		AverageBalance:    req.AverageBalance,
		AccountPurpose:    req.AccountPurpose,
		Urgent:            req.Urgent,
		ServicerBICFI:     req.ServicerBICFI,
		OrgAnyBIC:         req.OrgAnyBIC,
		OrgLEI:            req.OrgLEI,
		OrgName:           req.OrgName,
		AddressLines:      req.AddressLines,
		PostCode:          req.PostCode,
		Town:              req.Town,
		Country:           req.Country,
		ContactName:       req.ContactName,
		ContactEmail:      req.ContactEmail,
	}
	if req.GoLiveDate != "" {
		// Already checked by the datetime validator.
		in.GoLiveDate, _ = time.Parse(time.DateOnly, req.GoLiveDate)
	}

	doc, err := h.service.GenerateAccountOpening(in)
	if err != nil {
		return respondError(c, err)
	}
	metrics.DocumentsGeneratedTotal.WithLabelValues("acmt.007").Inc()
	return attachment(c, doc)
}
