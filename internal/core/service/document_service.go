package service

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/portalkit/portal/internal/core/domain"
	"github.com/portalkit/portal/internal/core/ports"
)

const (
	acmtNamespace       = "urn:iso:std:iso:20022:tech:xsd:acmt.007.001.05"
	acmtFilename        = "acmt_acct_opening_req_v05.xml"
	defaultRecentLimit  = 10
	maxRecentLimit      = 100
	messageFilenameTime = "20060102_150405"
)

// DocumentService builds the demo XML documents and keeps saved messages.
type DocumentService struct {
	repo ports.MessageRepository
	log  zerolog.Logger
	now  func() time.Time
}

func NewDocumentService(repo ports.MessageRepository, log zerolog.Logger) *DocumentService {
	return &DocumentService{repo: repo, log: log, now: time.Now}
}

// --- generic message ---

type xmlMessage struct {
	XMLName  xml.Name    `xml:"Message"`
	Metadata xmlMetadata `xml:"Metadata"`
	Body     xmlBody     `xml:"Body"`
}

type xmlMetadata struct {
	Type      string `xml:"Type"`
	Timestamp string `xml:"Timestamp"`
	Sender    string `xml:"Sender"`
	Receiver  string `xml:"Receiver"`
}

type xmlBody struct {
	Content string `xml:"Content"`
}

func (s *DocumentService) GenerateMessage(in ports.MessageInput) (*ports.GeneratedDocument, error) {
	msgType := domain.MessageType(in.Type)
	if in.Type == "" {
		msgType = domain.MessageCustom
	}
	if !msgType.Valid() {
		return nil, fmt.Errorf("%w: unknown message type %q", domain.ErrInvalidDocument, in.Type)
	}
	if strings.TrimSpace(in.Receiver) == "" || strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("%w: receiver and content are required", domain.ErrInvalidDocument)
	}

	now := s.now()
	doc := xmlMessage{
		Metadata: xmlMetadata{
			Type:      string(msgType),
			Timestamp: now.Format(time.RFC3339),
			Sender:    in.Sender,
			Receiver:  in.Receiver,
		},
		Body: xmlBody{Content: in.Content},
	}

	content, err := marshalDocument(doc)
	if err != nil {
		return nil, err
	}
	return &ports.GeneratedDocument{
		Filename: fmt.Sprintf("%s_%s.xml", msgType, now.Format(messageFilenameTime)),
		Content:  content,
	}, nil
}

func (s *DocumentService) SaveMessage(ctx context.Context, doc *ports.GeneratedDocument, createdBy string) (*domain.Message, error) {
	if doc == nil || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: nothing to save", domain.ErrInvalidDocument)
	}
	msg, err := s.repo.Insert(ctx, doc.Filename, string(doc.Content), createdBy)
	if err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}
	s.log.Info().Int64("message_id", msg.ID).Str("filename", msg.Filename).Str("created_by", createdBy).Msg("message saved")
	return msg, nil
}

func (s *DocumentService) RecentMessages(ctx context.Context, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	msgs, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	return msgs, nil
}

// --- acmt.007.001.05 ---

type acmtDocument struct {
	XMLName     xml.Name       `xml:"urn:iso:std:iso:20022:tech:xsd:acmt.007.001.05 Document"`
	AcctOpngReq acmtOpeningReq `xml:"AcctOpngReq"`
}

type acmtOpeningReq struct {
	Refs       acmtRefs     `xml:"Refs"`
	Acct       acmtAccount  `xml:"Acct"`
	CtrctDts   acmtContract `xml:"CtrctDts"`
	AcctSvcrId acmtServicer `xml:"AcctSvcrId"`
	Org        acmtOrg      `xml:"Org"`
}

type acmtRefs struct {
	MsgId acmtRef  `xml:"MsgId"`
	PrcId *acmtRef `xml:"PrcId,omitempty"`
}

type acmtRef struct {
	Id      string `xml:"Id,omitempty"`
	CreDtTm string `xml:"CreDtTm,omitempty"`
}

type acmtAccount struct {
	Id            acmtAccountID `xml:"Id"`
	Nm            string        `xml:"Nm,omitempty"`
	Sts           string        `xml:"Sts,omitempty"`
	Tp            *acmtCode     `xml:"Tp,omitempty"`
	Ccy           string        `xml:"Ccy,omitempty"`
	MnthlyPmtVal  string        `xml:"MnthlyPmtVal,omitempty"`
	MnthlyRcvdVal string        `xml:"MnthlyRcvdVal,omitempty"`
	MnthlyTxNb    string        `xml:"MnthlyTxNb,omitempty"`
	AvrgBal       string        `xml:"AvrgBal,omitempty"`
	AcctPurp      string        `xml:"AcctPurp,omitempty"`
}

type acmtAccountID struct {
	IBAN string `xml:"IBAN,omitempty"`
	Othr string `xml:"Othr,omitempty"`
}

type acmtCode struct {
	Cd string `xml:"Cd"`
}

type acmtContract struct {
	TrgtGoLiveDt string `xml:"TrgtGoLiveDt"`
	UrgcyFlg     bool   `xml:"UrgcyFlg"`
}

type acmtServicer struct {
	FinInstnId struct {
		BICFI string `xml:"BICFI,omitempty"`
	} `xml:"FinInstnId"`
}

type acmtOrg struct {
	OrgnStnId struct {
		AnyBIC string `xml:"AnyBIC,omitempty"`
		LEI    string `xml:"LEI,omitempty"`
	} `xml:"OrgnStnId"`
	Nm       string      `xml:"Nm,omitempty"`
	Adr      acmtAddress `xml:"Adr"`
	CtctDtls struct {
		Nm       string `xml:"Nm,omitempty"`
		EmailAdr string `xml:"EmailAdr,omitempty"`
	} `xml:"CtctDtls"`
}

type acmtAddress struct {
	Tp      acmtCode `xml:"Tp"`
	AdrLine []string `xml:"AdrLine,omitempty"`
	PstCd   string   `xml:"PstCd,omitempty"`
	TwnNm   string   `xml:"TwnNm,omitempty"`
	Ctry    string   `xml:"Ctry,omitempty"`
}

// GenerateAccountOpening renders an ISO 20022 account opening request. An
// account identifier (IBAN or other) is mandatory; everything optional that
// is blank is omitted.
func (s *DocumentService) GenerateAccountOpening(in ports.AccountOpeningInput) (*ports.GeneratedDocument, error) {
	if in.IBAN == "" && in.OtherAccountID == "" {
		return nil, fmt.Errorf("%w: an IBAN or other account id is required", domain.ErrInvalidDocument)
	}

	now := s.now().UTC()
	msgID := in.MessageID
	if msgID == "" {
		msgID = "MSG" + now.Format("20060102150405")
	}
	created := in.MessageCreatedAt
	if created == "" {
		created = now.Format("2006-01-02T15:04:05Z")
	}
	goLive := in.GoLiveDate
	if goLive.IsZero() {
		goLive = now
	}

	var doc acmtDocument
	req := &doc.AcctOpngReq

	req.Refs.MsgId = acmtRef{Id: msgID, CreDtTm: created}
	if in.ProcessingID != "" || in.ProcessingCreated != "" {
		req.Refs.PrcId = &acmtRef{Id: in.ProcessingID, CreDtTm: in.ProcessingCreated}
	}

	// IBAN wins when both identifiers are given.
	if in.IBAN != "" {
		req.Acct.Id.IBAN = in.IBAN
	} else {
		req.Acct.Id.Othr = in.OtherAccountID
	}
	req.Acct.Nm = in.AccountName
	req.Acct.Sts = in.AccountStatus
	if in.AccountType != "" {
		req.Acct.Tp = &acmtCode{Cd: in.AccountType}
	}
	req.Acct.Ccy = in.Currency
	req.Acct.MnthlyPmtVal = in.MonthlyPayment
	req.Acct.MnthlyRcvdVal = in.MonthlyReceived
	req.Acct.MnthlyTxNb = in.MonthlyTxCount
	req.Acct.AvrgBal = in.AverageBalance
	req.Acct.AcctPurp = in.AccountPurpose

	req.CtrctDts = acmtContract{TrgtGoLiveDt: goLive.Format("2006-01-02"), UrgcyFlg: in.Urgent}
	req.AcctSvcrId.FinInstnId.BICFI = in.ServicerBICFI

	req.Org.OrgnStnId.AnyBIC = in.OrgAnyBIC
	req.Org.OrgnStnId.LEI = in.OrgLEI
	req.Org.Nm = in.OrgName
	req.Org.Adr = acmtAddress{
		Tp:      acmtCode{Cd: "ADDR"},
		AdrLine: nonEmpty(in.AddressLines),
		PstCd:   in.PostCode,
		TwnNm:   in.Town,
		Ctry:    in.Country,
	}
	req.Org.CtctDtls.Nm = in.ContactName
	req.Org.CtctDtls.EmailAdr = in.ContactEmail

	content, err := marshalDocument(doc)
	if err != nil {
		return nil, err
	}
	return &ports.GeneratedDocument{Filename: acmtFilename, Content: content}, nil
}

func marshalDocument(v any) ([]byte, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal xml: %w", err)
	}
	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}

func nonEmpty(lines []string) []string {
	out := lines[:0:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}
