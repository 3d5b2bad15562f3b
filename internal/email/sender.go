package email

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	"rfpflow/internal/config"
	"rfpflow/internal/model"
	"rfpflow/pkg/metrics"
)

// Sender delivers RFP invitations over SMTP. It satisfies the narrow
// interface the RFP service depends on, so tests can swap in a recorder.
type Sender struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSender(cfg config.SMTPConfig, logger *zap.Logger) *Sender {
	return &Sender{cfg: cfg, logger: logger, send: smtp.SendMail}
}

// NewMessageID builds the correlation id stamped on outgoing RFP mail.
// Inbound replies quoting it (or the X headers) are routed back to the pair.
func (s *Sender) NewMessageID(rfpID, vendorID int) string {
	return fmt.Sprintf("rfp-%d-vendor-%d-%d@%s", rfpID, vendorID, time.Now().UnixMilli(), s.cfg.Domain)
}

// SendRFP renders and delivers one RFP invitation to one vendor.
func (s *Sender) SendRFP(rfp *model.RFP, vendor *model.Vendor, messageID string) error {
	body, err := renderRFPBody(rfp, vendor)
	if err != nil {
		return fmt.Errorf("render rfp email: %w", err)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", vendor.Email)
	fmt.Fprintf(&msg, "Subject: RFP: %s\r\n", rfp.Title)
	fmt.Fprintf(&msg, "Message-ID: <%s>\r\n", messageID)
	fmt.Fprintf(&msg, "%s: %d\r\n", HeaderRFPID, rfp.ID)
	fmt.Fprintf(&msg, "%s: %d\r\n", HeaderVendorID, vendor.ID)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}

	if err := s.send(addr, auth, s.cfg.From, []string{vendor.Email}, []byte(msg.String())); err != nil {
		metrics.IncrementEmailDispatch("failed")
		s.logger.Error("failed to send rfp email",
			zap.Int("rfp_id", rfp.ID),
			zap.Int("vendor_id", vendor.ID),
			zap.Error(err))
		return err
	}

	metrics.IncrementEmailDispatch("sent")
	s.logger.Info("rfp email sent",
		zap.Int("rfp_id", rfp.ID),
		zap.Int("vendor_id", vendor.ID),
		zap.String("message_id", messageID))
	return nil
}

var rfpBodyTmpl = template.Must(template.New("rfp").Parse(`
<h2>Request for Proposal: {{.Title}}</h2>
<p>Dear {{.VendorName}},</p>

<p>We are requesting a proposal for the following requirements:</p>

<h3>Description:</h3>
<p>{{.Description}}</p>

<h3>Requirements:</h3>
<ul>
{{range .Items}}  <li><strong>{{.Name}}</strong> (Qty: {{.Quantity}})<br>
   Specifications: {{.Specifications}}</li>
{{end}}</ul>

<h3>Budget:</h3>
<p>Maximum Budget: {{.Currency}} {{.BudgetMax}}</p>

<h3>Timeline:</h3>
<p>Deadline: {{.Deadline}}</p>

<h3>Terms:</h3>
<ul>
  <li>Payment: {{.Payment}}</li>
  <li>Warranty: {{.Warranty}}</li>
  <li>Support: {{.Support}}</li>
</ul>

<p>Please reply to this email with your detailed proposal including pricing, delivery timeline, and terms.</p>

<p>Best regards,<br>
RFP Management System</p>

<hr>
<small>RFP ID: {{.RFPID}} | Vendor ID: {{.VendorID}}</small>
`))

type rfpBodyData struct {
	Title       string
	VendorName  string
	Description string
	Items       []model.RequirementItem
	Currency    string
	BudgetMax   string
	Deadline    string
	Payment     string
	Warranty    string
	Support     string
	RFPID       int
	VendorID    int
}

func renderRFPBody(rfp *model.RFP, vendor *model.Vendor) (string, error) {
	var req model.Requirements
	// A malformed stored document degrades to TBD placeholders rather than
	// blocking the dispatch.
	_ = unmarshalRequirements(rfp, &req)

	data := rfpBodyData{
		Title:       rfp.Title,
		VendorName:  vendor.Name,
		Description: rfp.Description,
		Items:       req.Items,
		Currency:    orDefault(req.Budget.Currency, "USD"),
		BudgetMax:   "TBD",
		Deadline:    orDefault(req.Timeline.Deadline, "TBD"),
		Payment:     orDefault(req.Terms.Payment, "To be negotiated"),
		Warranty:    orDefault(req.Terms.Warranty, "Standard"),
		Support:     orDefault(req.Terms.Support, "As per agreement"),
		RFPID:       rfp.ID,
		VendorID:    vendor.ID,
	}
	if req.Budget.Max > 0 {
		data.BudgetMax = fmt.Sprintf("%.0f", req.Budget.Max)
	}

	var buf strings.Builder
	if err := rfpBodyTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func unmarshalRequirements(rfp *model.RFP, req *model.Requirements) error {
	doc := model.ParseRequirements(rfp.StructuredRequirements)
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, req)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
