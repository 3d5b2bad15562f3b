package email

import (
	"regexp"
	"strconv"
)

// InboundEmail is a normalized inbound message. Headers are the dispatch
// correlation headers stamped on outgoing RFP mail; replies from well-behaved
// clients echo them back.
type InboundEmail struct {
	From    string
	Subject string
	Body    string
	Headers map[string]string
}

const (
	HeaderRFPID    = "X-RFP-ID"
	HeaderVendorID = "X-Vendor-ID"
)

var (
	rfpSubjectRe = regexp.MustCompile(`(?i)RFP.*?(\d+)`)
	rfpBodyRe    = regexp.MustCompile(`(?i)RFP\s*ID:\s*(\d+)`)
	vendorBodyRe = regexp.MustCompile(`(?i)Vendor\s*ID:\s*(\d+)`)
)

// Classify resolves an inbound email back to an RFP and vendor. Headers win
// over the subject line, the subject wins over the body footer. A nil id
// means that side could not be resolved; callers treat the email as
// unrelated when either is nil.
func Classify(msg InboundEmail) (rfpID, vendorID *int) {
	return extractRFPID(msg), extractVendorID(msg)
}

func extractRFPID(msg InboundEmail) *int {
	if id := headerInt(msg.Headers, HeaderRFPID); id != nil {
		return id
	}
	if m := rfpSubjectRe.FindStringSubmatch(msg.Subject); m != nil {
		return atoiRef(m[1])
	}
	if m := rfpBodyRe.FindStringSubmatch(msg.Body); m != nil {
		return atoiRef(m[1])
	}
	return nil
}

func extractVendorID(msg InboundEmail) *int {
	if id := headerInt(msg.Headers, HeaderVendorID); id != nil {
		return id
	}
	if m := vendorBodyRe.FindStringSubmatch(msg.Body); m != nil {
		return atoiRef(m[1])
	}
	return nil
}

func headerInt(headers map[string]string, key string) *int {
	v, ok := headers[key]
	if !ok {
		return nil
	}
	return atoiRef(v)
}

func atoiRef(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
