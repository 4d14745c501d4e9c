package webhook

// Envelope wraps one webhook delivery: the raw body bytes plus the signature
// and timestamp supplied out of band. Body must be the bytes as received;
// re-serializing before verification breaks the MAC.
type Envelope struct {
	Body      []byte
	Signature string // raw signature header value, optional "sha256=" prefix
	Timestamp string // raw X-Timestamp value; empty when the body carries it
}

// SignedPayload returns the exact bytes the sender signed. With a header
// timestamp the MAC covers "{ts}." + body, binding the timestamp to the
// signature. Without one the body alone is covered; the embedded timestamp
// field travels inside it.
func (e Envelope) SignedPayload() []byte {
	if e.Timestamp == "" {
		return e.Body
	}
	buf := make([]byte, 0, len(e.Timestamp)+1+len(e.Body))
	buf = append(buf, e.Timestamp...)
	buf = append(buf, '.')
	buf = append(buf, e.Body...)
	return buf
}
