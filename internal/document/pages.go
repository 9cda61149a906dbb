package document

import (
	"bytes"

	"github.com/ledongthuc/pdf"
)

// CountPDFPages returns the page count of a PDF, or 0 when the data is not
// parseable. Page count is advisory metadata: scanned uploads are often
// malformed, so parse failures are not upload failures.
func CountPDFPages(data []byte) int {
	defer func() {
		// The parser panics on some malformed cross-reference tables.
		_ = recover()
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0
	}
	return r.NumPage()
}
