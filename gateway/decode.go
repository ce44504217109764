package gateway

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzip"
)

// acceptEncoding is advertised on every request. Setting it by hand turns off the
// transparent gzip handling of net/http, so readBody decodes both.
const acceptEncoding = "br, gzip"

// maxBodySize caps the decoded response body.
const maxBodySize = 8 << 20

// readBody reads the response body and undoes its Content-Encoding.
func readBody(body io.Reader, contentEncoding string) ([]byte, error) {
	var reader io.Reader
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "", "identity":
		reader = body
	case "br":
		reader = brotli.NewReader(body)
	case "gzip", "x-gzip":
		gz, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("opening gzip body : %w", err)
		}
		defer gz.Close()
		reader = gz
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", contentEncoding)
	}

	data, err := io.ReadAll(io.LimitReader(reader, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("reading body : %w", err)
	}
	if len(data) > maxBodySize {
		return nil, fmt.Errorf("body exceeds %d bytes", maxBodySize)
	}
	return data, nil
}

// sniff describes a body that could not be decoded as a GraphQL response.
func sniff(data []byte) string {
	if len(bytes.TrimSpace(data)) == 0 {
		return "empty body"
	}
	return mimetype.Detect(data).String()
}
