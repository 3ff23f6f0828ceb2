package smtpingest

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
)

// extractTextFromMessage extracts the text content from an email
// message. For multipart messages it concatenates the text/plain parts;
// anything else falls back to the raw body.
func extractTextFromMessage(msg *mail.Message) (string, error) {
	contentType := msg.Header.Get("Content-Type")

	if !strings.Contains(strings.ToLower(contentType), "multipart/") {
		return readBody(msg)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return readBody(msg)
	}

	boundary, ok := params["boundary"]
	if !ok {
		return readBody(msg)
	}

	mr := multipart.NewReader(msg.Body, boundary)

	var textContent bytes.Buffer
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			if textContent.Len() > 0 {
				return textContent.String(), nil
			}
			return readBody(msg)
		}

		partContentType := strings.ToLower(part.Header.Get("Content-Type"))
		if strings.Contains(partContentType, "text/plain") {
			partBytes, err := io.ReadAll(part)
			if err != nil {
				continue
			}
			textContent.Write(partBytes)
			textContent.WriteString("\n")
		}
		// Nested multipart and attachments are skipped
	}

	if textContent.Len() > 0 {
		return textContent.String(), nil
	}

	return "", nil
}

func readBody(msg *mail.Message) (string, error) {
	bodyBytes, err := io.ReadAll(msg.Body)
	if err != nil {
		return "", err
	}
	return string(bodyBytes), nil
}
