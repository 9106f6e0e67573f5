// Package share turns items shared into the app (forwarded mail, links,
// files) into reminder create inputs, and polls an IMAP mailbox for them.
package share

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"github.com/nhle/followup/internal/engine"
	"github.com/nhle/followup/internal/model"
)

// ParseMessage reads an RFC 5322 message and maps it onto a share-sourced
// create input. The subject becomes the title and the text body the note;
// an HTML body is only used, stripped, when there is no text part. MIME
// attachments and URLs in the body become attachments, and the media type
// follows the first attachment.
func ParseMessage(r io.Reader) (engine.CreateInput, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return engine.CreateInput{}, fmt.Errorf("reading shared message: %w", err)
	}
	defer mr.Close()

	subject, err := mr.Header.Subject()
	if err != nil {
		subject = mr.Header.Get("Subject")
	}

	var textBody, htmlBody string
	var files []model.Attachment

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return engine.CreateInput{}, fmt.Errorf("reading message part: %w", err)
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := h.ContentType()
			if !strings.HasPrefix(contentType, "text/") {
				files = append(files, fileAttachment(contentType, "", ""))
				continue
			}
			body, readErr := io.ReadAll(part.Body)
			if readErr != nil {
				continue
			}
			switch {
			case strings.HasPrefix(contentType, "text/html"):
				if htmlBody == "" {
					htmlBody = string(body)
				}
			case textBody == "":
				textBody = string(body)
			}

		case *mail.AttachmentHeader:
			filename, _ := h.Filename()
			contentType, _, _ := h.ContentType()
			files = append(files, fileAttachment(contentType, filename, h.Get("Content-Id")))
		}
	}

	note := strings.TrimSpace(textBody)
	if note == "" {
		note = stripHTML(htmlBody)
	}

	attachments := append(files, linkAttachments(ExtractLinks(note))...)

	in := engine.CreateInput{
		Title:       strings.TrimSpace(subject),
		Note:        note,
		MediaType:   model.MediaText,
		Source:      model.SourceShare,
		Attachments: attachments,
	}
	if len(attachments) > 0 {
		in.MediaType = attachments[0].Type
	}
	return in, nil
}

// MediaTypeForMIME maps a MIME content type to the media type of a file
// attachment.
func MediaTypeForMIME(contentType string) model.MediaType {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return model.MediaImage
	case strings.HasPrefix(contentType, "video/"):
		return model.MediaVideo
	case strings.HasPrefix(contentType, "audio/"):
		return model.MediaVoice
	default:
		return model.MediaFile
	}
}

func fileAttachment(contentType, filename, contentID string) model.Attachment {
	label := filename
	if label == "" {
		label = "Attachment"
	}
	href := filename
	if id := strings.Trim(contentID, "<>"); id != "" {
		href = "cid:" + id
	}
	return model.Attachment{
		Type:  MediaTypeForMIME(contentType),
		Label: label,
		Href:  href,
	}
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTML removes tags and decodes common entities, providing a basic
// plain-text rendering.
func stripHTML(html string) string {
	if html == "" {
		return ""
	}

	result := html
	for _, tag := range []string{
		"<br>", "<br/>", "<br />", "</p>", "</div>", "</li>",
	} {
		result = strings.ReplaceAll(result, tag, "\n")
	}

	result = htmlTagPattern.ReplaceAllString(result, "")

	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	result = replacer.Replace(result)

	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(result)
}
