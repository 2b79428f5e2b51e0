package mailer

import (
	"bytes"
	"html/template"
)

var (
	inquiryNotice = template.Must(template.New("notice").Parse(`<h2>New contact inquiry</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
{{if .Phone}}<p><strong>Phone:</strong> {{.Phone}}</p>{{end}}
<p><strong>Type:</strong> {{.Type}}</p>
<p><strong>Subject:</strong> {{.Subject}}</p>
<p><strong>Preferred contact:</strong> {{.PreferredContact}}</p>
<p><strong>Message:</strong></p>
<p>{{.Message}}</p>`))

	autoReply = template.Must(template.New("auto").Parse(`<p>Dear {{.Name}},</p>
<p>Thank you for contacting us. We have received your message and will get back to you within 24 hours.</p>
<p><strong>Your message:</strong></p>
<p>{{.Message}}</p>
<p>Warm regards,<br>The Clinic Team</p>`))

	inquiryReply = template.Must(template.New("reply").Parse(`<p>Dear {{.Name}},</p>
<p>{{.Reply}}</p>
<hr>
<p><em>Your original message:</em></p>
<p>{{.Message}}</p>
<p>Warm regards,<br>The Clinic Team</p>`))
)

// Inquiry is the data every contact template renders.
type Inquiry struct {
	Name             string
	Email            string
	Phone            string
	Subject          string
	Message          string
	Type             string
	PreferredContact string
	Reply            string
}

func InquiryNotice(adminEmail string, in Inquiry) (Message, error) {
	body, err := render(inquiryNotice, in)
	if err != nil {
		return Message{}, err
	}
	subject := "New contact inquiry"
	if in.Subject != "" {
		subject += ": " + in.Subject
	}
	return Message{To: []string{adminEmail}, ReplyTo: in.Email, Subject: subject, HTML: body}, nil
}

func AutoReply(in Inquiry) (Message, error) {
	body, err := render(autoReply, in)
	if err != nil {
		return Message{}, err
	}
	return Message{To: []string{in.Email}, Subject: "We received your message", HTML: body}, nil
}

func InquiryReply(in Inquiry) (Message, error) {
	body, err := render(inquiryReply, in)
	if err != nil {
		return Message{}, err
	}
	subject := "Re: your inquiry"
	if in.Subject != "" {
		subject = "Re: " + in.Subject
	}
	return Message{To: []string{in.Email}, Subject: subject, HTML: body}, nil
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
