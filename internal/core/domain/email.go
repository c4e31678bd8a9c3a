package domain

// EmailMessage is an outbound message. At least one of Text or HTML must be
// set; when both are, the message is sent as multipart/alternative.
type EmailMessage struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}
