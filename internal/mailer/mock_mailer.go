package mailer

import "sync"

type Email struct {
	Recipient    string
	TemplateFile string
	Data         any
}

// MockMailer records messages instead of delivering them. When Err is set,
// Send fails with it and records nothing.
type MockMailer struct {
	mu   sync.Mutex
	sent []Email
	Err  error
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) Send(recipient, templateFile string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}

	m.sent = append(m.sent, Email{Recipient: recipient, TemplateFile: templateFile, Data: data})
	return nil
}

func (m *MockMailer) GetSentEmails() []Email {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Email(nil), m.sent...)
}

// Sent returns the recorded messages rendered from templateFile.
func (m *MockMailer) Sent(templateFile string) []Email {
	var out []Email
	for _, e := range m.GetSentEmails() {
		if e.TemplateFile == templateFile {
			out = append(out, e)
		}
	}
	return out
}

func (m *MockMailer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = nil
	m.Err = nil
}
