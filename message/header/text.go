package header

import "strings"

// textField is the name of a field whose body is used as is.
type textField string

func (f textField) get(h *Header) (string, error) { return h.Get(string(f)) }
func (f textField) set(h *Header, v string)        { h.Set(string(f), v) }

const (
	subjectField          textField = Subject
	referencesField       textField = References
	inReplyToField        textField = InReplyTo
	messageIDField        textField = MessageID
	transferEncodingField textField = ContentTransferEncoding
)

// GetSubject returns the Subject field, decoded to UTF-8 when it was read
// from encoded words.
func (h *Header) GetSubject() (string, error) { return subjectField.get(h) }

// SetSubject sets the Subject field.
func (h *Header) SetSubject(s string) { subjectField.set(h, s) }

// GetReferences returns the References field.
func (h *Header) GetReferences() (string, error) { return referencesField.get(h) }

// SetReferences sets the References field.
func (h *Header) SetReferences(refs string) { referencesField.set(h, refs) }

// GetInReplyTo returns the In-Reply-To field.
func (h *Header) GetInReplyTo() (string, error) { return inReplyToField.get(h) }

// SetInReplyTo sets the In-Reply-To field.
func (h *Header) SetInReplyTo(id string) { inReplyToField.set(h, id) }

// GetMessageID returns the Message-ID field.
func (h *Header) GetMessageID() (string, error) { return messageIDField.get(h) }

// SetMessageID sets the Message-ID field.
func (h *Header) SetMessageID(id string) { messageIDField.set(h, id) }

// GetTransferEncoding returns the Content-Transfer-Encoding field.
func (h *Header) GetTransferEncoding() (string, error) { return transferEncodingField.get(h) }

// SetTransferEncoding sets the Content-Transfer-Encoding field.
func (h *Header) SetTransferEncoding(cte string) { transferEncodingField.set(h, cte) }

// GetComments returns the body of every Comments field.
func (h *Header) GetComments() []string { return h.GetAll(Comments) }

// SetComments makes one Comments field per body.
func (h *Header) SetComments(cs ...string) { h.SetAll(Comments, cs...) }

// GetKeywordsList gathers the comma separated keywords of every field with the
// given name, skipping empty items. It returns ErrNoSuchField when there is no
// such field.
func (h *Header) GetKeywordsList(name string) ([]string, error) {
	if v, ok := h.getValue(name); ok {
		if ks, isList := v.([]string); isList {
			return append([]string(nil), ks...), nil
		}
	}

	bodies := h.GetAll(name)
	if len(bodies) == 0 {
		return nil, ErrNoSuchField
	}

	var ks []string
	for _, b := range bodies {
		for _, item := range strings.Split(b, ",") {
			if k := strings.TrimSpace(item); k != "" {
				ks = append(ks, k)
			}
		}
	}
	if ks == nil {
		ks = []string{}
	}

	h.setValue(name, ks)
	return append([]string{}, ks...), nil
}

// SetKeywordsList replaces the named fields with one listing the keywords.
func (h *Header) SetKeywordsList(name string, keywords ...string) {
	h.Set(name, strings.Join(keywords, ", "))
}

// GetKeywords returns the keywords of all Keywords fields.
func (h *Header) GetKeywords() ([]string, error) { return h.GetKeywordsList(Keywords) }

// SetKeywords replaces the Keywords fields with one listing ks.
func (h *Header) SetKeywords(ks ...string) { h.SetKeywordsList(Keywords, ks...) }
