package header

import (
	"strings"

	"github.com/zostay/go-addr/pkg/addr"
)

// ParseAddressList reads an address list field body. The strict RFC 5322
// parser of go-addr is tried first. When it fails, each comma separated item
// is read as a mailbox whose last word is the address, so any body gives some
// result. An empty body is an empty list.
func ParseAddressList(body string) addr.AddressList {
	if strings.TrimSpace(body) == "" {
		return addr.AddressList{}
	}

	if al, err := addr.ParseEmailAddressList(body); err == nil {
		return al
	}
	return parseLooseAddressList(body)
}

// addressField is the name of a field holding an address list.
type addressField string

func (f addressField) get(h *Header) (addr.AddressList, error) {
	return h.GetAddressList(string(f))
}

// set accepts addr.Address values and strings, which must parse strictly as
// a single address.
func (f addressField) set(h *Header, vs []any) error {
	al := make(addr.AddressList, 0, len(vs))
	for _, v := range vs {
		switch a := v.(type) {
		case addr.Address:
			al = append(al, a)
		case string:
			parsed, err := addr.ParseEmailAddress(a)
			if err != nil {
				return err
			}
			al = append(al, parsed)
		default:
			return ErrWrongAddressType
		}
	}

	h.SetAddressList(string(f), al...)
	return nil
}

// GetAddressList returns the named field read with ParseAddressList. It
// returns ErrNoSuchField or ErrManyFields unless the field appears exactly
// once. The list is cached until the field changes, and a copy is returned.
func (h *Header) GetAddressList(name string) (addr.AddressList, error) {
	var al addr.AddressList
	if v, ok := h.getValue(name); ok {
		al, _ = v.(addr.AddressList)
	}

	if al == nil {
		body, err := h.Get(name)
		if err != nil {
			return nil, err
		}
		al = ParseAddressList(body)
		h.setValue(name, al)
	}

	return append(addr.AddressList{}, al...), nil
}

// GetAllAddressLists returns one list per field with the given name, or
// ErrNoSuchField if there are none.
func (h *Header) GetAllAddressLists(name string) ([]addr.AddressList, error) {
	bodies := h.GetAll(name)
	if len(bodies) == 0 {
		return nil, ErrNoSuchField
	}

	lists := make([]addr.AddressList, 0, len(bodies))
	for _, body := range bodies {
		lists = append(lists, ParseAddressList(body))
	}
	return lists, nil
}

// SetAddressList replaces every field with the given name with one listing
// the addresses. Non-ASCII display names and mailboxes are stored as UTF-8.
// The generator decides how to write them.
func (h *Header) SetAddressList(name string, as ...addr.Address) {
	h.Set(name, addr.AddressList(as).String())
}

// SetAllAddressLists replaces every field with the given name with one field
// per list.
func (h *Header) SetAllAddressLists(name string, lists ...addr.AddressList) {
	bodies := make([]string, 0, len(lists))
	for _, al := range lists {
		bodies = append(bodies, al.String())
	}
	h.SetAll(name, bodies...)
}

const (
	fromField    addressField = From
	senderField  addressField = Sender
	replyToField addressField = ReplyTo
	toField      addressField = To
	ccField      addressField = Cc
	bccField     addressField = Bcc
)

// The Set methods for address fields take addr.Address values or strings. A
// string must parse strictly as one address. Any other type is
// ErrWrongAddressType.

// GetFrom returns the From field.
func (h *Header) GetFrom() (addr.AddressList, error) { return fromField.get(h) }

// SetFrom sets the From field.
func (h *Header) SetFrom(as ...any) error { return fromField.set(h, as) }

// GetSender returns the Sender field.
func (h *Header) GetSender() (addr.AddressList, error) { return senderField.get(h) }

// SetSender sets the Sender field.
func (h *Header) SetSender(as ...any) error { return senderField.set(h, as) }

// GetReplyTo returns the Reply-To field.
func (h *Header) GetReplyTo() (addr.AddressList, error) { return replyToField.get(h) }

// SetReplyTo sets the Reply-To field.
func (h *Header) SetReplyTo(as ...any) error { return replyToField.set(h, as) }

// GetTo returns the To field.
func (h *Header) GetTo() (addr.AddressList, error) { return toField.get(h) }

// SetTo sets the To field.
func (h *Header) SetTo(as ...any) error { return toField.set(h, as) }

// GetCc returns the Cc field.
func (h *Header) GetCc() (addr.AddressList, error) { return ccField.get(h) }

// SetCc sets the Cc field.
func (h *Header) SetCc(as ...any) error { return ccField.set(h, as) }

// GetBcc returns the Bcc field.
func (h *Header) GetBcc() (addr.AddressList, error) { return bccField.get(h) }

// SetBcc sets the Bcc field.
func (h *Header) SetBcc(as ...any) error { return bccField.set(h, as) }

// splitComment separates an address from its parenthesized comments. Nested
// parentheses are kept inside the comment and an unbalanced closing
// parenthesis is kept in the address.
func splitComment(s string) (string, string) {
	var rest, comment []rune
	depth := 0
	for _, c := range s {
		switch {
		case c == '(':
			depth++
			if depth > 1 {
				comment = append(comment, c)
			}
		case c == ')' && depth > 0:
			depth--
			if depth > 0 {
				comment = append(comment, c)
			}
		case depth > 0:
			comment = append(comment, c)
		default:
			rest = append(rest, c)
		}
	}
	return strings.TrimSpace(string(rest)), strings.TrimSpace(string(comment))
}

// parseLooseAddressList reads each comma separated item as a mailbox: comments
// are pulled out, the last word is the address, and any words before it are
// the display name. Groups are not recognized.
func parseLooseAddressList(body string) addr.AddressList {
	items := strings.Split(body, ",")
	al := make(addr.AddressList, 0, len(items))
	for _, item := range items {
		mb, comment := splitComment(item)

		words := strings.Fields(mb)
		if len(words) == 0 {
			continue
		}

		email := strings.Trim(words[len(words)-1], "<>")
		if email == "" {
			continue
		}
		display := strings.Trim(strings.Join(words[:len(words)-1], " "), `"`)

		local, domain := email, ""
		if at := strings.LastIndexByte(email, '@'); at >= 0 {
			local, domain = email[:at], email[at+1:]
		}
		spec := addr.NewAddrSpecParsed(local, domain, email)

		mailbox, err := addr.NewMailboxParsed(display, spec, comment, item)
		if err != nil {
			mailbox, _ = addr.NewMailboxParsed(display, spec, "", item)
		}
		al = append(al, mailbox)
	}
	return al
}
