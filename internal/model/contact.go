package model

// ContactNumber is one phone number attached to a contact.
type ContactNumber struct {
	ID      int64
	Address string
	Type    string // "Mobile", "Home", "Work", ...
}

// Contact is an address-book entry keyed by the provider lookup key.
type Contact struct {
	LookupKey  string
	Name       string
	Starred    bool
	LastUpdate int64
	Numbers    []ContactNumber
}

// VCard renders a minimal 2.1 vCard for sharing the contact, one line
// per number.
func (c Contact) VCard() string {
	s := "BEGIN:VCARD\r\nVERSION:2.1\r\nFN:" + c.Name + "\r\n"
	for _, n := range c.Numbers {
		s += "TEL:" + n.Address + "\r\n"
	}
	return s + "END:VCARD\r\n"
}
