package outreach

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"
)

var (
	emailPattern        = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	snippetEmailPattern = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9-]+(?:\.[a-z0-9-]+)*\.[a-z]{2,}`)
	snippetPhonePattern = regexp.MustCompile(`\+?\(?\d[\d\s().-]{7,}\d`)
	legalSuffixes       = regexp.MustCompile(`(?i)\b(inc|llc|ltd|gmbh|corp|corporation|co|company|group|limited|plc)\b\.?`)
	idnaProfile         = idna.Lookup
)

const (
	trackingPrefix     = "utm_"
	defaultPhoneRegion = "US"
	defaultSender      = "Alex"
	mxLookupTimeout    = 3 * time.Second
)

// regionCodes maps canonical intent regions to phone-number region codes.
var regionCodes = map[string]string{
	"united states":  "US",
	"california":     "US",
	"new york":       "US",
	"texas":          "US",
	"united kingdom": "GB",
	"canada":         "CA",
	"australia":      "AU",
	"india":          "IN",
	"germany":        "DE",
}

var (
	ErrNameRequired    = errors.New("name or profile title is required")
	ErrCompanyRequired = errors.New("company or domain is required")
	ErrInvalidDomain   = errors.New("invalid domain")
)

// DNSResolver abstracts DNS lookups to simplify testing.
type DNSResolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
}

// Option configures a Drafter.
type Option func(*Drafter)

// WithDNSResolver overrides the default DNS resolver.
func WithDNSResolver(resolver DNSResolver) Option {
	return func(d *Drafter) {
		d.resolver = resolver
	}
}

// WithSender sets the signature used in drafted emails.
func WithSender(name string) Option {
	return func(d *Drafter) {
		if strings.TrimSpace(name) != "" {
			d.sender = strings.TrimSpace(name)
		}
	}
}

// Drafter produces cold-outreach email guesses and a message draft for a lead.
type Drafter struct {
	resolver DNSResolver
	sender   string
}

// DraftRequest describes the lead to contact. Name may be empty when Title
// carries it, Domain may be empty when Company is set.
type DraftRequest struct {
	Name       string
	Title      string
	Company    string
	Domain     string
	Role       string
	Region     string
	Snippet    string
	ProfileURL string
	Pitch      string
}

// EmailGuess is one candidate address built from a naming pattern.
type EmailGuess struct {
	Address     string `json:"address"`
	Pattern     string `json:"pattern"`
	DomainHasMX bool   `json:"domain_has_mx"`
}

// Contacts are details found verbatim in a search snippet.
type Contacts struct {
	Emails []string `json:"emails"`
	Phones []string `json:"phones"`
}

// Draft is the result of Drafter.Draft.
type Draft struct {
	Name       string       `json:"name"`
	Company    string       `json:"company"`
	Domain     string       `json:"domain"`
	ProfileURL string       `json:"profile_url,omitempty"`
	Guesses    []EmailGuess `json:"guesses"`
	Contacts   Contacts     `json:"contacts"`
	Subject    string       `json:"subject"`
	Body       string       `json:"body"`
}

// NewDrafter builds a drafter with the system resolver.
func NewDrafter(opts ...Option) *Drafter {
	d := &Drafter{
		resolver: systemDNSResolver{},
		sender:   defaultSender,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Draft builds email guesses and a message for req.
func (d *Drafter) Draft(ctx context.Context, req DraftRequest) (Draft, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = PersonName(req.Title)
	}
	if name == "" {
		return Draft{}, ErrNameRequired
	}

	company := strings.TrimSpace(req.Company)
	domain := strings.ToLower(strings.TrimSpace(req.Domain))
	if domain == "" {
		domain = GuessDomain(company)
	}
	if domain == "" {
		return Draft{}, ErrCompanyRequired
	}
	if company == "" {
		company = domain
	}

	asciiDomain, err := idnaProfile.ToASCII(domain)
	if err != nil || !isDomainValid(asciiDomain) {
		return Draft{}, fmt.Errorf("%w %q", ErrInvalidDomain, domain)
	}

	mxCache := make(map[string]bool)
	guesses := d.guessEmails(ctx, name, asciiDomain, mxCache)

	subject, body := compose(name, company, req.Role, req.Pitch, d.sender)
	return Draft{
		Name:       name,
		Company:    company,
		Domain:     asciiDomain,
		ProfileURL: sanitizeProfileURL(req.ProfileURL),
		Guesses:    guesses,
		Contacts:   d.extractContacts(ctx, req.Snippet, req.Region, mxCache),
		Subject:    subject,
		Body:       body,
	}, nil
}

func (d *Drafter) guessEmails(ctx context.Context, name, domain string, mxCache map[string]bool) []EmailGuess {
	first, last := splitName(name)
	if first == "" {
		return nil
	}

	type pattern struct {
		label string
		local string
	}
	patterns := []pattern{{"first", first}}
	if last != "" {
		patterns = []pattern{
			{"first.last", first + "." + last},
			{"first", first},
			{"flast", first[:1] + last},
			{"firstlast", first + last},
			{"first_last", first + "_" + last},
			{"last", last},
		}
	}

	hasMX := d.hasMXRecord(ctx, domain, mxCache)
	guesses := make([]EmailGuess, 0, len(patterns))
	seen := make(map[string]struct{}, len(patterns))
	for _, p := range patterns {
		address := p.local + "@" + domain
		if !emailPattern.MatchString(address) {
			continue
		}
		if _, dup := seen[address]; dup {
			continue
		}
		seen[address] = struct{}{}
		guesses = append(guesses, EmailGuess{Address: address, Pattern: p.label, DomainHasMX: hasMX})
	}
	return guesses
}

func (d *Drafter) extractContacts(ctx context.Context, snippet, region string, mxCache map[string]bool) Contacts {
	contacts := Contacts{Emails: []string{}, Phones: []string{}}
	if strings.TrimSpace(snippet) == "" {
		return contacts
	}

	seen := make(map[string]struct{})
	for _, raw := range snippetEmailPattern.FindAllString(snippet, -1) {
		email := strings.ToLower(strings.Trim(raw, "."))
		if !emailPattern.MatchString(email) {
			continue
		}
		domain := email[strings.IndexByte(email, '@')+1:]
		asciiDomain, err := idnaProfile.ToASCII(domain)
		if err != nil || !isDomainValid(asciiDomain) || !d.hasMXRecord(ctx, asciiDomain, mxCache) {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		contacts.Emails = append(contacts.Emails, email)
	}

	phoneRegion := regionCode(region)
	for _, raw := range snippetPhonePattern.FindAllString(snippet, -1) {
		normalized := normalizePhone(raw, phoneRegion)
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		contacts.Phones = append(contacts.Phones, normalized)
	}
	return contacts
}

func (d *Drafter) hasMXRecord(ctx context.Context, domain string, cache map[string]bool) bool {
	if ok, cached := cache[domain]; cached {
		return ok
	}
	if d.resolver == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, mxLookupTimeout)
	defer cancel()
	records, err := d.resolver.LookupMX(ctx, domain)
	ok := err == nil && len(records) > 0
	cache[domain] = ok
	return ok
}

func compose(name, company, role, pitch, sender string) (string, string) {
	first := strings.Fields(name)[0]
	if role = strings.TrimSpace(role); role == "" {
		role = "your role"
	}
	if pitch = strings.TrimSpace(pitch); pitch == "" {
		pitch = "a way to fill your pipeline with better-fit leads"
	}

	subject := "Quick idea for " + company
	body := fmt.Sprintf("Hi %s,\n\n"+
		"I came across your profile and your work as %s at %s. "+
		"I'm reaching out because we help teams like yours with %s.\n\n"+
		"Would you be open to a 15-minute call next week?\n\n"+
		"Best,\n%s", first, role, company, pitch, sender)
	return subject, body
}

// PersonName extracts a person's name from a profile result title such as
// "Jane Doe - Head of Growth - Acme | LinkedIn".
func PersonName(title string) string {
	name := title
	for _, sep := range []string{"|", " - ", " – ", " — ", "·", ","} {
		if idx := strings.Index(name, sep); idx >= 0 {
			name = name[:idx]
		}
	}
	name = strings.Join(strings.Fields(name), " ")
	if strings.EqualFold(name, "linkedin") {
		return ""
	}
	return name
}

// GuessDomain turns a company name into a likely .com domain.
func GuessDomain(company string) string {
	cleaned := legalSuffixes.ReplaceAllString(strings.ToLower(company), " ")
	var b strings.Builder
	for _, r := range cleaned {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return b.String() + ".com"
}

func splitName(name string) (string, string) {
	var parts []string
	for _, field := range strings.Fields(strings.ToLower(name)) {
		clean := strings.Map(func(r rune) rune {
			if r < unicode.MaxASCII && unicode.IsLetter(r) {
				return r
			}
			return -1
		}, field)
		if clean != "" {
			parts = append(parts, clean)
		}
	}
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], parts[len(parts)-1]
	}
}

func regionCode(region string) string {
	if code, ok := regionCodes[strings.ToLower(strings.TrimSpace(region))]; ok {
		return code
	}
	return defaultPhoneRegion
}

func sanitizeProfileURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	u.Scheme = "https"
	stripTracking(u)
	return u.String()
}

func stripTracking(u *url.URL) {
	query := u.Query()
	changed := false
	for key := range query {
		if strings.HasPrefix(strings.ToLower(key), trackingPrefix) || key == "trk" {
			query.Del(key)
			changed = true
		}
	}
	if changed {
		u.RawQuery = query.Encode()
	}
}

func normalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	for _, part := range strings.Split(domain, ".") {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}

type systemDNSResolver struct{}

func (systemDNSResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	return net.DefaultResolver.LookupMX(ctx, domain)
}
