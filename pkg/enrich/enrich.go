package enrich

import (
	"regexp"
	"strings"

	"github.com/mailify/mailgraph/pkg/types"
)

// Sender categories assigned by classification.
const (
	CategoryClient   = "client"
	CategoryConfrere = "confrere"
	CategoryExpert   = "expert_medical"
	CategoryTribunal = "tribunal"
	CategoryOther    = "autre"
)

// Priority levels assigned by detection.
const (
	PriorityHigh   = "high"
	PriorityNormal = "normal"
)

// Case reference patterns, tried in order. The first capture group is the
// extracted reference.
var caseRefPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)dossier\s*n?°?\s*(\d{4}-\d+)`),
	regexp.MustCompile(`(?i)ref\s*:?\s*([A-Z0-9]+)`),
	regexp.MustCompile(`(?i)RG\s*:?\s*(\d{2}/\d+)`),
	regexp.MustCompile(`(?i)affaire\s*n?°?\s*(\d+)`),
}

var tribunalKeywords = []string{"tribunal", "cour", "justice", "greffe"}

var urgentKeywords = []string{"urgent", "immédiat", "asap", "rapidement"}

// tagKeywords maps a tag to the content keywords that trigger it.
var tagKeywords = map[string][]string{
	"urgence":     {"urgent", "immédiat", "rapide"},
	"rendez-vous": {"rendez-vous", "rdv", "rencontre", "entrevue"},
	"expertise":   {"expertise", "expert", "rapport"},
	"tribunal":    {"audience", "tribunal", "cour", "jugement"},
	"délai":       {"délai", "échéance", "date limite"},
	"paiement":    {"paiement", "facture", "honoraires", "règlement"},
	"contrat":     {"contrat", "convention", "accord"},
	"accident":    {"accident", "sinistre", "collision"},
	"préjudice":   {"préjudice", "dommage", "indemnisation"},
}

// tagOrder fixes the emission order of tags so enrichment is deterministic.
var tagOrder = []string{
	"urgence", "rendez-vous", "expertise", "tribunal", "délai",
	"paiement", "contrat", "accident", "préjudice",
}

// Enricher classifies senders and extracts case references, tags, priority,
// and language from email content.
type Enricher struct {
	clientDomains   []string
	confrereDomains []string
	expertDomains   []string

	knownClients map[string]string // sender email -> client id
	knownCases   map[string]string // literal reference -> case id
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithClientDomains sets the email domains treated as client addresses.
func WithClientDomains(domains ...string) Option {
	return func(e *Enricher) { e.clientDomains = domains }
}

// WithConfrereDomains sets the email domains treated as lawyer colleagues.
func WithConfrereDomains(domains ...string) Option {
	return func(e *Enricher) { e.confrereDomains = domains }
}

// WithExpertDomains sets the domains and name fragments treated as medical
// experts.
func WithExpertDomains(domains ...string) Option {
	return func(e *Enricher) { e.expertDomains = domains }
}

// WithKnownClients loads a directory of known client addresses.
func WithKnownClients(clients map[string]string) Option {
	return func(e *Enricher) { e.knownClients = clients }
}

// WithKnownCases loads a directory of known case references. Known
// references match before the generic patterns.
func WithKnownCases(cases map[string]string) Option {
	return func(e *Enricher) { e.knownCases = cases }
}

// NewEnricher creates a metadata enricher with default domain lists.
func NewEnricher(opts ...Option) *Enricher {
	e := &Enricher{
		confrereDomains: []string{"avocat.fr", "barreau"},
		expertDomains:   []string{"medecin", "medical", "expert"},
		knownClients:    map[string]string{},
		knownCases:      map[string]string{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich fills metadata fields the document does not already carry. The
// document is modified in place.
func (e *Enricher) Enrich(doc *types.Document) {
	if doc == nil {
		return
	}

	if doc.Category == "" {
		doc.Category = e.classifySender(doc.SenderEmail, doc.SenderName)
	}
	if doc.ClientID == "" {
		doc.ClientID = e.knownClients[doc.SenderEmail]
	}
	if doc.CaseID == "" {
		doc.CaseID = e.extractCaseRef(doc.Subject, doc.Body)
	}
	if len(doc.Tags) == 0 {
		doc.Tags = extractTags(doc.Subject, doc.Body)
	}
	if doc.Priority == "" {
		doc.Priority = detectPriority(doc.Subject, doc.Body)
	}
	if doc.Language == "" {
		doc.Language = detectLanguage(doc.Subject + " " + doc.Body)
	}
}

// EnrichBatch enriches a slice of documents in place.
func (e *Enricher) EnrichBatch(docs []*types.Document) {
	for _, doc := range docs {
		e.Enrich(doc)
	}
}

func (e *Enricher) classifySender(senderEmail, senderName string) string {
	emailLower := strings.ToLower(senderEmail)
	nameLower := strings.ToLower(senderName)

	if _, ok := e.knownClients[senderEmail]; ok {
		return CategoryClient
	}
	for _, domain := range e.clientDomains {
		if strings.Contains(emailLower, domain) {
			return CategoryClient
		}
	}
	for _, domain := range e.confrereDomains {
		if strings.Contains(emailLower, domain) {
			return CategoryConfrere
		}
	}
	for _, domain := range e.expertDomains {
		if strings.Contains(emailLower, domain) || strings.Contains(nameLower, domain) {
			return CategoryExpert
		}
	}
	for _, kw := range tribunalKeywords {
		if strings.Contains(emailLower, kw) || strings.Contains(nameLower, kw) {
			return CategoryTribunal
		}
	}
	return CategoryOther
}

func (e *Enricher) extractCaseRef(subject, body string) string {
	text := subject + " " + body

	for ref, caseID := range e.knownCases {
		if ref != "" && strings.Contains(text, ref) {
			return caseID
		}
	}
	for _, pattern := range caseRefPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

func extractTags(subject, body string) []string {
	text := strings.ToLower(subject + " " + body)

	var tags []string
	for _, tag := range tagOrder {
		for _, kw := range tagKeywords[tag] {
			if strings.Contains(text, kw) {
				tags = append(tags, tag)
				break
			}
		}
	}
	return tags
}

func detectPriority(subject, body string) string {
	text := strings.ToLower(subject + " " + body)
	for _, kw := range urgentKeywords {
		if strings.Contains(text, kw) {
			return PriorityHigh
		}
	}
	return PriorityNormal
}

// detectLanguage is a crude stopword vote between French and English. The
// corpus is overwhelmingly French legal mail, so ties default to "fr".
func detectLanguage(text string) string {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return "fr"
	}

	frenchStopwords := map[string]struct{}{
		"le": {}, "la": {}, "les": {}, "de": {}, "des": {}, "du": {},
		"et": {}, "est": {}, "une": {}, "un": {}, "pour": {}, "dans": {},
		"vous": {}, "nous": {}, "votre": {}, "avec": {}, "sur": {}, "ce": {},
	}
	englishStopwords := map[string]struct{}{
		"the": {}, "and": {}, "of": {}, "to": {}, "is": {}, "in": {},
		"you": {}, "we": {}, "your": {}, "with": {}, "for": {}, "this": {},
	}

	var fr, en int
	for _, w := range words {
		w = strings.Trim(w, ".,;:!?()\"'")
		if _, ok := frenchStopwords[w]; ok {
			fr++
		}
		if _, ok := englishStopwords[w]; ok {
			en++
		}
	}
	if en > fr {
		return "en"
	}
	return "fr"
}
