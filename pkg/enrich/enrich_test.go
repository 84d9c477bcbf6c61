package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailify/mailgraph/pkg/types"
)

func TestClassifySender(t *testing.T) {
	enricher := NewEnricher(
		WithClientDomains("client.fr"),
		WithKnownClients(map[string]string{"pierre.martin@gmail.com": "client-martin"}),
	)

	tests := []struct {
		name     string
		email    string
		sender   string
		expected string
	}{
		{"known client wins", "pierre.martin@gmail.com", "Pierre Martin", CategoryClient},
		{"client domain", "marie@client.fr", "Marie Durand", CategoryClient},
		{"confrere domain", "j.bernard@avocat.fr", "Me Bernard", CategoryConfrere},
		{"barreau fragment", "secretariat@barreau-paris.fr", "", CategoryConfrere},
		{"expert by domain", "dr.lambert@expertise-medical.fr", "Dr Lambert", CategoryExpert},
		{"expert by name", "contact@cabinet.fr", "Expert Judiciaire Roche", CategoryExpert},
		{"tribunal by email", "greffe@tj-paris.justice.fr", "", CategoryTribunal},
		{"tribunal by name", "notifications@mail.fr", "Tribunal Judiciaire", CategoryTribunal},
		{"fallback", "inconnu@exemple.fr", "Quelqu'un", CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, enricher.classifySender(tt.email, tt.sender))
		})
	}
}

func TestExtractCaseRef(t *testing.T) {
	enricher := NewEnricher(
		WithKnownCases(map[string]string{"Dupont c/ Assurance XYZ": "case-dupont"}),
	)

	tests := []struct {
		name     string
		subject  string
		body     string
		expected string
	}{
		{"dossier numero", "Dossier n° 2024-001 - pièces", "", "2024-001"},
		{"dossier without degree sign", "dossier 2024-117", "", "2024-117"},
		{"ref prefix", "", "Merci de rappeler la Ref: ABC123 dans vos échanges.", "ABC123"},
		{"rg number", "Audience RG 24/00123", "", "24/00123"},
		{"affaire numero", "", "Concernant l'affaire n° 4521, le tribunal...", "4521"},
		{"known case literal", "Re: Dupont c/ Assurance XYZ", "", "case-dupont"},
		{"no reference", "Déjeuner vendredi ?", "On se retrouve à midi.", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, enricher.extractCaseRef(tt.subject, tt.body))
		})
	}
}

func TestExtractTags_DeterministicOrder(t *testing.T) {
	tags := extractTags(
		"URGENT - audience et expertise",
		"Le rapport d'expertise est attendu avant l'audience. Facture jointe.",
	)
	assert.Equal(t, []string{"urgence", "expertise", "tribunal", "paiement"}, tags)
}

func TestExtractTags_NoMatch(t *testing.T) {
	assert.Empty(t, extractTags("Bonjour", "Comment allez-vous ?"))
}

func TestDetectPriority(t *testing.T) {
	assert.Equal(t, PriorityHigh, detectPriority("URGENT", "merci de répondre"))
	assert.Equal(t, PriorityHigh, detectPriority("", "réponse immédiate souhaitée"))
	assert.Equal(t, PriorityNormal, detectPriority("Compte rendu", "Voici le compte rendu."))
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "fr", detectLanguage("Nous vous remercions de votre retour sur le dossier."))
	assert.Equal(t, "en", detectLanguage("Please find attached the report for your review of the case."))
	assert.Equal(t, "fr", detectLanguage(""))
	assert.Equal(t, "fr", detectLanguage("mots sans indice"))
}

func TestEnrich_FillsOnlyEmptyFields(t *testing.T) {
	enricher := NewEnricher(WithClientDomains("client.fr"))

	doc := &types.Document{
		SenderEmail: "marie@client.fr",
		SenderName:  "Marie Durand",
		Subject:     "URGENT - Dossier n° 2024-001",
		Body:        "Merci de me rappeler rapidement au sujet de la facture.",
		Category:    "confrere", // pre-set, must survive
	}
	enricher.Enrich(doc)

	assert.Equal(t, "confrere", doc.Category)
	assert.Equal(t, "2024-001", doc.CaseID)
	assert.Equal(t, []string{"urgence", "paiement"}, doc.Tags)
	assert.Equal(t, PriorityHigh, doc.Priority)
	assert.Equal(t, "fr", doc.Language)
}

func TestEnrich_NilSafe(t *testing.T) {
	enricher := NewEnricher()
	assert.NotPanics(t, func() { enricher.Enrich(nil) })
}

func TestEnrich_KnownClientID(t *testing.T) {
	enricher := NewEnricher(
		WithKnownClients(map[string]string{"pierre.martin@gmail.com": "client-martin"}),
	)

	doc := &types.Document{
		SenderEmail: "pierre.martin@gmail.com",
		Subject:     "Question",
		Body:        "Bonjour Maître,",
	}
	enricher.Enrich(doc)

	assert.Equal(t, CategoryClient, doc.Category)
	assert.Equal(t, "client-martin", doc.ClientID)
}

func TestEnrichBatch(t *testing.T) {
	enricher := NewEnricher()
	docs := []*types.Document{
		{SenderEmail: "greffe@justice.fr", Subject: "Convocation audience", Body: "Le tribunal vous convoque."},
		{SenderEmail: "x@y.fr", Subject: "Divers", Body: "Bonjour."},
	}
	enricher.EnrichBatch(docs)

	require.Equal(t, CategoryTribunal, docs[0].Category)
	assert.Contains(t, docs[0].Tags, "tribunal")
	assert.Equal(t, CategoryOther, docs[1].Category)
	assert.Equal(t, PriorityNormal, docs[1].Priority)
}
