package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/mailify/mailgraph/pkg/types"
)

// Neo4jStore implements GraphStore on a Neo4j database.
type Neo4jStore struct {
	client   neo4j.DriverWithContext
	database string
}

var _ GraphStore = (*Neo4jStore)(nil)

// NewNeo4jStore creates a Neo4j-backed store.
func NewNeo4jStore(uri, username, password, database string) (*Neo4jStore, error) {
	client, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if database == "" {
		database = "neo4j"
	}
	return &Neo4jStore{client: client, database: database}, nil
}

// wrapErr maps driver errors onto the store error taxonomy. Uniqueness
// violations become ConstraintError; everything else becomes StorageError.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var neoErr *db.Neo4jError
	if errors.As(err, &neoErr) && strings.Contains(neoErr.Code, "ConstraintValidationFailed") {
		return types.NewConstraintError(op, err)
	}
	return types.NewStorageError(op, err)
}

func (s *Neo4jStore) readRecords(ctx context.Context, op, query string, params map[string]any) ([]*db.Record, error) {
	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return result.([]*db.Record), nil
}

func (s *Neo4jStore) write(ctx context.Context, op, query string, params map[string]any) error {
	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return nil, res.Err()
	})
	return wrapErr(op, err)
}

// readWrite runs a write query and returns its result rows, for writes whose
// row count carries meaning.
func (s *Neo4jStore) readWrite(ctx context.Context, op, query string, params map[string]any) ([]*db.Record, error) {
	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	records, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return records.([]*db.Record), nil
}

// CreateDocument persists a new Email node and returns its id.
func (s *Neo4jStore) CreateDocument(ctx context.Context, doc *types.Document) (string, error) {
	if doc == nil {
		return "", types.NewValidationError("document", "cannot create nil document")
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	query := `
		CREATE (d:Email)
		SET d = $properties
	`
	if err := s.write(ctx, "create document", query, map[string]any{
		"properties": documentToProperties(doc),
	}); err != nil {
		return "", err
	}
	return doc.ID, nil
}

// GetDocuments retrieves documents by id. A nil or empty id list retrieves
// every document, in the store's natural enumeration order.
func (s *Neo4jStore) GetDocuments(ctx context.Context, ids []string) ([]*types.Document, error) {
	query := `
		MATCH (d:Email)
		RETURN d
	`
	params := map[string]any{}
	if len(ids) > 0 {
		query = `
			MATCH (d:Email)
			WHERE d.uuid IN $ids
			RETURN d
		`
		params["ids"] = ids
	}

	records, err := s.readRecords(ctx, "get documents", query, params)
	if err != nil {
		return nil, err
	}
	return documentsFromRecords(records, "d")
}

// FindDocumentByMessageID looks up a document by external message id. When
// several documents carry the same message id, the first record in the
// store's natural enumeration order wins; no ordering is imposed here.
func (s *Neo4jStore) FindDocumentByMessageID(ctx context.Context, messageID string) (string, error) {
	query := `
		MATCH (d:Email {message_id: $message_id})
		RETURN d.uuid AS uuid
		LIMIT 1
	`
	records, err := s.readRecords(ctx, "find document by message id", query, map[string]any{
		"message_id": messageID,
	})
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", types.ErrNotFound
	}
	id, _ := records[0].Get("uuid")
	docID, ok := id.(string)
	if !ok {
		return "", types.NewStorageError("find document by message id", fmt.Errorf("unexpected uuid type %T", id))
	}
	return docID, nil
}

// QueryDocuments runs a pure predicate query.
func (s *Neo4jStore) QueryDocuments(ctx context.Context, pred *Predicate, limit int, order []OrderBy) ([]*types.Document, error) {
	if limit <= 0 {
		return nil, types.ErrInvalidLimit
	}

	var sb strings.Builder
	sb.WriteString("MATCH (d:Email)\n")
	params := map[string]any{"limit": limit}
	if !pred.Empty() {
		sb.WriteString(pred.WhereClause())
		sb.WriteString("\n")
		for k, v := range pred.Params {
			params[k] = v
		}
	}
	sb.WriteString("RETURN d\n")
	if len(order) > 0 {
		terms := make([]string, len(order))
		for i, o := range order {
			terms[i] = o.Render()
		}
		sb.WriteString("ORDER BY " + strings.Join(terms, ", ") + "\n")
	}
	sb.WriteString("LIMIT $limit")

	records, err := s.readRecords(ctx, "query documents", sb.String(), params)
	if err != nil {
		return nil, err
	}
	return documentsFromRecords(records, "d")
}

// FindPersonByEmail looks up a person by normalized email address.
func (s *Neo4jStore) FindPersonByEmail(ctx context.Context, email string) (*types.Person, error) {
	query := `
		MATCH (p:Person {email: $email})
		RETURN p
		LIMIT 1
	`
	records, err := s.readRecords(ctx, "find person", query, map[string]any{"email": email})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, types.ErrNotFound
	}
	node, err := nodeFromRecord(records[0], "p")
	if err != nil {
		return nil, types.NewStorageError("find person", err)
	}
	return personFromNode(node), nil
}

// CreatePerson persists a person. The uniqueness constraint on the email
// surfaces concurrent duplicate creation as a ConstraintError.
func (s *Neo4jStore) CreatePerson(ctx context.Context, person *types.Person) (string, error) {
	if person == nil || person.Email == "" {
		return "", types.ErrEmptyEmail
	}
	if person.ID == "" {
		person.ID = uuid.NewString()
	}

	query := `
		CREATE (p:Person {uuid: $uuid, email: $email, name: $name, role: $role})
	`
	if err := s.write(ctx, "create person", query, map[string]any{
		"uuid":  person.ID,
		"email": person.Email,
		"name":  person.Name,
		"role":  person.Role,
	}); err != nil {
		return "", err
	}
	return person.ID, nil
}

// FindCaseByReference looks up a case by external reference.
func (s *Neo4jStore) FindCaseByReference(ctx context.Context, reference string) (*types.Case, error) {
	query := `
		MATCH (c:Case {reference: $reference})
		RETURN c
		LIMIT 1
	`
	records, err := s.readRecords(ctx, "find case", query, map[string]any{"reference": reference})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, types.ErrNotFound
	}
	node, err := nodeFromRecord(records[0], "c")
	if err != nil {
		return nil, types.NewStorageError("find case", err)
	}
	return caseFromNode(node), nil
}

// CreateCase persists a case, constrained unique on the reference.
func (s *Neo4jStore) CreateCase(ctx context.Context, c *types.Case) (string, error) {
	if c == nil || c.Reference == "" {
		return "", types.ErrEmptyReference
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	query := `
		CREATE (c:Case {uuid: $uuid, reference: $reference, client_name: $client_name, description: $description})
	`
	if err := s.write(ctx, "create case", query, map[string]any{
		"uuid":        c.ID,
		"reference":   c.Reference,
		"client_name": c.ClientName,
		"description": c.Description,
	}); err != nil {
		return "", err
	}
	return c.ID, nil
}

// relationTargets maps each edge type onto its relationship name and the
// label of the target node. Both come from this fixed table, never from
// caller input, so building the query text with them is injection-safe.
var relationTargets = map[types.EdgeType]struct {
	relation string
	toLabel  string
}{
	types.ThreadMemberEdge:  {relation: "THREAD_MEMBER", toLabel: "Email"},
	types.RepliesToEdge:     {relation: "REPLIES_TO", toLabel: "Email"},
	types.InvolvesEdge:      {relation: "INVOLVES", toLabel: "Person"},
	types.RelatedToCaseEdge: {relation: "RELATED_TO_CASE", toLabel: "Case"},
}

// Relate creates a typed relationship between two records. MERGE makes edge
// creation idempotent at the (type, from, to) key. When either endpoint does
// not exist the MATCH yields no rows and the edge cannot be created; that
// surfaces as types.ErrNotFound rather than a silent no-op.
func (s *Neo4jStore) Relate(ctx context.Context, fromID string, edgeType types.EdgeType, toID string) error {
	if fromID == "" || toID == "" {
		return types.ErrEmptyDocumentID
	}
	target, ok := relationTargets[edgeType]
	if !ok {
		return types.NewValidationError("edge_type", fmt.Sprintf("unknown edge type %q", edgeType))
	}

	query := fmt.Sprintf(`
		MATCH (a:Email {uuid: $from})
		MATCH (b:%s {uuid: $to})
		MERGE (a)-[:%s]->(b)
		RETURN count(*) AS merged
	`, target.toLabel, target.relation)

	records, err := s.readWrite(ctx, "relate "+string(edgeType), query, map[string]any{
		"from": fromID,
		"to":   toID,
	})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("relate %s: endpoint %s or %s: %w", edgeType, fromID, toID, types.ErrNotFound)
	}
	return nil
}

// VectorSearch ranks documents by the store's native cosine similarity
// against the query embedding, after applying the bound predicate.
func (s *Neo4jStore) VectorSearch(ctx context.Context, embedding []float32, limit int, pred *Predicate) ([]ScoredDocument, error) {
	if limit <= 0 {
		return nil, types.ErrInvalidLimit
	}

	var sb strings.Builder
	sb.WriteString("MATCH (d:Email)\n")
	sb.WriteString("WHERE d.embedding IS NOT NULL")
	params := map[string]any{
		"query_embedding": embeddingToFloat64(embedding),
		"limit":           limit,
	}
	if !pred.Empty() {
		sb.WriteString(" AND " + strings.Join(pred.Clauses, " AND "))
		for k, v := range pred.Params {
			params[k] = v
		}
	}
	sb.WriteString(`
		WITH d, vector.similarity.cosine(d.embedding, $query_embedding) AS score
		ORDER BY score DESC
		LIMIT $limit
		RETURN d, score
	`)

	records, err := s.readRecords(ctx, "vector search", sb.String(), params)
	if err != nil {
		return nil, err
	}

	results := make([]ScoredDocument, 0, len(records))
	for _, record := range records {
		node, err := nodeFromRecord(record, "d")
		if err != nil {
			return nil, types.NewStorageError("vector search", err)
		}
		score := 0.0
		if v, found := record.Get("score"); found {
			if f, ok := v.(float64); ok {
				score = f
			}
		}
		results = append(results, ScoredDocument{Document: documentFromNode(node), Score: score})
	}
	return results, nil
}

// ThreadNeighbors follows THREAD_MEMBER edges one hop out from the seeds.
func (s *Neo4jStore) ThreadNeighbors(ctx context.Context, seedIDs []string) ([]*types.Document, error) {
	if len(seedIDs) == 0 {
		return nil, nil
	}
	query := `
		MATCH (d:Email)-[:THREAD_MEMBER]->(m:Email)
		WHERE d.uuid IN $seed_ids
		RETURN DISTINCT m
	`
	records, err := s.readRecords(ctx, "thread neighbors", query, map[string]any{"seed_ids": seedIDs})
	if err != nil {
		return nil, err
	}
	return documentsFromRecords(records, "m")
}

// CaseNeighbors follows document -> case -> document two hops out.
func (s *Neo4jStore) CaseNeighbors(ctx context.Context, seedIDs []string, limit int) ([]*types.Document, error) {
	if len(seedIDs) == 0 {
		return nil, nil
	}
	query := `
		MATCH (d:Email)-[:RELATED_TO_CASE]->(:Case)<-[:RELATED_TO_CASE]-(m:Email)
		WHERE d.uuid IN $seed_ids
		RETURN DISTINCT m
		LIMIT $limit
	`
	records, err := s.readRecords(ctx, "case neighbors", query, map[string]any{
		"seed_ids": seedIDs,
		"limit":    limit,
	})
	if err != nil {
		return nil, err
	}
	return documentsFromRecords(records, "m")
}

// PersonNeighbors follows document -> person -> document two hops out.
func (s *Neo4jStore) PersonNeighbors(ctx context.Context, seedIDs []string, limit int) ([]*types.Document, error) {
	if len(seedIDs) == 0 {
		return nil, nil
	}
	query := `
		MATCH (d:Email)-[:INVOLVES]->(:Person)<-[:INVOLVES]-(m:Email)
		WHERE d.uuid IN $seed_ids
		RETURN DISTINCT m
		LIMIT $limit
	`
	records, err := s.readRecords(ctx, "person neighbors", query, map[string]any{
		"seed_ids": seedIDs,
		"limit":    limit,
	})
	if err != nil {
		return nil, err
	}
	return documentsFromRecords(records, "m")
}

// CreateIndices creates the uniqueness constraints and range indices the
// resolver and the query paths rely on. Safe to run repeatedly.
func (s *Neo4jStore) CreateIndices(ctx context.Context) error {
	statements := []string{
		"CREATE CONSTRAINT email_uuid IF NOT EXISTS FOR (d:Email) REQUIRE d.uuid IS UNIQUE",
		"CREATE CONSTRAINT person_email IF NOT EXISTS FOR (p:Person) REQUIRE p.email IS UNIQUE",
		"CREATE CONSTRAINT case_reference IF NOT EXISTS FOR (c:Case) REQUIRE c.reference IS UNIQUE",
		"CREATE INDEX email_message_id IF NOT EXISTS FOR (d:Email) ON (d.message_id)",
		"CREATE INDEX email_thread_id IF NOT EXISTS FOR (d:Email) ON (d.thread_id)",
		"CREATE INDEX email_category IF NOT EXISTS FOR (d:Email) ON (d.category)",
		"CREATE INDEX email_date IF NOT EXISTS FOR (d:Email) ON (d.date)",
	}
	for _, stmt := range statements {
		if err := s.write(ctx, "create indices", stmt, nil); err != nil {
			return err
		}
	}
	return nil
}

// Stats collects node, edge, and category counts.
func (s *Neo4jStore) Stats(ctx context.Context) (*GraphStats, error) {
	stats := &GraphStats{
		Edges:      map[string]int{},
		Categories: map[string]int{},
	}

	counts := []struct {
		query string
		dest  *int
	}{
		{"MATCH (d:Email) RETURN count(d) AS c", &stats.Documents},
		{"MATCH (p:Person) RETURN count(p) AS c", &stats.Persons},
		{"MATCH (c:Case) RETURN count(c) AS c", &stats.Cases},
	}
	for _, q := range counts {
		records, err := s.readRecords(ctx, "stats", q.query, nil)
		if err != nil {
			return nil, err
		}
		if len(records) > 0 {
			if v, found := records[0].Get("c"); found {
				if n, ok := v.(int64); ok {
					*q.dest = int(n)
				}
			}
		}
	}

	records, err := s.readRecords(ctx, "stats", "MATCH ()-[r]->() RETURN type(r) AS t, count(r) AS c", nil)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		t, _ := record.Get("t")
		c, _ := record.Get("c")
		name, ok := t.(string)
		count, ok2 := c.(int64)
		if ok && ok2 {
			stats.Edges[name] = int(count)
		}
	}

	records, err = s.readRecords(ctx, "stats", "MATCH (d:Email) RETURN d.category AS cat, count(d) AS c", nil)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		cat, _ := record.Get("cat")
		c, _ := record.Get("c")
		count, ok := c.(int64)
		if !ok {
			continue
		}
		name, ok := cat.(string)
		if !ok || name == "" {
			name = "unknown"
		}
		stats.Categories[name] = int(count)
	}

	return stats, nil
}

// Close releases the underlying driver.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

// --- record and property conversion helpers ---

func nodeFromRecord(record *db.Record, key string) (dbtype.Node, error) {
	value, found := record.Get(key)
	if !found {
		return dbtype.Node{}, fmt.Errorf("record is missing %q", key)
	}
	node, ok := value.(dbtype.Node)
	if !ok {
		return dbtype.Node{}, fmt.Errorf("unexpected type for %q: got %T, expected dbtype.Node", key, value)
	}
	return node, nil
}

func documentsFromRecords(records []*db.Record, key string) ([]*types.Document, error) {
	docs := make([]*types.Document, 0, len(records))
	for _, record := range records {
		node, err := nodeFromRecord(record, key)
		if err != nil {
			return nil, types.NewStorageError("parse documents", err)
		}
		docs = append(docs, documentFromNode(node))
	}
	return docs, nil
}

func documentToProperties(doc *types.Document) map[string]any {
	props := map[string]any{
		"uuid":            doc.ID,
		"subject":         doc.Subject,
		"body":            doc.Body,
		"sender_email":    doc.SenderEmail,
		"sender_name":     doc.SenderName,
		"recipients":      doc.Recipients,
		"cc":              doc.Cc,
		"date":            doc.Date,
		"thread_id":       doc.ThreadID,
		"message_id":      doc.MessageID,
		"in_reply_to":     doc.InReplyTo,
		"category":        doc.Category,
		"client_id":       doc.ClientID,
		"case_id":         doc.CaseID,
		"tags":            doc.Tags,
		"priority":        doc.Priority,
		"has_attachments": doc.HasAttachments,
		"language":        doc.Language,
	}
	if len(doc.Embedding) > 0 {
		props["embedding"] = embeddingToFloat64(doc.Embedding)
	}
	return props
}

func documentFromNode(node dbtype.Node) *types.Document {
	props := node.Props
	return &types.Document{
		ID:             stringProp(props, "uuid"),
		Subject:        stringProp(props, "subject"),
		Body:           stringProp(props, "body"),
		Embedding:      embeddingProp(props, "embedding"),
		SenderEmail:    stringProp(props, "sender_email"),
		SenderName:     stringProp(props, "sender_name"),
		Recipients:     stringsProp(props, "recipients"),
		Cc:             stringsProp(props, "cc"),
		Date:           timeProp(props, "date"),
		ThreadID:       stringProp(props, "thread_id"),
		MessageID:      stringProp(props, "message_id"),
		InReplyTo:      stringProp(props, "in_reply_to"),
		Category:       stringProp(props, "category"),
		ClientID:       stringProp(props, "client_id"),
		CaseID:         stringProp(props, "case_id"),
		Tags:           stringsProp(props, "tags"),
		Priority:       stringProp(props, "priority"),
		HasAttachments: boolProp(props, "has_attachments"),
		Language:       stringProp(props, "language"),
	}
}

func personFromNode(node dbtype.Node) *types.Person {
	props := node.Props
	return &types.Person{
		ID:    stringProp(props, "uuid"),
		Email: stringProp(props, "email"),
		Name:  stringProp(props, "name"),
		Role:  stringProp(props, "role"),
	}
}

func caseFromNode(node dbtype.Node) *types.Case {
	props := node.Props
	return &types.Case{
		ID:          stringProp(props, "uuid"),
		Reference:   stringProp(props, "reference"),
		ClientName:  stringProp(props, "client_name"),
		Description: stringProp(props, "description"),
	}
}

func stringProp(props map[string]any, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

func stringsProp(props map[string]any, key string) []string {
	raw, ok := props[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func boolProp(props map[string]any, key string) bool {
	v, _ := props[key].(bool)
	return v
}

func timeProp(props map[string]any, key string) time.Time {
	if v, ok := props[key].(time.Time); ok {
		return v
	}
	return time.Time{}
}

func embeddingProp(props map[string]any, key string) []float32 {
	raw, ok := props[key].([]any)
	if !ok {
		return nil
	}
	out := make([]float32, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(float64); ok {
			out = append(out, float32(f))
		}
	}
	return out
}

func embeddingToFloat64(embedding []float32) []float64 {
	out := make([]float64, len(embedding))
	for i, v := range embedding {
		out[i] = float64(v)
	}
	return out
}
