package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mailify/mailgraph/pkg/store"
	"github.com/mailify/mailgraph/pkg/types"
)

// Resolver resolves persons and cases by natural key, creating them lazily on
// first reference. Resolution is serialized per key, so concurrent batches
// never race a read-then-create for the same address or reference.
type Resolver struct {
	store store.EntityStore

	mu       sync.Mutex
	keyLocks map[string]*sync.Mutex
	people   map[string]string
	cases    map[string]string
}

// NewResolver creates a resolver over the given entity store.
func NewResolver(entityStore store.EntityStore) *Resolver {
	return &Resolver{
		store:    entityStore,
		keyLocks: make(map[string]*sync.Mutex),
		people:   make(map[string]string),
		cases:    make(map[string]string),
	}
}

// lockKey returns the mutex serializing resolution for one natural key.
func (r *Resolver) lockKey(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.keyLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		r.keyLocks[key] = lock
	}
	return lock
}

// NormalizeEmail produces the lookup key for a person: trimmed and
// case-folded.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ResolvePerson returns the id of the person with the given email, creating
// one when none exists. The same address always resolves to the same id,
// within a run and across runs.
func (r *Resolver) ResolvePerson(ctx context.Context, email, name string) (string, error) {
	key := NormalizeEmail(email)
	if key == "" {
		return "", types.ErrEmptyEmail
	}

	lock := r.lockKey("person:" + key)
	lock.Lock()
	defer lock.Unlock()

	if id, ok := r.people[key]; ok {
		return id, nil
	}

	id, err := r.findOrCreatePerson(ctx, key, name)
	if err != nil {
		return "", err
	}
	r.people[key] = id
	return id, nil
}

func (r *Resolver) findOrCreatePerson(ctx context.Context, email, name string) (string, error) {
	person, err := r.store.FindPersonByEmail(ctx, email)
	if err == nil {
		return person.ID, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return "", err
	}

	if strings.TrimSpace(name) == "" {
		name = email
	}
	id, err := r.store.CreatePerson(ctx, &types.Person{
		Email: email,
		Name:  name,
		Role:  "unknown",
	})
	if err == nil {
		return id, nil
	}

	// A concurrent writer won the uniqueness constraint; their record is
	// the canonical one.
	if errors.Is(err, &types.ConstraintError{}) {
		person, findErr := r.store.FindPersonByEmail(ctx, email)
		if findErr != nil {
			return "", findErr
		}
		return person.ID, nil
	}
	return "", err
}

// ResolveCase returns the id of the case with the given external reference,
// creating one when none exists.
func (r *Resolver) ResolveCase(ctx context.Context, reference string) (string, error) {
	key := strings.TrimSpace(reference)
	if key == "" {
		return "", types.ErrEmptyReference
	}

	lock := r.lockKey("case:" + key)
	lock.Lock()
	defer lock.Unlock()

	if id, ok := r.cases[key]; ok {
		return id, nil
	}

	id, err := r.findOrCreateCase(ctx, key)
	if err != nil {
		return "", err
	}
	r.cases[key] = id
	return id, nil
}

func (r *Resolver) findOrCreateCase(ctx context.Context, reference string) (string, error) {
	c, err := r.store.FindCaseByReference(ctx, reference)
	if err == nil {
		return c.ID, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return "", err
	}

	id, err := r.store.CreateCase(ctx, &types.Case{
		Reference:   reference,
		ClientName:  "",
		Description: fmt.Sprintf("Case file %s", reference),
	})
	if err == nil {
		return id, nil
	}

	if errors.Is(err, &types.ConstraintError{}) {
		c, findErr := r.store.FindCaseByReference(ctx, reference)
		if findErr != nil {
			return "", findErr
		}
		return c.ID, nil
	}
	return "", err
}
