// Package memstore is an in-memory implementation of the service stores for tests.
// Constraint violations map to the same errors the Postgres repositories return,
// and WithTransaction rolls every table back when fn fails.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/pkg/helpers"
)

type pair [2]int64

type tables struct {
	users        map[int64]models.User
	tokens       map[string]models.RefreshToken
	apartments   map[int64]models.Apartment
	amenities    map[int64]models.Amenity
	invoices     map[int64]models.Invoice
	transactions map[int64]models.Transaction
	posts        map[int64]models.Post
	postLikes    map[pair]bool
	comments     map[int64]models.Comment
	commentLikes map[pair]bool
	requests     map[int64]models.ServiceRequest
	messages     []models.ServiceRequestMessage
	seq          int64
	invoiceSeq   int64
}

func newTables() tables {
	return tables{
		users:        map[int64]models.User{},
		tokens:       map[string]models.RefreshToken{},
		apartments:   map[int64]models.Apartment{},
		amenities:    map[int64]models.Amenity{},
		invoices:     map[int64]models.Invoice{},
		transactions: map[int64]models.Transaction{},
		posts:        map[int64]models.Post{},
		postLikes:    map[pair]bool{},
		comments:     map[int64]models.Comment{},
		commentLikes: map[pair]bool{},
		requests:     map[int64]models.ServiceRequest{},
	}
}

func (t tables) clone() tables {
	c := newTables()
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.tokens {
		c.tokens[k] = v
	}
	for k, v := range t.apartments {
		c.apartments[k] = v
	}
	for k, v := range t.amenities {
		c.amenities[k] = v
	}
	for k, v := range t.invoices {
		c.invoices[k] = v
	}
	for k, v := range t.transactions {
		c.transactions[k] = v
	}
	for k, v := range t.posts {
		c.posts[k] = v
	}
	for k, v := range t.postLikes {
		c.postLikes[k] = v
	}
	for k, v := range t.comments {
		c.comments[k] = v
	}
	for k, v := range t.commentLikes {
		c.commentLikes[k] = v
	}
	for k, v := range t.requests {
		c.requests[k] = v
	}
	c.messages = append([]models.ServiceRequestMessage(nil), t.messages...)
	c.seq = t.seq
	c.invoiceSeq = t.invoiceSeq
	return c
}

type txKey struct{}

// DB holds every table. The zero value is not usable; call New.
type DB struct {
	mu   sync.Mutex
	txMu sync.Mutex
	t    tables

	// Now stamps created_at and updated_at
	Now func() time.Time

	Users           *Users
	Tokens          *Tokens
	Apartments      *Apartments
	Amenities       *Amenities
	Invoices        *Invoices
	Transactions    *Transactions
	Posts           *Posts
	ServiceRequests *ServiceRequests
}

// New returns an empty database
func New() *DB {
	db := &DB{t: newTables(), Now: time.Now}
	db.Users = &Users{db: db}
	db.Tokens = &Tokens{db: db}
	db.Apartments = &Apartments{db: db}
	db.Amenities = &Amenities{db: db}
	db.Invoices = &Invoices{db: db}
	db.Transactions = &Transactions{db: db}
	db.Posts = &Posts{db: db}
	db.ServiceRequests = &ServiceRequests{db: db}
	return db
}

// WithTransaction serializes transactions and restores all tables when fn fails.
// Nested calls join the outer transaction.
func (db *DB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.Lock()
	snapshot := db.t.clone()
	db.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		db.mu.Lock()
		db.t = snapshot
		db.mu.Unlock()
		return err
	}
	return nil
}

func (db *DB) lock() func() {
	db.mu.Lock()
	return db.mu.Unlock
}

func (db *DB) nextID() int64 {
	db.t.seq++
	return db.t.seq
}

func sortBy[T any](items []T, less func(a, b T) bool) []T {
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
	return items
}

// page sorts items with less and returns the requested 1-based page
func page[T any](items []T, less func(a, b T) bool, pageNum, size int) []T {
	sortBy(items, less)
	start, end := helpers.CalculateSliceIndices(pageNum, size, len(items))
	return items[start:end]
}

func ptr[T any](v T) *T { return &v }
