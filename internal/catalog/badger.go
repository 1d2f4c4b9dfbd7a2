// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/retailrec/internal/recommend"
)

// Key prefixes for BadgerDB storage
const (
	productPrefix     = "product:"
	customerPrefix    = "customer:"
	transactionPrefix = "txn:"
)

// BadgerSource keeps retail data in an embedded BadgerDB key-value store.
// It suits small deployments that ingest purchases incrementally instead of
// loading analytical tables.
//
// Key layout:
//
//	product:<product_id>           -> JSON recommend.Product
//	customer:<customer_id>         -> empty
//	txn:<customer_id>:<uuid>       -> JSON recommend.Transaction
type BadgerSource struct {
	db *badger.DB
}

// OpenBadger opens the store at path. inMemory ignores path and keeps
// everything in RAM.
func OpenBadger(path string, inMemory bool) (*BadgerSource, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerSource{db: db}, nil
}

// Close closes the underlying database.
func (s *BadgerSource) Close() error {
	return s.db.Close()
}

// PutProduct stores or replaces a catalog entry.
func (s *BadgerSource) PutProduct(ctx context.Context, p recommend.Product) error {
	if p.ID == "" {
		return fmt.Errorf("product id is required")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(productPrefix+p.ID), data)
	})
}

// PutCustomer registers a customer id.
func (s *BadgerSource) PutCustomer(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("customer id is required")
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(customerPrefix+id), nil)
	})
}

// AppendTransaction records a purchase line and registers its customer.
func (s *BadgerSource) AppendTransaction(ctx context.Context, tx recommend.Transaction) error {
	if tx.CustomerID == "" {
		return fmt.Errorf("customer id is required")
	}
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("marshal transaction: %w", err)
	}
	key := transactionPrefix + tx.CustomerID + ":" + uuid.NewString()

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(key), data); err != nil {
			return err
		}
		return txn.Set([]byte(customerPrefix+tx.CustomerID), nil)
	})
}

// Products returns the catalog ordered by product id.
func (s *BadgerSource) Products(ctx context.Context) ([]recommend.Product, error) {
	var products []recommend.Product
	err := s.scan(ctx, productPrefix, true, func(_ string, value []byte) error {
		var p recommend.Product
		if err := json.Unmarshal(value, &p); err != nil {
			return fmt.Errorf("unmarshal product: %w", err)
		}
		products = append(products, p)
		return nil
	})
	return products, err
}

// Customers returns every registered customer id in key order.
func (s *BadgerSource) Customers(ctx context.Context) ([]string, error) {
	var customers []string
	err := s.scan(ctx, customerPrefix, false, func(key string, _ []byte) error {
		customers = append(customers, strings.TrimPrefix(key, customerPrefix))
		return nil
	})
	return customers, err
}

// Transactions returns every purchase line grouped by customer.
func (s *BadgerSource) Transactions(ctx context.Context) ([]recommend.Transaction, error) {
	var txs []recommend.Transaction
	err := s.scan(ctx, transactionPrefix, true, func(_ string, value []byte) error {
		var tx recommend.Transaction
		if err := json.Unmarshal(value, &tx); err != nil {
			return fmt.Errorf("unmarshal transaction: %w", err)
		}
		txs = append(txs, tx)
		return nil
	})
	return txs, err
}

// scan visits every key under prefix in a read-only transaction.
func (s *BadgerSource) scan(ctx context.Context, prefix string, values bool, fn func(key string, value []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = values
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			var value []byte
			if values {
				v, err := item.ValueCopy(nil)
				if err != nil {
					return err
				}
				value = v
			}
			if err := fn(string(item.Key()), value); err != nil {
				return err
			}
		}
		return nil
	})
}
