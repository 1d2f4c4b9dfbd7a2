// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package recommend

import (
	"math"
	"sort"

	"github.com/tomtom215/retailrec/internal/recommend/algorithms"
)

// Cell is one observed (customer, product) interaction.
type Cell struct {
	Product int
	Rating  float64
}

// InteractionMatrix is the sparse customer x product implicit-rating matrix.
//
// Customers and products are sorted ascending by identifier and their
// position is their dense index. Rows[c] lists the nonzero cells of
// customer c ordered by product index. A customer or product with no
// interactions still owns a row or column.
type InteractionMatrix struct {
	CustomerIDs []string
	ProductIDs  []string
	Rows        [][]Cell

	// Dropped counts transactions that were rejected while building:
	// unknown product, quantity below 1, or negative total.
	Dropped int
}

// Rating is the implicit rating contributed by one transaction:
// ln(1 + quantity) * (1 + total / 1000).
func Rating(quantity int, total float64) float64 {
	return math.Log1p(float64(quantity)) * (1 + total/1000)
}

// BuildInteractionMatrix aggregates every transaction of the snapshot into
// one cell per (customer, product) pair. It fails with ErrEmptyInput when
// the catalog is empty or no transaction survives validation.
func BuildInteractionMatrix(s Snapshot) (*InteractionMatrix, error) {
	if len(s.Products) == 0 || len(s.Transactions) == 0 {
		return nil, ErrEmptyInput
	}

	productSet := make(map[string]struct{}, len(s.Products))
	for _, p := range s.Products {
		if p.ID == "" {
			continue
		}
		productSet[p.ID] = struct{}{}
	}
	if len(productSet) == 0 {
		return nil, ErrEmptyInput
	}

	m := &InteractionMatrix{}
	customerSet := make(map[string]struct{}, len(s.Customers))
	for _, c := range s.Customers {
		if c != "" {
			customerSet[c] = struct{}{}
		}
	}

	valid := make([]Transaction, 0, len(s.Transactions))
	for _, tx := range s.Transactions {
		if _, ok := productSet[tx.ProductID]; !ok || tx.CustomerID == "" || tx.Quantity < 1 || tx.Total < 0 {
			m.Dropped++
			continue
		}
		customerSet[tx.CustomerID] = struct{}{}
		valid = append(valid, tx)
	}
	if len(valid) == 0 {
		return nil, ErrEmptyInput
	}

	m.CustomerIDs = sortedKeys(customerSet)
	m.ProductIDs = sortedKeys(productSet)

	cells := make([]map[int]float64, len(m.CustomerIDs))
	for _, tx := range valid {
		c, _ := m.CustomerIndex(tx.CustomerID)
		p, _ := m.ProductIndex(tx.ProductID)
		if cells[c] == nil {
			cells[c] = make(map[int]float64)
		}
		cells[c][p] += Rating(tx.Quantity, tx.Total)
	}

	m.Rows = make([][]Cell, len(m.CustomerIDs))
	for c, row := range cells {
		for p, r := range row {
			m.Rows[c] = append(m.Rows[c], Cell{Product: p, Rating: r})
		}
		sort.Slice(m.Rows[c], func(i, j int) bool {
			return m.Rows[c][i].Product < m.Rows[c][j].Product
		})
	}

	return m, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CustomerIndex returns the dense row of a customer.
func (m *InteractionMatrix) CustomerIndex(id string) (int, bool) {
	return searchID(m.CustomerIDs, id)
}

// ProductIndex returns the dense column of a product.
func (m *InteractionMatrix) ProductIndex(id string) (int, bool) {
	return searchID(m.ProductIDs, id)
}

func searchID(ids []string, id string) (int, bool) {
	i := sort.SearchStrings(ids, id)
	if i < len(ids) && ids[i] == id {
		return i, true
	}
	return 0, false
}

// Rating returns the aggregated rating of a pair, 0 when unobserved or
// when either identifier is unknown.
func (m *InteractionMatrix) Rating(customerID, productID string) float64 {
	c, ok := m.CustomerIndex(customerID)
	if !ok {
		return 0
	}
	p, ok := m.ProductIndex(productID)
	if !ok {
		return 0
	}
	row := m.Rows[c]
	i := sort.Search(len(row), func(i int) bool { return row[i].Product >= p })
	if i < len(row) && row[i].Product == p {
		return row[i].Rating
	}
	return 0
}

// NumInteractions returns the number of nonzero cells.
func (m *InteractionMatrix) NumInteractions() int {
	n := 0
	for _, row := range m.Rows {
		n += len(row)
	}
	return n
}

// Stats computes size and density figures for the matrix.
func (m *InteractionMatrix) Stats() Stats {
	s := Stats{
		NumCustomers:    len(m.CustomerIDs),
		NumProducts:     len(m.ProductIDs),
		NumInteractions: m.NumInteractions(),
	}
	if s.NumCustomers > 0 && s.NumProducts > 0 {
		s.MatrixDensity = float64(s.NumInteractions) / (float64(s.NumCustomers) * float64(s.NumProducts))
	}
	if s.NumCustomers > 0 {
		s.AvgInteractionsPerCustomer = float64(s.NumInteractions) / float64(s.NumCustomers)
	}
	if s.NumProducts > 0 {
		s.AvgInteractionsPerProduct = float64(s.NumInteractions) / float64(s.NumProducts)
	}
	return s
}

// entries converts a customer row into solver input.
func entries(row []Cell) []algorithms.Entry {
	out := make([]algorithms.Entry, len(row))
	for i, c := range row {
		out[i] = algorithms.Entry{Index: c.Product, Value: c.Rating}
	}
	return out
}

// sparseRows converts the whole matrix into solver input.
func (m *InteractionMatrix) sparseRows() [][]algorithms.Entry {
	rows := make([][]algorithms.Entry, len(m.Rows))
	for c, row := range m.Rows {
		rows[c] = entries(row)
	}
	return rows
}
