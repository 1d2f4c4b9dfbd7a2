// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared by the catalog loader, which drops
// malformed products and transactions before training, and by the ops API,
// which rejects malformed query parameters with a 400.
//
// # Custom Tags
//
//   - entityid: customer and product identifiers (at most 128 printable
//     characters, no surrounding whitespace)
//
// # Usage
//
//	type Transaction struct {
//	    CustomerID string  `validate:"required,entityid"`
//	    Quantity   int     `validate:"gte=1"`
//	    Total      float64 `validate:"gte=0"`
//	}
//
//	if verr := validation.ValidateStruct(&tx); verr != nil {
//	    logger.Debug().Str("reason", verr.Error()).Msg("rejected transaction")
//	}
//
// ToAPIError converts failures to the ops API error body:
//
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "N must be less than or equal to 100",
//	    "details": {"field": "N", "tag": "lte", "value": 500}
//	}
//
// # Thread Safety
//
// GetValidator and ValidateStruct are safe for concurrent use.
package validation
