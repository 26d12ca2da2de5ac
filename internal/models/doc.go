// Package models defines the core domain models for friendsplit.
//
// # Models
//
//   - Friend: another participant the user splits bills with, carrying a running balance
//   - Payer: which side of a two-person split paid the bill
//   - Expense: the record of one submitted split against a friend
//
// # Design Principles
//
// 1. **Two parties only**: every split is between the user and exactly one friend
// 2. **Exact money**: amounts are decimal.Decimal, never float64
// 3. **Avoid circular references**: relationships use ID strings instead of pointers
// 4. **Session scoped**: nothing here outlives the session that created it
package models
