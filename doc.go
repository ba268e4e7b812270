// Package fund implements the accounting core of an investment fund
// administration system: investor enrollment, unitized capital movements,
// net-asset-value tracking, and periodic performance-fee assessment.
//
// The core functionalities include:
//   - Unit Pricing: converting cash amounts to and from fund units priced
//     against the fund's total NAV and units outstanding.
//   - Transaction Processing: recording deposits, withdrawals and NAV updates
//     in an append-only, chronological ledger, with safe deletion of the most
//     recent entry and an explicit, replay-based cascade for older ones.
//   - Fee Engine: per-tranche, per-period performance-fee preview and commit,
//     with high-water-mark tracking and unit transfer to the fund manager.
//   - Lifetime Performance: gross versus net returns per investor across all
//     tranches and historical fee records.
//   - Persistence: a narrow Store contract with in-memory, JSONL-file and
//     Postgres implementations; one atomic commit per logical operation.
//
// This package serves as the foundational logic for the `fundadm`
// command-line tool, ensuring that all operations are consistent and based on
// a single source of truth.
package fund
