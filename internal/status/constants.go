// internal/status/constants.go
package status

// Master Status Block layout constants.
// These values define the block layout and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerMaster is the fixed number of logical slots in the block.
const SlotsPerMaster = 8

// ---- SLOT INDICES ----

// SlotHealthCode holds the overall master health state.
const SlotHealthCode = 0

// SlotLinkUp holds the physical link state (0/1).
const SlotLinkUp = 1

// SlotSlavesResponding holds the count of responding slaves.
const SlotSlavesResponding = 2

// SlotSlavesOperational holds the count of slaves in OP state.
const SlotSlavesOperational = 3

// SlotDomainsIncomplete holds the count of domains whose last exchange
// was partial.
const SlotDomainsIncomplete = 4

// ---- RESERVED RANGE ----

// Slots 5-7 are reserved for future use.
const SlotReservedStart = 5
const SlotReservedEnd = 7

// ---- HEALTH CODES ----

// HealthUnknown represents an unknown or boot state.
const HealthUnknown uint16 = 0

// HealthOK represents a fully operational bus.
const HealthOK uint16 = 1

// HealthDegraded represents a bus with stale or partial data.
const HealthDegraded uint16 = 2

// HealthDown represents a lost link.
const HealthDown uint16 = 3
