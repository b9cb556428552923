// Package domain holds the crafting game session state machine and its
// append-only attempt log. Sessions own their inventory, tried-pair set,
// and rolling log state; all mutation goes through Attempt and End so a
// session is either updated as one unit or not at all.
package domain
