// Command camdram harvests Camdram credits and queries the rankings built
// from them: people, roles, societies and venues, the role consolidation
// mapping, exports, and the summary PDF.
package main
