// Package mapping defines field correspondence tables: the authoritative,
// human-reviewed declaration of how destination fields are produced from
// source fields, constants, and transforms. Tables are built once, are
// immutable afterwards, and hold no shape references, so one table can be
// checked against multiple shape versions.
package mapping
