// Package pex implements peer exchange over compact socket-address
// encodings.
//
// Addresses cross the wire as fixed-width compact byte arrays (6 bytes for
// IPv4, 18 for IPv6; see the compact subpackage for the exact contract).
// Around that codec the package provides signed node announcements, a
// GET_PEERS/PEERS gossip exchange over QUIC, an in-memory address book,
// snapshot distribution with compression and forward error correction, and
// optional payload sealing for private swarms.
package pex
