// Package secure seals gossip payloads for private swarms.
//
// Members of a private swarm share a secret out of band. Each side derives
// the swarm key with HKDF-SHA256 and seals frame payloads with
// ChaCha20-Poly1305, so address lists never cross the wire in the clear and
// non-members cannot inject peers. The QUIC transport already encrypts the
// connection; sealing binds payloads to swarm membership rather than to the
// connection.
package secure
